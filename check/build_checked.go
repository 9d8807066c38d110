//go:build playsync_checked

package check

const checkedBuild = true
