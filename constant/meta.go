// Package constant defines immutable application-level identifiers and configuration defaults.
package constant

const (
	// Playsync is the canonical application identifier used for filesystem paths and CLI branding.
	Playsync = "playsync"

	// Version is the current application semantic version string.
	Version = "0.3.0"
)

// Build metadata, injected through -ldflags at release time.
var (
	BuiltAt  = "unknown"
	BuiltBy  = "unknown"
	Revision = "unknown"
)
