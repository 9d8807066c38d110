// Package util holds small helpers shared by the CLI and the preview.
package util

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/playsync/playsync/filesystem"
	"golang.org/x/exp/constraints"
	"golang.org/x/term"
)

// Quantify formats count followed by the singular or plural label.
func Quantify(count int, singular, plural string) string {
	if count == 1 {
		return fmt.Sprintf("%d %s", count, singular)
	}
	return fmt.Sprintf("%d %s", count, plural)
}

// Capitalize upper-cases the first byte of s.
func Capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Timecode formats a frame index as minutes, seconds and frames at fps, e.g. 01:02:13.
// Negative frames render as --:--:--.
func Timecode(frame, fps int) string {
	if frame < 0 {
		return "--:--:--"
	}
	if fps <= 0 {
		return fmt.Sprintf("#%d", frame)
	}

	seconds := frame / fps
	return fmt.Sprintf("%02d:%02d:%02d", seconds/60, seconds%60, frame%fps)
}

// TerminalSize returns the size of the terminal attached to stdout.
func TerminalSize() (width, height int, err error) {
	return term.GetSize(int(os.Stdout.Fd()))
}

// FileStem returns the base name of path without its extension.
func FileStem(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

// PrintErasable prints msg on the current line and returns a function that blanks it again.
func PrintErasable(msg string) (eraser func()) {
	fmt.Fprintf(os.Stdout, "\r%s", msg)
	return func() {
		fmt.Fprintf(os.Stdout, "\r%s\r", strings.Repeat(" ", len(msg)))
	}
}

// Clamp bounds v to [lo, hi].
func Clamp[T constraints.Ordered](v, lo, hi T) T {
	return max(lo, min(v, hi))
}

// Delete removes a file, or a directory with everything in it.
func Delete(path string) error {
	fs := filesystem.API()
	stat, err := fs.Stat(path)
	if err != nil {
		return err
	}

	if stat.IsDir() {
		return fs.RemoveAll(path)
	}
	return fs.Remove(path)
}
