// Package color names the terminal colors used by the CLI and the preview.
package color

import "github.com/charmbracelet/lipgloss"

// New wraps an ANSI index or hex value.
func New(value string) lipgloss.Color {
	return lipgloss.Color(value)
}

var (
	Red    = New("1")
	Green  = New("2")
	Yellow = New("3")
	Blue   = New("4")
	Purple = New("5")
	Cyan   = New("6")
	Black  = New("8")
)

var (
	HiPurple = New("13")
	HiCyan   = New("14")
)

// Playback roles.
var (
	// Push marks scrub-driven delivery, where the display leads and audio follows.
	Push = New("#ffb703")
	// Pull marks playback-driven delivery, where the audio clock leads.
	Pull = New("#8ecae6")
	// Meter fills the audio level bar.
	Meter = Green
)
