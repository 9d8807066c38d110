// Package style composes lipgloss styles into plain string renderers.
package style

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/playsync/playsync/color"
)

// New returns an empty style.
func New() lipgloss.Style {
	return lipgloss.NewStyle()
}

// Fg returns a renderer that paints its input with foreground c.
func Fg(c lipgloss.Color) func(string) string {
	return func(s string) string { return New().Foreground(c).Render(s) }
}

// Tag returns a renderer that draws its input as a padded block.
func Tag(fg, bg lipgloss.Color) func(string) string {
	return func(s string) string { return New().Foreground(fg).Background(bg).Padding(0, 1).Render(s) }
}

var (
	Faint  = func(s string) string { return New().Faint(true).Render(s) }
	Bold   = func(s string) string { return New().Bold(true).Render(s) }
	Italic = func(s string) string { return New().Italic(true).Render(s) }
)

// Title renders a heading banner.
var Title = Tag(color.New("230"), color.New("62"))

// Mode renders a delivery mode name as a tag in the color of its role.
// Unknown names fall back to a neutral tag.
func Mode(mode string) string {
	switch mode {
	case "push":
		return Tag(color.Black, color.Push)(mode)
	case "pull":
		return Tag(color.Black, color.Pull)(mode)
	default:
		return Tag(color.Black, color.Cyan)(mode)
	}
}
