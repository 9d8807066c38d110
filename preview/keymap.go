package preview

import (
	"github.com/charmbracelet/bubbles/key"
)

type keymap struct {
	quit, playPause,
	prev, next,
	jumpPrev, jumpNext,
	mute, louder, quieter,
	showHelp key.Binding
}

func newKeymap() *keymap {
	return &keymap{
		quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		playPause: key.NewBinding(
			key.WithKeys(" ", "space"),
			key.WithHelp("space", "play/pause"),
		),
		prev: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←", "scrub back"),
		),
		next: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→", "scrub forward"),
		),
		jumpPrev: key.NewBinding(
			key.WithKeys("shift+left", "H"),
			key.WithHelp("shift+←", "jump back 1s"),
		),
		jumpNext: key.NewBinding(
			key.WithKeys("shift+right", "L"),
			key.WithHelp("shift+→", "jump forward 1s"),
		),
		mute: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "mute"),
		),
		louder: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", "louder"),
		),
		quieter: key.NewBinding(
			key.WithKeys("-", "_"),
			key.WithHelp("-", "quieter"),
		),
		showHelp: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
	}
}

func (k *keymap) ShortHelp() []key.Binding {
	return []key.Binding{k.playPause, k.prev, k.next, k.mute, k.quit}
}

func (k *keymap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.playPause, k.prev, k.next, k.jumpPrev, k.jumpNext},
		{k.mute, k.louder, k.quieter, k.showHelp, k.quit},
	}
}
