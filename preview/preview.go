// Package preview is an interactive terminal display for a single canvas driven by the engine.
package preview

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/playsync/playsync/canvas"
	"github.com/playsync/playsync/consumer"
	"github.com/playsync/playsync/engine"
	"github.com/playsync/playsync/key"
	"github.com/playsync/playsync/media"
	"github.com/samber/mo"
	"github.com/spf13/viper"
)

// Options configures the preview.
type Options struct {
	// Media is the audio file to attach. Empty falls back to the configured default media.
	Media string
}

// Run opens the preview and blocks until the user quits.
func Run(options *Options) error {
	tap := consumer.NewTap(viper.GetInt(key.AudioTapSize))

	e, err := engine.New(engine.FromConfig(tap))
	if err != nil {
		return err
	}
	defer e.Close()

	c := canvas.NewMemory(
		e.Profile().FrameRate(),
		canvas.Range{Start: 0, End: max(viper.GetInt(key.PreviewFrames), 1) - 1},
	)

	path := options.Media
	if path == "" {
		path = viper.GetString(key.PreviewDefaultMedia)
	}
	if path != "" {
		c.SetMedia(mo.Some(media.NewRef(path)))
	}

	m := newModel(e, c, tap, viper.GetBool(key.PreviewShowHelp))

	if err := e.SetCanvas(c); err != nil {
		return err
	}

	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
