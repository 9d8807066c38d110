package producer

import (
	"github.com/gopxl/beep/v2"
	"github.com/playsync/playsync/media"
	"github.com/playsync/playsync/profile"
	"github.com/samber/mo"
)

// Counter is a silent placeholder producer used while a canvas has no media.
type Counter struct {
	ranged
}

// NewCounter creates a counter producer at frame 0.
func NewCounter(p *profile.Profile) *Counter {
	c := &Counter{}
	c.render = func(int) beep.Streamer {
		return beep.Silence(p.SamplesPerFrame())
	}
	return c
}

func (c *Counter) Valid() bool { return true }

func (c *Counter) Media() mo.Option[media.Ref] { return mo.None[media.Ref]() }
