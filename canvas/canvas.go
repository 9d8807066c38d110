// Package canvas defines the contract a display surface must satisfy to host playback,
// and an in-memory implementation used by the simulator, the preview and tests.
package canvas

import (
	"github.com/playsync/playsync/media"
	"github.com/samber/mo"
)

// ID is the stable identity of a canvas. The engine keys its producer table by ID and never
// holds on to the canvas value itself beyond the active reference.
type ID string

// PlaybackState is the transport state reported by a canvas.
type PlaybackState int

const (
	Stopped PlaybackState = iota
	Paused
	Playing
)

func (s PlaybackState) String() string {
	switch s {
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	default:
		return "stopped"
	}
}

// Range is an inclusive span of frames.
type Range struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len is the number of frames covered by the range.
func (r Range) Len() int {
	if r.End < r.Start {
		return 0
	}
	return r.End - r.Start + 1
}

// Contains reports whether frame lies inside the range.
func (r Range) Contains(frame int) bool {
	return frame >= r.Start && frame <= r.End
}

// Animation is the image-level animation interface of a canvas.
type Animation interface {
	FrameRate() int
	// ActiveRange is the sub-range currently selected for playback.
	ActiveRange() Range
	// DocumentRange is the full extent of the animation.
	DocumentRange() Range
}

// Listener receives change notifications. Nil fields are not called.
// Notifications may arrive on any goroutine.
type Listener struct {
	PlaybackStateChanged func(PlaybackState)
	MediaChanged         func()
	AudioLevelChanged    func(volume float64)
	FrameRateChanged     func()
	PlaybackRangeChanged func()
}

// Canvas is a display surface able to host playback.
type Canvas interface {
	ID() ID

	PlaybackState() PlaybackState
	// DisplayedFrame is the frame currently shown, or a negative value when none is.
	DisplayedFrame() int
	// Volume is the normalized playback volume chosen on the canvas.
	Volume() float64
	Media() mo.Option[media.Ref]
	Animation() mo.Option[Animation]

	// ShowFrame displays frame. finalize flushes any deferred rendering.
	// Implementations must not call back into the engine synchronously.
	ShowFrame(frame int, finalize bool)

	// Subscribe registers l and returns a function detaching it.
	Subscribe(l Listener) (cancel func())
}
