package engine

import (
	"fmt"

	"github.com/playsync/playsync/canvas"
	"github.com/playsync/playsync/check"
)

// SeekFlags modify a seek.
type SeekFlags uint8

const (
	// SeekPushAudio schedules a coalesced scrub audio push for the frame.
	SeekPushAudio SeekFlags = 1 << iota
	// SeekFinalize asks the canvas to flush deferred rendering of the frame.
	SeekFinalize
)

// Has reports whether all bits of flag are set.
func (f SeekFlags) Has(flag SeekFlags) bool {
	return f&flag == flag
}

// Seek repositions the active producer and shows frame. It only acts in Push mode.
func (e *Engine) Seek(frame int, flags SeekFlags) error {
	return e.do("seek", func() error {
		return e.seek(frame, flags)
	})
}

func (e *Engine) seek(frame int, flags SeekFlags) error {
	if e.active == nil {
		return check.ErrNoActiveCanvas
	}

	if e.mode() != Push {
		return nil
	}

	p, ok := e.registry.Get(e.active.ID()).Get()
	if !ok {
		return check.ErrNoProducer
	}
	p.Seek(frame)

	if flags.Has(SeekPushAudio) {
		e.scrub.Start(frame)
	}

	e.active.ShowFrame(frame, flags.Has(SeekFinalize))
	return nil
}

// SetCanvas makes c the active canvas. A nil c detaches the current one.
func (e *Engine) SetCanvas(c canvas.Canvas) error {
	return e.do("set canvas", func() error {
		return e.setCanvas(c)
	})
}

// UnsetCanvas detaches the active canvas.
func (e *Engine) UnsetCanvas() error {
	return e.SetCanvas(nil)
}

func (e *Engine) setCanvas(c canvas.Canvas) error {
	if sameCanvas(e.active, c) {
		return nil
	}

	if c != nil && c.Animation().IsAbsent() {
		return fmt.Errorf("canvas %s: %w", c.ID(), check.ErrNoAnimation)
	}

	e.detach()

	return e.transition(true, func() error {
		e.active = c
		e.activation++
		if c == nil {
			logger.Info("canvas detached")
			return nil
		}

		logger.WithField("canvas", c.ID()).Info("canvas attached")
		e.subscribe(c)

		if anim, ok := c.Animation().Get(); ok {
			e.profile.SetFrameRate(anim.FrameRate())
		}

		_, err := e.registry.Setup(c)
		return err
	})
}

func sameCanvas(a, b canvas.Canvas) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.ID() == b.ID()
}

// detach drops the subscriptions and producer of the active canvas.
func (e *Engine) detach() {
	if e.unsubscribe != nil {
		e.unsubscribe()
		e.unsubscribe = nil
	}
	if e.active != nil {
		e.registry.Remove(e.active.ID())
	}
}

// SetAudioVolume sets the output volume of both consumers, honouring mute.
func (e *Engine) SetAudioVolume(volume float64) error {
	return e.do("set audio volume", func() error {
		e.setAudioVolume(volume)
		return nil
	})
}

func (e *Engine) setAudioVolume(volume float64) {
	effective := e.effectiveVolume(volume)
	for _, c := range e.consumers() {
		c.SetVolume(effective)
	}
}

func (e *Engine) effectiveVolume(volume float64) float64 {
	if e.mute {
		return 0
	}
	return volume
}

// SetMute mutes or unmutes output, reapplying the active canvas volume immediately.
func (e *Engine) SetMute(mute bool) error {
	return e.do("set mute", func() error {
		if e.active == nil {
			return check.ErrNoActiveCanvas
		}

		e.mute = mute
		e.setAudioVolume(e.active.Volume())
		return nil
	})
}

// IsMute reports whether output is muted.
func (e *Engine) IsMute() bool {
	var mute bool
	_ = e.loop.Do(func() error {
		mute = e.mute
		return nil
	})
	return mute
}

// SetPlaybackSpeedPercent is not supported yet.
func (e *Engine) SetPlaybackSpeedPercent(percent int) error {
	return fmt.Errorf("set playback speed to %d%%: %w", percent, check.ErrNotImplemented)
}

// SetPlaybackSpeedNormalized is not supported yet.
func (e *Engine) SetPlaybackSpeedNormalized(speed float64) error {
	return fmt.Errorf("set playback speed to %.2f: %w", speed, check.ErrNotImplemented)
}
