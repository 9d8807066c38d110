package engine

import (
	"github.com/playsync/playsync/canvas"
	"github.com/playsync/playsync/check"
	"github.com/playsync/playsync/consumer"
	"github.com/sirupsen/logrus"
)

func (e *Engine) subscribe(c canvas.Canvas) {
	activation := e.activation

	e.unsubscribe = c.Subscribe(canvas.Listener{
		PlaybackStateChanged: func(canvas.PlaybackState) {
			e.handle(activation, "playback state changed", e.onPlaybackStateChanged)
		},
		MediaChanged: func() {
			e.handle(activation, "media changed", e.onMediaChanged)
		},
		AudioLevelChanged: func(float64) {
			e.handle(activation, "audio level changed", e.onAudioLevelChanged)
		},
		FrameRateChanged: func() {
			e.handle(activation, "frame rate changed", e.onFrameRateChanged)
		},
		PlaybackRangeChanged: func() {
			e.handle(activation, "playback range changed", e.onPlaybackRangeChanged)
		},
	})
}

// handle runs fn on the loop unless the canvas that raised the event is no longer active.
func (e *Engine) handle(activation uint64, op string, fn func() error) {
	e.post(func() {
		if activation != e.activation || e.active == nil {
			logger.WithField("event", op).Trace("event from an inactive canvas dropped")
			return
		}

		if err := e.policy.Handle(op, fn()); err != nil {
			e.failures++
			logger.WithField("event", op).Error(err)
		}
	})
}

func (e *Engine) onPlaybackStateChanged() error {
	return e.transition(false, nil)
}

func (e *Engine) onMediaChanged() error {
	return e.transition(false, func() error {
		_, err := e.registry.Setup(e.active)
		return err
	})
}

func (e *Engine) onAudioLevelChanged() error {
	e.setAudioVolume(e.active.Volume())
	return nil
}

func (e *Engine) onFrameRateChanged() error {
	return e.transition(false, func() error {
		anim, ok := e.active.Animation().Get()
		if !ok {
			return check.ErrNoAnimation
		}

		e.profile.SetFrameRate(anim.FrameRate())
		logger.WithField("fps", e.profile.FrameRate()).Info("frame rate changed")
		return nil
	})
}

// onPlaybackRangeChanged writes the new bounds without stopping consumers.
func (e *Engine) onPlaybackRangeChanged() error {
	anim, ok := e.active.Animation().Get()
	if !ok {
		return check.ErrNoAnimation
	}

	p, ok := e.registry.Get(e.active.ID()).Get()
	if !ok {
		return check.ErrNoProducer
	}

	active := anim.ActiveRange()
	p.SetStartFrame(active.Start)
	p.SetEndFrame(active.End)
	return nil
}

// showPulledFrame is the bridge's delivery end. Frames from a pull consumer created for an
// earlier canvas are dropped.
func (e *Engine) showPulledFrame(activation uint64, frame int) {
	if activation != e.activation {
		e.stalePulls++
		logger.WithFields(logrus.Fields{"frame": frame, "activation": activation}).Trace("frame from a released pull consumer dropped")
		return
	}

	if e.active == nil || e.mode() != Pull {
		return
	}

	e.pullShown++
	e.active.ShowFrame(frame, false)
}

// pushAudio feeds one scrub window of audio starting at frame, then seeks the producer back to frame.
func (e *Engine) pushAudio(frame int) {
	if e.push == nil || e.push.State() != consumer.Running {
		return
	}

	if e.pull != nil && e.pull.State() == consumer.Running {
		logger.WithField("frame", frame).Error("scrub push while the pull consumer runs")
		return
	}

	if e.active == nil || e.mode() != Push {
		return
	}

	p, ok := e.registry.Get(e.active.ID()).Get()
	if !ok {
		return
	}

	window := e.profile.Frames(e.scrub.Window())
	for i := range window {
		if err := e.push.Push(p.Frame(frame + i)); err != nil {
			logger.WithField("frame", frame+i).Warn(err)
			break
		}
	}
	p.Seek(frame)

	e.audioPushes++
	e.pushedAudio += window
	logger.WithFields(logrus.Fields{"frame": frame, "frames": window}).Trace("scrub audio pushed")
}
