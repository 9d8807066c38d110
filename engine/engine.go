// Package engine synchronizes animation playback and scrubbing with audio for the active canvas.
//
// All engine state lives on a single loop goroutine. Public methods hop onto it and wait,
// canvas notifications are posted onto it, and the pull consumer reaches it only through
// the frame bridge.
package engine

import (
	"errors"
	"fmt"

	"github.com/playsync/playsync/bridge"
	"github.com/playsync/playsync/canvas"
	"github.com/playsync/playsync/check"
	"github.com/playsync/playsync/consumer"
	"github.com/playsync/playsync/engine/loop"
	"github.com/playsync/playsync/log"
	"github.com/playsync/playsync/media"
	"github.com/playsync/playsync/producer"
	"github.com/playsync/playsync/profile"
	"github.com/playsync/playsync/scrub"
	"github.com/sirupsen/logrus"
)

var logger = log.Component("engine")

var ErrClosed = errors.New("engine is closed")

// Mode is the delivery mode derived from the active canvas.
type Mode int

const (
	// Push is scrub-driven delivery: the engine feeds audio explicitly.
	Push Mode = iota
	// Pull is realtime playback: the pull consumer drives position.
	Pull
)

func (m Mode) String() string {
	if m == Pull {
		return "pull"
	}
	return "push"
}

// Stats is a snapshot of engine activity.
type Stats struct {
	Mode        string       `json:"mode"`
	Canvas      canvas.ID    `json:"canvas,omitempty"`
	Producers   int          `json:"producers"`
	Mute        bool         `json:"mute"`
	PushState   string       `json:"push_state"`
	PullState   string       `json:"pull_state"`
	Transitions int          `json:"transitions"`
	AudioPushes int          `json:"audio_pushes"`
	PushedAudio int          `json:"pushed_frames"`
	PullShown   int          `json:"pull_shown"`
	Errors      int          `json:"errors"`
	StalePulls  int          `json:"stale_pulls"`
	Media       *media.Info  `json:"media,omitempty"`
	Bridge      bridge.Stats `json:"bridge"`
	Scrub       scrub.Stats  `json:"scrub"`
}

// Engine is the playback synchronization engine.
type Engine struct {
	loop     *loop.Loop
	policy   check.Policy
	backend  consumer.Backend
	profile  *profile.Profile
	registry *producer.Registry
	bridge   *bridge.Bridge
	scrub    *scrub.Compressor

	// owned by the loop
	push        consumer.Push
	pull        consumer.Pull
	active      canvas.Canvas
	unsubscribe func()
	activation  uint64
	mute        bool

	transitions int
	audioPushes int
	pushedAudio int
	pullShown   int
	stalePulls  int
	failures    int
}

// New creates an engine with no active canvas. Both consumers are created but not started.
func New(opts Options) (*Engine, error) {
	opts = opts.withDefaults()

	e := &Engine{
		loop:    loop.New(),
		policy:  opts.Policy.OrElse(check.Build()),
		backend: opts.Backend,
		profile: profile.New(opts.FrameRate, opts.SampleRate),
	}
	e.registry = producer.NewRegistry(opts.Factory, e.profile)
	e.bridge = bridge.New(e.post, e.showPulledFrame)
	e.scrub = scrub.New(opts.Clock, opts.ScrubWindow, e.post, e.pushAudio)

	if err := e.loop.Do(e.ensureConsumers); err != nil {
		e.loop.Stop()
		return nil, err
	}

	logger.WithFields(logrus.Fields{"fps": opts.FrameRate, "scrub_window": opts.ScrubWindow.String(), "policy": e.policy.String()}).Info("started")
	return e, nil
}

func (e *Engine) post(fn func()) {
	if !e.loop.Post(fn) {
		logger.Trace("loop stopped, job dropped")
	}
}

// do runs fn on the loop, applying the precondition policy to its error.
func (e *Engine) do(op string, fn func() error) error {
	err := e.loop.Do(func() error {
		return e.policy.Handle(op, fn())
	})
	if errors.Is(err, loop.ErrStopped) {
		return fmt.Errorf("%s: %w", op, ErrClosed)
	}
	return err
}

// Sync waits until every event already delivered to the engine has been handled.
func (e *Engine) Sync() {
	_ = e.loop.Do(func() error { return nil })
}

// Policy is the precondition policy in effect.
func (e *Engine) Policy() check.Policy {
	return e.policy
}

// Profile is the timing profile shared by every producer and consumer.
func (e *Engine) Profile() *profile.Profile {
	return e.profile
}

// Mode derives the delivery mode from the active canvas.
func (e *Engine) Mode() Mode {
	mode := Push
	_ = e.loop.Do(func() error {
		mode = e.mode()
		return nil
	})
	return mode
}

// mode is recomputed on every call and never stored.
func (e *Engine) mode() Mode {
	if e.active != nil && e.active.PlaybackState() == canvas.Playing {
		return Pull
	}
	return Push
}

// Stats returns a snapshot of engine activity.
func (e *Engine) Stats() Stats {
	var s Stats
	_ = e.loop.Do(func() error {
		s = Stats{
			Mode:        e.mode().String(),
			Producers:   e.registry.Len(),
			Mute:        e.mute,
			PushState:   stateOf(e.push),
			PullState:   stateOf(e.pull),
			Transitions: e.transitions,
			AudioPushes: e.audioPushes,
			PushedAudio: e.pushedAudio,
			PullShown:   e.pullShown,
			Errors:      e.failures,
			StalePulls:  e.stalePulls,
		}
		if e.active != nil {
			s.Canvas = e.active.ID()
			s.Media = e.mediaInfo(e.active.ID())
		}
		return nil
	})
	s.Bridge = e.bridge.Stats()
	s.Scrub = e.scrub.Stats()
	return s
}

// mediaInfo is the probed layout of the media behind id's producer, if it was probed.
func (e *Engine) mediaInfo(id canvas.ID) *media.Info {
	p, ok := e.registry.Get(id).Get()
	if !ok {
		return nil
	}

	described, ok := p.(producer.Described)
	if !ok {
		return nil
	}

	info, ok := described.Info().Get()
	if !ok {
		return nil
	}
	return &info
}

func stateOf(c consumer.Consumer) string {
	if c == nil {
		return "released"
	}
	return c.State().String()
}

// Close detaches the active canvas, releases both consumers and stops the loop.
func (e *Engine) Close() error {
	err := e.loop.Do(func() error {
		e.scrub.Cancel()
		e.detach()
		e.active = nil
		e.activation++

		var errs []error
		for _, c := range e.consumers() {
			errs = append(errs, c.Close())
		}
		e.push, e.pull = nil, nil
		return errors.Join(errs...)
	})
	if errors.Is(err, loop.ErrStopped) {
		return ErrClosed
	}

	e.loop.Stop()
	logger.Info("closed")
	return err
}

func (e *Engine) consumers() []consumer.Consumer {
	var cs []consumer.Consumer
	if e.push != nil {
		cs = append(cs, e.push)
	}
	if e.pull != nil {
		cs = append(cs, e.pull)
	}
	return cs
}

func (e *Engine) ensureConsumers() error {
	if e.push == nil {
		push, err := e.backend.NewPush(e.profile)
		if err != nil {
			return fmt.Errorf("create push consumer: %w", err)
		}
		e.push = push
	}

	if e.pull == nil {
		pull, err := e.backend.NewPull(e.profile)
		if err != nil {
			return fmt.Errorf("create pull consumer: %w", err)
		}
		activation := e.activation
		pull.Listen(func(frame int) { e.bridge.Notify(activation, frame) })
		e.pull = pull
	}

	return nil
}
