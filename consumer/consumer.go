// Package consumer defines the two audio/video delivery backends the engine switches between:
// a push consumer fed explicitly by the caller while scrubbing, and a pull consumer that
// requests frames on its own goroutine during realtime playback.
package consumer

import (
	"errors"

	"github.com/playsync/playsync/producer"
	"github.com/playsync/playsync/profile"
)

var (
	ErrClosed       = errors.New("consumer is closed")
	ErrNotConnected = errors.New("pull consumer has no producer")
	ErrNotRunning   = errors.New("consumer is not running")
)

// State is the lifecycle state of a consumer.
type State int32

const (
	Uninitialized State = iota
	Running
	Stopped
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Stopped:
		return "stopped"
	default:
		return "uninitialized"
	}
}

// Consumer is the lifecycle shared by both delivery backends.
type Consumer interface {
	Start() error
	// Stop blocks until any background delivery has quiesced.
	Stop() error
	// Purge drops audio queued but not yet delivered.
	Purge()
	State() State
	SetVolume(v float64)
	Volume() float64
	// Close stops the consumer and releases it for good.
	Close() error
}

// Push is fed frames by its caller.
type Push interface {
	Consumer
	Push(f producer.Frame) error
}

// Pull requests frames from a connected producer on its own goroutine.
type Pull interface {
	Consumer
	Connect(p producer.Producer)
	Disconnect()
	// Listen installs the frame-shown callback. It is invoked from the delivery goroutine.
	Listen(fn func(frame int))
}

// Backend constructs consumers bound to a shared profile.
type Backend interface {
	NewPush(p *profile.Profile) (Push, error)
	NewPull(p *profile.Profile) (Pull, error)
}
