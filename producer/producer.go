// Package producer owns the per-canvas media handles the engine plays from.
//
// A producer yields one frame of audio per frame index. Retrieving a frame also moves the
// producer's position past it, so callers scanning ahead must seek back afterwards.
package producer

import (
	"sync"

	"github.com/gopxl/beep/v2"
	"github.com/playsync/playsync/media"
	"github.com/playsync/playsync/profile"
	"github.com/samber/mo"
)

// Frame is a single frame index and its audio.
type Frame struct {
	Index int
	Audio beep.Streamer
}

// Producer is a seekable frame source. Implementations are safe for concurrent use:
// the pull consumer reads from its own goroutine.
type Producer interface {
	Position() int
	Seek(frame int)
	// Frame retrieves the frame at index and repositions the producer to index+1.
	Frame(index int) Frame
	// Next retrieves the frame at the current position, honouring the range limit.
	Next() Frame

	StartFrame() int
	SetStartFrame(frame int)
	EndFrame() int
	SetEndFrame(frame int)
	// Limited reports whether Next keeps the position inside [StartFrame, EndFrame].
	Limited() bool
	SetLimited(limited bool)

	Valid() bool
	Media() mo.Option[media.Ref]
}

// Described is implemented by producers that know the frame layout of their media.
type Described interface {
	Info() mo.Option[media.Info]
}

// Factory builds producers bound to a profile.
type Factory interface {
	New(ref mo.Option[media.Ref], p *profile.Profile) (Producer, error)
}

// ranged carries the position and range bookkeeping shared by every producer.
type ranged struct {
	mu      sync.Mutex
	pos     int
	start   int
	end     int
	limited bool

	render func(index int) beep.Streamer
}

func (r *ranged) Position() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pos
}

func (r *ranged) Seek(frame int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pos = frame
}

func (r *ranged) Frame(index int) Frame {
	r.mu.Lock()
	r.pos = index + 1
	r.mu.Unlock()

	return Frame{Index: index, Audio: r.render(index)}
}

// Next wraps back to the start frame once the position leaves a limited range.
func (r *ranged) Next() Frame {
	r.mu.Lock()
	if r.limited && (r.pos < r.start || r.pos > r.end) {
		r.pos = r.start
	}
	index := r.pos
	r.pos++
	r.mu.Unlock()

	return Frame{Index: index, Audio: r.render(index)}
}

func (r *ranged) StartFrame() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.start
}

func (r *ranged) SetStartFrame(frame int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.start = frame
}

func (r *ranged) EndFrame() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.end
}

func (r *ranged) SetEndFrame(frame int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.end = frame
}

func (r *ranged) Limited() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.limited
}

func (r *ranged) SetLimited(limited bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.limited = limited
}
