// Package scrub coalesces rapid scrub seeks into a bounded audio push workload.
package scrub

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
)

// Stats counts requests against pushes actually performed.
type Stats struct {
	Requests uint64 `json:"requests"`
	Fired    uint64 `json:"fired"`
}

// Compressor is a trailing-edge debounce. Each request restarts the window; once a window
// elapses with no newer request, fn runs on the loop for the most recent frame.
type Compressor struct {
	clock  clock.Clock
	window time.Duration
	post   func(func())
	fn     func(frame int)

	mu    sync.Mutex
	timer *clock.Timer
	gen   uint64
	armed bool
	frame int

	requests atomic.Uint64
	fired    atomic.Uint64
}

// New creates a compressor. post schedules the push onto the engine loop.
func New(clk clock.Clock, window time.Duration, post func(func()), fn func(frame int)) *Compressor {
	if clk == nil {
		clk = clock.New()
	}
	return &Compressor{clock: clk, window: window, post: post, fn: fn}
}

// Window is the coalescing interval.
func (c *Compressor) Window() time.Duration {
	return c.window
}

// Start requests a push for frame, superseding any pending request.
func (c *Compressor) Start(frame int) {
	c.requests.Add(1)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.frame = frame
	c.armed = true
	c.gen++
	gen := c.gen

	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = c.clock.AfterFunc(c.window, func() {
		c.post(func() { c.fire(gen) })
	})
}

// Cancel drops the pending request, if any.
func (c *Compressor) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.gen++
	c.armed = false
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

// Pending reports whether a request is waiting for its window to elapse.
func (c *Compressor) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.armed
}

func (c *Compressor) fire(gen uint64) {
	c.mu.Lock()
	if gen != c.gen || !c.armed {
		c.mu.Unlock()
		return
	}
	c.armed = false
	c.timer = nil
	frame := c.frame
	c.mu.Unlock()

	c.fired.Add(1)
	c.fn(frame)
}

// Stats returns a snapshot of the counters.
func (c *Compressor) Stats() Stats {
	return Stats{
		Requests: c.requests.Load(),
		Fired:    c.fired.Load(),
	}
}
