// Package bridge carries frame-shown notifications from the pull consumer goroutine onto the engine loop.
//
// Notifications are coalesced: a burst that arrives before the loop gets around to draining
// collapses into a single delivery of the newest frame. Each frame travels with the generation
// its notifier was created for, so the receiver can drop frames from a consumer it replaced.
package bridge

import (
	"sync/atomic"
)

// Stats counts notifications flowing through a bridge.
type Stats struct {
	Notified  uint64 `json:"notified"`
	Delivered uint64 `json:"delivered"`
	Coalesced uint64 `json:"coalesced"`
}

type note struct {
	gen   uint64
	frame int
}

// Bridge is a single latest-frame slot with a pending flag.
type Bridge struct {
	post    func(func())
	deliver func(gen uint64, frame int)

	latest  atomic.Pointer[note]
	seq     atomic.Uint64
	drained uint64 // loop only
	pending atomic.Bool

	notified  atomic.Uint64
	delivered atomic.Uint64
	coalesced atomic.Uint64
}

// New creates a bridge. post schedules a job on the loop, deliver runs there with the newest frame
// and the generation it was notified under.
func New(post func(func()), deliver func(gen uint64, frame int)) *Bridge {
	return &Bridge{post: post, deliver: deliver}
}

// Notify stores frame as the newest and schedules a drain unless one is already pending.
// Safe to call from any goroutine.
func (b *Bridge) Notify(gen uint64, frame int) {
	b.latest.Store(&note{gen: gen, frame: frame})
	b.seq.Add(1)
	b.notified.Add(1)

	if !b.pending.CompareAndSwap(false, true) {
		b.coalesced.Add(1)
		return
	}

	b.post(b.drain)
}

func (b *Bridge) drain() {
	b.pending.Store(false)

	seq := b.seq.Load()
	if seq == b.drained {
		return
	}
	b.drained = seq

	n := b.latest.Load()
	b.delivered.Add(1)
	b.deliver(n.gen, n.frame)
}

// Stats returns a snapshot of the counters.
func (b *Bridge) Stats() Stats {
	return Stats{
		Notified:  b.notified.Load(),
		Delivered: b.delivered.Load(),
		Coalesced: b.coalesced.Load(),
	}
}
