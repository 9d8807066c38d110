package consumer

import (
	"math"
	"sync"
)

// Sink receives rendered stereo samples.
type Sink interface {
	Write(samples [][2]float64)
}

// Purger is implemented by sinks that queue audio and can drop it.
type Purger interface {
	Purge()
}

// Discard drops all samples.
type Discard struct{}

func (Discard) Write([][2]float64) {}

// Tap keeps the most recent mono mix of everything written in a ring buffer.
type Tap struct {
	mu      sync.Mutex
	buf     []float64
	pos     int
	size    int
	written int
	purges  int
}

// NewTap creates a tap remembering size samples.
func NewTap(size int) *Tap {
	if size <= 0 {
		size = 1
	}
	return &Tap{buf: make([]float64, size), size: size}
}

func (t *Tap) Write(samples [][2]float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, s := range samples {
		t.buf[t.pos] = (s[0] + s[1]) / 2
		t.pos = (t.pos + 1) % t.size
	}
	t.written += len(samples)
}

// Purge resets the ring.
func (t *Tap) Purge() {
	t.mu.Lock()
	defer t.mu.Unlock()
	clear(t.buf)
	t.pos = 0
	t.purges++
}

// Samples returns the last n samples in chronological order.
func (t *Tap) Samples(n int) []float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	n = min(n, t.size)
	out := make([]float64, n)
	start := (t.pos - n + t.size) % t.size
	for i := range n {
		out[i] = t.buf[(start+i)%t.size]
	}
	return out
}

// Level is the RMS of the last n samples.
func (t *Tap) Level(n int) float64 {
	samples := t.Samples(n)
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		sum += s * s
	}
	return math.Sqrt(sum / float64(len(samples)))
}

// Written is the total number of samples written since creation.
func (t *Tap) Written() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.written
}
