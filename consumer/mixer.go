package consumer

import (
	"math"
	"sync"
	"sync/atomic"

	"github.com/benbjohnson/clock"
	"github.com/gopxl/beep/v2/effects"
	"github.com/playsync/playsync/log"
	"github.com/playsync/playsync/producer"
	"github.com/playsync/playsync/profile"
)

// Mixer is the reference backend. It renders frame audio through a gain stage into a sink,
// pacing the pull consumer with the given clock.
type Mixer struct {
	Sink  Sink
	Clock clock.Clock
}

// NewMixer creates a backend writing into sink. A nil clock means the wall clock.
func NewMixer(sink Sink, clk clock.Clock) *Mixer {
	if sink == nil {
		sink = Discard{}
	}
	if clk == nil {
		clk = clock.New()
	}
	return &Mixer{Sink: sink, Clock: clk}
}

func (m *Mixer) NewPush(p *profile.Profile) (Push, error) {
	c := &push{}
	c.init(m.Sink, p)
	return c, nil
}

func (m *Mixer) NewPull(p *profile.Profile) (Pull, error) {
	c := &pull{clock: m.Clock}
	c.init(m.Sink, p)
	return c, nil
}

// base carries the state and rendering shared by both consumers.
type base struct {
	mu      sync.Mutex
	state   State
	closed  bool
	volume  atomic.Uint64
	sink    Sink
	profile *profile.Profile
	chunk   [][2]float64
}

func (b *base) init(sink Sink, p *profile.Profile) {
	b.sink = sink
	b.profile = p
	b.chunk = make([][2]float64, 512)
	b.volume.Store(math.Float64bits(1))
}

func (b *base) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *base) SetVolume(v float64) {
	b.volume.Store(math.Float64bits(max(v, 0)))
}

func (b *base) Volume() float64 {
	return math.Float64frombits(b.volume.Load())
}

func (b *base) Purge() {
	if p, ok := b.sink.(Purger); ok {
		p.Purge()
	}
}

// render streams the frame's audio through the gain stage into the sink.
// Only one goroutine renders per consumer at a time.
func (b *base) render(f producer.Frame) {
	if f.Audio == nil {
		return
	}

	gain := &effects.Gain{Streamer: f.Audio, Gain: b.Volume() - 1}
	for {
		n, ok := gain.Stream(b.chunk)
		if n > 0 {
			b.sink.Write(b.chunk[:n])
		}
		if !ok || n < len(b.chunk) {
			break
		}
	}

	if err := gain.Err(); err != nil {
		log.Warnf("frame %d audio: %s", f.Index, err)
	}
}

type push struct {
	base
}

func (p *push) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}
	p.state = Running
	return nil
}

func (p *push) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state = Stopped
	return nil
}

func (p *push) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state = Stopped
	p.closed = true
	return nil
}

// Push renders the frame synchronously on the caller's goroutine.
func (p *push) Push(f producer.Frame) error {
	if p.State() != Running {
		return ErrNotRunning
	}
	p.render(f)
	return nil
}

type pull struct {
	base
	clock    clock.Clock
	producer producer.Producer
	listener atomic.Pointer[func(int)]
	stop     chan struct{}
	done     chan struct{}
}

func (p *pull) Connect(prod producer.Producer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.producer = prod
}

func (p *pull) Disconnect() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.producer = nil
}

func (p *pull) Listen(fn func(frame int)) {
	if fn == nil {
		p.listener.Store(nil)
		return
	}
	p.listener.Store(&fn)
}

// Start launches the delivery goroutine, ticking once per frame at the profile's rate.
func (p *pull) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch {
	case p.closed:
		return ErrClosed
	case p.producer == nil:
		return ErrNotConnected
	case p.state == Running:
		return nil
	}

	p.stop = make(chan struct{})
	p.done = make(chan struct{})
	ticker := p.clock.Ticker(p.profile.FrameDuration())

	go p.run(p.producer, ticker, p.stop, p.done)
	p.state = Running
	return nil
}

func (p *pull) run(prod producer.Producer, ticker *clock.Ticker, stop, done chan struct{}) {
	defer close(done)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			f := prod.Next()
			p.render(f)
			if fn := p.listener.Load(); fn != nil {
				(*fn)(f.Index)
			}
		}
	}
}

// Stop signals the delivery goroutine and waits for it to exit.
func (p *pull) Stop() error {
	p.mu.Lock()
	if p.state != Running {
		p.state = Stopped
		p.mu.Unlock()
		return nil
	}
	stop, done := p.stop, p.done
	close(stop)
	p.mu.Unlock()

	<-done

	p.mu.Lock()
	p.state = Stopped
	p.mu.Unlock()
	return nil
}

func (p *pull) Close() error {
	if err := p.Stop(); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	p.producer = nil
	return nil
}

var (
	_ Backend = (*Mixer)(nil)
	_ Push    = (*push)(nil)
	_ Pull    = (*pull)(nil)
)
