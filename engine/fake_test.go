package engine

import (
	"errors"
	"sync"
	"time"

	"github.com/playsync/playsync/consumer"
	"github.com/playsync/playsync/media"
	"github.com/playsync/playsync/producer"
	"github.com/playsync/playsync/profile"
	"github.com/samber/mo"
)

var errStart = errors.New("device unavailable")

// recorder is a consumer backend and producer factory that remembers everything the engine does.
type recorder struct {
	mu sync.Mutex

	consumers  []*fakeConsumer
	built      []*watchedProducer
	pushed     []int
	maxRunning int
	violations int
	failStart  bool
	failSetup  error
	info       mo.Option[media.Info]
}

func (r *recorder) NewPush(*profile.Profile) (consumer.Push, error) {
	return r.add("push"), nil
}

func (r *recorder) NewPull(*profile.Profile) (consumer.Pull, error) {
	return r.add("pull"), nil
}

func (r *recorder) add(kind string) *fakeConsumer {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := &fakeConsumer{r: r, kind: kind, volume: 1}
	r.consumers = append(r.consumers, c)
	return c
}

func (r *recorder) New(ref mo.Option[media.Ref], p *profile.Profile) (producer.Producer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failSetup != nil {
		return nil, r.failSetup
	}
	w := &watchedProducer{Producer: producer.NewCounter(p), r: r, media: ref, info: r.info}
	r.built = append(r.built, w)
	return w, nil
}

// running counts live running consumers. Callers hold r.mu.
func (r *recorder) running() int {
	n := 0
	for _, c := range r.consumers {
		if !c.closed && c.state == consumer.Running {
			n++
		}
	}
	return n
}

func (r *recorder) latest(kind string) *fakeConsumer {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.consumers) - 1; i >= 0; i-- {
		if r.consumers[i].kind == kind {
			return r.consumers[i]
		}
	}
	return nil
}

func (r *recorder) Pushed() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int(nil), r.pushed...)
}

func (r *recorder) MaxRunning() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.maxRunning
}

func (r *recorder) Violations() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.violations
}

func (r *recorder) Built() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.built)
}

type fakeConsumer struct {
	r        *recorder
	kind     string
	state    consumer.State
	volume   float64
	closed   bool
	purges   int
	producer producer.Producer
	listener func(int)
}

func (c *fakeConsumer) Start() error {
	c.r.mu.Lock()
	defer c.r.mu.Unlock()
	if c.r.failStart {
		return errStart
	}
	if c.closed {
		return consumer.ErrClosed
	}
	c.state = consumer.Running
	c.r.maxRunning = max(c.r.maxRunning, c.r.running())
	return nil
}

func (c *fakeConsumer) Stop() error {
	c.r.mu.Lock()
	defer c.r.mu.Unlock()
	c.state = consumer.Stopped
	return nil
}

func (c *fakeConsumer) Purge() {
	c.r.mu.Lock()
	defer c.r.mu.Unlock()
	c.purges++
}

func (c *fakeConsumer) State() consumer.State {
	c.r.mu.Lock()
	defer c.r.mu.Unlock()
	return c.state
}

func (c *fakeConsumer) SetVolume(v float64) {
	c.r.mu.Lock()
	defer c.r.mu.Unlock()
	c.volume = v
}

func (c *fakeConsumer) Volume() float64 {
	c.r.mu.Lock()
	defer c.r.mu.Unlock()
	return c.volume
}

func (c *fakeConsumer) Close() error {
	c.r.mu.Lock()
	defer c.r.mu.Unlock()
	c.state = consumer.Stopped
	c.closed = true
	return nil
}

func (c *fakeConsumer) Push(f producer.Frame) error {
	c.r.mu.Lock()
	defer c.r.mu.Unlock()
	if c.state != consumer.Running {
		return consumer.ErrNotRunning
	}
	c.r.pushed = append(c.r.pushed, f.Index)
	return nil
}

func (c *fakeConsumer) Connect(p producer.Producer) {
	c.r.mu.Lock()
	defer c.r.mu.Unlock()
	c.producer = p
}

func (c *fakeConsumer) Disconnect() {
	c.r.mu.Lock()
	defer c.r.mu.Unlock()
	c.producer = nil
}

func (c *fakeConsumer) Connected() producer.Producer {
	c.r.mu.Lock()
	defer c.r.mu.Unlock()
	return c.producer
}

func (c *fakeConsumer) Listen(fn func(int)) {
	c.r.mu.Lock()
	defer c.r.mu.Unlock()
	c.listener = fn
}

// emit plays the part of the delivery goroutine showing frame.
func (c *fakeConsumer) emit(frame int) {
	c.r.mu.Lock()
	fn := c.listener
	c.r.mu.Unlock()
	fn(frame)
}

// watchedProducer counts range writes made while any consumer runs.
type watchedProducer struct {
	producer.Producer
	r     *recorder
	media mo.Option[media.Ref]
	info  mo.Option[media.Info]
}

func (w *watchedProducer) watch() {
	w.r.mu.Lock()
	defer w.r.mu.Unlock()
	if w.r.running() > 0 {
		w.r.violations++
	}
}

func (w *watchedProducer) SetStartFrame(frame int) {
	w.watch()
	w.Producer.SetStartFrame(frame)
}

func (w *watchedProducer) SetEndFrame(frame int) {
	w.watch()
	w.Producer.SetEndFrame(frame)
}

func (w *watchedProducer) SetLimited(limited bool) {
	w.watch()
	w.Producer.SetLimited(limited)
}

func (w *watchedProducer) Media() mo.Option[media.Ref] {
	return w.media
}

func (w *watchedProducer) Info() mo.Option[media.Info] {
	return w.info
}

func eventually(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}
