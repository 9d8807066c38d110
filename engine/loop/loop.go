// Package loop implements the engine's control context: a single goroutine running jobs in submission order.
package loop

import (
	"errors"
	"sync"

	"github.com/playsync/playsync/log"
)

var ErrStopped = errors.New("loop is stopped")

// Loop runs jobs one at a time on its own goroutine.
// Post never blocks, so background goroutines can submit work while the loop waits on them.
type Loop struct {
	mu       sync.Mutex
	jobs     []func()
	stopping bool

	wake chan struct{}
	done chan struct{}
}

// New starts a loop.
func New() *Loop {
	l := &Loop{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	go l.run()
	return l
}

// Post enqueues fn and returns immediately. It reports false once the loop is stopping.
func (l *Loop) Post(fn func()) bool {
	l.mu.Lock()
	if l.stopping {
		l.mu.Unlock()
		return false
	}
	l.jobs = append(l.jobs, fn)
	l.mu.Unlock()

	l.signal()
	return true
}

type result struct {
	err       error
	panicked  bool
	recovered any
}

// Do runs fn on the loop and waits for it. A panic inside fn is re-raised on the caller's goroutine.
// Calling Do from a job deadlocks.
func (l *Loop) Do(fn func() error) error {
	ch := make(chan result, 1)

	posted := l.Post(func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- result{panicked: true, recovered: r}
			}
		}()
		ch <- result{err: fn()}
	})
	if !posted {
		return ErrStopped
	}

	r := <-ch
	if r.panicked {
		panic(r.recovered)
	}
	return r.err
}

// Stop runs every job already queued, then terminates the loop and waits for it.
func (l *Loop) Stop() {
	l.mu.Lock()
	if l.stopping {
		l.mu.Unlock()
		<-l.done
		return
	}
	l.stopping = true
	l.mu.Unlock()

	l.signal()
	<-l.done
}

// Done is closed once the loop has terminated.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

func (l *Loop) signal() {
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

func (l *Loop) run() {
	defer close(l.done)

	for {
		l.mu.Lock()
		jobs, stopping := l.jobs, l.stopping
		l.jobs = nil
		l.mu.Unlock()

		for _, job := range jobs {
			exec(job)
		}

		if len(jobs) > 0 {
			continue
		}
		if stopping {
			return
		}
		<-l.wake
	}
}

func exec(job func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("loop job panicked: %v", r)
		}
	}()
	job()
}
