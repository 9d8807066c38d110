package engine

import (
	"errors"
	"fmt"

	"github.com/playsync/playsync/check"
	"github.com/sirupsen/logrus"
)

// transition runs mutate with both consumers stopped and restarts the one matching the
// resulting mode afterwards. The restart half is deferred, so it runs exactly once however
// mutate exits. A full restart also releases both consumers and creates fresh ones.
func (e *Engine) transition(fullRestart bool, mutate func() error) (err error) {
	defer func() {
		err = errors.Join(err, e.end())
	}()

	if err := e.begin(fullRestart); err != nil {
		return err
	}

	if mutate == nil {
		return nil
	}
	return mutate()
}

func (e *Engine) begin(fullRestart bool) error {
	e.transitions++
	logger.WithFields(logrus.Fields{"transition": e.transitions, "full_restart": fullRestart}).Debug("transition begins")

	var errs []error
	for _, c := range e.consumers() {
		if err := c.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("stop consumer: %w", err))
		}
		c.Purge()
	}
	if e.pull != nil {
		e.pull.Disconnect()
	}

	if fullRestart {
		e.scrub.Cancel()
		for _, c := range e.consumers() {
			if err := c.Close(); err != nil {
				errs = append(errs, fmt.Errorf("release consumer: %w", err))
			}
		}
		e.push, e.pull = nil, nil
	}

	if e.active != nil {
		if p, ok := e.registry.Get(e.active.ID()).Get(); ok {
			p.Seek(e.active.DisplayedFrame())
		}
	}

	return errors.Join(errs...)
}

func (e *Engine) end() error {
	if err := e.ensureConsumers(); err != nil {
		return err
	}

	c := e.active
	if c == nil {
		return nil
	}

	mode := e.mode()
	p, hasProducer := e.registry.Get(c.ID()).Get()

	// Range and limit are written before anything restarts.
	if hasProducer {
		if anim, ok := c.Animation().Get(); ok {
			active := anim.ActiveRange()
			p.SetStartFrame(active.Start)
			p.SetEndFrame(active.End)
		}
		p.SetLimited(mode == Pull)

		if frame := c.DisplayedFrame(); frame >= 0 {
			p.Seek(frame)
		}
	}

	volume := e.effectiveVolume(c.Volume())
	logger.WithFields(logrus.Fields{"transition": e.transitions, "mode": mode.String()}).Debug("transition ends")

	switch mode {
	case Pull:
		if !hasProducer {
			// Keep audio scrubbable while the canvas has no producer.
			e.push.SetVolume(volume)
			if err := e.push.Start(); err != nil {
				return errors.Join(check.ErrNoProducer, fmt.Errorf("start push consumer: %w", err))
			}
			return check.ErrNoProducer
		}
		e.pull.Connect(p)
		e.pull.SetVolume(volume)
		if err := e.pull.Start(); err != nil {
			return fmt.Errorf("start pull consumer: %w", err)
		}
	default:
		e.push.SetVolume(volume)
		if err := e.push.Start(); err != nil {
			return fmt.Errorf("start push consumer: %w", err)
		}
	}

	return nil
}
