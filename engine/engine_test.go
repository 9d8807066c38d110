package engine

import (
	"errors"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/playsync/playsync/canvas"
	"github.com/playsync/playsync/check"
	"github.com/playsync/playsync/consumer"
	"github.com/playsync/playsync/media"
	"github.com/playsync/playsync/producer"
	"github.com/playsync/playsync/scrub"
	"github.com/samber/mo"
	. "github.com/smartystreets/goconvey/convey"
)

const window = 250 * time.Millisecond

func newEngine(policy check.Policy) (*Engine, *recorder, *clock.Mock) {
	rec := &recorder{}
	mock := clock.NewMock()
	e, err := New(Options{
		Backend:     rec,
		Factory:     rec,
		Clock:       mock,
		ScrubWindow: window,
		FrameRate:   24,
		SampleRate:  48000,
		Policy:      mo.Some(policy),
	})
	if err != nil {
		panic(err)
	}
	return e, rec, mock
}

func newCanvas() *canvas.Memory {
	c := canvas.NewMemory(24, canvas.Range{Start: 0, End: 99})
	c.SetActiveRange(canvas.Range{Start: 10, End: 40})
	c.SetDisplayedFrame(12)
	return c
}

// producerOf reads the registry from the loop.
func producerOf(e *Engine, id canvas.ID) producer.Producer {
	var p producer.Producer
	_ = e.loop.Do(func() error {
		p = e.registry.Get(id).OrEmpty()
		return nil
	})
	return p
}

func TestEngine(t *testing.T) {
	Convey("Given a tolerant engine over a recording backend", t, func() {
		e, rec, mock := newEngine(check.Tolerant)
		Reset(func() { _ = e.Close() })

		Convey("Both consumers should exist without running", func() {
			So(rec.latest("push"), ShouldNotBeNil)
			So(rec.latest("pull"), ShouldNotBeNil)
			So(rec.latest("push").State(), ShouldEqual, consumer.Uninitialized)
			So(rec.latest("pull").State(), ShouldEqual, consumer.Uninitialized)
			So(e.Mode(), ShouldEqual, Push)
		})

		Convey("Preconditions without a canvas should be logged no-ops", func() {
			So(e.Seek(5, SeekPushAudio), ShouldBeNil)
			So(e.SetMute(true), ShouldBeNil)
			So(e.IsMute(), ShouldBeFalse)
			So(rec.Pushed(), ShouldBeEmpty)
		})

		Convey("Speed controls should report they are not implemented", func() {
			So(errors.Is(e.SetPlaybackSpeedPercent(150), check.ErrNotImplemented), ShouldBeTrue)
			So(errors.Is(e.SetPlaybackSpeedNormalized(1.5), check.ErrNotImplemented), ShouldBeTrue)
		})

		Convey("A canvas without an animation should be refused without side effects", func() {
			So(e.SetCanvas(newCanvas().WithoutAnimation()), ShouldBeNil)
			So(e.Stats().Canvas, ShouldBeEmpty)
			So(e.Stats().Transitions, ShouldEqual, 0)
		})

		Convey("When a paused canvas is attached", func() {
			a := newCanvas()
			So(e.SetCanvas(a), ShouldBeNil)

			push, pull := rec.latest("push"), rec.latest("pull")
			p := producerOf(e, a.ID())

			Convey("It should run the push consumer only", func() {
				So(e.Mode(), ShouldEqual, Push)
				So(push.State(), ShouldEqual, consumer.Running)
				So(pull.State(), ShouldNotEqual, consumer.Running)
				So(rec.MaxRunning(), ShouldEqual, 1)
			})

			Convey("Its producer should cover the active range without limiting, at the displayed frame", func() {
				So(p, ShouldNotBeNil)
				So(p.StartFrame(), ShouldEqual, 10)
				So(p.EndFrame(), ShouldEqual, 40)
				So(p.Limited(), ShouldBeFalse)
				So(p.Position(), ShouldEqual, 12)
			})

			Convey("Attaching it again should do nothing", func() {
				before := e.Stats().Transitions
				So(e.SetCanvas(a), ShouldBeNil)
				So(e.Stats().Transitions, ShouldEqual, before)
			})

			Convey("Seeking should move the producer and show the frame", func() {
				So(e.Seek(30, SeekFinalize), ShouldBeNil)
				So(p.Position(), ShouldEqual, 30)
				So(a.Shown(), ShouldResemble, []canvas.Shown{{Frame: 30, Finalize: true}})
				So(rec.Pushed(), ShouldBeEmpty)
			})

			Convey("Rapid audio seeks should collapse into one push of the last frame", func() {
				So(e.Seek(10, SeekPushAudio), ShouldBeNil)
				mock.Add(20 * time.Millisecond)
				So(e.Seek(12, SeekPushAudio), ShouldBeNil)
				mock.Add(20 * time.Millisecond)
				So(e.Seek(15, SeekPushAudio), ShouldBeNil)
				mock.Add(window)

				So(eventually(func() bool { return e.Stats().AudioPushes == 1 }), ShouldBeTrue)
				So(rec.Pushed(), ShouldResemble, []int{15, 16, 17, 18, 19, 20})
				So(p.Position(), ShouldEqual, 15)

				mock.Add(window)
				time.Sleep(20 * time.Millisecond)
				e.Sync()
				So(e.Stats().AudioPushes, ShouldEqual, 1)
				So(e.Stats().Scrub, ShouldResemble, scrub.Stats{Requests: 3, Fired: 1})
			})

			Convey("Muting should silence output and unmuting restore the canvas volume", func() {
				a.SetVolume(0.8)
				e.Sync()
				So(push.Volume(), ShouldEqual, 0.8)

				So(e.SetMute(true), ShouldBeNil)
				So(e.SetMute(true), ShouldBeNil)
				So(e.IsMute(), ShouldBeTrue)
				So(push.Volume(), ShouldEqual, 0)
				So(pull.Volume(), ShouldEqual, 0)
				So(e.Mode(), ShouldEqual, Push)

				So(e.SetMute(false), ShouldBeNil)
				So(push.Volume(), ShouldEqual, 0.8)
				So(pull.Volume(), ShouldEqual, 0.8)
			})

			Convey("Setting the volume while muted should keep output silent", func() {
				So(e.SetMute(true), ShouldBeNil)
				So(e.SetAudioVolume(0.5), ShouldBeNil)
				So(push.Volume(), ShouldEqual, 0)
			})

			Convey("A scrub push still pending when playback starts should not fire", func() {
				So(e.Seek(20, SeekPushAudio), ShouldBeNil)
				a.SetPlaybackState(canvas.Playing)
				e.Sync()

				mock.Add(window)
				time.Sleep(20 * time.Millisecond)
				e.Sync()
				So(rec.Pushed(), ShouldBeEmpty)
				So(e.Stats().AudioPushes, ShouldEqual, 0)
			})

			Convey("When playback starts", func() {
				a.SetPlaybackState(canvas.Playing)
				e.Sync()

				Convey("It should switch to the pull consumer over a limited active range", func() {
					So(e.Mode(), ShouldEqual, Pull)
					So(pull.State(), ShouldEqual, consumer.Running)
					So(push.State(), ShouldEqual, consumer.Stopped)
					So(pull.Connected(), ShouldEqual, p)
					So(p.StartFrame(), ShouldEqual, 10)
					So(p.EndFrame(), ShouldEqual, 40)
					So(p.Limited(), ShouldBeTrue)
					So(rec.MaxRunning(), ShouldEqual, 1)
					So(rec.Violations(), ShouldEqual, 0)
				})

				Convey("Seeking should be ignored", func() {
					before := p.Position()
					So(e.Seek(50, 0), ShouldBeNil)
					So(p.Position(), ShouldEqual, before)
					So(a.Shown(), ShouldBeEmpty)
				})

				Convey("A burst of shown frames should reach the canvas as the latest one", func() {
					gate := make(chan struct{})
					e.post(func() { <-gate })
					pull.emit(20)
					pull.emit(21)
					pull.emit(22)
					close(gate)
					e.Sync()

					So(a.Shown(), ShouldResemble, []canvas.Shown{{Frame: 22}})
					stats := e.Stats()
					So(stats.PullShown, ShouldEqual, 1)
					So(stats.Bridge.Notified, ShouldEqual, 3)
					So(stats.Bridge.Coalesced, ShouldEqual, 2)
				})

				Convey("A range change should update the producer in place", func() {
					a.SetActiveRange(canvas.Range{Start: 20, End: 30})
					e.Sync()
					So(p.StartFrame(), ShouldEqual, 20)
					So(p.EndFrame(), ShouldEqual, 30)
					So(pull.State(), ShouldEqual, consumer.Running)
				})

				Convey("Pausing should return to push mode without limiting", func() {
					a.SetPlaybackState(canvas.Paused)
					e.Sync()
					So(e.Mode(), ShouldEqual, Push)
					So(push.State(), ShouldEqual, consumer.Running)
					So(pull.State(), ShouldEqual, consumer.Stopped)
					So(pull.Connected(), ShouldBeNil)
					So(p.Limited(), ShouldBeFalse)
					So(rec.MaxRunning(), ShouldEqual, 1)
					So(rec.Violations(), ShouldEqual, 0)

					Convey("Frames still in flight should not be shown", func() {
						pull.emit(33)
						e.Sync()
						So(a.Shown(), ShouldBeEmpty)
					})
				})

				Convey("Frames from the released pull consumer should not reach a playing successor", func() {
					b := newCanvas()
					b.SetPlaybackState(canvas.Playing)
					So(e.SetCanvas(b), ShouldBeNil)
					So(e.Mode(), ShouldEqual, Pull)
					So(rec.latest("pull"), ShouldNotEqual, pull)

					pull.emit(37)
					e.Sync()
					So(b.Shown(), ShouldBeEmpty)
					So(a.Shown(), ShouldBeEmpty)
					So(e.Stats().StalePulls, ShouldEqual, 1)

					rec.latest("pull").emit(38)
					e.Sync()
					So(b.Shown(), ShouldResemble, []canvas.Shown{{Frame: 38}})
				})

				Convey("A failed media change should keep playing the previous producer", func() {
					rec.mu.Lock()
					rec.failSetup = errors.New("media unreadable")
					rec.mu.Unlock()

					a.SetMedia(mo.Some(media.NewRef("/clips/broken.wav")))
					e.Sync()

					So(producerOf(e, a.ID()), ShouldEqual, p)
					So(pull.State(), ShouldEqual, consumer.Running)
					So(pull.Connected(), ShouldEqual, p)
					So(e.Stats().Errors, ShouldEqual, 1)
				})
			})

			Convey("A frame rate change should restart into the new rate", func() {
				a.SetFrameRate(30)
				e.Sync()
				So(e.Profile().FrameRate(), ShouldEqual, 30)
				So(push.State(), ShouldEqual, consumer.Running)
				So(rec.Violations(), ShouldEqual, 0)
			})

			Convey("A media change should rebuild the producer", func() {
				a.SetMedia(mo.Some(media.NewRef("/clips/a.wav")))
				e.Sync()

				replaced := producerOf(e, a.ID())
				So(replaced, ShouldNotEqual, p)
				So(replaced.Media().MustGet().Path, ShouldEqual, "/clips/a.wav")
				So(replaced.StartFrame(), ShouldEqual, 10)
				So(replaced.Position(), ShouldEqual, 12)
				So(rec.Violations(), ShouldEqual, 0)
			})

			Convey("When another canvas is attached", func() {
				b := newCanvas()
				So(e.SetCanvas(b), ShouldBeNil)
				pb := producerOf(e, b.ID())

				Convey("It should fully restart the consumers", func() {
					So(rec.latest("push"), ShouldNotEqual, push)
					So(push.closed, ShouldBeTrue)
					So(rec.latest("push").State(), ShouldEqual, consumer.Running)
					So(rec.MaxRunning(), ShouldEqual, 1)
					So(rec.Violations(), ShouldEqual, 0)
				})

				Convey("The first canvas should be released", func() {
					So(producerOf(e, a.ID()), ShouldBeNil)
					So(a.Subscribers(), ShouldEqual, 0)
					So(e.Stats().Producers, ShouldEqual, 1)
				})

				Convey("Events from the first canvas should be ignored", func() {
					a.SetPlaybackState(canvas.Playing)
					e.Sync()
					So(e.Mode(), ShouldEqual, Push)
				})

				Convey("Switching back should never reuse the other canvas's producer", func() {
					So(e.SetCanvas(a), ShouldBeNil)
					pa := producerOf(e, a.ID())
					So(pa, ShouldNotBeNil)
					So(pa, ShouldNotEqual, pb)
					So(pa, ShouldNotEqual, p)
					So(e.Stats().Canvas, ShouldEqual, a.ID())
				})
			})

			Convey("Detaching should leave nothing running", func() {
				So(e.UnsetCanvas(), ShouldBeNil)
				So(rec.latest("push").State(), ShouldNotEqual, consumer.Running)
				So(rec.latest("pull").State(), ShouldNotEqual, consumer.Running)
				So(e.Stats().Producers, ShouldEqual, 0)
				So(e.Stats().Canvas, ShouldBeEmpty)
			})
		})

		Convey("When the producer factory fails", func() {
			boom := errors.New("media unreadable")
			rec.mu.Lock()
			rec.failSetup = boom
			rec.mu.Unlock()

			Convey("Attaching a paused canvas should report it and keep push running", func() {
				err := e.SetCanvas(newCanvas())
				So(errors.Is(err, boom), ShouldBeTrue)
				So(rec.latest("push").State(), ShouldEqual, consumer.Running)
				So(rec.latest("pull").State(), ShouldNotEqual, consumer.Running)
			})

			Convey("Attaching a playing canvas should report it and fall back to push", func() {
				c := newCanvas()
				c.SetPlaybackState(canvas.Playing)

				err := e.SetCanvas(c)
				So(err, ShouldNotBeNil)
				So(errors.Is(err, boom), ShouldBeTrue)
				So(errors.Is(err, check.ErrNoProducer), ShouldBeTrue)
				So(e.Mode(), ShouldEqual, Pull)
				So(rec.latest("push").State(), ShouldEqual, consumer.Running)
				So(rec.latest("pull").State(), ShouldNotEqual, consumer.Running)
				So(e.Stats().Producers, ShouldEqual, 0)
			})
		})

		Convey("Probed media should show up in the stats", func() {
			rec.mu.Lock()
			rec.info = mo.Some(media.Info{FrameRate: 24, Frames: 240, Duration: 10})
			rec.mu.Unlock()

			So(e.Stats().Media, ShouldBeNil)
			So(e.SetCanvas(newCanvas()), ShouldBeNil)

			info := e.Stats().Media
			So(info, ShouldNotBeNil)
			So(info.Frames, ShouldEqual, 240)
			So(info.Overridden, ShouldBeFalse)
		})

		Convey("A consumer start failure should reach the caller", func() {
			rec.mu.Lock()
			rec.failStart = true
			rec.mu.Unlock()

			err := e.SetCanvas(newCanvas())
			So(errors.Is(err, errStart), ShouldBeTrue)
		})

		Convey("After closing", func() {
			So(e.Close(), ShouldBeNil)

			Convey("Operations should report the engine is closed", func() {
				So(errors.Is(e.Seek(1, 0), ErrClosed), ShouldBeTrue)
				So(e.Close(), ShouldEqual, ErrClosed)
			})
		})
	})
}

func TestCheckedEngine(t *testing.T) {
	Convey("Given a checked engine", t, func() {
		e, rec, _ := newEngine(check.Checked)
		Reset(func() { _ = e.Close() })

		Convey("Seeking without a canvas should panic with a violation", func() {
			So(func() { _ = e.Seek(3, 0) }, ShouldPanic)
		})

		Convey("Muting without a canvas should panic", func() {
			So(func() { _ = e.SetMute(true) }, ShouldPanic)
		})

		Convey("Attaching a canvas without an animation should panic", func() {
			So(func() { _ = e.SetCanvas(newCanvas().WithoutAnimation()) }, ShouldPanic)
		})

		Convey("A factory failure while playing should be returned, not raised", func() {
			rec.mu.Lock()
			rec.failSetup = errors.New("media unreadable")
			rec.mu.Unlock()

			c := newCanvas()
			c.SetPlaybackState(canvas.Playing)

			var err error
			So(func() { err = e.SetCanvas(c) }, ShouldNotPanic)
			So(err, ShouldNotBeNil)
			So(rec.latest("push").State(), ShouldEqual, consumer.Running)
		})

		Convey("The engine should keep working after a violation", func() {
			So(func() { _ = e.Seek(3, 0) }, ShouldPanic)
			So(e.SetCanvas(newCanvas()), ShouldBeNil)
			So(e.Seek(3, 0), ShouldBeNil)
		})
	})
}

func TestSeekFlags(t *testing.T) {
	Convey("Seek flags should combine", t, func() {
		flags := SeekPushAudio | SeekFinalize
		So(flags.Has(SeekPushAudio), ShouldBeTrue)
		So(flags.Has(SeekFinalize), ShouldBeTrue)
		So(SeekFlags(0).Has(SeekFinalize), ShouldBeFalse)
		So(Push.String(), ShouldEqual, "push")
		So(Pull.String(), ShouldEqual, "pull")
	})
}
