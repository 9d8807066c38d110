package loop

import (
	"errors"
	"sync"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLoop(t *testing.T) {
	Convey("Given a running loop", t, func() {
		l := New()
		Reset(l.Stop)

		Convey("Do should run synchronously and return the job's error", func() {
			ran := false
			So(l.Do(func() error { ran = true; return nil }), ShouldBeNil)
			So(ran, ShouldBeTrue)

			boom := errors.New("boom")
			So(l.Do(func() error { return boom }), ShouldEqual, boom)
		})

		Convey("Jobs should run in submission order", func() {
			var got []int
			for i := range 5 {
				So(l.Post(func() { got = append(got, i) }), ShouldBeTrue)
			}
			So(l.Do(func() error { got = append(got, 5); return nil }), ShouldBeNil)
			So(got, ShouldResemble, []int{0, 1, 2, 3, 4, 5})
		})

		Convey("Jobs should never run concurrently", func() {
			var (
				wg      sync.WaitGroup
				active  int
				overlap bool
			)
			for range 50 {
				wg.Add(1)
				go func() {
					defer wg.Done()
					_ = l.Do(func() error {
						active++
						if active > 1 {
							overlap = true
						}
						active--
						return nil
					})
				}()
			}
			wg.Wait()
			So(overlap, ShouldBeFalse)
		})

		Convey("A panic in Do should surface on the caller", func() {
			So(func() { _ = l.Do(func() error { panic("bad") }) }, ShouldPanicWith, "bad")
			So(l.Do(func() error { return nil }), ShouldBeNil)
		})

		Convey("A panicking posted job should not kill the loop", func() {
			l.Post(func() { panic("bad") })
			So(l.Do(func() error { return nil }), ShouldBeNil)
		})

		Convey("Stop should drain queued jobs first", func() {
			count := 0
			for range 10 {
				l.Post(func() { count++ })
			}
			l.Stop()
			So(count, ShouldEqual, 10)

			Convey("And refuse work afterwards", func() {
				So(l.Post(func() {}), ShouldBeFalse)
				So(l.Do(func() error { return nil }), ShouldEqual, ErrStopped)
			})
		})
	})
}
