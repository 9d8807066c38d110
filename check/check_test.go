package check

import (
	"errors"
	"fmt"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestPolicy(t *testing.T) {
	Convey("Given a wrapped precondition violation", t, func() {
		err := fmt.Errorf("seek: %w", ErrNoActiveCanvas)

		Convey("It is recognised as a precondition", func() {
			So(IsPrecondition(err), ShouldBeTrue)
			So(IsPrecondition(ErrNotImplemented), ShouldBeFalse)
		})

		Convey("Tolerant swallows it", func() {
			So(Tolerant.Handle("seek", err), ShouldBeNil)
		})

		Convey("Checked panics with a Violation", func() {
			var recovered any
			func() {
				defer func() { recovered = recover() }()
				_ = Checked.Handle("seek", err)
			}()

			v, ok := recovered.(*Violation)
			So(ok, ShouldBeTrue)
			So(v.Op, ShouldEqual, "seek")
			So(errors.Is(v, ErrNoActiveCanvas), ShouldBeTrue)
		})
	})

	Convey("Other errors pass through either policy", t, func() {
		boom := errors.New("boom")
		So(Tolerant.Handle("start", boom), ShouldEqual, boom)
		So(Checked.Handle("start", boom), ShouldEqual, boom)
		So(Checked.Handle("start", nil), ShouldBeNil)
	})

	Convey("Given a violation joined with a real failure", t, func() {
		boom := errors.New("factory failed")
		err := errors.Join(fmt.Errorf("setup: %w", boom), ErrNoProducer)

		Convey("It still matches the precondition", func() {
			So(IsPrecondition(err), ShouldBeTrue)
		})

		Convey("Neither policy hides it", func() {
			So(Tolerant.Handle("set canvas", err), ShouldEqual, err)
			So(func() { _ = Checked.Handle("set canvas", err) }, ShouldNotPanic)
			So(errors.Is(Checked.Handle("set canvas", err), boom), ShouldBeTrue)
		})
	})

	Convey("Joined violations alone are still swallowed", t, func() {
		err := errors.Join(ErrNoActiveCanvas, fmt.Errorf("mute: %w", ErrNoProducer))
		So(Tolerant.Handle("mute", err), ShouldBeNil)
		So(func() { _ = Checked.Handle("mute", err) }, ShouldPanic)
	})

	Convey("Policies have readable names", t, func() {
		So(Checked.String(), ShouldEqual, "checked")
		So(Tolerant.String(), ShouldEqual, "tolerant")
		So(Build(), ShouldEqual, Tolerant)
	})
}
