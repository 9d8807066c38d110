package producer

import (
	"errors"
	"testing"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/wav"
	"github.com/playsync/playsync/canvas"
	"github.com/playsync/playsync/check"
	"github.com/playsync/playsync/filesystem"
	"github.com/playsync/playsync/media"
	"github.com/playsync/playsync/profile"
	"github.com/samber/mo"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	filesystem.SetMemMapFs()
}

// drain reads s to the end.
func drain(s beep.Streamer) [][2]float64 {
	var out [][2]float64
	buf := make([][2]float64, 512)
	for {
		n, ok := s.Stream(buf)
		out = append(out, buf[:n]...)
		if !ok || n == 0 {
			return out
		}
	}
}

// constant is an endless streamer of a fixed sample value.
func constant(v float64) beep.Streamer {
	return beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		for i := range samples {
			samples[i] = [2]float64{v, v}
		}
		return len(samples), true
	})
}

func writeWav(path string, format beep.Format, samples int, v float64) {
	f, err := filesystem.API().Create(path)
	So(err, ShouldBeNil)
	So(wav.Encode(f, beep.Take(samples, constant(v)), format), ShouldBeNil)
}

func TestCounter(t *testing.T) {
	Convey("Given a counter producer at 25 fps", t, func() {
		p := profile.New(25, 1000)
		c := NewCounter(p)

		So(c.Valid(), ShouldBeTrue)
		So(c.Media().IsAbsent(), ShouldBeTrue)
		So(c.Position(), ShouldEqual, 0)

		Convey("Frame retrieves silence and advances past the frame", func() {
			f := c.Frame(10)
			So(f.Index, ShouldEqual, 10)
			So(c.Position(), ShouldEqual, 11)

			samples := drain(f.Audio)
			So(samples, ShouldHaveLength, 40)
			So(samples[0], ShouldResemble, [2]float64{0, 0})
		})

		Convey("Next without a limit walks freely", func() {
			c.SetEndFrame(2)
			c.Seek(2)
			So(c.Next().Index, ShouldEqual, 2)
			So(c.Next().Index, ShouldEqual, 3)
		})

		Convey("Next with a limit wraps inside the range", func() {
			c.SetStartFrame(5)
			c.SetEndFrame(6)
			c.SetLimited(true)
			c.Seek(6)

			So(c.Next().Index, ShouldEqual, 6)
			So(c.Next().Index, ShouldEqual, 5)
			So(c.Next().Index, ShouldEqual, 6)

			Convey("A position before the range restarts at its start", func() {
				c.Seek(0)
				So(c.Next().Index, ShouldEqual, 5)
			})
		})
	})
}

func TestFile(t *testing.T) {
	Convey("Given a one second WAV file at the profile sample rate", t, func() {
		p := profile.New(10, 8000)
		writeWav("/media/tone.wav", p.Format(), 8000, 0.5)

		f, err := NewFile(media.NewRef("/media/tone.wav"), p)
		So(err, ShouldBeNil)
		So(f.Valid(), ShouldBeTrue)
		So(f.Samples(), ShouldEqual, 8000)
		So(f.Media().MustGet().Path, ShouldEqual, "/media/tone.wav")

		Convey("Each frame carries one frame of audio", func() {
			samples := drain(f.Frame(3).Audio)
			So(samples, ShouldHaveLength, 800)
			So(samples[0][0], ShouldAlmostEqual, 0.5, 0.001)
			So(f.Position(), ShouldEqual, 4)
		})

		Convey("Frames past the end are silent but full length", func() {
			samples := drain(f.Frame(12).Audio)
			So(samples, ShouldHaveLength, 800)
			So(samples[799][1], ShouldEqual, 0)
		})
	})

	Convey("Given a WAV file at another sample rate", t, func() {
		p := profile.New(10, 8000)
		writeWav("/media/half.wav", beep.Format{SampleRate: 4000, NumChannels: 2, Precision: 2}, 4000, 0.25)

		f, err := NewFile(media.NewRef("/media/half.wav"), p)
		So(err, ShouldBeNil)

		Convey("It is resampled to the profile rate", func() {
			So(f.Samples(), ShouldAlmostEqual, 8000, 16)
		})
	})

	Convey("Given a missing file", t, func() {
		_, err := NewFile(media.NewRef("/media/none.wav"), profile.New(10, 8000))
		So(err, ShouldNotBeNil)
	})

	Convey("Given a file that is not a WAV", t, func() {
		So(filesystem.API().WriteFile("/media/junk.wav", []byte("not audio"), 0o644), ShouldBeNil)
		_, err := NewFile(media.NewRef("/media/junk.wav"), profile.New(10, 8000))
		So(err, ShouldNotBeNil)
	})
}

type stubFactory struct {
	built int
	err   error
}

func (s *stubFactory) New(_ mo.Option[media.Ref], p *profile.Profile) (Producer, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.built++
	return NewCounter(p), nil
}

func TestRegistry(t *testing.T) {
	Convey("Given a registry and a canvas", t, func() {
		factory := &stubFactory{}
		registry := NewRegistry(factory, profile.New(24, 48000))
		c := canvas.NewMemory(24, canvas.Range{Start: 0, End: 47})
		c.SetActiveRange(canvas.Range{Start: 10, End: 20})

		Convey("Setup applies the document range without limiting", func() {
			p, err := registry.Setup(c)
			So(err, ShouldBeNil)
			So(p.StartFrame(), ShouldEqual, 0)
			So(p.EndFrame(), ShouldEqual, 47)
			So(p.Limited(), ShouldBeFalse)
			So(registry.Get(c.ID()).MustGet(), ShouldEqual, p)

			Convey("A second Setup replaces the entry", func() {
				again, err := registry.Setup(c)
				So(err, ShouldBeNil)
				So(again, ShouldNotEqual, p)
				So(registry.Len(), ShouldEqual, 1)
				So(registry.Get(c.ID()).MustGet(), ShouldEqual, again)
			})

			Convey("Remove forgets it", func() {
				registry.Remove(c.ID())
				So(registry.Get(c.ID()).IsAbsent(), ShouldBeTrue)
				So(registry.Len(), ShouldEqual, 0)
			})
		})

		Convey("Setup without an animation interface is a precondition violation", func() {
			_, err := registry.Setup(c.WithoutAnimation())
			So(errors.Is(err, check.ErrNoAnimation), ShouldBeTrue)
			So(factory.built, ShouldEqual, 0)
			So(registry.Len(), ShouldEqual, 0)
		})

		Convey("Factory errors leave the registry untouched", func() {
			factory.err = errors.New("boom")
			_, err := registry.Setup(c)
			So(err, ShouldNotBeNil)
			So(registry.Len(), ShouldEqual, 0)
		})
	})
}

func TestDefaultFactory(t *testing.T) {
	Convey("Given the default factory", t, func() {
		p := profile.New(10, 8000)
		writeWav("/media/probed.wav", p.Format(), 800, 0.1)
		sidecar := `{"streams":[{"codec_type":"video","r_frame_rate":"10/1","nb_frames":"10","duration":"1"}]}`
		So(filesystem.API().WriteFile("/media/probed.wav.json", []byte(sidecar), 0o644), ShouldBeNil)

		factory := &DefaultFactory{Prober: &media.Prober{Tolerance: 1}}

		Convey("No media builds a counter", func() {
			prod, err := factory.New(mo.None[media.Ref](), p)
			So(err, ShouldBeNil)
			_, ok := prod.(*Counter)
			So(ok, ShouldBeTrue)
		})

		Convey("Media builds a probed file producer", func() {
			prod, err := factory.New(mo.Some(media.NewRef("/media/probed.wav")), p)
			So(err, ShouldBeNil)
			file, ok := prod.(*File)
			So(ok, ShouldBeTrue)
			So(file.Info().MustGet().Frames, ShouldEqual, 10)
		})
	})
}
