package producer

import (
	"fmt"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/wav"
	"github.com/playsync/playsync/filesystem"
	"github.com/playsync/playsync/media"
	"github.com/playsync/playsync/profile"
	"github.com/samber/mo"
)

// resampleQuality is the beep resampler quality used when media and profile sample rates differ.
const resampleQuality = 4

// File plays the audio track of a WAV media file, sliced into frames at the profile frame rate.
type File struct {
	ranged
	ref    media.Ref
	info   mo.Option[media.Info]
	buffer *beep.Buffer
}

// NewFile decodes ref through the application filesystem into memory.
func NewFile(ref media.Ref, p *profile.Profile) (*File, error) {
	f, err := filesystem.API().Open(ref.Path)
	if err != nil {
		return nil, fmt.Errorf("open media: %w", err)
	}
	defer f.Close()

	streamer, format, err := wav.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", ref, err)
	}
	defer streamer.Close()

	buffer := beep.NewBuffer(p.Format())
	if format.SampleRate != p.SampleRate() {
		buffer.Append(beep.Resample(resampleQuality, format.SampleRate, p.SampleRate(), streamer))
	} else {
		buffer.Append(streamer)
	}

	if err := streamer.Err(); err != nil {
		return nil, fmt.Errorf("decode %s: %w", ref, err)
	}

	file := &File{ref: ref, buffer: buffer, info: mo.None[media.Info]()}
	file.render = func(index int) beep.Streamer {
		return file.slice(index, p.SamplesPerFrame())
	}
	return file, nil
}

// slice returns exactly spf samples for frame index, padding with silence past the end of the track.
func (f *File) slice(index, spf int) beep.Streamer {
	from := index * spf
	if index < 0 || from >= f.buffer.Len() {
		return beep.Silence(spf)
	}

	to := min(from+spf, f.buffer.Len())
	if to-from == spf {
		return f.buffer.Streamer(from, to)
	}
	return beep.Seq(f.buffer.Streamer(from, to), beep.Silence(spf-(to-from)))
}

func (f *File) Valid() bool { return f.buffer != nil && f.buffer.Len() > 0 }

func (f *File) Media() mo.Option[media.Ref] { return mo.Some(f.ref) }

// Info is the probed frame layout of the media, when a probe sidecar was available.
func (f *File) Info() mo.Option[media.Info] { return f.info }

// Samples is the decoded track length in samples.
func (f *File) Samples() int { return f.buffer.Len() }
