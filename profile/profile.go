// Package profile holds the frame-rate and audio format shared by every producer and consumer of an engine.
package profile

import (
	"math"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep/v2"
)

// Profile is safe for concurrent use: the pull consumer goroutine reads it while the engine loop may change it
// (the engine only changes it inside a transition, while every consumer is stopped).
type Profile struct {
	fps        atomic.Int64
	sampleRate beep.SampleRate
}

// New creates a profile. Non-positive rates fall back to 1 fps.
func New(fps int, sampleRate beep.SampleRate) *Profile {
	p := &Profile{sampleRate: sampleRate}
	p.SetFrameRate(fps)
	return p
}

// FrameRate returns the current frame rate in frames per second.
func (p *Profile) FrameRate() int {
	return int(p.fps.Load())
}

// SetFrameRate changes the frame rate observed by all producers and consumers.
func (p *Profile) SetFrameRate(fps int) {
	if fps <= 0 {
		fps = 1
	}
	p.fps.Store(int64(fps))
}

// SampleRate is the audio sample rate frames are rendered at.
func (p *Profile) SampleRate() beep.SampleRate {
	return p.sampleRate
}

// Format is the beep format of frame audio.
func (p *Profile) Format() beep.Format {
	return beep.Format{SampleRate: p.sampleRate, NumChannels: 2, Precision: 2}
}

// FrameDuration is the wall-clock length of a single frame.
func (p *Profile) FrameDuration() time.Duration {
	return time.Second / time.Duration(p.FrameRate())
}

// SamplesPerFrame is the number of audio samples covering one frame.
func (p *Profile) SamplesPerFrame() int {
	return int(math.Round(float64(p.sampleRate) / float64(p.FrameRate())))
}

// Frames converts a duration to a whole number of frames at the current rate.
func (p *Profile) Frames(d time.Duration) int {
	return int(float64(p.FrameRate()) * d.Seconds())
}
