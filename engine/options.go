package engine

import (
	"time"

	"github.com/benbjohnson/clock"
	"github.com/gopxl/beep/v2"
	"github.com/playsync/playsync/check"
	"github.com/playsync/playsync/constant"
	"github.com/playsync/playsync/consumer"
	"github.com/playsync/playsync/key"
	"github.com/playsync/playsync/media"
	"github.com/playsync/playsync/producer"
	"github.com/playsync/playsync/where"
	"github.com/samber/mo"
	"github.com/spf13/viper"
)

// Options configures an engine. Zero fields take their defaults.
type Options struct {
	Backend consumer.Backend
	Factory producer.Factory
	Clock   clock.Clock

	// ScrubWindow is how long scrub seeks are coalesced and how much audio one scrub push feeds.
	ScrubWindow time.Duration
	FrameRate   int
	SampleRate  beep.SampleRate

	// Policy overrides the build's precondition policy.
	Policy mo.Option[check.Policy]
}

// FromConfig builds options from the current configuration, writing audio into sink.
func FromConfig(sink consumer.Sink) Options {
	opts := Options{
		Backend: consumer.NewMixer(sink, nil),
		Factory: &producer.DefaultFactory{
			Prober: &media.Prober{
				Tolerance: viper.GetFloat64(key.MediaFpsTolerance),
				Cache: media.NewCache(
					where.ProbeCache(),
					time.Duration(viper.GetInt(key.MediaProbeCacheHours))*time.Hour,
				),
			},
		},
		ScrubWindow: time.Duration(viper.GetInt(key.EngineScrubWindowMs)) * time.Millisecond,
		FrameRate:   viper.GetInt(key.EngineFrameRate),
		SampleRate:  beep.SampleRate(viper.GetInt(key.AudioSampleRate)),
	}

	if viper.GetBool(key.EngineChecked) {
		opts.Policy = mo.Some(check.Checked)
	}

	return opts
}

func (o Options) withDefaults() Options {
	if o.Clock == nil {
		o.Clock = clock.New()
	}
	if o.Backend == nil {
		o.Backend = consumer.NewMixer(consumer.Discard{}, o.Clock)
	}
	if o.Factory == nil {
		o.Factory = &producer.DefaultFactory{}
	}
	if o.ScrubWindow <= 0 {
		o.ScrubWindow = time.Duration(constant.ScrubAudioSeconds * float64(time.Second))
	}
	if o.FrameRate <= 0 {
		o.FrameRate = constant.DefaultFrameRate
	}
	if o.SampleRate <= 0 {
		o.SampleRate = constant.DefaultSampleRate
	}
	return o
}
