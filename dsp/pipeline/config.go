package pipeline

import (
	"time"

	"github.com/cwbudde/algo-voice/dsp/core"
	"github.com/cwbudde/algo-voice/dsp/echo"
	"github.com/cwbudde/algo-voice/dsp/effects/dynamics"
	"github.com/cwbudde/algo-voice/dsp/filter/voiceband"
	"github.com/cwbudde/algo-voice/measure/level"
)

const component = "pipeline"

// Config describes a whole processing chain.
//
// TelephoneMode selects the filter design; Filter.Mode is overwritten by it.
// With EchoCancellation disabled no canceller is built and the outgoing
// reference passed to ProcessIncoming is ignored.
type Config struct {
	SampleRate       float64
	ChunkSize        int
	TelephoneMode    bool
	EchoCancellation bool

	Gate   dynamics.NoiseGateConfig
	AGC    dynamics.AGCConfig
	Echo   echo.Config
	Filter voiceband.Config
	Meter  level.Config
}

// DefaultConfig returns 44.1 kHz, 1024-sample chunks, low-pass mode with
// echo cancellation enabled and every component at its defaults.
func DefaultConfig() Config {
	return Config{
		SampleRate:       core.DefaultSampleRate,
		ChunkSize:        core.DefaultBlockSize,
		EchoCancellation: true,
		Gate:             dynamics.DefaultNoiseGateConfig(),
		AGC:              dynamics.DefaultAGCConfig(),
		Echo:             echo.DefaultConfig(),
		Filter:           voiceband.DefaultConfig(),
		Meter:            level.DefaultConfig(),
	}
}

// Validate checks every component against the shared sample rate and
// returns the first *core.ConfigError found.
func (c Config) Validate() error {
	if err := c.processor().Validate(component); err != nil {
		return err
	}
	if err := c.Gate.Validate(); err != nil {
		return err
	}
	if err := c.AGC.Validate(); err != nil {
		return err
	}
	if c.EchoCancellation {
		if err := c.Echo.Validate(); err != nil {
			return err
		}
	}
	if err := c.filter().Validate(c.SampleRate); err != nil {
		return err
	}
	return c.Meter.Validate(c.SampleRate)
}

// Cadence is the real-time duration of one chunk, the processing deadline.
func (c Config) Cadence() time.Duration {
	return c.processor().Cadence()
}

func (c Config) processor() core.ProcessorConfig {
	return core.ProcessorConfig{SampleRate: c.SampleRate, BlockSize: c.ChunkSize}
}

func (c Config) filter() voiceband.Config {
	f := c.Filter
	f.Mode = voiceband.ModeLowpass
	if c.TelephoneMode {
		f.Mode = voiceband.ModeTelephone
	}
	return f
}
