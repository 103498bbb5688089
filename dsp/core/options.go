package core

import (
	"math"
	"time"
)

const (
	// DefaultSampleRate is the boundary sample rate of the voice bridge.
	DefaultSampleRate = 44100.0

	// DefaultBlockSize is the fixed chunk length in samples.
	DefaultBlockSize = 1024
)

// ProcessorConfig defines common DSP processing settings shared by every
// component of one pipeline.
type ProcessorConfig struct {
	SampleRate float64
	BlockSize  int
}

// ProcessorOption mutates a ProcessorConfig.
type ProcessorOption func(*ProcessorConfig)

// DefaultProcessorConfig returns the 44.1 kHz / 1024-sample voice defaults.
func DefaultProcessorConfig() ProcessorConfig {
	return ProcessorConfig{
		SampleRate: DefaultSampleRate,
		BlockSize:  DefaultBlockSize,
	}
}

// WithSampleRate sets the processing sample rate.
func WithSampleRate(sampleRate float64) ProcessorOption {
	return func(cfg *ProcessorConfig) {
		if sampleRate > 0 {
			cfg.SampleRate = sampleRate
		}
	}
}

// WithBlockSize sets the processing block size.
func WithBlockSize(blockSize int) ProcessorOption {
	return func(cfg *ProcessorConfig) {
		if blockSize > 0 {
			cfg.BlockSize = blockSize
		}
	}
}

// ApplyProcessorOptions applies zero or more options to the default config.
func ApplyProcessorOptions(opts ...ProcessorOption) ProcessorConfig {
	cfg := DefaultProcessorConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// Validate reports a ConfigError for a non-positive or non-finite sample
// rate or a non-positive block size.
func (c ProcessorConfig) Validate(component string) error {
	if err := ValidateSampleRate(component, c.SampleRate); err != nil {
		return err
	}
	if c.BlockSize <= 0 {
		return NewConfigError(component, "block size", c.BlockSize, "must be > 0")
	}
	return nil
}

// Cadence returns the playback duration of one block, which is the
// deadline for processing it.
func (c ProcessorConfig) Cadence() time.Duration {
	if c.SampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(c.BlockSize) * float64(time.Second) / c.SampleRate)
}

// ValidateSampleRate checks that sampleRate is positive and finite.
func ValidateSampleRate(component string, sampleRate float64) error {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return NewConfigError(component, "sample rate", sampleRate, "must be positive and finite")
	}
	return nil
}

// ValidateDuration checks that ms is finite and not negative.
func ValidateDuration(component, field string, ms float64) error {
	if ms < 0 || math.IsNaN(ms) || math.IsInf(ms, 0) {
		return NewConfigError(component, field, ms, "must be finite and >= 0 ms")
	}
	return nil
}

// MsToSamples converts a duration in milliseconds to a whole number of
// samples, truncating toward zero.
func MsToSamples(ms, sampleRate float64) int {
	return int(ms * sampleRate / 1000)
}

// SmoothingCoeff returns the one-pole smoothing factor exp(-1/(ms*fs/1000)).
// A zero duration yields 0 (no smoothing).
func SmoothingCoeff(ms, sampleRate float64) float64 {
	n := ms * sampleRate / 1000
	if n <= 0 {
		return 0
	}
	return math.Exp(-1 / n)
}
