package voiceband

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-voice/dsp/core"
	"github.com/cwbudde/algo-voice/dsp/filter/biquad"
	"github.com/cwbudde/algo-voice/dsp/filter/design"
)

const component = "voiceband"

// Mode selects the filter response.
type Mode int

const (
	// ModeLowpass is a Butterworth low-pass (8 kHz by default).
	ModeLowpass Mode = iota
	// ModeTelephone is a Butterworth band-pass (300-3400 Hz by default).
	ModeTelephone
)

// String implements fmt.Stringer.
func (m Mode) String() string {
	switch m {
	case ModeLowpass:
		return "lowpass"
	case ModeTelephone:
		return "telephone"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode maps "lowpass" or "telephone" to a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "lowpass":
		return ModeLowpass, nil
	case "telephone":
		return ModeTelephone, nil
	default:
		return 0, core.NewConfigError(component, "mode", s, "must be lowpass or telephone")
	}
}

const (
	defaultLowpassCutoff = 8000.0
	defaultBandLow       = 300.0
	defaultBandHigh      = 3400.0
	defaultOrder         = 4
)

// Config holds the filter design parameters.
type Config struct {
	Mode          Mode
	LowpassCutoff float64
	BandLow       float64
	BandHigh      float64
	Order         int
}

// DefaultConfig returns a 4th-order 8 kHz low-pass configuration.
func DefaultConfig() Config {
	return Config{
		Mode:          ModeLowpass,
		LowpassCutoff: defaultLowpassCutoff,
		BandLow:       defaultBandLow,
		BandHigh:      defaultBandHigh,
		Order:         defaultOrder,
	}
}

// Option mutates a Config.
type Option func(*Config)

// WithMode selects the filter response.
func WithMode(m Mode) Option {
	return func(c *Config) { c.Mode = m }
}

// WithLowpassCutoff sets the -3 dB point of [ModeLowpass] in Hz.
func WithLowpassCutoff(hz float64) Option {
	return func(c *Config) { c.LowpassCutoff = hz }
}

// WithBand sets the -3 dB edges of [ModeTelephone] in Hz.
func WithBand(low, high float64) Option {
	return func(c *Config) {
		c.BandLow = low
		c.BandHigh = high
	}
}

// WithOrder sets the Butterworth prototype order.
func WithOrder(order int) Option {
	return func(c *Config) { c.Order = order }
}

// Validate reports whether the configuration can be designed at
// sampleRate.
func (c Config) Validate(sampleRate float64) error {
	_, err := c.design(sampleRate)
	return err
}

func (c Config) design(sampleRate float64) ([]biquad.Coefficients, error) {
	switch c.Mode {
	case ModeLowpass:
		return design.ButterworthLowpass(c.LowpassCutoff, c.Order, sampleRate)
	case ModeTelephone:
		return design.ButterworthBandpass(c.BandLow, c.BandHigh, c.Order, sampleRate)
	default:
		return nil, core.NewConfigError(component, "mode", c.Mode, "unknown filter mode")
	}
}

// Filter is a Butterworth cascade with persistent state.
//
// It is not safe for concurrent use; each signal direction owns its own
// Filter.
type Filter struct {
	cfg        Config
	sampleRate float64
	chain      *biquad.Chain
}

// New designs the cascade selected by opts at sampleRate.
func New(sampleRate float64, opts ...Option) (*Filter, error) {
	cfg := DefaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	sections, err := cfg.design(sampleRate)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function":    "voiceband.New",
			"mode":        cfg.Mode.String(),
			"sample_rate": sampleRate,
			"error":       err.Error(),
		}).Error("Filter design rejected")
		return nil, err
	}

	f := &Filter{
		cfg:        cfg,
		sampleRate: sampleRate,
		chain:      biquad.NewChain(sections),
	}

	logrus.WithFields(logrus.Fields{
		"function":    "voiceband.New",
		"mode":        cfg.Mode.String(),
		"order":       cfg.Order,
		"sections":    f.chain.NumSections(),
		"sample_rate": sampleRate,
	}).Info("Voice filter designed")

	return f, nil
}

// Lowpass returns a [ModeLowpass] filter with default cutoff and order.
func Lowpass(sampleRate float64) (*Filter, error) {
	return New(sampleRate, WithMode(ModeLowpass))
}

// BandpassTelephone returns a [ModeTelephone] filter with the default
// 300-3400 Hz band.
func BandpassTelephone(sampleRate float64) (*Filter, error) {
	return New(sampleRate, WithMode(ModeTelephone))
}

// Process filters buf in place.
func (f *Filter) Process(buf []float64) {
	f.chain.ProcessBlock(buf)
}

// Reset clears the delay lines. Coefficients are kept.
func (f *Filter) Reset() {
	f.chain.Reset()
}

// Mode returns the configured response.
func (f *Filter) Mode() Mode { return f.cfg.Mode }

// Config returns the design parameters.
func (f *Filter) Config() Config { return f.cfg }

// MagnitudeDB returns the designed response at freq in dB.
func (f *Filter) MagnitudeDB(freq float64) float64 {
	return f.chain.MagnitudeDB(freq, f.sampleRate)
}

// StateIsFinite reports whether every delay line holds finite values.
func (f *Filter) StateIsFinite() bool {
	return f.chain.StateIsFinite()
}
