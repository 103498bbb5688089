package echo

import (
	"math"

	vecmath "github.com/cwbudde/algo-vecmath"
	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-voice/dsp/core"
	"github.com/cwbudde/algo-voice/dsp/delay"
)

const (
	component = "echo canceller"

	defaultDelayMs        = 50.0
	defaultFilterLength   = 512
	defaultStepSize       = 0.01
	defaultDamping        = 0.8
	defaultReferencePower = 0.01

	// MaxFilterLength bounds the number of adaptive taps.
	MaxFilterLength = 16384

	// MaxDelayMs bounds the reference history headroom.
	MaxDelayMs = 2000.0

	// lmsLoopGainLimit is the step-size bound mu*L*P < 2 for LMS mean
	// convergence.
	lmsLoopGainLimit = 2.0
)

// Config holds the canceller geometry and adaptation constants.
//
// DelayMs sizes the reference history beyond the tap span. The taps cover
// the FilterLength most recent reference samples unless BulkDelayMs shifts
// the window back, which is bounded by DelayMs.
type Config struct {
	DelayMs        float64
	BulkDelayMs    float64
	FilterLength   int
	StepSize       float64
	Damping        float64
	ReferencePower float64
}

// DefaultConfig returns 50 ms delay, 512 taps, step 0.01, damping 0.8 and
// an expected reference power of 0.01 (about -20 dBFS).
func DefaultConfig() Config {
	return Config{
		DelayMs:        defaultDelayMs,
		FilterLength:   defaultFilterLength,
		StepSize:       defaultStepSize,
		Damping:        defaultDamping,
		ReferencePower: defaultReferencePower,
	}
}

// Option mutates a Config.
type Option func(*Config)

// WithDelay sets the assumed acoustic round trip in milliseconds.
func WithDelay(ms float64) Option {
	return func(c *Config) { c.DelayMs = ms }
}

// WithBulkDelay skips the newest ms of reference before the tap window,
// for echo paths with a known fixed latency. Zero by default.
func WithBulkDelay(ms float64) Option {
	return func(c *Config) { c.BulkDelayMs = ms }
}

// WithFilterLength sets the number of adaptive taps.
func WithFilterLength(taps int) Option {
	return func(c *Config) { c.FilterLength = taps }
}

// WithStepSize sets the LMS step size mu.
func WithStepSize(mu float64) Option {
	return func(c *Config) { c.StepSize = mu }
}

// WithDamping sets the fraction of the echo estimate that is subtracted.
func WithDamping(d float64) Option {
	return func(c *Config) { c.Damping = d }
}

// WithReferencePower sets the expected mean power of the reference signal
// used by the stability check.
func WithReferencePower(p float64) Option {
	return func(c *Config) { c.ReferencePower = p }
}

// Validate reports the first invalid field as a *core.ConfigError.
func (c Config) Validate() error {
	if err := core.ValidateDuration(component, "delay", c.DelayMs); err != nil {
		return err
	}
	if c.DelayMs > MaxDelayMs {
		return core.NewConfigError(component, "delay", c.DelayMs, "must be <= 2000 ms")
	}
	if err := core.ValidateDuration(component, "bulk delay", c.BulkDelayMs); err != nil {
		return err
	}
	if c.BulkDelayMs > c.DelayMs {
		return core.NewConfigError(component, "bulk delay", c.BulkDelayMs, "must not exceed the delay")
	}
	if c.FilterLength < 1 || c.FilterLength > MaxFilterLength {
		return core.NewConfigError(component, "filter length", c.FilterLength, "must be in [1, 16384]")
	}
	if !(c.StepSize > 0 && c.StepSize <= 1) {
		return core.NewConfigError(component, "step size", c.StepSize, "must be in (0, 1]")
	}
	if !(c.Damping >= 0 && c.Damping <= 1) {
		return core.NewConfigError(component, "damping", c.Damping, "must be in [0, 1]")
	}
	if !(c.ReferencePower > 0) || math.IsInf(c.ReferencePower, 0) {
		return core.NewConfigError(component, "reference power", c.ReferencePower, "must be finite and > 0")
	}
	if loop := c.StepSize * float64(c.FilterLength) * c.ReferencePower; loop >= lmsLoopGainLimit {
		return core.NewConfigError(component, "step size", c.StepSize,
			"makes step*taps*reference power >= 2, adaptation would diverge")
	}
	return nil
}

// Canceller is an LMS adaptive echo canceller.
//
// Canceller is not safe for concurrent use; each signal direction owns its
// own instance.
type Canceller struct {
	cfg        Config
	delay      int
	offset     int
	history    *delay.Line
	weights    []float64
	update     []float64
	pushed     int
	resetCount int
}

// New creates a Canceller for sampleRate.
func New(sampleRate float64, opts ...Option) (*Canceller, error) {
	cfg := DefaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	err := core.ValidateSampleRate(component, sampleRate)
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "echo.New",
			"error":    err.Error(),
		}).Error("Echo canceller configuration rejected")
		return nil, err
	}

	delaySamples := core.MsToSamples(cfg.DelayMs, sampleRate)
	history, err := delay.New(delaySamples + cfg.FilterLength)
	if err != nil {
		return nil, err
	}

	c := &Canceller{
		cfg:     cfg,
		delay:   delaySamples,
		offset:  core.MsToSamples(cfg.BulkDelayMs, sampleRate),
		history: history,
		weights: make([]float64, cfg.FilterLength),
		update:  make([]float64, cfg.FilterLength),
	}

	logrus.WithFields(logrus.Fields{
		"function":      "echo.New",
		"delay_samples": delaySamples,
		"bulk_samples":  c.offset,
		"filter_length": cfg.FilterLength,
		"step_size":     cfg.StepSize,
		"damping":       cfg.Damping,
		"history":       history.Len(),
	}).Info("Echo canceller created")

	return c, nil
}

// Process removes the echo of outgoing from incoming. The result is written
// into incoming and returned.
//
// Every outgoing sample is appended to the reference history. Until
// FilterLength reference samples have been pushed in total, counting this
// chunk, incoming is returned unmodified.
func (c *Canceller) Process(incoming, outgoing []float64) ([]float64, error) {
	if err := core.CheckLength(component, "outgoing reference", len(outgoing), len(incoming)); err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "Canceller.Process",
			"error":    err.Error(),
		}).Warn("Reference chunk rejected")
		return incoming, err
	}

	taps := c.cfg.FilterLength
	if c.pushed+len(outgoing) < taps {
		c.history.WriteBlock(outgoing)
		c.pushed += len(outgoing)
		return incoming, nil
	}

	mu := c.cfg.StepSize
	damping := c.cfg.Damping

	for i := range incoming {
		c.history.Write(outgoing[i])
		if c.pushed < taps {
			c.pushed++
		}

		// Samples older than the first write read as zero.
		x, err := c.history.Window(taps, c.offset)
		if err != nil {
			return incoming, err
		}

		estimate := vecmath.DotProduct(c.weights, x)
		if !core.IsFinite(estimate) {
			c.resetWeights()
			estimate = 0
		}

		e := incoming[i] - estimate

		// w += mu*e*x
		vecmath.ScaleBlock(c.update, x, mu*e)
		vecmath.AddBlockInPlace(c.weights, c.update)

		incoming[i] -= damping * estimate
	}

	if !weightsFinite(c.weights) {
		c.resetWeights()
	}

	return incoming, nil
}

func (c *Canceller) resetWeights() {
	core.Zero(c.weights)
	c.resetCount++

	if logrus.IsLevelEnabled(logrus.DebugLevel) {
		logrus.WithFields(logrus.Fields{
			"function": "Canceller.Process",
			"resets":   c.resetCount,
		}).Debug("Non-finite adaptive state, weights reset")
	}
}

func weightsFinite(w []float64) bool {
	return core.IsFinite(vecmath.Sum(w))
}

// Weights returns a copy of the adaptive taps; index FilterLength-1 is the
// tap for the most recent windowed sample, the newest reference sample
// unless a bulk delay is set.
func (c *Canceller) Weights() []float64 {
	return append([]float64(nil), c.weights...)
}

// DelaySamples returns the history headroom in samples.
func (c *Canceller) DelaySamples() int { return c.delay }

// BulkDelaySamples returns how many of the newest reference samples the tap
// window skips.
func (c *Canceller) BulkDelaySamples() int { return c.offset }

// Ready reports whether enough reference has been pushed to adapt.
func (c *Canceller) Ready() bool { return c.pushed >= c.cfg.FilterLength }

// Resets returns how many times non-finite state forced a weight reset.
func (c *Canceller) Resets() int { return c.resetCount }

// Config returns the canceller parameters.
func (c *Canceller) Config() Config { return c.cfg }

// Reset clears the reference history and the weights.
func (c *Canceller) Reset() {
	c.history.Reset()
	core.Zero(c.weights)
	c.pushed = 0
	c.resetCount = 0
}
