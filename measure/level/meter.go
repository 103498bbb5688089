package level

import (
	"math"

	vecmath "github.com/cwbudde/algo-vecmath"
	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-voice/dsp/core"
)

const (
	component = "level meter"

	// FloorDB is the lowest reading and the value returned before the
	// window has filled.
	FloorDB = -60.0
	// CeilingDB is the highest reading.
	CeilingDB = 0.0

	defaultWindowMs = 100.0
	rmsEpsilon      = 1e-10
)

// Config holds the meter parameters.
type Config struct {
	WindowMs float64
}

// DefaultConfig returns a 100 ms window.
func DefaultConfig() Config {
	return Config{WindowMs: defaultWindowMs}
}

// Option mutates a Config.
type Option func(*Config)

// WithWindow sets the RMS window duration in milliseconds.
func WithWindow(ms float64) Option {
	return func(c *Config) { c.WindowMs = ms }
}

// Validate checks the window against sampleRate. The window must hold at
// least one sample.
func (c Config) Validate(sampleRate float64) error {
	if err := core.ValidateSampleRate(component, sampleRate); err != nil {
		return err
	}
	if !(c.WindowMs > 0) || math.IsInf(c.WindowMs, 0) {
		return core.NewConfigError(component, "window", c.WindowMs, "must be finite and > 0 ms")
	}
	if core.MsToSamples(c.WindowMs, sampleRate) < 1 {
		return core.NewConfigError(component, "window", c.WindowMs, "is shorter than one sample")
	}
	return nil
}

// Meter is a sliding-window RMS meter.
//
// Meter is not safe for concurrent use.
type Meter struct {
	cfg Config

	// Squares of the most recent samples.
	history  []float64
	writeIdx int
	filled   int

	runningSum float64
	// Writes since the running sum was last recomputed from history.
	sinceExact int

	peak float64
}

// New creates a meter for sampleRate.
func New(sampleRate float64, opts ...Option) (*Meter, error) {
	cfg := DefaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	err := cfg.Validate(sampleRate)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "level.New",
			"error":    err.Error(),
		}).Error("Level meter configuration rejected")
		return nil, err
	}

	n := core.MsToSamples(cfg.WindowMs, sampleRate)
	m := &Meter{
		cfg:     cfg,
		history: make([]float64, n),
	}

	logrus.WithFields(logrus.Fields{
		"function":       "level.New",
		"window_ms":      cfg.WindowMs,
		"window_samples": n,
	}).Info("Level meter created")

	return m, nil
}

// Measure pushes buf into the window and returns the current level in dB.
// Non-finite samples count as silence.
func (m *Meter) Measure(buf []float64) float64 {
	size := len(m.history)

	for _, x := range buf {
		if !core.IsFinite(x) {
			x = 0
		}
		if a := math.Abs(x); a > m.peak {
			m.peak = a
		}

		// Squares of large finite samples saturate instead of overflowing,
		// so the running sum never sees Inf - Inf.
		sq := math.Min(x*x, math.MaxFloat64)
		evicted := m.history[m.writeIdx]
		m.runningSum += sq - evicted
		m.history[m.writeIdx] = sq

		m.writeIdx++
		if m.writeIdx == size {
			m.writeIdx = 0
		}
		if m.filled < size {
			m.filled++
		}

		m.sinceExact++
		// An evicted square larger than what remains means the
		// subtraction cancelled; recompute exactly.
		if m.sinceExact == size || !core.IsFinite(m.runningSum) || evicted > m.runningSum {
			m.runningSum = vecmath.Sum(m.history)
			m.sinceExact = 0
		}
	}

	return m.Level()
}

// Level returns the current reading without pushing samples.
func (m *Meter) Level() float64 {
	if m.filled < len(m.history) {
		return FloorDB
	}

	meanSquare := math.Max(m.runningSum, 0) / float64(len(m.history))
	switch {
	case math.IsNaN(meanSquare):
		return FloorDB
	case math.IsInf(meanSquare, 1):
		return CeilingDB
	}
	rms := math.Sqrt(meanSquare) + rmsEpsilon

	return core.Clamp(20*mathLog10(rms), FloorDB, CeilingDB)
}

// Ready reports whether the window has filled.
func (m *Meter) Ready() bool {
	return m.filled == len(m.history)
}

// WindowSamples returns the window length in samples.
func (m *Meter) WindowSamples() int {
	return len(m.history)
}

// Peak returns the largest finite |sample| seen since construction or Reset.
func (m *Meter) Peak() float64 {
	return m.peak
}

// Reset empties the window.
func (m *Meter) Reset() {
	core.Zero(m.history)
	m.writeIdx = 0
	m.filled = 0
	m.runningSum = 0
	m.sinceExact = 0
	m.peak = 0
}
