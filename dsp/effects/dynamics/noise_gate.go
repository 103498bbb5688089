package dynamics

import (
	"math"

	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-voice/dsp/core"
)

const (
	noiseGateComponent = "noise gate"

	defaultNoiseGateThresholdDB = -40.0
	defaultNoiseGateAttackMs    = 5.0
	defaultNoiseGateReleaseMs   = 100.0
)

// NoiseGateConfig holds the gate parameters.
type NoiseGateConfig struct {
	ThresholdDB float64
	AttackMs    float64
	ReleaseMs   float64
}

// DefaultNoiseGateConfig returns -40 dB / 5 ms / 100 ms.
func DefaultNoiseGateConfig() NoiseGateConfig {
	return NoiseGateConfig{
		ThresholdDB: defaultNoiseGateThresholdDB,
		AttackMs:    defaultNoiseGateAttackMs,
		ReleaseMs:   defaultNoiseGateReleaseMs,
	}
}

// GateOption mutates a NoiseGateConfig.
type GateOption func(*NoiseGateConfig)

// WithGateThreshold sets the RMS threshold in dBFS.
func WithGateThreshold(dB float64) GateOption {
	return func(c *NoiseGateConfig) { c.ThresholdDB = dB }
}

// WithGateAttack sets the attack time in milliseconds.
func WithGateAttack(ms float64) GateOption {
	return func(c *NoiseGateConfig) { c.AttackMs = ms }
}

// WithGateRelease sets the release time in milliseconds.
func WithGateRelease(ms float64) GateOption {
	return func(c *NoiseGateConfig) { c.ReleaseMs = ms }
}

// Validate reports the first invalid field as a *core.ConfigError.
func (c NoiseGateConfig) Validate() error {
	if math.IsNaN(c.ThresholdDB) || math.IsInf(c.ThresholdDB, 0) || c.ThresholdDB > 0 {
		return core.NewConfigError(noiseGateComponent, "threshold", c.ThresholdDB, "must be finite and <= 0 dB")
	}
	if err := core.ValidateDuration(noiseGateComponent, "attack", c.AttackMs); err != nil {
		return err
	}
	return core.ValidateDuration(noiseGateComponent, "release", c.ReleaseMs)
}

// NoiseGate zeroes whole chunks whose RMS does not exceed a threshold.
//
// The open/closed decision is made once per chunk and applied
// instantaneously. Attack and release are converted to sample budgets and
// reported, together with the samples elapsed since the last transition,
// but they do not shape the output.
//
// NoiseGate is not safe for concurrent use.
type NoiseGate struct {
	cfg NoiseGateConfig

	threshold      float64
	attackSamples  int
	releaseSamples int

	open               bool
	samplesSinceChange int
}

// NewNoiseGate creates a gate for sampleRate. The gate starts closed.
func NewNoiseGate(sampleRate float64, opts ...GateOption) (*NoiseGate, error) {
	cfg := DefaultNoiseGateConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	err := core.ValidateSampleRate(noiseGateComponent, sampleRate)
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "NewNoiseGate",
			"error":    err.Error(),
		}).Error("Noise gate configuration rejected")
		return nil, err
	}

	g := &NoiseGate{
		cfg:            cfg,
		threshold:      core.DBToLinear(cfg.ThresholdDB),
		attackSamples:  core.MsToSamples(cfg.AttackMs, sampleRate),
		releaseSamples: core.MsToSamples(cfg.ReleaseMs, sampleRate),
	}

	logrus.WithFields(logrus.Fields{
		"function":        "NewNoiseGate",
		"threshold_db":    cfg.ThresholdDB,
		"threshold_lin":   g.threshold,
		"attack_samples":  g.attackSamples,
		"release_samples": g.releaseSamples,
	}).Info("Noise gate created")

	return g, nil
}

// Process gates buf in place.
func (g *NoiseGate) Process(buf []float64) {
	open := core.RMS(buf) > g.threshold

	if open != g.open {
		g.open = open
		g.samplesSinceChange = 0

		if logrus.IsLevelEnabled(logrus.DebugLevel) {
			logrus.WithFields(logrus.Fields{
				"function": "NoiseGate.Process",
				"open":     open,
			}).Debug("Gate transition")
		}
	} else {
		g.samplesSinceChange += len(buf)
	}

	if !open {
		core.Zero(buf)
	}
}

// IsOpen reports the decision taken for the most recent chunk.
func (g *NoiseGate) IsOpen() bool { return g.open }

// SamplesSinceChange returns the samples processed since the last
// open/close transition, excluding the chunk that caused it.
func (g *NoiseGate) SamplesSinceChange() int { return g.samplesSinceChange }

// AttackSamples returns the attack budget in samples.
func (g *NoiseGate) AttackSamples() int { return g.attackSamples }

// ReleaseSamples returns the release budget in samples.
func (g *NoiseGate) ReleaseSamples() int { return g.releaseSamples }

// Threshold returns the linear RMS threshold.
func (g *NoiseGate) Threshold() float64 { return g.threshold }

// Config returns the gate parameters.
func (g *NoiseGate) Config() NoiseGateConfig { return g.cfg }

// Reset closes the gate and clears the transition counter.
func (g *NoiseGate) Reset() {
	g.open = false
	g.samplesSinceChange = 0
}
