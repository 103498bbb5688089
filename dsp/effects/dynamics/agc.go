package dynamics

import (
	"math"

	vecmath "github.com/cwbudde/algo-vecmath"
	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-voice/dsp/core"
)

const (
	agcComponent = "agc"

	defaultAGCTargetRMS = 0.1
	defaultAGCAttackMs  = 10.0
	defaultAGCReleaseMs = 500.0

	// MinGain and MaxGain bound the AGC gain.
	MinGain = 0.5
	MaxGain = 4.0

	agcRMSEpsilon = 1e-8
)

// AGCConfig holds the automatic gain control parameters.
type AGCConfig struct {
	TargetRMS float64
	AttackMs  float64
	ReleaseMs float64
}

// DefaultAGCConfig returns target 0.1 with 10 ms attack and 500 ms release.
func DefaultAGCConfig() AGCConfig {
	return AGCConfig{
		TargetRMS: defaultAGCTargetRMS,
		AttackMs:  defaultAGCAttackMs,
		ReleaseMs: defaultAGCReleaseMs,
	}
}

// AGCOption mutates an AGCConfig.
type AGCOption func(*AGCConfig)

// WithTargetRMS sets the linear RMS the gain converges toward.
func WithTargetRMS(rms float64) AGCOption {
	return func(c *AGCConfig) { c.TargetRMS = rms }
}

// WithAGCAttack sets the smoothing time used while gain rises.
func WithAGCAttack(ms float64) AGCOption {
	return func(c *AGCConfig) { c.AttackMs = ms }
}

// WithAGCRelease sets the smoothing time used while gain falls.
func WithAGCRelease(ms float64) AGCOption {
	return func(c *AGCConfig) { c.ReleaseMs = ms }
}

// Validate reports the first invalid field as a *core.ConfigError.
func (c AGCConfig) Validate() error {
	if !(c.TargetRMS > 0 && c.TargetRMS <= 1) {
		return core.NewConfigError(agcComponent, "target rms", c.TargetRMS, "must be in (0, 1]")
	}
	for _, d := range []struct {
		field string
		ms    float64
	}{{"attack", c.AttackMs}, {"release", c.ReleaseMs}} {
		if !(d.ms > 0) || math.IsInf(d.ms, 0) {
			return core.NewConfigError(agcComponent, d.field, d.ms, "must be finite and > 0 ms")
		}
	}
	return nil
}

// AGC normalizes chunk loudness toward a target RMS.
//
// Per chunk the desired gain is target/rms. The running gain moves toward
// it with the attack coefficient when it must rise and with the release
// coefficient when it must fall, then is clamped to [MinGain, MaxGain] and
// applied to every sample.
//
// AGC is not safe for concurrent use.
type AGC struct {
	cfg AGCConfig

	attackCoeff  float64
	releaseCoeff float64

	gain float64
}

// NewAGC creates an AGC for sampleRate with unity initial gain.
func NewAGC(sampleRate float64, opts ...AGCOption) (*AGC, error) {
	cfg := DefaultAGCConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	err := core.ValidateSampleRate(agcComponent, sampleRate)
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "NewAGC",
			"error":    err.Error(),
		}).Error("AGC configuration rejected")
		return nil, err
	}

	a := &AGC{
		cfg:          cfg,
		attackCoeff:  core.SmoothingCoeff(cfg.AttackMs, sampleRate),
		releaseCoeff: core.SmoothingCoeff(cfg.ReleaseMs, sampleRate),
		gain:         1,
	}

	logrus.WithFields(logrus.Fields{
		"function":      "NewAGC",
		"target_rms":    cfg.TargetRMS,
		"attack_coeff":  a.attackCoeff,
		"release_coeff": a.releaseCoeff,
	}).Info("AGC created")

	return a, nil
}

// Process applies the updated gain to buf in place.
func (a *AGC) Process(buf []float64) {
	rms := core.RMS(buf) + agcRMSEpsilon
	target := a.cfg.TargetRMS / rms

	coeff := a.releaseCoeff
	if target > a.gain {
		coeff = a.attackCoeff
	}
	next := coeff*a.gain + (1-coeff)*target
	if !math.IsNaN(next) {
		a.gain = core.Clamp(next, MinGain, MaxGain)
	}

	vecmath.ScaleBlockInPlace(buf, a.gain)
}

// Gain returns the current gain.
func (a *AGC) Gain() float64 { return a.gain }

// Config returns the AGC parameters.
func (a *AGC) Config() AGCConfig { return a.cfg }

// Reset restores unity gain.
func (a *AGC) Reset() { a.gain = 1 }
