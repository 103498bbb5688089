package spectrum

import (
	"fmt"
	"math"

	algofft "github.com/cwbudde/algo-fft"
	vecmath "github.com/cwbudde/algo-vecmath"
	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-voice/dsp/core"
	"github.com/cwbudde/algo-voice/dsp/window"
)

const (
	component = "band analyzer"

	defaultFFTSize  = 4096
	defaultBandLow  = 300.0
	defaultBandHigh = 3400.0

	minFFTSize = 16
	maxFFTSize = 1 << 20

	powerFloor = 1e-30
)

// Config holds the analyzer parameters.
type Config struct {
	FFTSize  int
	Window   window.Type
	BandLow  float64
	BandHigh float64
}

// DefaultConfig returns a 4096-point Hann analysis of the 300-3400 Hz band.
func DefaultConfig() Config {
	return Config{
		FFTSize:  defaultFFTSize,
		Window:   window.TypeHann,
		BandLow:  defaultBandLow,
		BandHigh: defaultBandHigh,
	}
}

// Option mutates a Config.
type Option func(*Config)

// WithFFTSize sets the frame length. It must be a power of two.
func WithFFTSize(n int) Option {
	return func(c *Config) { c.FFTSize = n }
}

// WithWindow selects the analysis window.
func WithWindow(t window.Type) Option {
	return func(c *Config) { c.Window = t }
}

// WithBand sets the band edges in Hz.
func WithBand(low, high float64) Option {
	return func(c *Config) {
		c.BandLow = low
		c.BandHigh = high
	}
}

// Report is the averaged power spectrum of one analysis.
type Report struct {
	SampleRate float64
	FFTSize    int
	Frames     int

	// Power holds the single-sided mean-square contribution of each bin
	// 0..FFTSize/2. Its sum approximates the mean square of the input.
	Power []float64

	InBand    float64
	OutOfBand float64
}

// BinHz returns the bin spacing.
func (r Report) BinHz() float64 {
	return r.SampleRate / float64(r.FFTSize)
}

// Total returns the summed power of all bins.
func (r Report) Total() float64 {
	return r.InBand + r.OutOfBand
}

// RatioDB returns in-band over out-of-band power in dB.
func (r Report) RatioDB() float64 {
	return 10 * math.Log10((r.InBand+powerFloor)/(r.OutOfBand+powerFloor))
}

// BandPower sums the bins whose center lies in [low, high] Hz.
func (r Report) BandPower(low, high float64) float64 {
	binHz := r.BinHz()
	var sum float64
	for k, p := range r.Power {
		f := float64(k) * binHz
		if f >= low && f <= high {
			sum += p
		}
	}
	return sum
}

// PeakFrequency returns the center frequency of the strongest bin.
func (r Report) PeakFrequency() float64 {
	peak := 0
	for k := range r.Power {
		if r.Power[k] > r.Power[peak] {
			peak = k
		}
	}
	return float64(peak) * r.BinHz()
}

// BandAnalyzer computes averaged power spectra with 50% overlapping
// windowed frames.
//
// BandAnalyzer reuses its buffers and is not safe for concurrent use.
type BandAnalyzer struct {
	cfg        Config
	sampleRate float64
	hop        int

	plan      *algofft.Plan[complex128]
	coeffs    []float64
	powerNorm float64

	frame []float64
	in    []complex128
	out   []complex128
	re    []float64
	im    []float64
	power []float64
	accum []float64
}

// New creates an analyzer for sampleRate.
func New(sampleRate float64, opts ...Option) (*BandAnalyzer, error) {
	cfg := DefaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	if err := validate(cfg, sampleRate); err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "spectrum.New",
			"error":    err.Error(),
		}).Error("Band analyzer configuration rejected")
		return nil, err
	}

	plan, err := algofft.NewPlan64(cfg.FFTSize)
	if err != nil {
		return nil, fmt.Errorf("band analyzer: fft plan: %w", err)
	}

	n := cfg.FFTSize
	bins := n/2 + 1
	coeffs := window.Generate(cfg.Window, n, window.WithPeriodic())

	a := &BandAnalyzer{
		cfg:        cfg,
		sampleRate: sampleRate,
		hop:        n / 2,
		plan:       plan,
		coeffs:     coeffs,
		powerNorm:  1 / (float64(n) * float64(n) * window.PowerGain(coeffs)),
		frame:      make([]float64, n),
		in:         make([]complex128, n),
		out:        make([]complex128, n),
		re:         make([]float64, bins),
		im:         make([]float64, bins),
		power:      make([]float64, bins),
		accum:      make([]float64, bins),
	}

	logrus.WithFields(logrus.Fields{
		"function": "spectrum.New",
		"fft_size": n,
		"window":   cfg.Window.String(),
		"band_low": cfg.BandLow,
		"band_hi":  cfg.BandHigh,
	}).Debug("Band analyzer created")

	return a, nil
}

func validate(cfg Config, sampleRate float64) error {
	if err := core.ValidateSampleRate(component, sampleRate); err != nil {
		return err
	}
	n := cfg.FFTSize
	if n < minFFTSize || n > maxFFTSize || n&(n-1) != 0 {
		return core.NewConfigError(component, "fft size", n, "must be a power of two in [16, 1048576]")
	}
	if !(cfg.BandLow >= 0 && cfg.BandLow < cfg.BandHigh && cfg.BandHigh <= sampleRate/2) {
		return core.NewConfigError(component, "band", [2]float64{cfg.BandLow, cfg.BandHigh},
			"must satisfy 0 <= low < high <= Nyquist")
	}
	return nil
}

// Analyze averages the power spectra of all frames of signal. A signal
// shorter than one frame is zero-padded to a single frame.
func (a *BandAnalyzer) Analyze(signal []float64) (Report, error) {
	if len(signal) == 0 {
		return Report{}, fmt.Errorf("%w: band analyzer needs at least one sample", core.ErrContractViolation)
	}

	n := a.cfg.FFTSize
	core.Zero(a.accum)

	frames := 0
	for start := 0; ; start += a.hop {
		end := min(start+n, len(signal))
		core.Zero(a.frame)
		copy(a.frame, signal[start:end])

		if err := a.accumulateFrame(); err != nil {
			return Report{}, err
		}
		frames++

		if end == len(signal) {
			break
		}
	}

	r := Report{
		SampleRate: a.sampleRate,
		FFTSize:    n,
		Frames:     frames,
		Power:      make([]float64, len(a.accum)),
	}
	vecmath.ScaleBlock(r.Power, a.accum, 1/float64(frames))

	binHz := r.BinHz()
	for k, p := range r.Power {
		f := float64(k) * binHz
		if f >= a.cfg.BandLow && f <= a.cfg.BandHigh {
			r.InBand += p
		} else {
			r.OutOfBand += p
		}
	}

	return r, nil
}

func (a *BandAnalyzer) accumulateFrame() error {
	if err := window.Apply(a.frame, a.coeffs); err != nil {
		return err
	}
	for i, x := range a.frame {
		a.in[i] = complex(x, 0)
	}

	if err := a.plan.Forward(a.out, a.in); err != nil {
		return fmt.Errorf("band analyzer: fft: %w", err)
	}

	for k := range a.re {
		a.re[k] = real(a.out[k])
		a.im[k] = imag(a.out[k])
	}
	vecmath.Power(a.power, a.re, a.im)

	// Single-sided: every bin except DC and Nyquist stands for two.
	vecmath.ScaleBlockInPlace(a.power, 2*a.powerNorm)
	a.power[0] /= 2
	a.power[len(a.power)-1] /= 2

	vecmath.AddBlockInPlace(a.accum, a.power)
	return nil
}

// Config returns the analyzer parameters.
func (a *BandAnalyzer) Config() Config { return a.cfg }
