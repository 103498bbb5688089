// Package signal generates deterministic test and benchmark signals for the
// voice chain.
package signal

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/cwbudde/algo-voice/dsp/core"
)

// Generator creates deterministic signals from a shared configuration.
type Generator struct {
	cfg  core.ProcessorConfig
	seed int64
}

// Option configures a Generator.
type Option func(*Generator)

// WithSeed sets deterministic random seed for noise generation.
func WithSeed(seed int64) Option {
	return func(g *Generator) {
		g.seed = seed
	}
}

// NewGenerator creates a configured signal generator.
func NewGenerator(opts ...core.ProcessorOption) *Generator {
	return NewGeneratorWithOptions(opts)
}

// NewGeneratorWithOptions creates a configured signal generator with signal-specific options.
func NewGeneratorWithOptions(coreOpts []core.ProcessorOption, opts ...Option) *Generator {
	g := &Generator{
		cfg:  core.ApplyProcessorOptions(coreOpts...),
		seed: 1,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	return g
}

// Config returns the generator processor configuration.
func (g *Generator) Config() core.ProcessorConfig {
	return g.cfg
}

// Sine generates a sine wave.
func (g *Generator) Sine(freqHz, amplitude float64, samples int) ([]float64, error) {
	if samples <= 0 {
		return nil, fmt.Errorf("sine samples must be > 0: %d", samples)
	}
	out := make([]float64, samples)
	step := 2 * math.Pi * freqHz / g.cfg.SampleRate
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}
	return out, nil
}

// WhiteNoise generates deterministic white noise in [-amplitude, amplitude].
func (g *Generator) WhiteNoise(amplitude float64, samples int) ([]float64, error) {
	if samples <= 0 {
		return nil, fmt.Errorf("noise samples must be > 0: %d", samples)
	}
	if amplitude < 0 {
		return nil, fmt.Errorf("noise amplitude must be >= 0: %f", amplitude)
	}
	out := make([]float64, samples)
	rng := rand.New(rand.NewSource(g.seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out, nil
}

// Voice generates a crude voiced-speech stand-in: a 140 Hz harmonic series
// with a 4 Hz syllabic envelope plus a little breath noise. The peak stays
// below 0.5.
func (g *Generator) Voice(samples int) ([]float64, error) {
	if samples <= 0 {
		return nil, fmt.Errorf("voice samples must be > 0: %d", samples)
	}
	out := make([]float64, samples)
	rng := rand.New(rand.NewSource(g.seed))
	sr := g.cfg.SampleRate

	const f0 = 140.0
	for i := range out {
		t := float64(i) / sr
		env := 0.5 + 0.5*math.Sin(2*math.Pi*4*t)

		var v float64
		for h := 1; h <= 8; h++ {
			v += math.Sin(2*math.Pi*f0*float64(h)*t) / float64(h)
		}
		out[i] = 0.15*env*v/2.72 + 0.01*(rng.Float64()*2-1)
	}
	return out, nil
}

// Echo returns src delayed by delayMs and scaled by gain, the shape of an
// acoustic echo path.
func (g *Generator) Echo(src []float64, delayMs, gain float64) ([]float64, error) {
	if err := core.ValidateDuration("signal", "echo delay", delayMs); err != nil {
		return nil, err
	}
	delay := core.MsToSamples(delayMs, g.cfg.SampleRate)
	out := make([]float64, len(src))
	for i := delay; i < len(src); i++ {
		out[i] = gain * src[i-delay]
	}
	return out, nil
}

// Mix adds gain*src to dst in place.
func Mix(dst, src []float64, gain float64) error {
	if len(dst) != len(src) {
		return fmt.Errorf("mix length mismatch: %d != %d", len(dst), len(src))
	}
	for i, v := range src {
		dst[i] += gain * v
	}
	return nil
}

// Normalize scales data to target peak amplitude and returns a new slice.
func Normalize(data []float64, targetPeak float64) ([]float64, error) {
	if targetPeak < 0 {
		return nil, fmt.Errorf("normalize target peak must be >= 0: %f", targetPeak)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("normalize input must not be empty")
	}

	maxAbs := 0.0
	for _, v := range data {
		av := math.Abs(v)
		if av > maxAbs {
			maxAbs = av
		}
	}

	out := make([]float64, len(data))
	if maxAbs == 0 || targetPeak == 0 {
		return out, nil
	}

	scale := targetPeak / maxAbs
	for i, v := range data {
		out[i] = v * scale
	}
	return out, nil
}
