// Package window generates the analysis windows used by the spectral band
// analyzer.
package window

import (
	"fmt"
	"math"

	vecmath "github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-voice/dsp/core"
)

// Type identifies a window function.
type Type int

const (
	TypeRectangular Type = iota
	TypeHann
	TypeHamming
	TypeBlackman
)

var (
	hannCoeffs     = []float64{0.5, -0.5}
	hammingCoeffs  = []float64{0.54, -0.46}
	blackmanCoeffs = []float64{0.42, -0.5, 0.08}
)

var typeNames = map[Type]string{
	TypeRectangular: "rectangular",
	TypeHann:        "hann",
	TypeHamming:     "hamming",
	TypeBlackman:    "blackman",
}

// String implements fmt.Stringer.
func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// ParseType maps a window name to its Type.
func ParseType(name string) (Type, error) {
	for t, n := range typeNames {
		if n == name {
			return t, nil
		}
	}
	return 0, core.NewConfigError("window", "type", name, "must be rectangular, hann, hamming or blackman")
}

// Option configures window generation.
type Option func(*config)

type config struct {
	periodic bool
}

// WithPeriodic configures periodic form (FFT framing) instead of symmetric form.
func WithPeriodic() Option {
	return func(c *config) {
		c.periodic = true
	}
}

// Generate returns window coefficients of the given length.
func Generate(t Type, length int, opts ...Option) []float64 {
	if length <= 0 {
		return nil
	}

	var cfg config
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	out := make([]float64, length)
	for i := range out {
		out[i] = evalWindow(t, samplePosition(i, length, cfg.periodic))
	}

	return out
}

// Apply multiplies buf in place by coeffs. Lengths must match.
func Apply(buf, coeffs []float64) error {
	if len(buf) != len(coeffs) {
		return fmt.Errorf("%w: window has %d coefficients for %d samples",
			core.ErrContractViolation, len(coeffs), len(buf))
	}
	vecmath.MulBlockInPlace(buf, coeffs)
	return nil
}

// CoherentGain returns the mean coefficient, the amplitude scaling a
// window applies to a bin-centered sinusoid.
func CoherentGain(coeffs []float64) float64 {
	if len(coeffs) == 0 {
		return 0
	}
	return vecmath.Sum(coeffs) / float64(len(coeffs))
}

// PowerGain returns the mean squared coefficient, the scaling a window
// applies to the power of broadband noise.
func PowerGain(coeffs []float64) float64 {
	if len(coeffs) == 0 {
		return 0
	}
	return vecmath.DotProduct(coeffs, coeffs) / float64(len(coeffs))
}

func evalWindow(t Type, x float64) float64 {
	switch t {
	case TypeHann:
		return cosineFromCoeffs(x, hannCoeffs)
	case TypeHamming:
		return cosineFromCoeffs(x, hammingCoeffs)
	case TypeBlackman:
		return cosineFromCoeffs(x, blackmanCoeffs)
	default:
		return 1
	}
}

func cosineFromCoeffs(x float64, coeffs []float64) float64 {
	phase := 2 * math.Pi * x

	var sum float64
	for k, c := range coeffs {
		sum += c * math.Cos(float64(k)*phase)
	}
	return sum
}

func samplePosition(n, size int, periodic bool) float64 {
	if size <= 1 {
		return 0
	}

	den := float64(size - 1)
	if periodic {
		den = float64(size)
	}

	return float64(n) / den
}
