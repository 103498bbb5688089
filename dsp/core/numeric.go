package core

import (
	"math"

	"github.com/cwbudde/algo-vecmath"
)

const defaultEpsilon = 1e-12

// Clamp limits value to the inclusive range [lo, hi].
func Clamp(value, lo, hi float64) float64 {
	if lo > hi {
		lo, hi = hi, lo
	}
	if value < lo {
		return lo
	}
	if value > hi {
		return hi
	}
	return value
}

// NearlyEqual reports whether a and b are equal within a relative
// tolerance eps.
func NearlyEqual(a, b, eps float64) bool {
	if eps <= 0 {
		eps = defaultEpsilon
	}

	diff := math.Abs(a - b)
	if diff <= eps {
		return true
	}

	largest := math.Max(math.Abs(a), math.Abs(b))
	if largest == 0 {
		return diff <= eps
	}
	return diff/largest <= eps
}

// IsFinite reports whether x is neither NaN nor ±Inf.
func IsFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// FlushDenormals converts tiny denormal-like values to exact zero.
func FlushDenormals(x float64) float64 {
	const epsilon = 1e-30
	if x > -epsilon && x < epsilon {
		return 0
	}
	return x
}

// DBToLinear converts dB to linear amplitude (20*log10 convention).
func DBToLinear(db float64) float64 {
	return math.Pow(10, db/20)
}

// LinearToDB converts linear amplitude to dB (20*log10 convention).
// Returns -Inf for zero and NaN for negative values.
func LinearToDB(linear float64) float64 {
	if linear < 0 {
		return math.NaN()
	}
	if linear == 0 {
		return math.Inf(-1)
	}
	return 20 * math.Log10(linear)
}

// MeanSquare returns the mean of x². An empty buffer has mean square 0.
func MeanSquare(buf []float64) float64 {
	if len(buf) == 0 {
		return 0
	}
	return vecmath.DotProduct(buf, buf) / float64(len(buf))
}

// RMS returns the root-mean-square amplitude of buf.
func RMS(buf []float64) float64 {
	return math.Sqrt(MeanSquare(buf))
}
