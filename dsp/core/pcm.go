package core

import (
	"math"

	"github.com/cwbudde/algo-vecmath"
)

// PCMScale maps int16 samples onto [-1, 1).
const PCMScale = 32768.0

// Int16ToFloat converts src into normalized samples in dst.
// dst must be at least as long as src.
func Int16ToFloat(dst []float64, src []int16) {
	dst = dst[:len(src)]
	for i, s := range src {
		dst[i] = float64(s)
	}
	vecmath.ScaleBlockInPlace(dst, 1/PCMScale)
}

// FloatToInt16 converts normalized samples back to int16, clamping to
// [-32768, 32767] and mapping NaN to 0. It returns the number of clipped
// samples.
func FloatToInt16(dst []int16, src []float64) int {
	dst = dst[:len(src)]
	clipped := 0
	for i, x := range src {
		if math.IsNaN(x) {
			dst[i] = 0
			continue
		}
		v := x * PCMScale
		switch {
		case v > math.MaxInt16:
			dst[i] = math.MaxInt16
			clipped++
		case v < math.MinInt16:
			dst[i] = math.MinInt16
			clipped++
		default:
			dst[i] = int16(v)
		}
	}
	return clipped
}
