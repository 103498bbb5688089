package spectrum

import "math"

// Centroid returns the magnitude-weighted mean frequency in Hz.
//
//	centroid = sum(f_k * |X_k|) / sum(|X_k|)
func (r Report) Centroid() float64 {
	binHz := r.BinHz()

	var weighted, sum float64
	for k, p := range r.Power {
		m := math.Sqrt(p)
		weighted += float64(k) * binHz * m
		sum += m
	}
	if sum == 0 {
		return 0
	}
	return weighted / sum
}

// Rolloff returns the frequency below which fraction (0..1) of the power
// lies. A typical fraction is 0.85.
func (r Report) Rolloff(fraction float64) float64 {
	total := r.Total()
	if total == 0 || len(r.Power) == 0 {
		return 0
	}

	threshold := fraction * total
	var cum float64
	for k, p := range r.Power {
		cum += p
		if cum >= threshold {
			return float64(k) * r.BinHz()
		}
	}
	return float64(len(r.Power)-1) * r.BinHz()
}

// Flatness returns the spectral flatness (Wiener entropy) in [0, 1]:
// the geometric over the arithmetic mean of the bin magnitudes, DC
// excluded. Any empty bin makes it 0.
func (r Report) Flatness() float64 {
	n := len(r.Power)
	if n < 2 {
		return 0
	}

	var sumLin, sumLog float64
	for k := 1; k < n; k++ {
		m := math.Sqrt(r.Power[k])
		if m == 0 {
			return 0
		}
		sumLin += m
		sumLog += math.Log(m)
	}

	bins := float64(n - 1)
	return math.Exp(sumLog/bins) / (sumLin / bins)
}
