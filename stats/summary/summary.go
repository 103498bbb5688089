// Package summary accumulates running statistics over sample streams,
// level readings and processing durations.
package summary

import "math"

// Summary holds statistics of everything fed to an [Accumulator].
type Summary struct {
	Count         int
	Mean          float64
	StdDev        float64
	Min           float64
	Max           float64
	RMS           float64
	Peak          float64 // max(|max|, |min|)
	ZeroCrossings int
}

// RMSDB returns RMS in dB, -Inf for silence.
func (s Summary) RMSDB() float64 { return ampToDB(s.RMS) }

// PeakDB returns Peak in dB, -Inf for silence.
func (s Summary) PeakDB() float64 { return ampToDB(s.Peak) }

// CrestFactorDB returns peak over RMS in dB, 0 for silence.
func (s Summary) CrestFactorDB() float64 {
	if s.RMS == 0 {
		return 0
	}
	return 20 * math.Log10(s.Peak/s.RMS)
}

func ampToDB(value float64) float64 {
	a := math.Abs(value)
	if a == 0 {
		return math.Inf(-1)
	}
	return 20 * math.Log10(a)
}

// Accumulator is a streaming statistics collector using Welford's online
// algorithm for the variance.
//
// The zero value is ready to use. Accumulator is not safe for concurrent
// use.
type Accumulator struct {
	n          int
	mean       float64
	m2         float64
	sumSq      float64
	minVal     float64
	maxVal     float64
	crossings  int
	lastSample float64
}

// Add feeds one value.
func (a *Accumulator) Add(x float64) {
	a.n++
	delta := x - a.mean
	a.mean += delta / float64(a.n)
	a.m2 += delta * (x - a.mean)

	a.sumSq += x * x

	if a.n == 1 {
		a.minVal = x
		a.maxVal = x
	} else {
		a.minVal = math.Min(a.minVal, x)
		a.maxVal = math.Max(a.maxVal, x)

		if a.lastSample*x < 0 {
			a.crossings++
		}
	}

	a.lastSample = x
}

// Update feeds a block of values.
func (a *Accumulator) Update(samples []float64) {
	for _, x := range samples {
		a.Add(x)
	}
}

// Count returns the number of values fed so far.
func (a *Accumulator) Count() int { return a.n }

// Result computes the statistics of everything fed so far.
func (a *Accumulator) Result() Summary {
	if a.n == 0 {
		return Summary{}
	}

	nf := float64(a.n)
	return Summary{
		Count:         a.n,
		Mean:          a.mean,
		StdDev:        math.Sqrt(a.m2 / nf),
		Min:           a.minVal,
		Max:           a.maxVal,
		RMS:           math.Sqrt(a.sumSq / nf),
		Peak:          math.Max(math.Abs(a.maxVal), math.Abs(a.minVal)),
		ZeroCrossings: a.crossings,
	}
}

// Reset clears all accumulated data.
func (a *Accumulator) Reset() {
	*a = Accumulator{}
}

// Calculate summarizes a complete signal in one pass.
func Calculate(signal []float64) Summary {
	var a Accumulator
	a.Update(signal)
	return a.Result()
}
