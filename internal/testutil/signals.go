// Package testutil holds deterministic signal generators and tolerance
// helpers shared by the voice chain tests.
package testutil

import (
	"math"
	"math/rand"

	"github.com/cwbudde/algo-voice/dsp/core"
	"github.com/cwbudde/algo-voice/dsp/signal"
)

// DeterministicSine generates a sine wave starting at phase 0.
func DeterministicSine(freqHz, sampleRate, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	step := 2 * math.Pi * freqHz / sampleRate
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}
	return out
}

// DeterministicNoise generates uniform white noise in [-amplitude, amplitude)
// with a fixed seed.
func DeterministicNoise(seed int64, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out
}

// DC generates a constant-valued signal.
func DC(value float64, length int) []float64 {
	out := make([]float64, length)
	for i := range out {
		out[i] = value
	}
	return out
}

// VoiceLike generates the synthetic voice of signal.Generator with the
// given seed.
func VoiceLike(seed int64, sampleRate float64, length int) []float64 {
	g := signal.NewGeneratorWithOptions(
		[]core.ProcessorOption{core.WithSampleRate(sampleRate)},
		signal.WithSeed(seed),
	)
	out, err := g.Voice(length)
	if err != nil {
		panic(err)
	}
	return out
}

// EchoOf returns src delayed by delay samples and scaled by gain, the
// shape of an acoustic echo path.
func EchoOf(src []float64, delay int, gain float64) []float64 {
	out := make([]float64, len(src))
	for i := delay; i < len(src); i++ {
		out[i] = gain * src[i-delay]
	}
	return out
}

// Chunks splits buf into consecutive views of size samples. A short tail
// is dropped.
func Chunks(buf []float64, size int) [][]float64 {
	var out [][]float64
	for start := 0; start+size <= len(buf); start += size {
		out = append(out, buf[start:start+size:start+size])
	}
	return out
}

// Int16Sine generates a sine with integer amplitude, rounded to int16.
func Int16Sine(freqHz, sampleRate float64, amplitude int16, length int) []int16 {
	out := make([]int16, length)
	step := 2 * math.Pi * freqHz / sampleRate
	for i := range out {
		out[i] = int16(math.Round(float64(amplitude) * math.Sin(step*float64(i))))
	}
	return out
}

// Int16Const returns length copies of v.
func Int16Const(v int16, length int) []int16 {
	out := make([]int16, length)
	for i := range out {
		out[i] = v
	}
	return out
}

// ToInt16 scales normalized samples by 32767 and rounds, clipping to the
// int16 range.
func ToInt16(src []float64) []int16 {
	out := make([]int16, len(src))
	for i, x := range src {
		v := math.Round(x * 32767)
		out[i] = int16(math.Max(-32768, math.Min(32767, v)))
	}
	return out
}
