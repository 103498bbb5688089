package biquad

import (
	"math"
	"math/cmplx"
)

// Response computes the complex frequency response H(e^jw) of a biquad
// at the given frequency (Hz) and sample rate (Hz).
func (c *Coefficients) Response(freqHz, sampleRate float64) complex128 {
	w := 2 * math.Pi * freqHz / sampleRate
	ejw := cmplx.Exp(complex(0, -w))
	ej2w := cmplx.Exp(complex(0, -2*w))

	num := complex(c.B0, 0) + complex(c.B1, 0)*ejw + complex(c.B2, 0)*ej2w
	den := complex(1, 0) + complex(c.A1, 0)*ejw + complex(c.A2, 0)*ej2w
	return num / den
}

// MagnitudeDB returns 20*log10(|H(f)|) for one section.
func (c *Coefficients) MagnitudeDB(freqHz, sampleRate float64) float64 {
	return 20 * math.Log10(cmplx.Abs(c.Response(freqHz, sampleRate)))
}

// Response computes the complex frequency response of the full cascade
// as the product of the section responses.
func (c *Chain) Response(freqHz, sampleRate float64) complex128 {
	h := complex(c.gain, 0)
	for i := range c.sections {
		h *= c.sections[i].Response(freqHz, sampleRate)
	}
	return h
}

// MagnitudeDB returns the cascaded magnitude response in dB.
func (c *Chain) MagnitudeDB(freqHz, sampleRate float64) float64 {
	return 20 * math.Log10(cmplx.Abs(c.Response(freqHz, sampleRate)))
}

// ImpulseResponse computes n samples of the cascade impulse response.
// The chain state is saved and restored.
func (c *Chain) ImpulseResponse(n int) []float64 {
	if n <= 0 {
		return nil
	}
	saved := c.State()
	c.Reset()
	ir := make([]float64, n)
	ir[0] = c.ProcessSample(1)
	for i := 1; i < n; i++ {
		ir[i] = c.ProcessSample(0)
	}
	c.SetState(saved)
	return ir
}
