package design

import (
	"math"
	"math/cmplx"

	"github.com/cwbudde/algo-voice/dsp/core"
	"github.com/cwbudde/algo-voice/dsp/filter/biquad"
)

const (
	component = "butterworth"

	// MaxOrder bounds the prototype order accepted by the designers.
	MaxOrder = 16
)

// ButterworthLowpass designs an order-N low-pass Butterworth cascade with
// a -3 dB point at cutoff (Hz).
//
// For odd orders, the final section is first-order (B2=A2=0).
func ButterworthLowpass(cutoff float64, order int, sampleRate float64) ([]biquad.Coefficients, error) {
	if err := validateOrder(order); err != nil {
		return nil, err
	}
	if err := validateCutoff("cutoff", cutoff, sampleRate); err != nil {
		return nil, err
	}

	sections := make([]biquad.Coefficients, 0, (order+1)/2)

	n2 := order / 2
	for i := n2 - 1; i >= 0; i-- {
		sections = append(sections, Lowpass(cutoff, butterworthQ(order, i), sampleRate))
	}
	if order%2 != 0 {
		sections = append(sections, lowpassFirstOrder(cutoff, sampleRate))
	}

	return sections, nil
}

// ButterworthBandpass designs a band-pass Butterworth cascade from an
// order-N low-pass prototype. The resulting transfer function has order 2N
// and is returned as N biquads, each with zeros at DC and Nyquist.
// Gain is exactly 0 dB at the geometric band center and -3 dB at low and
// high (Hz).
func ButterworthBandpass(low, high float64, order int, sampleRate float64) ([]biquad.Coefficients, error) {
	if err := validateOrder(order); err != nil {
		return nil, err
	}
	if err := validateCutoff("low cutoff", low, sampleRate); err != nil {
		return nil, err
	}
	if err := validateCutoff("high cutoff", high, sampleRate); err != nil {
		return nil, err
	}
	if low >= high {
		return nil, core.NewConfigError(component, "band", [2]float64{low, high}, "low cutoff must be below high cutoff")
	}

	// Prewarped analog edges for the s = (z-1)/(z+1) bilinear map.
	w1 := math.Tan(math.Pi * low / sampleRate)
	w2 := math.Tan(math.Pi * high / sampleRate)
	bw := w2 - w1
	w0sq := w1 * w2

	sections := make([]biquad.Coefficients, 0, order)

	// Upper-half-plane prototype poles; conjugates are implied.
	for k := 0; k < (order+1)/2; k++ {
		theta := math.Pi * float64(2*k+order+1) / float64(2*order)
		p := cmplx.Rect(1, theta)

		// s_lp = (s^2 + w0^2) / (bw*s)  =>  s^2 - p*bw*s + w0^2 = 0
		pb := p * complex(bw, 0)
		disc := cmplx.Sqrt(pb*pb - complex(4*w0sq, 0))
		s1 := (pb + disc) / 2
		s2 := (pb - disc) / 2

		if math.Abs(imag(p)) < 1e-12 {
			// Real prototype pole: s1 and s2 already form one section.
			sections = append(sections, bandSection(bilinear(s1), bilinear(s2)))
			continue
		}

		sections = append(sections,
			bandSection(bilinear(s1), cmplx.Conj(bilinear(s1))),
			bandSection(bilinear(s2), cmplx.Conj(bilinear(s2))),
		)
	}

	// Normalize each section to unity gain at the band center.
	center := BandCenter(low, high, sampleRate)
	for i := range sections {
		mag := cmplx.Abs(sections[i].Response(center, sampleRate))
		if mag == 0 || math.IsNaN(mag) || math.IsInf(mag, 0) {
			return nil, core.NewConfigError(component, "band", [2]float64{low, high}, "produced a degenerate section")
		}
		sections[i].B0 /= mag
		sections[i].B2 /= mag
	}

	return sections, nil
}

// BandCenter returns the geometric center frequency (Hz) of a band after
// bilinear prewarping, which is where [ButterworthBandpass] has 0 dB gain.
func BandCenter(low, high, sampleRate float64) float64 {
	w1 := math.Tan(math.Pi * low / sampleRate)
	w2 := math.Tan(math.Pi * high / sampleRate)
	return math.Atan(math.Sqrt(w1*w2)) * sampleRate / math.Pi
}

// bilinear maps an analog pole to the z plane: z = (1+s)/(1-s).
func bilinear(s complex128) complex128 {
	return (1 + s) / (1 - s)
}

// bandSection builds a biquad with poles z1, z2 (conjugate or both real)
// and numerator 1 - z^-2.
func bandSection(z1, z2 complex128) biquad.Coefficients {
	return biquad.Coefficients{
		B0: 1,
		B1: 0,
		B2: -1,
		A1: -real(z1 + z2),
		A2: real(z1 * z2),
	}
}

// butterworthQ returns the quality factor for a Butterworth filter section.
// index ranges from 0 to (order/2 - 1) for the biquad sections.
func butterworthQ(order, index int) float64 {
	theta := math.Pi * float64(2*index+1) / (2 * float64(order))

	s := math.Sin(theta)
	if s == 0 {
		return defaultQ
	}

	return 1 / (2 * s)
}

func validateOrder(order int) error {
	if order < 1 || order > MaxOrder {
		return core.NewConfigError(component, "order", order, "must be in [1, 16]")
	}
	return nil
}

func validateCutoff(field string, freq, sampleRate float64) error {
	if err := core.ValidateSampleRate(component, sampleRate); err != nil {
		return err
	}
	if freq <= 0 || freq >= sampleRate/2 || math.IsNaN(freq) || math.IsInf(freq, 0) {
		return core.NewConfigError(component, field, freq, "must be strictly between 0 and Nyquist")
	}
	return nil
}
