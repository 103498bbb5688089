package spectrum

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-voice/dsp/core"
)

// ToneProbe evaluates one DFT term with the Goertzel recurrence.
//
// The probe is stateful: Power and Amplitude cover every sample processed
// since the last Reset. Leakage is lowest when the processed length holds
// a whole number of cycles.
type ToneProbe struct {
	frequency  float64
	sampleRate float64
	coeff      float64
	s0, s1     float64
	count      int
}

// NewToneProbe creates a probe for frequency, which must lie in
// [0, sampleRate/2].
func NewToneProbe(frequency, sampleRate float64) (*ToneProbe, error) {
	if err := core.ValidateSampleRate("tone probe", sampleRate); err != nil {
		return nil, err
	}
	if frequency < 0 || frequency > sampleRate/2 || math.IsNaN(frequency) || math.IsInf(frequency, 0) {
		return nil, core.NewConfigError("tone probe", "frequency", frequency, "must be between 0 and Nyquist")
	}

	return &ToneProbe{
		frequency:  frequency,
		sampleRate: sampleRate,
		coeff:      2 * math.Cos(2*math.Pi*frequency/sampleRate),
	}, nil
}

// Reset clears the internal state.
func (g *ToneProbe) Reset() {
	g.s0 = 0
	g.s1 = 0
	g.count = 0
}

// ProcessBlock updates the internal state with a block of samples.
func (g *ToneProbe) ProcessBlock(input []float64) {
	s0, s1 := g.s0, g.s1

	coeff := g.coeff
	for _, x := range input {
		s := x + coeff*s0 - s1
		s1 = s0
		s0 = s
	}

	g.s0, g.s1 = s0, s1
	g.count += len(input)
}

// Power returns the squared magnitude of the frequency component,
// equivalent to |X[k]|^2 of a DFT over the processed samples.
func (g *ToneProbe) Power() float64 {
	return g.s0*g.s0 + g.s1*g.s1 - g.coeff*g.s0*g.s1
}

// Amplitude returns the peak amplitude of a sinusoid at the probe
// frequency that would produce the measured power.
func (g *ToneProbe) Amplitude() float64 {
	p := g.Power()
	if p <= 0 || g.count == 0 {
		return 0
	}
	return 2 * math.Sqrt(p) / float64(g.count)
}

// LevelDB returns Amplitude in dBFS, floored at -300 dB.
func (g *ToneProbe) LevelDB() float64 {
	a := g.Amplitude()
	if a <= 1e-15 {
		return -300
	}
	return 20 * math.Log10(a)
}

// Frequency returns the probed frequency.
func (g *ToneProbe) Frequency() float64 { return g.frequency }

// ToneReading is the result of [ProbeTones] for one frequency.
type ToneReading struct {
	Frequency float64
	Amplitude float64
	LevelDB   float64
}

// ProbeTones measures each frequency over the whole of signal.
func ProbeTones(signal []float64, sampleRate float64, frequencies ...float64) ([]ToneReading, error) {
	out := make([]ToneReading, 0, len(frequencies))
	for _, f := range frequencies {
		g, err := NewToneProbe(f, sampleRate)
		if err != nil {
			return nil, fmt.Errorf("probe %.1f Hz: %w", f, err)
		}
		g.ProcessBlock(signal)
		out = append(out, ToneReading{
			Frequency: f,
			Amplitude: g.Amplitude(),
			LevelDB:   g.LevelDB(),
		})
	}
	return out, nil
}
