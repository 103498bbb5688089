package echo

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-voice/dsp/core"
	"github.com/cwbudde/algo-voice/internal/testutil"
)

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name string
		sr   float64
		opts []Option
	}{
		{"zero sample rate", 0, nil},
		{"negative delay", 44100, []Option{WithDelay(-1)}},
		{"delay above maximum", 44100, []Option{WithDelay(MaxDelayMs + 1)}},
		{"huge delay", 44100, []Option{WithDelay(1e7)}},
		{"negative bulk delay", 44100, []Option{WithBulkDelay(-1)}},
		{"bulk delay beyond delay", 44100, []Option{WithDelay(10), WithBulkDelay(11)}},
		{"zero taps", 44100, []Option{WithFilterLength(0)}},
		{"too many taps", 44100, []Option{WithFilterLength(MaxFilterLength + 1)}},
		{"zero step", 44100, []Option{WithStepSize(0)}},
		{"step above one", 44100, []Option{WithStepSize(1.5)}},
		{"negative damping", 44100, []Option{WithDamping(-0.1)}},
		{"damping above one", 44100, []Option{WithDamping(1.1)}},
		{"NaN damping", 44100, []Option{WithDamping(math.NaN())}},
		{"zero reference power", 44100, []Option{WithReferencePower(0)}},
		{"loop gain too high", 44100, []Option{WithStepSize(0.5), WithFilterLength(4096), WithReferencePower(0.01)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.sr, tt.opts...)
			if !errors.Is(err, core.ErrConfiguration) {
				t.Fatalf("err = %v, want ErrConfiguration", err)
			}
		})
	}
}

func TestDefaults(t *testing.T) {
	c, err := New(44100)
	if err != nil {
		t.Fatal(err)
	}

	if c.DelaySamples() != 2205 {
		t.Errorf("DelaySamples = %d, want 2205", c.DelaySamples())
	}
	if c.BulkDelaySamples() != 0 {
		t.Errorf("BulkDelaySamples = %d, want 0", c.BulkDelaySamples())
	}
	cfg := c.Config()
	if cfg.FilterLength != 512 || cfg.StepSize != 0.01 || cfg.Damping != 0.8 {
		t.Errorf("Config = %+v", cfg)
	}
	if c.Ready() {
		t.Error("Ready before any reference")
	}
}

func TestPassthroughUntilHistoryFills(t *testing.T) {
	c, err := New(8000, WithDelay(0), WithFilterLength(64))
	if err != nil {
		t.Fatal(err)
	}

	in := testutil.DeterministicNoise(1, 0.3, 32)
	ref := testutil.DeterministicNoise(2, 0.3, 32)

	buf := append([]float64(nil), in...)
	out, err := c.Process(buf, ref)
	if err != nil {
		t.Fatal(err)
	}
	testutil.RequireSliceNearlyEqual(t, out, in, 0)
	if c.Ready() {
		t.Fatal("Ready after 32 of 64 samples")
	}

	// 32 + 32 reaches the filter length, so this chunk adapts.
	buf = append([]float64(nil), in...)
	if _, err := c.Process(buf, ref); err != nil {
		t.Fatal(err)
	}
	if !c.Ready() {
		t.Fatal("not Ready after 64 samples")
	}
}

func TestLengthMismatch(t *testing.T) {
	c, err := New(8000, WithFilterLength(16))
	if err != nil {
		t.Fatal(err)
	}

	in := make([]float64, 8)
	if _, err := c.Process(in, make([]float64, 7)); !errors.Is(err, core.ErrContractViolation) {
		t.Fatalf("err = %v, want ErrContractViolation", err)
	}
}

// Incoming is the outgoing reference delayed by 3 samples and attenuated.
// The residual energy must fall toward (1-damping)^2 of the echo as the
// filter adapts.
func TestConvergence(t *testing.T) {
	const (
		chunk  = 256
		chunks = 40
	)

	c, err := New(8000,
		WithDelay(0),
		WithFilterLength(32),
		WithStepSize(0.002),
		WithReferencePower(0.33),
	)
	if err != nil {
		t.Fatal(err)
	}

	ref := testutil.DeterministicNoise(11, 1, chunk*chunks)
	mic := testutil.EchoOf(ref, 3, 0.6)

	residual := make([]float64, chunks)
	for k := range chunks {
		in := append([]float64(nil), mic[k*chunk:(k+1)*chunk]...)
		out, err := c.Process(in, ref[k*chunk:(k+1)*chunk])
		if err != nil {
			t.Fatal(err)
		}
		testutil.RequireFinite(t, out)
		residual[k] = testutil.Energy(out)
	}

	early := residual[0] + residual[1]
	late := residual[chunks-2] + residual[chunks-1]
	if late >= 0.25*early {
		t.Fatalf("residual did not fall: early=%v late=%v", early, late)
	}

	// The learned path peaks at the echo tap.
	w := c.Weights()
	peak := 0
	for i := range w {
		if math.Abs(w[i]) > math.Abs(w[peak]) {
			peak = i
		}
	}
	if want := len(w) - 1 - 3; peak != want || math.Abs(w[peak]-0.6) > 0.05 {
		t.Fatalf("peak tap %d = %v, want tap %d ~0.6", peak, w[peak], want)
	}
}

// The default history headroom must not push short echoes out of the tap
// window: the taps cover the newest reference samples.
func TestShortEchoWithDefaultDelay(t *testing.T) {
	const (
		chunk  = 1024
		chunks = 40
		lag    = 100
	)

	c, err := New(44100, WithStepSize(0.002))
	if err != nil {
		t.Fatal(err)
	}
	if lag >= c.DelaySamples() {
		t.Fatalf("lag %d not shorter than delay %d", lag, c.DelaySamples())
	}

	ref := testutil.DeterministicNoise(21, 1, chunk*chunks)
	mic := testutil.EchoOf(ref, lag, 0.6)

	residual := make([]float64, chunks)
	for k := range chunks {
		in := append([]float64(nil), mic[k*chunk:(k+1)*chunk]...)
		out, err := c.Process(in, ref[k*chunk:(k+1)*chunk])
		if err != nil {
			t.Fatal(err)
		}
		testutil.RequireFinite(t, out)
		residual[k] = testutil.Energy(out)
	}

	input := testutil.Energy(mic[(chunks-1)*chunk:])
	if last := residual[chunks-1]; last >= 0.25*input {
		t.Fatalf("last residual %v not below a quarter of the echo energy %v", last, input)
	}

	w := c.Weights()
	if got := w[len(w)-1-lag]; math.Abs(got-0.6) > 0.05 {
		t.Fatalf("tap for lag %d = %v, want ~0.6", lag, got)
	}
}

// With a bulk delay, the window ends that many samples before the newest
// reference sample.
func TestConvergenceWithBulkDelay(t *testing.T) {
	const chunk = 200

	c, err := New(1000,
		WithDelay(10),
		WithBulkDelay(10), // 10 samples at 1 kHz
		WithFilterLength(8),
		WithStepSize(0.1),
		WithReferencePower(0.33),
	)
	if err != nil {
		t.Fatal(err)
	}

	ref := testutil.DeterministicNoise(5, 1, chunk*30)
	mic := testutil.EchoOf(ref, 12, 0.5)

	for k := range 30 {
		in := append([]float64(nil), mic[k*chunk:(k+1)*chunk]...)
		if _, err := c.Process(in, ref[k*chunk:(k+1)*chunk]); err != nil {
			t.Fatal(err)
		}
	}

	if c.BulkDelaySamples() != 10 {
		t.Fatalf("BulkDelaySamples = %d, want 10", c.BulkDelaySamples())
	}

	w := c.Weights()
	// Lag 12 = bulk delay 10 + 2 taps back from the window end.
	if got := w[len(w)-1-2]; math.Abs(got-0.5) > 0.05 {
		t.Fatalf("tap for lag 12 = %v, want ~0.5 (weights %v)", got, w)
	}
}

func TestNonFiniteReferenceResetsWeights(t *testing.T) {
	c, err := New(8000, WithDelay(0), WithFilterLength(4))
	if err != nil {
		t.Fatal(err)
	}

	ref := []float64{0.1, 0.2, math.Inf(1), 0.1, 0.2, 0.3, 0.1, 0.2}
	in := []float64{0.1, 0.1, 0.1, 0.1, 0.1, 0.1, 0.1, 0.1}
	if _, err := c.Process(in, ref); err != nil {
		t.Fatal(err)
	}

	if c.Resets() == 0 {
		t.Fatal("expected a weight reset")
	}
	for i, w := range c.Weights() {
		if !core.IsFinite(w) {
			t.Fatalf("weight %d = %v", i, w)
		}
	}
}

func TestReset(t *testing.T) {
	c, err := New(8000, WithDelay(0), WithFilterLength(8))
	if err != nil {
		t.Fatal(err)
	}

	ref := testutil.DeterministicNoise(3, 0.5, 64)
	in := testutil.EchoOf(ref, 1, 0.5)
	if _, err := c.Process(in, ref); err != nil {
		t.Fatal(err)
	}
	c.Reset()

	if c.Ready() {
		t.Fatal("Ready after Reset")
	}
	for i, w := range c.Weights() {
		if w != 0 {
			t.Fatalf("weight %d = %v after Reset", i, w)
		}
	}
}

func BenchmarkProcessDefault1024(b *testing.B) {
	c, err := New(44100)
	if err != nil {
		b.Fatal(err)
	}
	ref := testutil.DeterministicNoise(1, 0.1, 1024)
	in := testutil.DeterministicNoise(2, 0.1, 1024)
	buf := make([]float64, 1024)

	b.ReportAllocs()
	b.ResetTimer()
	for range b.N {
		copy(buf, in)
		if _, err := c.Process(buf, ref); err != nil {
			b.Fatal(err)
		}
	}
}
