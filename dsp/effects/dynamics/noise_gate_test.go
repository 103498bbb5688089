package dynamics

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-voice/dsp/core"
	"github.com/cwbudde/algo-voice/internal/testutil"
)

func TestNewNoiseGate(t *testing.T) {
	tests := []struct {
		name       string
		sampleRate float64
		opts       []GateOption
		wantErr    bool
	}{
		{"defaults", 44100, nil, false},
		{"zero attack", 48000, []GateOption{WithGateAttack(0)}, false},
		{"zero threshold", 48000, []GateOption{WithGateThreshold(0)}, false},
		{"invalid sample rate", 0, nil, true},
		{"NaN sample rate", math.NaN(), nil, true},
		{"positive threshold", 44100, []GateOption{WithGateThreshold(3)}, true},
		{"NaN threshold", 44100, []GateOption{WithGateThreshold(math.NaN())}, true},
		{"negative attack", 44100, []GateOption{WithGateAttack(-1)}, true},
		{"infinite release", 44100, []GateOption{WithGateRelease(math.Inf(1))}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := NewNoiseGate(tt.sampleRate, tt.opts...)
			if tt.wantErr {
				if !errors.Is(err, core.ErrConfiguration) {
					t.Fatalf("err = %v, want ErrConfiguration", err)
				}
				return
			}
			if err != nil || g == nil {
				t.Fatalf("NewNoiseGate() = %v, %v", g, err)
			}
		})
	}
}

func TestNoiseGateDefaults(t *testing.T) {
	g, err := NewNoiseGate(44100)
	if err != nil {
		t.Fatal(err)
	}

	if !core.NearlyEqual(g.Threshold(), 0.01, 1e-12) {
		t.Errorf("Threshold = %v, want 0.01", g.Threshold())
	}
	if g.AttackSamples() != 220 {
		t.Errorf("AttackSamples = %d, want 220", g.AttackSamples())
	}
	if g.ReleaseSamples() != 4410 {
		t.Errorf("ReleaseSamples = %d, want 4410", g.ReleaseSamples())
	}
	if g.IsOpen() {
		t.Error("gate must start closed")
	}
}

func TestNoiseGateBelowThresholdZeroes(t *testing.T) {
	g, err := NewNoiseGate(44100)
	if err != nil {
		t.Fatal(err)
	}

	for _, amp := range []float64{0, 1e-6, 0.005, 0.0141} {
		buf := testutil.DeterministicSine(440, 44100, amp, 1024)
		g.Process(buf)

		if len(buf) != 1024 {
			t.Fatalf("amp=%v: length changed to %d", amp, len(buf))
		}
		for i, v := range buf {
			if v != 0 {
				t.Fatalf("amp=%v: sample %d = %v, want 0", amp, i, v)
			}
		}
		if g.IsOpen() {
			t.Fatalf("amp=%v: gate open below threshold", amp)
		}
	}
}

func TestNoiseGateAboveThresholdPasses(t *testing.T) {
	g, err := NewNoiseGate(44100)
	if err != nil {
		t.Fatal(err)
	}

	in := testutil.DeterministicSine(440, 44100, 0.1, 1024)
	buf := append([]float64(nil), in...)
	g.Process(buf)

	if !g.IsOpen() {
		t.Fatal("gate closed above threshold")
	}
	testutil.RequireSliceNearlyEqual(t, buf, in, 0)
}

func TestNoiseGateSamplesSinceChange(t *testing.T) {
	g, err := NewNoiseGate(44100)
	if err != nil {
		t.Fatal(err)
	}

	loud := func() []float64 { return testutil.DeterministicSine(440, 44100, 0.5, 512) }
	quiet := func() []float64 { return make([]float64, 512) }

	steps := []struct {
		chunk []float64
		open  bool
		since int
	}{
		{quiet(), false, 512},
		{loud(), true, 0},
		{loud(), true, 512},
		{loud(), true, 1024},
		{quiet(), false, 0},
		{quiet(), false, 512},
	}

	for i, s := range steps {
		g.Process(s.chunk)
		if g.IsOpen() != s.open || g.SamplesSinceChange() != s.since {
			t.Fatalf("step %d: open=%v since=%d, want open=%v since=%d",
				i, g.IsOpen(), g.SamplesSinceChange(), s.open, s.since)
		}
	}

	g.Reset()
	if g.IsOpen() || g.SamplesSinceChange() != 0 {
		t.Fatal("Reset did not close the gate")
	}
}

func BenchmarkNoiseGate1024(b *testing.B) {
	g, err := NewNoiseGate(44100)
	if err != nil {
		b.Fatal(err)
	}
	buf := testutil.DeterministicSine(440, 44100, 0.5, 1024)

	b.ReportAllocs()
	b.ResetTimer()
	for range b.N {
		g.Process(buf)
	}
}
