package biquad

import (
	"math"
	"math/cmplx"
	"testing"
)

func TestResponse_Passthrough(t *testing.T) {
	c := Coefficients{B0: 1}
	for _, f := range []float64{0, 100, 1000, 10000} {
		h := c.Response(f, 44100)
		if !almostEqual(cmplx.Abs(h), 1, eps) {
			t.Fatalf("|H(%v)| = %v, want 1", f, cmplx.Abs(h))
		}
	}
}

func TestResponse_DCGain(t *testing.T) {
	c := smoothingCoeffs()
	// H(1) = (0.25+0.5+0.25) / (1-0.2+0.04)
	want := 1.0 / 0.84
	if got := cmplx.Abs(c.Response(0, 44100)); !almostEqual(got, want, 1e-12) {
		t.Fatalf("DC gain = %v, want %v", got, want)
	}
}

func TestChain_Response_ProductOfSections(t *testing.T) {
	coeffs := twoSectionCoeffs()
	chain := NewChain(coeffs, WithGain(0.7))

	for _, f := range []float64{50, 500, 5000} {
		want := complex(0.7, 0) * coeffs[0].Response(f, 48000) * coeffs[1].Response(f, 48000)
		got := chain.Response(f, 48000)
		if cmplx.Abs(got-want) > 1e-12 {
			t.Fatalf("f=%v: got %v, want %v", f, got, want)
		}
		if db := chain.MagnitudeDB(f, 48000); !almostEqual(db, 20*math.Log10(cmplx.Abs(want)), 1e-9) {
			t.Fatalf("f=%v: MagnitudeDB = %v", f, db)
		}
	}
}

func TestChain_ImpulseResponse(t *testing.T) {
	c := NewChain(twoSectionCoeffs())
	c.ProcessSample(0.9)
	saved := c.State()

	ir := c.ImpulseResponse(16)
	if len(ir) != 16 {
		t.Fatalf("len = %d, want 16", len(ir))
	}
	if !almostEqual(ir[0], 0.25*0.1, eps) {
		t.Fatalf("ir[0] = %v, want %v", ir[0], 0.025)
	}

	after := c.State()
	for i := range saved {
		if saved[i] != after[i] {
			t.Fatal("ImpulseResponse modified chain state")
		}
	}

	if c.ImpulseResponse(0) != nil {
		t.Fatal("ImpulseResponse(0) should be nil")
	}
}
