package testutil

import (
	"math"
	"testing"
)

func TestMaxAbsDiff(t *testing.T) {
	d, err := MaxAbsDiff([]float64{1.0, 2.0, 3.0}, []float64{1.0, 2.1, 3.0})
	if err != nil {
		t.Fatalf("MaxAbsDiff error: %v", err)
	}
	if math.Abs(d-0.1) > 1e-15 {
		t.Fatalf("MaxAbsDiff = %v, want 0.1", d)
	}

	if _, err := MaxAbsDiff([]float64{1}, nil); err == nil {
		t.Fatal("expected length mismatch error")
	}
}

func TestPeakAndEnergy(t *testing.T) {
	data := []float64{0.5, -2, 1}
	if got := Peak(data); got != 2 {
		t.Fatalf("Peak = %v, want 2", got)
	}
	if got := Energy(data); got != 5.25 {
		t.Fatalf("Energy = %v, want 5.25", got)
	}
}
