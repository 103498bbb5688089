package core

import "testing"

func TestEnsureLen(t *testing.T) {
	buf := make([]float64, 2, 8)
	got := EnsureLen(buf, 6)
	if len(got) != 6 || cap(got) != 8 {
		t.Fatalf("len=%d cap=%d, want len=6 cap=8", len(got), cap(got))
	}

	grown := EnsureLen(buf, 16)
	if len(grown) != 16 {
		t.Fatalf("len=%d, want 16", len(grown))
	}

	if len(EnsureLen(buf, 0)) != 0 {
		t.Fatal("EnsureLen(0) should return an empty slice")
	}
}

func TestZero(t *testing.T) {
	buf := []float64{1, 2, 3}
	Zero(buf)
	for i, v := range buf {
		if v != 0 {
			t.Fatalf("buf[%d] = %v, want 0", i, v)
		}
	}
}
