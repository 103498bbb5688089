package delay

import (
	"errors"
	"testing"

	"github.com/cwbudde/algo-voice/dsp/core"
)

// --- construction and validation ---

func TestNewValidation(t *testing.T) {
	for _, size := range []int{0, -1} {
		if _, err := New(size); !errors.Is(err, core.ErrConfiguration) {
			t.Fatalf("size=%d: err = %v, want ErrConfiguration", size, err)
		}
	}
}

// --- Read/Write ---

func TestReadWrite(t *testing.T) {
	d, err := New(8)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 8; i++ {
		d.Write(float64(i + 1))
	}

	for delay := 0; delay < 8; delay++ {
		want := float64(8 - delay)
		if got := d.Read(delay); got != want {
			t.Fatalf("Read(%d): got %v want %v", delay, got, want)
		}
	}
	if got := d.Read(8); got != 0 {
		t.Fatalf("Read beyond capacity: got %v want 0", got)
	}
}

func TestFilledSaturates(t *testing.T) {
	d, err := New(4)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 3; i++ {
		d.Write(1)
	}
	if d.Filled() != 3 || d.Full() {
		t.Fatalf("after 3 writes: filled=%d full=%v", d.Filled(), d.Full())
	}

	d.WriteBlock([]float64{1, 1, 1, 1, 1})
	if d.Filled() != 4 || !d.Full() {
		t.Fatalf("after 8 writes: filled=%d full=%v", d.Filled(), d.Full())
	}
}

// --- contiguous windows ---

func TestWindowAcrossWrap(t *testing.T) {
	d, err := New(5)
	if err != nil {
		t.Fatal(err)
	}

	// Write 1..13 so the ring has wrapped twice.
	for i := 1; i <= 13; i++ {
		d.Write(float64(i))

		if d.Filled() < 3 {
			continue
		}
		w, err := d.Window(3, 0)
		if err != nil {
			t.Fatal(err)
		}
		want := []float64{float64(i - 2), float64(i - 1), float64(i)}
		for k := range want {
			if w[k] != want[k] {
				t.Fatalf("after %d writes: window = %v, want %v", i, w, want)
			}
		}
	}
}

func TestWindowWithDelay(t *testing.T) {
	d, err := New(6)
	if err != nil {
		t.Fatal(err)
	}
	d.WriteBlock([]float64{1, 2, 3, 4, 5, 6, 7, 8, 9})

	w, err := d.Window(4, 2)
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{4, 5, 6, 7}
	for k := range want {
		if w[k] != want[k] {
			t.Fatalf("window = %v, want %v", w, want)
		}
	}
	if cap(w) != len(w) {
		t.Fatalf("window capacity %d leaks beyond length %d", cap(w), len(w))
	}
}

func TestWindowBounds(t *testing.T) {
	d, err := New(4)
	if err != nil {
		t.Fatal(err)
	}

	for _, tc := range [][2]int{{0, 0}, {5, 0}, {3, 2}, {2, -1}} {
		if _, err := d.Window(tc[0], tc[1]); !errors.Is(err, core.ErrContractViolation) {
			t.Fatalf("Window(%d,%d): err = %v", tc[0], tc[1], err)
		}
	}
}

// --- reset ---

func TestReset(t *testing.T) {
	d, err := New(4)
	if err != nil {
		t.Fatal(err)
	}
	d.WriteBlock([]float64{1, 2, 3, 4})
	d.Reset()

	if d.Filled() != 0 {
		t.Fatalf("Filled after reset = %d", d.Filled())
	}
	w, err := d.Window(4, 0)
	if err != nil {
		t.Fatal(err)
	}
	for i, v := range w {
		if v != 0 {
			t.Fatalf("sample %d = %v after reset", i, v)
		}
	}
}

func BenchmarkWindow512(b *testing.B) {
	d, err := New(512 + 2205)
	if err != nil {
		b.Fatal(err)
	}

	b.ReportAllocs()
	for i := range b.N {
		d.Write(float64(i))
		w, _ := d.Window(512, 2205)
		_ = w[0]
	}
}
