package voiceband

import (
	"errors"
	"testing"

	"github.com/cwbudde/algo-voice/dsp/core"
	"github.com/cwbudde/algo-voice/internal/testutil"
)

func TestFilterContinuity(t *testing.T) {
	for _, mode := range []Mode{ModeLowpass, ModeTelephone} {
		t.Run(mode.String(), func(t *testing.T) {
			signal := testutil.DeterministicSine(1000, 44100, 0.5, 2048)

			whole, err := New(44100, WithMode(mode))
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			split, err := New(44100, WithMode(mode))
			if err != nil {
				t.Fatalf("New: %v", err)
			}

			want := append([]float64(nil), signal...)
			whole.Process(want)

			got := append([]float64(nil), signal...)
			split.Process(got[:1024])
			split.Process(got[1024:])

			testutil.RequireSliceNearlyEqual(t, got, want, 1e-12)
		})
	}
}

func TestFilterUnevenChunks(t *testing.T) {
	signal := testutil.DeterministicNoise(7, 0.3, 3000)

	ref, err := BandpassTelephone(16000)
	if err != nil {
		t.Fatalf("BandpassTelephone: %v", err)
	}
	want := append([]float64(nil), signal...)
	ref.Process(want)

	f, err := BandpassTelephone(16000)
	if err != nil {
		t.Fatalf("BandpassTelephone: %v", err)
	}
	got := append([]float64(nil), signal...)
	for _, bounds := range [][2]int{{0, 1}, {1, 513}, {513, 2000}, {2000, 3000}} {
		f.Process(got[bounds[0]:bounds[1]])
	}

	testutil.RequireSliceNearlyEqual(t, got, want, 1e-12)
}

func TestTelephoneResponse(t *testing.T) {
	f, err := BandpassTelephone(44100)
	if err != nil {
		t.Fatalf("BandpassTelephone: %v", err)
	}
	if f.Mode() != ModeTelephone {
		t.Fatalf("mode = %v", f.Mode())
	}

	if got := f.MagnitudeDB(1000); got < -1 {
		t.Errorf("1 kHz = %.2f dB, want > -1", got)
	}
	if got := f.MagnitudeDB(50); got > -40 {
		t.Errorf("50 Hz = %.2f dB, want < -40", got)
	}
	if got := f.MagnitudeDB(8000); got > -20 {
		t.Errorf("8 kHz = %.2f dB, want < -20", got)
	}
}

func TestLowpassResponse(t *testing.T) {
	f, err := Lowpass(44100)
	if err != nil {
		t.Fatalf("Lowpass: %v", err)
	}

	if got := f.MagnitudeDB(1000); got < -0.1 {
		t.Errorf("1 kHz = %.3f dB, want ~0", got)
	}
	if got := f.MagnitudeDB(8000); got > -2.9 || got < -3.1 {
		t.Errorf("8 kHz = %.3f dB, want -3.01", got)
	}
}

func TestFilterSteadyStateSine(t *testing.T) {
	f, err := BandpassTelephone(44100)
	if err != nil {
		t.Fatalf("BandpassTelephone: %v", err)
	}

	pass := testutil.DeterministicSine(1000, 44100, 0.5, 44100)
	f.Process(pass)
	if got := core.RMS(pass[22050:]); got < 0.3 {
		t.Errorf("1 kHz RMS after filter = %.4f, want ~0.354", got)
	}

	f.Reset()
	reject := testutil.DeterministicSine(50, 44100, 0.5, 44100)
	f.Process(reject)
	if got := core.RMS(reject[22050:]); got > 0.01 {
		t.Errorf("50 Hz RMS after filter = %.4f, want < 0.01", got)
	}
	testutil.RequireFinite(t, reject)
}

func TestFilterInvalidConfig(t *testing.T) {
	cases := []struct {
		name string
		sr   float64
		opts []Option
	}{
		{"lowpass above nyquist", 16000, nil},
		{"zero order", 44100, []Option{WithOrder(0)}},
		{"inverted band", 44100, []Option{WithMode(ModeTelephone), WithBand(3400, 300)}},
		{"band at zero", 44100, []Option{WithMode(ModeTelephone), WithBand(0, 3400)}},
		{"unknown mode", 44100, []Option{WithMode(Mode(9))}},
		{"bad sample rate", -1, nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(tc.sr, tc.opts...)
			if !errors.Is(err, core.ErrConfiguration) {
				t.Fatalf("err = %v, want ErrConfiguration", err)
			}
			var cfgErr *core.ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("err = %T, want *core.ConfigError", err)
			}
		})
	}
}

func TestTelephoneAtNarrowbandRate(t *testing.T) {
	f, err := New(8000, WithMode(ModeTelephone))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := f.MagnitudeDB(3400); got > -2.9 || got < -3.1 {
		t.Errorf("3.4 kHz = %.3f dB, want -3.01", got)
	}
}

func TestParseMode(t *testing.T) {
	for _, m := range []Mode{ModeLowpass, ModeTelephone} {
		got, err := ParseMode(m.String())
		if err != nil || got != m {
			t.Fatalf("ParseMode(%q) = %v, %v", m.String(), got, err)
		}
	}
	if _, err := ParseMode("highpass"); !errors.Is(err, core.ErrConfiguration) {
		t.Fatalf("ParseMode(highpass) err = %v", err)
	}
}

func BenchmarkTelephone1024(b *testing.B) {
	f, err := BandpassTelephone(44100)
	if err != nil {
		b.Fatal(err)
	}
	buf := testutil.DeterministicNoise(1, 0.1, 1024)

	b.ReportAllocs()
	b.ResetTimer()
	for range b.N {
		f.Process(buf)
	}
}
