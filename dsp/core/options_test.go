package core

import (
	"errors"
	"math"
	"testing"
	"time"
)

func TestApplyProcessorOptions(t *testing.T) {
	cfg := ApplyProcessorOptions(WithSampleRate(16000), WithBlockSize(320))
	if cfg.SampleRate != 16000 {
		t.Fatalf("sample rate = %v, want 16000", cfg.SampleRate)
	}
	if cfg.BlockSize != 320 {
		t.Fatalf("block size = %d, want 320", cfg.BlockSize)
	}
}

func TestInvalidOptionsIgnored(t *testing.T) {
	cfg := ApplyProcessorOptions(WithSampleRate(0), WithBlockSize(-1))
	def := DefaultProcessorConfig()
	if cfg != def {
		t.Fatalf("cfg = %#v, want %#v", cfg, def)
	}
}

func TestProcessorConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     ProcessorConfig
		wantErr bool
	}{
		{"defaults", DefaultProcessorConfig(), false},
		{"zero rate", ProcessorConfig{SampleRate: 0, BlockSize: 1024}, true},
		{"NaN rate", ProcessorConfig{SampleRate: math.NaN(), BlockSize: 1024}, true},
		{"Inf rate", ProcessorConfig{SampleRate: math.Inf(1), BlockSize: 1024}, true},
		{"zero block", ProcessorConfig{SampleRate: 44100, BlockSize: 0}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate("test")
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrConfiguration) {
				t.Fatalf("error %v does not wrap ErrConfiguration", err)
			}
		})
	}
}

func TestCadence(t *testing.T) {
	cfg := ProcessorConfig{SampleRate: 48000, BlockSize: 960}
	if got := cfg.Cadence(); got != 20*time.Millisecond {
		t.Fatalf("Cadence() = %v, want 20ms", got)
	}
}

func TestMsToSamples(t *testing.T) {
	if got := MsToSamples(100, 44100); got != 4410 {
		t.Fatalf("MsToSamples(100, 44100) = %d, want 4410", got)
	}
	if got := MsToSamples(50, 44100); got != 2205 {
		t.Fatalf("MsToSamples(50, 44100) = %d, want 2205", got)
	}
}

func TestSmoothingCoeff(t *testing.T) {
	got := SmoothingCoeff(10, 44100)
	want := math.Exp(-1 / 441.0)
	if !NearlyEqual(got, want, 1e-12) {
		t.Fatalf("SmoothingCoeff(10, 44100) = %v, want %v", got, want)
	}
	if SmoothingCoeff(0, 44100) != 0 {
		t.Fatal("zero duration should give zero coefficient")
	}
}

func TestValidateDuration(t *testing.T) {
	if err := ValidateDuration("gate", "attack", 0); err != nil {
		t.Fatalf("zero duration rejected: %v", err)
	}
	for _, ms := range []float64{-1, math.NaN(), math.Inf(1)} {
		if err := ValidateDuration("gate", "attack", ms); err == nil {
			t.Fatalf("ValidateDuration(%v) accepted", ms)
		}
	}
}
