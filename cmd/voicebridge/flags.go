package main

import (
	"github.com/cwbudde/algo-voice/dsp/pipeline"
)

// PipelineFlags mirrors pipeline.Config on the command line. Every flag can
// also be set from the YAML file given with --config or from a VOICE_*
// environment variable.
type PipelineFlags struct {
	SampleRate float64 `name:"sample-rate" default:"44100" help:"Sample rate of the raw PCM streams in Hz."`
	ChunkSize  int     `name:"chunk-size" default:"1024" help:"Samples per processed chunk."`
	Telephone  bool    `help:"Band-limit to the telephone band instead of low-passing."`
	NoEcho     bool    `name:"no-echo" help:"Disable echo cancellation."`

	Gate   GateFlags   `embed:"" prefix:"gate-"`
	AGC    AGCFlags    `embed:"" prefix:"agc-"`
	Echo   EchoFlags   `embed:"" prefix:"echo-"`
	Filter FilterFlags `embed:"" prefix:"filter-"`
	Meter  MeterFlags  `embed:"" prefix:"meter-"`
}

type GateFlags struct {
	Threshold float64 `default:"-40" help:"Noise gate RMS threshold in dBFS."`
	Attack    float64 `default:"5" help:"Noise gate attack budget in ms."`
	Release   float64 `default:"100" help:"Noise gate release budget in ms."`
}

type AGCFlags struct {
	Target  float64 `default:"0.1" help:"AGC target RMS on the [-1, 1] scale."`
	Attack  float64 `default:"10" help:"AGC attack time in ms (gain rising)."`
	Release float64 `default:"500" help:"AGC release time in ms (gain falling)."`
}

type EchoFlags struct {
	Delay    float64 `default:"50" help:"Reference history headroom beyond the taps in ms."`
	Bulk     float64 `name:"bulk-delay" default:"0" help:"Newest reference ms skipped before the tap window."`
	Taps     int     `default:"512" help:"Adaptive filter length in taps."`
	Step     float64 `default:"0.01" help:"LMS step size."`
	Damping  float64 `default:"0.8" help:"Fraction of the echo estimate subtracted."`
	RefPower float64 `name:"ref-power" default:"0.01" help:"Expected reference power for the LMS stability check."`
}

type FilterFlags struct {
	Cutoff   float64 `default:"8000" help:"Low-pass cutoff in Hz."`
	BandLow  float64 `name:"band-low" default:"300" help:"Telephone band lower edge in Hz."`
	BandHigh float64 `name:"band-high" default:"3400" help:"Telephone band upper edge in Hz."`
	Order    int     `default:"4" help:"Butterworth prototype order."`
}

type MeterFlags struct {
	Window float64 `default:"100" help:"Level meter RMS window in ms."`
}

// Config converts the flags into a validated pipeline.Config.
func (f PipelineFlags) Config() (pipeline.Config, error) {
	cfg := pipeline.DefaultConfig()
	cfg.SampleRate = f.SampleRate
	cfg.ChunkSize = f.ChunkSize
	cfg.TelephoneMode = f.Telephone
	cfg.EchoCancellation = !f.NoEcho

	cfg.Gate.ThresholdDB = f.Gate.Threshold
	cfg.Gate.AttackMs = f.Gate.Attack
	cfg.Gate.ReleaseMs = f.Gate.Release

	cfg.AGC.TargetRMS = f.AGC.Target
	cfg.AGC.AttackMs = f.AGC.Attack
	cfg.AGC.ReleaseMs = f.AGC.Release

	cfg.Echo.DelayMs = f.Echo.Delay
	cfg.Echo.BulkDelayMs = f.Echo.Bulk
	cfg.Echo.FilterLength = f.Echo.Taps
	cfg.Echo.StepSize = f.Echo.Step
	cfg.Echo.Damping = f.Echo.Damping
	cfg.Echo.ReferencePower = f.Echo.RefPower

	cfg.Filter.LowpassCutoff = f.Filter.Cutoff
	cfg.Filter.BandLow = f.Filter.BandLow
	cfg.Filter.BandHigh = f.Filter.BandHigh
	cfg.Filter.Order = f.Filter.Order

	cfg.Meter.WindowMs = f.Meter.Window

	if err := cfg.Validate(); err != nil {
		return pipeline.Config{}, err
	}
	return cfg, nil
}
