package main

import (
	"fmt"
	"time"

	"github.com/cwbudde/algo-voice/dsp/core"
	"github.com/cwbudde/algo-voice/dsp/pipeline"
	"github.com/cwbudde/algo-voice/dsp/signal"
	"github.com/cwbudde/algo-voice/internal/cli"
	"github.com/cwbudde/algo-voice/stats/summary"
)

// BenchCmd feeds a synthetic call through one pipeline and times every
// chunk.
type BenchCmd struct {
	Chunks   int     `default:"500" help:"Number of chunks to process."`
	Seed     int64   `default:"1" help:"Seed of the synthetic voices."`
	EchoGain float64 `name:"echo-gain" default:"0.4" help:"Gain of the far-end echo mixed into the capture."`
	Hum      float64 `default:"0.02" help:"Amplitude of the 50 Hz mains hum mixed into the capture."`
}

// benchResult is what Run reports.
type benchResult struct {
	durations summary.Summary
	levels    summary.Summary
	stats     pipeline.Stats
	gain      float64
	resets    int
}

func (c *BenchCmd) Run(g *Globals) error {
	cfg, err := g.Pipeline.Config()
	if err != nil {
		return err
	}

	res, err := c.run(cfg)
	if err != nil {
		return err
	}

	budget := res.stats.Budget
	mean := time.Duration(res.durations.Mean * float64(time.Microsecond))
	realtime := 0.0
	if mean > 0 {
		realtime = float64(budget) / float64(mean)
	}

	cli.RenderSummary(g.Stdout, "voicebridge bench",
		cli.Section{Title: "Timing", Rows: []cli.Row{
			{Key: "Chunks", Value: fmt.Sprint(res.stats.Chunks)},
			{Key: "Budget per chunk", Value: budget.String()},
			{Key: "Mean", Value: mean.String()},
			{Key: "Std dev", Value: fmt.Sprintf("%.1fµs", res.durations.StdDev)},
			{Key: "Max", Value: res.stats.MaxDuration.String()},
			{Key: "Real-time factor", Value: fmt.Sprintf("%.1fx", realtime), Warn: realtime < 1},
			{Key: "Overruns", Value: fmt.Sprint(res.stats.Overruns), Warn: res.stats.Overruns > 0},
		}},
		cli.Section{Title: "Signal", Rows: []cli.Row{
			{Key: "Mean level", Value: fmt.Sprintf("%.1f dB", res.levels.Mean)},
			{Key: "AGC gain", Value: fmt.Sprintf("%.3f", res.gain)},
			{Key: "Echo resets", Value: fmt.Sprint(res.resets), Warn: res.resets > 0},
			{Key: "Clipped samples", Value: fmt.Sprint(res.stats.Clipped), Warn: res.stats.Clipped > 0},
		}},
	)
	return nil
}

func (c *BenchCmd) run(cfg pipeline.Config) (benchResult, error) {
	if c.Chunks <= 0 {
		return benchResult{}, fmt.Errorf("chunks must be > 0, got %d", c.Chunks)
	}

	near, far, err := c.synthesize(cfg)
	if err != nil {
		return benchResult{}, err
	}

	p, err := pipeline.New(cfg)
	if err != nil {
		return benchResult{}, err
	}

	n := cfg.ChunkSize
	dst := make([]int16, n)

	var durations, levels summary.Accumulator
	for i := range c.Chunks {
		in := near[i*n : (i+1)*n]
		ref := far[i*n : (i+1)*n]

		start := time.Now()
		db, err := p.ProcessIncomingInto(dst, in, ref)
		if err != nil {
			return benchResult{}, err
		}
		durations.Add(float64(time.Since(start)) / float64(time.Microsecond))
		levels.Add(db)
	}

	return benchResult{
		durations: durations.Result(),
		levels:    levels.Result(),
		stats:     p.Stats(),
		gain:      p.Gain(),
		resets:    p.EchoResets(),
	}, nil
}

// synthesize builds the near-end capture (local voice, echo of the far end
// and mains hum) and the far-end reference, both as int16 PCM.
func (c *BenchCmd) synthesize(cfg pipeline.Config) (near, far []int16, err error) {
	total := c.Chunks * cfg.ChunkSize
	rate := []core.ProcessorOption{core.WithSampleRate(cfg.SampleRate)}

	local, err := signal.NewGeneratorWithOptions(rate, signal.WithSeed(c.Seed)).Voice(total)
	if err != nil {
		return nil, nil, err
	}

	gen := signal.NewGeneratorWithOptions(rate, signal.WithSeed(c.Seed+1))
	remote, err := gen.Voice(total)
	if err != nil {
		return nil, nil, err
	}
	// The echo lands in the middle of the adaptive tap span.
	lagMs := cfg.Echo.BulkDelayMs + 500*float64(cfg.Echo.FilterLength)/cfg.SampleRate
	echo, err := gen.Echo(remote, lagMs, c.EchoGain)
	if err != nil {
		return nil, nil, err
	}
	hum, err := gen.Sine(50, c.Hum, total)
	if err != nil {
		return nil, nil, err
	}

	if err := signal.Mix(local, echo, 1); err != nil {
		return nil, nil, err
	}
	if err := signal.Mix(local, hum, 1); err != nil {
		return nil, nil, err
	}

	near = make([]int16, total)
	far = make([]int16, total)
	core.FloatToInt16(near, local)
	core.FloatToInt16(far, remote)
	return near, far, nil
}
