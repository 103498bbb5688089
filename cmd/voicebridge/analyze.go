package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/cwbudde/algo-voice/bridge"
	"github.com/cwbudde/algo-voice/dsp/core"
	"github.com/cwbudde/algo-voice/dsp/pipeline"
	"github.com/cwbudde/algo-voice/internal/cli"
	"github.com/cwbudde/algo-voice/measure/spectrum"
	"github.com/cwbudde/algo-voice/stats/summary"
)

// AnalyzeCmd reports the spectral balance of a raw PCM file.
type AnalyzeCmd struct {
	File      string `arg:"" type:"existingfile" help:"Raw PCM file to analyze."`
	FFTSize   int    `name:"fft-size" default:"4096" help:"FFT frame length (power of two)."`
	Processed bool   `help:"Also analyze the file after running it through the pipeline."`
}

// Mains hum fundamentals probed in every report.
var humFrequencies = []float64{50, 60}

type analysis struct {
	report spectrum.Report
	hum    []spectrum.ToneReading
	stats  summary.Summary
}

func (c *AnalyzeCmd) Run(g *Globals) error {
	cfg, err := g.Pipeline.Config()
	if err != nil {
		return err
	}

	f, err := os.Open(c.File)
	if err != nil {
		return err
	}
	defer f.Close()

	pcm, err := readPCM(bufio.NewReader(f), cfg.ChunkSize)
	if err != nil {
		return err
	}
	if len(pcm) == 0 {
		return fmt.Errorf("%s holds no samples", c.File)
	}

	input := make([]float64, len(pcm))
	core.Int16ToFloat(input, pcm)

	sections := make([]cli.Section, 0, 2)

	raw, err := c.analyze(input, cfg)
	if err != nil {
		return err
	}
	sections = append(sections, analysisSection("Input", raw))

	if c.Processed {
		out, err := processAll(pcm, cfg)
		if err != nil {
			return err
		}
		processed := make([]float64, len(out))
		core.Int16ToFloat(processed, out)

		res, err := c.analyze(processed, cfg)
		if err != nil {
			return err
		}
		sections = append(sections, analysisSection("Processed", res))
	}

	cli.RenderSummary(g.Stdout, "voicebridge analyze", sections...)
	return nil
}

func (c *AnalyzeCmd) analyze(signal []float64, cfg pipeline.Config) (analysis, error) {
	analyzer, err := spectrum.New(cfg.SampleRate,
		spectrum.WithFFTSize(c.FFTSize),
		spectrum.WithBand(cfg.Filter.BandLow, cfg.Filter.BandHigh),
	)
	if err != nil {
		return analysis{}, err
	}

	report, err := analyzer.Analyze(signal)
	if err != nil {
		return analysis{}, err
	}

	hum, err := spectrum.ProbeTones(signal, cfg.SampleRate, humFrequencies...)
	if err != nil {
		return analysis{}, err
	}

	return analysis{
		report: report,
		hum:    hum,
		stats:  summary.Calculate(signal),
	}, nil
}

func analysisSection(title string, a analysis) cli.Section {
	r := a.report
	rows := []cli.Row{
		{Key: "Samples", Value: fmt.Sprint(a.stats.Count)},
		{Key: "RMS level", Value: cli.LevelBar(a.stats.RMSDB(), 30)},
		{Key: "Peak", Value: fmt.Sprintf("%.1f dBFS", a.stats.PeakDB())},
		{Key: "Crest factor", Value: fmt.Sprintf("%.1f dB", a.stats.CrestFactorDB())},
		{Key: "DC offset", Value: fmt.Sprintf("%.5f", a.stats.Mean)},
		{Key: "In-band / out-of-band", Value: fmt.Sprintf("%.1f dB", r.RatioDB()), Warn: r.RatioDB() < 0},
		{Key: "Peak frequency", Value: fmt.Sprintf("%.0f Hz", r.PeakFrequency())},
		{Key: "Spectral centroid", Value: fmt.Sprintf("%.0f Hz", r.Centroid())},
		{Key: "Rolloff (85%)", Value: fmt.Sprintf("%.0f Hz", r.Rolloff(0.85))},
		{Key: "Flatness", Value: fmt.Sprintf("%.3f", r.Flatness())},
	}
	for _, h := range a.hum {
		rows = append(rows, cli.Row{
			Key:   fmt.Sprintf("Hum %.0f Hz", h.Frequency),
			Value: fmt.Sprintf("%.1f dB", h.LevelDB),
			Warn:  h.LevelDB > -40,
		})
	}
	return cli.Section{Title: title, Rows: rows}
}

// readPCM reads a whole raw PCM stream.
func readPCM(r io.Reader, chunkSize int) ([]int16, error) {
	src, err := bridge.NewPCMReader(r, chunkSize)
	if err != nil {
		return nil, err
	}

	var out []int16
	for {
		chunk, err := src.ReadChunk(context.Background())
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		out = append(out, chunk...)
	}
}

// processAll runs pcm through a fresh pipeline without echo reference. A
// trailing partial chunk is zero-padded for processing and trimmed after.
func processAll(pcm []int16, cfg pipeline.Config) ([]int16, error) {
	p, err := pipeline.New(cfg)
	if err != nil {
		return nil, err
	}

	n := cfg.ChunkSize
	padded := make([]int16, (len(pcm)+n-1)/n*n)
	copy(padded, pcm)
	out := make([]int16, len(padded))

	for start := 0; start < len(padded); start += n {
		if _, err := p.ProcessIncomingInto(out[start:start+n], padded[start:start+n], nil); err != nil {
			return nil, err
		}
	}
	return out[:len(pcm)], nil
}
