package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"

	"github.com/cwbudde/algo-voice/bridge"
	"github.com/cwbudde/algo-voice/internal/cli"
	"github.com/cwbudde/algo-voice/stats/summary"
)

// ProcessCmd bridges endpoint A's and B's captures. The processed A
// capture is written as what B plays and vice versa.
type ProcessCmd struct {
	AIn    string `name:"a-in" required:"" type:"existingfile" help:"Raw PCM captured at endpoint A."`
	BIn    string `name:"b-in" required:"" type:"existingfile" help:"Raw PCM captured at endpoint B."`
	AOut   string `name:"a-out" required:"" type:"path" help:"Where the audio played at A is written."`
	BOut   string `name:"b-out" required:"" type:"path" help:"Where the audio played at B is written."`
	Policy string `default:"skip" enum:"skip,mute,abort" help:"What to do with a chunk the pipeline rejects (skip, mute, abort)."`
}

// levelTracker accumulates the level reports of both directions.
type levelTracker struct {
	mu     sync.Mutex
	levels [2]summary.Accumulator
	last   [2]bridge.Report
}

func (t *levelTracker) Observe(r bridge.Report) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !r.Violation {
		t.levels[r.Direction].Add(r.LevelDB)
	}
	t.last[r.Direction] = r
}

func (t *levelTracker) snapshot(dir bridge.Direction) (summary.Summary, bridge.Report) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.levels[dir].Result(), t.last[dir]
}

func (c *ProcessCmd) Run(g *Globals) error {
	cfg, err := g.Pipeline.Config()
	if err != nil {
		return err
	}
	policy, err := bridge.ParsePolicy(c.Policy)
	if err != nil {
		return err
	}

	aIn, err := os.Open(c.AIn)
	if err != nil {
		return err
	}
	defer aIn.Close()

	bIn, err := os.Open(c.BIn)
	if err != nil {
		return err
	}
	defer bIn.Close()

	aOut, err := os.Create(c.AOut)
	if err != nil {
		return err
	}
	defer aOut.Close()

	bOut, err := os.Create(c.BOut)
	if err != nil {
		return err
	}
	defer bOut.Close()

	aSrc, err := bridge.NewPCMReader(bufio.NewReader(aIn), cfg.ChunkSize)
	if err != nil {
		return err
	}
	bSrc, err := bridge.NewPCMReader(bufio.NewReader(bIn), cfg.ChunkSize)
	if err != nil {
		return err
	}

	aWriter := bufio.NewWriter(aOut)
	bWriter := bufio.NewWriter(bOut)

	tracker := &levelTracker{}
	session, err := bridge.NewSession(cfg,
		bridge.Endpoint{Source: aSrc, Sink: bridge.NewPCMWriter(aWriter)},
		bridge.Endpoint{Source: bSrc, Sink: bridge.NewPCMWriter(bWriter)},
		bridge.WithPolicy(policy),
		bridge.WithTelemetry(tracker),
	)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	runErr := session.Run(ctx)

	if err := aWriter.Flush(); err != nil && runErr == nil {
		runErr = err
	}
	if err := bWriter.Flush(); err != nil && runErr == nil {
		runErr = err
	}

	sections := make([]cli.Section, 0, 2)
	for _, dir := range []bridge.Direction{bridge.AToB, bridge.BToA} {
		sections = append(sections, directionSection(dir, session.Stats(dir), session.Pipeline(dir).EchoResets(), tracker))
	}
	cli.RenderSummary(g.Stdout, "voicebridge process", sections...)

	return runErr
}

func directionSection(dir bridge.Direction, st bridge.DirectionStats, echoResets int, t *levelTracker) cli.Section {
	levels, last := t.snapshot(dir)
	ps := st.Pipeline

	rows := []cli.Row{
		{Key: "Chunks read", Value: fmt.Sprint(st.Read)},
		{Key: "Chunks played", Value: fmt.Sprint(st.Played)},
		{Key: "Skipped / muted", Value: fmt.Sprintf("%d / %d", st.Skipped, st.Muted), Warn: st.Skipped+st.Muted > 0},
		{Key: "Mean level", Value: fmt.Sprintf("%.1f dB", levels.Mean)},
		{Key: "Level range", Value: fmt.Sprintf("%.1f .. %.1f dB", levels.Min, levels.Max)},
		{Key: "Last level", Value: cli.LevelBar(last.LevelDB, 30)},
		{Key: "AGC gain", Value: fmt.Sprintf("%.3f", last.Gain)},
		{Key: "Echo resets", Value: fmt.Sprint(echoResets), Warn: echoResets > 0},
		{Key: "Clipped samples", Value: fmt.Sprint(ps.Clipped), Warn: ps.Clipped > 0},
		{Key: "Max chunk time", Value: fmt.Sprintf("%s of %s", ps.MaxDuration, ps.Budget)},
		{Key: "Overruns", Value: fmt.Sprint(ps.Overruns), Warn: ps.Overruns > 0},
	}

	return cli.Section{Title: dir.String(), Rows: rows}
}
