package bridge

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/cwbudde/algo-voice/dsp/pipeline"
	"github.com/cwbudde/algo-voice/measure/level"
)

// Endpoint is one party of a session: where its audio is captured and
// where the other party's processed audio is played.
type Endpoint struct {
	Source Source
	Sink   Sink
}

// Option configures a Session.
type Option func(*Session)

// WithPolicy sets the contract violation policy. The default is PolicySkip.
func WithPolicy(p ViolationPolicy) Option {
	return func(s *Session) { s.policy = p }
}

// WithTelemetry sets the per-chunk report receiver.
func WithTelemetry(t Telemetry) Option {
	return func(s *Session) { s.telemetry = t }
}

// DirectionStats counts what one direction did.
type DirectionStats struct {
	Read     uint64
	Played   uint64
	Skipped  uint64
	Muted    uint64
	Pipeline pipeline.Stats
}

// Session bridges two endpoints.
type Session struct {
	policy    ViolationPolicy
	telemetry Telemetry
	dirs      [2]*direction
}

type direction struct {
	id     Direction
	pipe   *pipeline.Pipeline
	source Source
	sink   Sink
	// Latest chunk this direction played.
	played *slot

	mu    sync.Mutex
	stats DirectionStats
}

// NewSession builds one pipeline per direction from cfg.
func NewSession(cfg pipeline.Config, a, b Endpoint, opts ...Option) (*Session, error) {
	if a.Source == nil || a.Sink == nil || b.Source == nil || b.Sink == nil {
		return nil, errors.New("bridge: every endpoint needs a source and a sink")
	}

	s := &Session{policy: PolicySkip}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	// A→B reads A's capture and plays on B.
	wiring := [2]struct {
		source Source
		sink   Sink
	}{
		AToB: {a.Source, b.Sink},
		BToA: {b.Source, a.Sink},
	}

	for id := range s.dirs {
		p, err := pipeline.New(cfg)
		if err != nil {
			return nil, fmt.Errorf("bridge: %s pipeline: %w", Direction(id), err)
		}
		s.dirs[id] = &direction{
			id:     Direction(id),
			pipe:   p,
			source: wiring[id].source,
			sink:   wiring[id].sink,
			played: newSlot(cfg.ChunkSize),
		}
	}

	logrus.WithFields(logrus.Fields{
		"function":   "bridge.NewSession",
		"policy":     s.policy.String(),
		"chunk_size": cfg.ChunkSize,
		"telephone":  cfg.TelephoneMode,
	}).Info("Session created")

	return s, nil
}

// Run bridges both directions until both sources reach io.EOF, ctx is
// cancelled, or one direction fails. The first failure cancels the other
// direction and is returned.
func (s *Session) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, d := range s.dirs {
		g.Go(func() error { return s.runDirection(ctx, d) })
	}

	if err := g.Wait(); err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "Session.Run",
			"error":    err.Error(),
		}).Error("Session failed")
		return err
	}

	logrus.WithFields(logrus.Fields{
		"function": "Session.Run",
		"a_to_b":   s.Stats(AToB).Played,
		"b_to_a":   s.Stats(BToA).Played,
	}).Info("Session finished")
	return nil
}

func (s *Session) runDirection(ctx context.Context, d *direction) error {
	n := d.pipe.ChunkSize()
	out := make([]int16, n)
	ref := make([]int16, n)
	reference := s.dirs[d.id.opposite()].played

	for {
		in, err := d.source.ReadChunk(ctx)
		if errors.Is(err, io.EOF) {
			logrus.WithFields(logrus.Fields{
				"function":  "Session.Run",
				"direction": d.id.String(),
			}).Info("Source exhausted")
			return nil
		}
		if err != nil {
			return fmt.Errorf("bridge: %s read: %w", d.id, err)
		}
		chunk := d.count(func(st *DirectionStats) { st.Read++ })

		var outgoing []int16
		if reference.load(ref) {
			outgoing = ref
		}

		report := Report{Direction: d.id, Chunk: chunk}
		report.LevelDB, err = d.pipe.ProcessIncomingInto(out, in, outgoing)
		if err != nil {
			report.Violation = true
			logrus.WithFields(logrus.Fields{
				"function":  "Session.Run",
				"direction": d.id.String(),
				"chunk":     chunk,
				"policy":    s.policy.String(),
				"error":     err.Error(),
			}).Warn("Chunk violated pipeline contract")

			switch s.policy {
			case PolicyAbort:
				return fmt.Errorf("bridge: %s chunk %d: %w", d.id, chunk, err)
			case PolicyMute:
				clear(out)
				report.LevelDB = level.FloorDB
				d.count(func(st *DirectionStats) { st.Muted++ })
			default:
				d.count(func(st *DirectionStats) { st.Skipped++ })
				s.observe(report)
				continue
			}
		}

		d.played.store(out)
		if err := d.sink.WriteChunk(ctx, out); err != nil {
			return fmt.Errorf("bridge: %s write: %w", d.id, err)
		}
		d.count(func(st *DirectionStats) { st.Played++ })

		report.Gain = d.pipe.Gain()
		report.GateOpen = d.pipe.GateOpen()
		s.observe(report)

		if logrus.IsLevelEnabled(logrus.DebugLevel) {
			logrus.WithFields(logrus.Fields{
				"function":  "Session.Run",
				"direction": d.id.String(),
				"chunk":     chunk,
				"level_db":  report.LevelDB,
				"reference": outgoing != nil,
			}).Debug("Chunk bridged")
		}
	}
}

func (s *Session) observe(r Report) {
	if s.telemetry != nil {
		s.telemetry.Observe(r)
	}
}

// Stats returns a snapshot of one direction's counters.
func (s *Session) Stats(dir Direction) DirectionStats {
	d := s.dirs[dir]
	d.mu.Lock()
	st := d.stats
	d.mu.Unlock()
	st.Pipeline = d.pipe.Stats()
	return st
}

// Pipeline returns the pipeline of one direction.
func (s *Session) Pipeline(dir Direction) *pipeline.Pipeline {
	return s.dirs[dir].pipe
}

// Reset clears both pipelines, the reference slots and the counters so the
// session can bridge a new call. It must not be called during Run.
func (s *Session) Reset() {
	for _, d := range s.dirs {
		d.pipe.Reset()
		d.played.reset()
		d.mu.Lock()
		d.stats = DirectionStats{}
		d.mu.Unlock()
	}
}

// count applies f to the counters and returns the number of chunks read.
func (d *direction) count(f func(*DirectionStats)) uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	f(&d.stats)
	return d.stats.Read
}

// slot holds a copy of the latest chunk played by one direction.
type slot struct {
	mu    sync.Mutex
	buf   []int16
	valid bool
}

func newSlot(size int) *slot {
	return &slot{buf: make([]int16, size)}
}

func (s *slot) store(chunk []int16) {
	s.mu.Lock()
	copy(s.buf, chunk)
	s.valid = true
	s.mu.Unlock()
}

// load copies the latest chunk into dst and reports whether one exists.
func (s *slot) load(dst []int16) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.valid {
		return false
	}
	copy(dst, s.buf)
	return true
}

func (s *slot) reset() {
	s.mu.Lock()
	clear(s.buf)
	s.valid = false
	s.mu.Unlock()
}
