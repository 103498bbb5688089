package pipeline

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-voice/dsp/core"
	"github.com/cwbudde/algo-voice/dsp/echo"
	"github.com/cwbudde/algo-voice/dsp/effects/dynamics"
	"github.com/cwbudde/algo-voice/dsp/filter/voiceband"
	"github.com/cwbudde/algo-voice/measure/level"
)

// Pipeline processes the chunks of one signal direction.
//
// All methods are safe for concurrent use; chunks are processed one at a
// time in the order the calls acquire the pipeline's mutex.
type Pipeline struct {
	mu sync.Mutex

	cfg     Config
	cadence time.Duration

	gate      *dynamics.NoiseGate
	agc       *dynamics.AGC
	canceller *echo.Canceller
	filter    *voiceband.Filter
	meter     *level.Meter

	in  []float64
	ref []float64

	stats Stats
	now   func() time.Time
}

// New validates cfg and builds every component of the chain.
func New(cfg Config) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "pipeline.New",
			"error":    err.Error(),
		}).Error("Pipeline configuration rejected")
		return nil, err
	}

	sr := cfg.SampleRate

	gate, err := dynamics.NewNoiseGate(sr,
		dynamics.WithGateThreshold(cfg.Gate.ThresholdDB),
		dynamics.WithGateAttack(cfg.Gate.AttackMs),
		dynamics.WithGateRelease(cfg.Gate.ReleaseMs),
	)
	if err != nil {
		return nil, err
	}

	agc, err := dynamics.NewAGC(sr,
		dynamics.WithTargetRMS(cfg.AGC.TargetRMS),
		dynamics.WithAGCAttack(cfg.AGC.AttackMs),
		dynamics.WithAGCRelease(cfg.AGC.ReleaseMs),
	)
	if err != nil {
		return nil, err
	}

	var canceller *echo.Canceller
	if cfg.EchoCancellation {
		canceller, err = echo.New(sr,
			echo.WithDelay(cfg.Echo.DelayMs),
			echo.WithBulkDelay(cfg.Echo.BulkDelayMs),
			echo.WithFilterLength(cfg.Echo.FilterLength),
			echo.WithStepSize(cfg.Echo.StepSize),
			echo.WithDamping(cfg.Echo.Damping),
			echo.WithReferencePower(cfg.Echo.ReferencePower),
		)
		if err != nil {
			return nil, err
		}
	}

	fc := cfg.filter()
	filter, err := voiceband.New(sr,
		voiceband.WithMode(fc.Mode),
		voiceband.WithLowpassCutoff(fc.LowpassCutoff),
		voiceband.WithBand(fc.BandLow, fc.BandHigh),
		voiceband.WithOrder(fc.Order),
	)
	if err != nil {
		return nil, err
	}

	meter, err := level.New(sr, level.WithWindow(cfg.Meter.WindowMs))
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		cfg:       cfg,
		cadence:   cfg.Cadence(),
		gate:      gate,
		agc:       agc,
		canceller: canceller,
		filter:    filter,
		meter:     meter,
		in:        make([]float64, cfg.ChunkSize),
		ref:       make([]float64, cfg.ChunkSize),
		now:       time.Now,
	}
	p.stats.Budget = p.cadence

	logrus.WithFields(logrus.Fields{
		"function":    "pipeline.New",
		"sample_rate": sr,
		"chunk_size":  cfg.ChunkSize,
		"filter_mode": fc.Mode.String(),
		"echo":        cfg.EchoCancellation,
		"cadence":     p.cadence.String(),
	}).Info("Pipeline created")

	return p, nil
}

// ProcessIncoming runs one chunk through the chain and returns a new output
// chunk with the measured level in dB. outgoing is the chunk most recently
// played on this endpoint; nil skips echo cancellation.
//
// A chunk or reference of the wrong length is rejected with
// core.ErrContractViolation before any component runs, in which case the
// output is nil, the level is level.FloorDB and no state has changed. The
// one later failure is an error from the echo canceller itself, which its
// validated geometry rules out; gate and AGC state have then already
// advanced for the chunk.
func (p *Pipeline) ProcessIncoming(incoming, outgoing []int16) ([]int16, float64, error) {
	out := make([]int16, p.cfg.ChunkSize)
	db, err := p.ProcessIncomingInto(out, incoming, outgoing)
	if err != nil {
		return nil, db, err
	}
	return out, db, nil
}

// ProcessIncomingInto is ProcessIncoming writing into dst, which must hold
// exactly one chunk. It does not allocate.
func (p *Pipeline) ProcessIncomingInto(dst, incoming, outgoing []int16) (float64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.checkChunk(dst, incoming, outgoing); err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "Pipeline.ProcessIncoming",
			"error":    err.Error(),
		}).Warn("Chunk rejected")
		return level.FloorDB, err
	}

	start := p.now()

	core.Int16ToFloat(p.in, incoming)
	p.gate.Process(p.in)
	p.agc.Process(p.in)

	if outgoing != nil && p.canceller != nil {
		core.Int16ToFloat(p.ref, outgoing)
		if _, err := p.canceller.Process(p.in, p.ref); err != nil {
			return level.FloorDB, err
		}
	}

	p.filter.Process(p.in)
	db := p.meter.Measure(p.in)
	clipped := core.FloatToInt16(dst, p.in)

	p.record(p.now().Sub(start), clipped)

	if logrus.IsLevelEnabled(logrus.DebugLevel) {
		logrus.WithFields(logrus.Fields{
			"function":  "Pipeline.ProcessIncoming",
			"chunk":     p.stats.Chunks,
			"level_db":  db,
			"gain":      p.agc.Gain(),
			"gate_open": p.gate.IsOpen(),
			"clipped":   clipped,
		}).Debug("Chunk processed")
	}

	return db, nil
}

func (p *Pipeline) checkChunk(dst, incoming, outgoing []int16) error {
	n := p.cfg.ChunkSize
	if err := core.CheckLength(component, "incoming chunk", len(incoming), n); err != nil {
		return err
	}
	if outgoing != nil {
		if err := core.CheckLength(component, "outgoing reference", len(outgoing), n); err != nil {
			return err
		}
	}
	return core.CheckLength(component, "output buffer", len(dst), n)
}

// Gain returns the current AGC gain.
func (p *Pipeline) Gain() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.agc.Gain()
}

// GateOpen reports whether the last chunk passed the noise gate.
func (p *Pipeline) GateOpen() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.gate.IsOpen()
}

// Level returns the most recent meter reading.
func (p *Pipeline) Level() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.meter.Level()
}

// EchoResets returns how often the canceller discarded diverged weights.
func (p *Pipeline) EchoResets() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.canceller == nil {
		return 0
	}
	return p.canceller.Resets()
}

// Config returns the configuration the pipeline was built with.
func (p *Pipeline) Config() Config { return p.cfg }

// ChunkSize returns the fixed chunk length.
func (p *Pipeline) ChunkSize() int { return p.cfg.ChunkSize }

// Reset returns every component to its initial state and clears the stats.
func (p *Pipeline) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.gate.Reset()
	p.agc.Reset()
	if p.canceller != nil {
		p.canceller.Reset()
	}
	p.filter.Reset()
	p.meter.Reset()
	p.stats = Stats{Budget: p.cadence}
}
