package pipeline

import (
	"time"

	"github.com/sirupsen/logrus"
)

// Stats summarizes the chunks processed since construction or Reset.
type Stats struct {
	Chunks       uint64
	Clipped      uint64
	Overruns     uint64
	LastDuration time.Duration
	MaxDuration  time.Duration
	// Budget is the real-time length of one chunk.
	Budget time.Duration
}

// Utilization returns MaxDuration as a fraction of Budget.
func (s Stats) Utilization() float64 {
	if s.Budget <= 0 {
		return 0
	}
	return float64(s.MaxDuration) / float64(s.Budget)
}

// Stats returns a snapshot of the processing statistics.
func (p *Pipeline) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}

func (p *Pipeline) record(d time.Duration, clipped int) {
	s := &p.stats
	s.Chunks++
	s.Clipped += uint64(clipped)
	s.LastDuration = d
	if d > s.MaxDuration {
		s.MaxDuration = d
	}

	if d > s.Budget {
		s.Overruns++
		logrus.WithFields(logrus.Fields{
			"function": "Pipeline.ProcessIncoming",
			"chunk":    s.Chunks,
			"duration": d.String(),
			"budget":   s.Budget.String(),
			"overruns": s.Overruns,
		}).Warn("Chunk processing exceeded real-time budget")
	}
}
