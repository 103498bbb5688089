// Package delay provides the circular sample history used as the echo
// reference.
package delay

import (
	"fmt"

	"github.com/cwbudde/algo-voice/dsp/core"
)

// Line is a circular delay line of fixed capacity.
//
// Every sample is stored twice, at pos and pos+capacity, so that any run
// of up to capacity consecutive samples is available as one contiguous
// slice without copying (see [Line.Window]).
type Line struct {
	buffer   []float64
	size     int
	writePos int
	written  int
}

// New returns a delay line holding the most recent size samples.
func New(size int) (*Line, error) {
	if size <= 0 {
		return nil, core.NewConfigError("delay", "size", size, "must be > 0")
	}
	return &Line{
		buffer: make([]float64, 2*size),
		size:   size,
	}, nil
}

// Len returns the capacity in samples.
func (d *Line) Len() int {
	return d.size
}

// Filled returns how many samples have been written, saturating at Len.
func (d *Line) Filled() int {
	return d.written
}

// Full reports whether at least Len samples have been written.
func (d *Line) Full() bool {
	return d.written == d.size
}

// Write appends one sample, overwriting the oldest once full.
func (d *Line) Write(sample float64) {
	d.buffer[d.writePos] = sample
	d.buffer[d.writePos+d.size] = sample
	d.writePos++
	if d.writePos == d.size {
		d.writePos = 0
	}
	if d.written < d.size {
		d.written++
	}
}

// WriteBlock appends every sample of buf in order.
func (d *Line) WriteBlock(buf []float64) {
	for _, x := range buf {
		d.Write(x)
	}
}

// Read returns the sample written delay writes ago; Read(0) is the newest.
func (d *Line) Read(delay int) float64 {
	if delay < 0 || delay >= d.size {
		return 0
	}
	return d.buffer[d.writePos+d.size-1-delay]
}

// Window returns the n samples ending delay samples before the newest,
// ordered oldest first. The slice aliases the line and is only valid
// until the next Write. n+delay must not exceed Len.
func (d *Line) Window(n, delay int) ([]float64, error) {
	if n <= 0 || delay < 0 || n+delay > d.size {
		return nil, fmt.Errorf("%w: delay window n=%d delay=%d exceeds capacity %d",
			core.ErrContractViolation, n, delay, d.size)
	}
	start := d.writePos + d.size - delay - n
	return d.buffer[start : start+n : start+n], nil
}

// Reset clears line state.
func (d *Line) Reset() {
	core.Zero(d.buffer)
	d.writePos = 0
	d.written = 0
}
