package bridge

import "fmt"

// Direction identifies one half of a session.
type Direction int

const (
	// AToB carries audio captured at A to B.
	AToB Direction = iota
	// BToA carries audio captured at B to A.
	BToA
)

func (d Direction) String() string {
	switch d {
	case AToB:
		return "a->b"
	case BToA:
		return "b->a"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

func (d Direction) opposite() Direction { return 1 - d }

// Report describes one chunk handled by a direction.
type Report struct {
	Direction Direction
	// Chunk counts chunks read on this direction, starting at 1.
	Chunk    uint64
	LevelDB  float64
	Gain     float64
	GateOpen bool
	// Violation is set when the pipeline rejected the chunk and the
	// session's policy was applied instead.
	Violation bool
}

// Telemetry receives one report per chunk. Both directions call it
// concurrently.
type Telemetry interface {
	Observe(r Report)
}

// TelemetryFunc adapts a function to Telemetry.
type TelemetryFunc func(r Report)

// Observe calls f(r).
func (f TelemetryFunc) Observe(r Report) { f(r) }
