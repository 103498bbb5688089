package bridge

import (
	"fmt"
	"strings"
)

// ViolationPolicy decides what a direction does with a chunk the pipeline
// rejects.
type ViolationPolicy int

const (
	// PolicySkip drops the chunk; nothing is played for it.
	PolicySkip ViolationPolicy = iota
	// PolicyMute plays one chunk of silence instead.
	PolicyMute
	// PolicyAbort stops the session with the violation error.
	PolicyAbort
)

func (p ViolationPolicy) String() string {
	switch p {
	case PolicySkip:
		return "skip"
	case PolicyMute:
		return "mute"
	case PolicyAbort:
		return "abort"
	default:
		return fmt.Sprintf("ViolationPolicy(%d)", int(p))
	}
}

// ParsePolicy maps "skip", "mute" or "abort" to a ViolationPolicy.
func ParsePolicy(s string) (ViolationPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "skip":
		return PolicySkip, nil
	case "mute":
		return PolicyMute, nil
	case "abort":
		return PolicyAbort, nil
	default:
		return PolicySkip, fmt.Errorf("bridge: unknown violation policy %q", s)
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *ViolationPolicy) UnmarshalText(text []byte) error {
	v, err := ParsePolicy(string(text))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (p ViolationPolicy) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}
