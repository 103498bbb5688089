// Package dynamics provides the chunk-level dynamics stages of the voice
// chain.
//
// Included processors:
//   - NoiseGate: zeroes chunks whose RMS does not exceed a threshold.
//   - AGC: smooths a per-chunk gain toward a target RMS with separate
//     attack and release coefficients, bounded to [MinGain, MaxGain].
//
// Both operate in place on normalized float chunks and keep their state
// across calls. Neither is safe for concurrent use; each signal direction
// owns its own instances.
package dynamics
