// Package echo implements the adaptive LMS echo canceller of the voice
// chain.
//
// A [Canceller] learns the acoustic path from the signal an endpoint
// played (the outgoing reference) to what its microphone picked up (the
// incoming signal) and subtracts a damped estimate of that echo. The
// reference history is a double-written ring from dsp/delay, so the tap
// window for each sample is a contiguous slice and per-sample work is
// O(filter length) with no allocation.
package echo
