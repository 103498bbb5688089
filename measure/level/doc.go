// Package level provides the sliding-window RMS level meter that feeds
// voice telemetry.
//
// A [Meter] reports the RMS of the most recent window in dBFS, clamped to
// [FloorDB, 0]. It returns exactly FloorDB until the window has filled.
// Build with -tags fastmath to use the algo-approx logarithm.
package level
