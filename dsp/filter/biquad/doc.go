// Package biquad provides the second-order IIR runtime used by the voice
// filters.
//
// A [Section] runs Direct Form II Transposed over one set of
// [Coefficients]. A [Chain] cascades sections to build higher orders.
// Both keep their delay lines between calls, so a signal processed as
// consecutive blocks produces exactly the output it would produce as one
// block. That property is what lets a voice pipeline filter fixed-size
// chunks without clicks at the seams.
//
// Coefficient design (Butterworth low-pass and band-pass) lives in
// dsp/filter/design.
package biquad
