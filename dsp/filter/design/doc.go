// Package design computes Butterworth coefficients for the voice filters.
//
// Designers return cascades of [biquad.Coefficients] consumable by
// dsp/filter/biquad. Low-pass cascades are built from RBJ sections whose Q
// values place the poles on the Butterworth circle. Band-pass cascades
// transform the analog low-pass prototype to a band-pass, map it to the z
// plane with the bilinear transform and split the result into biquads.
//
// Every designer validates its frequencies against the Nyquist limit and
// reports violations as [core.ConfigError].
package design
