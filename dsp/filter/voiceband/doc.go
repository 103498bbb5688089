// Package voiceband provides the fixed-order IIR filter applied at the end
// of the voice chain.
//
// A [Filter] runs in exactly one [Mode], chosen at construction:
// [ModeLowpass] removes content above the voice band, [ModeTelephone]
// band-limits to narrowband telephony (300-3400 Hz by default). Only the
// selected cascade is designed and kept. Biquad delay lines persist across
// calls, so a signal filtered in consecutive chunks is identical to the
// same signal filtered in one call.
package voiceband
