// Package spectrum measures where the energy of processed voice audio
// lies in frequency.
//
// [BandAnalyzer] averages windowed FFT frames (algo-fft) and splits the
// resulting power spectrum into in-band and out-of-band power for a voice
// band such as 300-3400 Hz. [ToneProbe] evaluates single frequencies with
// the Goertzel recurrence, which is cheaper than an FFT for spotting mains
// hum or a test tone.
package spectrum
