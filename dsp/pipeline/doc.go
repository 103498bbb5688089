// Package pipeline chains the voice processors of one signal direction.
//
// A Pipeline owns a noise gate, an AGC, an optional LMS echo canceller, a
// Butterworth voice-band filter and a level meter, all configured for one
// sample rate and one fixed chunk length. Each chunk is processed in the
// order gate, AGC, echo cancellation, filter, meter, so that silence is
// dropped before any adaptive stage sees it and the reported level
// describes the band-limited signal that is actually delivered.
//
// The boundary format is mono int16 PCM. Every call is serialized by the
// pipeline's own mutex; the two directions of a call use two pipelines.
package pipeline
