// Package bridge drives a two-party voice session through two pipelines.
//
// Endpoint A's captured audio is processed by the A→B pipeline and played
// on B; B's captured audio goes the other way. Each direction runs in its
// own goroutine. The echo reference for a direction is the chunk most
// recently played on the endpoint that captured it, which is the latest
// output of the opposite direction. Chunks are handed across through a
// small mutex-guarded slot; no DSP state is shared.
package bridge
