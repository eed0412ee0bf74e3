// Package embedding turns texts into vectors through an ai.Embedder.
//
// The Adapter splits input into provider-sized chunks, paces requests when
// asked to, and retries throttled chunks according to a RetryPolicy. The
// default policy waits a fixed 60 seconds between attempts and never gives
// up, so a throttled run stalls rather than fails. Any other provider error,
// or a vector of the wrong length, aborts with ErrProviderFatal.
package embedding
