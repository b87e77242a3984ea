// Package async is a one-shot asynchronous result-delivery primitive:
// a Promise eventually supplies a value or an error, and its paired
// Future blocks for it, polls it, or chains a continuation onto it.
//
// The pair shares a reference-counted single-assignment state cell and
// a continuation arbiter. Delivery is exactly-once under arbitrary
// goroutine interleaving: a continuation attached concurrently with
// the producer's set is neither lost nor run twice, a producer closed
// without setting surfaces ErrBrokenPromise, and a second GetFuture
// surfaces ErrFutureAlreadyRetrieved. All failures travel as ordinary
// error results; the only panics are programmer errors (operating on a
// promise whose shared-state allocation failed).
//
// Handles are single-owner and move-only by convention: Then consumes
// the future it is called on, and Close releases a handle exactly
// once. Neither handle may be copied or aliased across goroutines; the
// shared state between them is what synchronizes the two sides.
package async
