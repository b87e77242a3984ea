package async

import (
	"sync/atomic"

	"github.com/mivranec/go-async/mem"
	"github.com/mivranec/go-async/result"
)

// Promise is the producer half of an asynchronous result. It supplies
// exactly one value or error to the Future derived from it.
//
// A Promise is single-owner: hand it to exactly one producer and do not
// alias it. The shared state behind it is reference counted and may be
// touched concurrently from the Future side; the handle itself is not
// meant to be shared.
//
// Close must be called when the producer is done with the handle. A
// Close before any Set delivers ErrBrokenPromise to the consumer.
type Promise[T any] struct {
	cell   *cell[T]
	arb    *arbiter
	closed atomic.Bool
}

// NewPromise creates a Promise whose shared state is acquired from the
// process-wide default resource (see the mem package).
func NewPromise[T any]() *Promise[T] {
	return NewPromiseIn[T](mem.Default())
}

// NewPromiseIn creates a Promise whose shared state is acquired from
// src. If the acquisition fails the Promise is still returned, but it
// holds no shared state: Valid reports false and every operation other
// than Close panics. This fail-fast mirrors the fact that there is no
// error channel left to report through once construction has returned.
func NewPromiseIn[T any](src mem.Resource) *Promise[T] {
	p := &Promise[T]{}
	if src == nil {
		src = mem.Default()
	}
	if err := src.Acquire(); err != nil {
		return p
	}
	p.cell = newCell[T](src)
	p.arb = &arbiter{}
	return p
}

// Valid reports whether the promise holds shared state. It only
// returns false after an allocation failure at construction.
func (p *Promise[T]) Valid() bool {
	return p.cell != nil
}

// refs returns local copies of the shared references so an operation
// survives a concurrent Close of the handle. Panics if construction
// failed to allocate shared state.
func (p *Promise[T]) refs() (*cell[T], *arbiter) {
	if p.cell == nil {
		panic("async: promise has no shared state")
	}
	return p.cell, p.arb
}

// GetFuture returns the one Future associated with this promise.
//
// A second call poisons the shared slot with ErrFutureAlreadyRetrieved:
// both the first and the second Future will report it.
func (p *Promise[T]) GetFuture() *Future[T] {
	return p.GetFutureWithCleanup(nil)
}

// GetFutureWithCleanup is GetFuture with an abandonment hook: cleanup
// is invoked exactly once if and only if the returned Future is closed
// while still pending. Request-tracking layers use it to drop their
// record of an outstanding call the consumer stopped caring about.
func (p *Promise[T]) GetFutureWithCleanup(cleanup func()) *Future[T] {
	c, a := p.refs()
	c.retain()
	if !c.markRetrievable() {
		// The duplicate call made the cell ready; run anything the
		// first future may have registered so it is not stranded.
		a.execute()
	}
	return &Future[T]{cell: c, arb: a, cleanup: cleanup}
}

// SetValue completes the promise with a value.
func (p *Promise[T]) SetValue(v T) {
	p.SetResult(result.OfValue(v))
}

// SetError completes the promise with an error.
func (p *Promise[T]) SetError(err error) {
	p.SetResult(result.OfError[T](err))
}

// SetResult completes the promise with r and runs any registered
// continuation. Completing an already-completed promise does not
// panic; the consumer observes ErrPromiseAlreadySatisfied instead.
func (p *Promise[T]) SetResult(r result.Result[T]) {
	c, a := p.refs()
	c.set(r)
	a.execute()
}

// SetDeferred completes the promise with a computation that runs only
// when the consumer actually retrieves the result, on the retrieving
// goroutine. Waiting alone does not trigger it.
func (p *Promise[T]) SetDeferred(fn func() result.Result[T]) {
	if fn == nil {
		panic("async: nil deferred computation")
	}
	c, a := p.refs()
	c.setDeferred(fn)
	a.execute()
}

// Close releases the producer handle. If no result was set the shared
// state is marked broken, and a continuation registered by the
// consumer is executed rather than leaked. Close is idempotent and
// safe on an invalid promise.
func (p *Promise[T]) Close() {
	if p.cell == nil || !p.closed.CompareAndSwap(false, true) {
		return
	}
	p.cell.abandon()
	p.arb.execute()
	p.cell.release()
}
