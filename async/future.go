package async

import (
	"time"

	"github.com/pkg/errors"

	"github.com/mivranec/go-async/result"
)

// Future is the consumer half of an asynchronous result. It observes
// the value or error supplied by its paired Promise by blocking,
// polling, or attaching a continuation (see Then, ThenResult and
// ThenFuture).
//
// A Future is single-owner and must not be aliased. The zero value is
// invalid: it holds no shared state, reports ErrNoState from GetResult
// and times out immediately from the timed waits.
//
// Close releases the handle. If the Future is closed while still
// pending, its cleanup hook (if any) runs exactly once.
type Future[T any] struct {
	cell    *cell[T]
	arb     *arbiter
	cleanup func()
}

// Valid reports whether the future holds shared state. It becomes
// false after Close or after a Then* call consumed the handle.
func (f *Future[T]) Valid() bool {
	return f.cell != nil
}

// IsReady reports whether the result has arrived. Never blocks.
func (f *Future[T]) IsReady() bool {
	if f.cell == nil {
		return false
	}
	return f.cell.isReady()
}

// Wait blocks until the result is available. On an invalid future it
// returns immediately. Waiting does not retrieve: it leaves the slot
// and the retrieved mark untouched.
func (f *Future[T]) Wait() {
	if f.cell == nil {
		return
	}
	f.cell.wait()
}

// WaitFor blocks up to d and reports whether the result became
// available. An invalid future times out immediately, even for d <= 0.
func (f *Future[T]) WaitFor(d time.Duration) bool {
	if f.cell == nil {
		return false
	}
	return f.cell.waitFor(d)
}

// WaitUntil blocks up to the deadline and reports whether the result
// became available. An invalid future times out immediately.
func (f *Future[T]) WaitUntil(deadline time.Time) bool {
	if f.cell == nil {
		return false
	}
	return f.cell.waitUntil(deadline)
}

// GetResult blocks until the result is available and moves it out.
// The first call retrieves the stored result (evaluating a deferred
// computation if the producer stored one); later calls, and calls on
// an invalid future, observe ErrNoState.
func (f *Future[T]) GetResult() result.Result[T] {
	if f.cell == nil {
		return result.OfError[T](ErrNoState)
	}
	return f.cell.take()
}

// Get is GetResult unpacked into Go's native (value, error) pair.
func (f *Future[T]) Get() (T, error) {
	return f.GetResult().Unpack()
}

// MustGet is Get for callers that treat a delivery failure as a
// programming error; it panics instead of returning the error.
func (f *Future[T]) MustGet() T {
	v, err := f.Get()
	if err != nil {
		panic(err)
	}
	return v
}

// SetExecutionContext installs the executor that continuations
// attached to this chain run on. It must be called before Then* to
// take effect, succeeds at most once per chain, and propagates to
// futures produced by subsequent Then* calls.
func (f *Future[T]) SetExecutionContext(e Executor) error {
	if f.cell == nil {
		return errors.WithStack(ErrNoState)
	}
	if e == nil {
		return errors.New("async: nil executor")
	}
	if !f.arb.setContext(e) {
		return errors.New("async: execution context already set")
	}
	return nil
}

// Close releases the consumer handle and invalidates it. The cleanup
// hook runs if and only if the future is still valid and the result
// has not yet arrived; a future that observed its result, was already
// consumed by Then*, or was never valid does not fire it. Close is
// idempotent.
func (f *Future[T]) Close() {
	c := f.cell
	if c == nil {
		return
	}
	cleanup := f.cleanup
	f.cell = nil
	f.arb = nil
	f.cleanup = nil
	if cleanup != nil && !c.isReady() {
		cleanup()
	}
	c.release()
}

// consume steals the handle's shared references into a fresh handle
// for a continuation record, leaving f invalid. The cleanup hook is
// dropped: a future consumed by Then* was not abandoned.
func (f *Future[T]) consume() *Future[T] {
	moved := &Future[T]{cell: f.cell, arb: f.arb}
	f.cell = nil
	f.arb = nil
	f.cleanup = nil
	return moved
}
