package async

import (
	"github.com/mivranec/go-async/result"
	"github.com/mivranec/go-async/routine"
)

// Then attaches a continuation to f and returns the future for its
// outcome. fn receives the ready source future (usually to call
// GetResult on it) and its return value completes the new future as a
// success.
//
// Then consumes f: afterwards f is invalid and its cleanup hook is
// dropped. The continuation runs exactly once, on whichever side loses
// the race between the producer completing and the consumer attaching,
// or on the chain's executor if one was set. A nil fn is a no-op that
// leaves f untouched and returns an invalid future.
//
// At most one continuation may be attached per promise/future chain;
// chain further calls on the returned future.
func Then[T, R any](f *Future[T], fn func(*Future[T]) R) *Future[R] {
	if fn == nil {
		return &Future[R]{}
	}
	return attach(f, func(ready *Future[T], next *Promise[R]) {
		next.SetValue(fn(ready))
		next.Close()
	})
}

// ThenResult is Then for continuations that produce a value-or-error:
// the returned result is unwrapped into the new future's value or
// error.
func ThenResult[T, R any](f *Future[T], fn func(*Future[T]) result.Result[R]) *Future[R] {
	if fn == nil {
		return &Future[R]{}
	}
	return attach(f, func(ready *Future[T], next *Promise[R]) {
		next.SetResult(fn(ready))
		next.Close()
	})
}

// ThenFuture is Then for continuations that produce another future.
// The returned future is flattened: the outer future becomes ready
// only when the inner one does, and carries the inner's exact value or
// error. An inner future that is nil or invalid yields ErrNoState.
func ThenFuture[T, R any](f *Future[T], fn func(*Future[T]) *Future[R]) *Future[R] {
	if fn == nil {
		return &Future[R]{}
	}
	return attach(f, func(ready *Future[T], next *Promise[R]) {
		forward(fn(ready), next)
	})
}

// attach consumes f and arranges for apply to run with the ready
// source future and the downstream promise. apply owns next: every
// path through it must complete and close the promise.
func attach[T, R any](f *Future[T], apply func(*Future[T], *Promise[R])) *Future[R] {
	next := NewPromise[R]()
	out := next.GetFuture()

	if f.cell == nil {
		next.SetError(ErrNoState)
		next.Close()
		return out
	}
	if e := f.arb.context(); e != nil {
		next.arb.setContext(e)
	}

	moved := f.consume()
	moved.arb.register(moved.cell.isReady, func() {
		defer moved.Close()
		defer func() {
			if r := recover(); r != nil {
				next.SetResult(result.OfError[R](routine.NewRecovered(2, r).AsError()))
				next.Close()
			}
		}()
		apply(moved, next)
	})
	return out
}

// forward feeds inner's eventual result into next, consuming inner.
func forward[R any](inner *Future[R], next *Promise[R]) {
	if inner == nil || inner.cell == nil {
		next.SetError(ErrNoState)
		next.Close()
		return
	}
	moved := inner.consume()
	moved.arb.register(moved.cell.isReady, func() {
		defer moved.Close()
		next.SetResult(moved.GetResult())
		next.Close()
	})
}
