package async

import (
	"sync"
	"time"

	"github.com/mivranec/go-async/mem"
	"github.com/mivranec/go-async/result"
	"github.com/mivranec/go-async/routine"
)

// cell is the shared single-assignment state behind one promise/future
// pair. Every field is guarded by mu; waiters block on the done
// channel, which is created lazily and closed exactly once when the
// cell becomes ready.
//
// The slot is written at most once with a real outcome. A set that
// arrives after the cell is already ready replaces the slot with an
// error (promise already satisfied, or no state once the result was
// retrieved): the last write is observed as a failure rather than
// panicking the producer.
type cell[T any] struct {
	noCopy noCopy

	mu        sync.Mutex
	slot      result.Result[T]
	ready     bool
	retrieved bool
	marked    bool // a future has been issued for this cell
	poisoned  bool // a second future was issued; every take fails
	deferred  func() result.Result[T]

	initOnce  sync.Once
	closeOnce sync.Once
	done      chan struct{}

	refs int
	src  mem.Resource
}

func newCell[T any](src mem.Resource) *cell[T] {
	return &cell[T]{
		slot: result.OfError[T](ErrNoState),
		refs: 1,
		src:  src,
	}
}

// retain adds one holder reference.
func (c *cell[T]) retain() {
	c.mu.Lock()
	c.refs++
	c.mu.Unlock()
}

// release drops one holder reference; the last release returns the
// allocation budget to the resource the cell was acquired from.
func (c *cell[T]) release() {
	c.mu.Lock()
	c.refs--
	last := c.refs == 0
	c.mu.Unlock()
	if last && c.src != nil {
		c.src.Release()
	}
}

func (c *cell[T]) lazyInit() {
	c.initOnce.Do(func() {
		c.done = make(chan struct{})
	})
}

// wake publishes readiness to waiters. Safe to call more than once.
func (c *cell[T]) wake() {
	c.lazyInit()
	c.closeOnce.Do(func() {
		close(c.done)
	})
}

// set writes r into the slot under the overwrite rules and wakes all
// waiters.
func (c *cell[T]) set(r result.Result[T]) {
	c.mu.Lock()
	switch {
	case !c.ready:
		c.slot = r
		c.ready = true
	case !c.retrieved:
		c.slot = result.OfError[T](ErrPromiseAlreadySatisfied)
		c.deferred = nil
	default:
		c.slot = result.OfError[T](ErrNoState)
		c.deferred = nil
	}
	c.mu.Unlock()
	c.wake()
}

// setDeferred stores a computation to be evaluated on first retrieval
// and marks the cell ready. The overwrite rules are the same as set's.
func (c *cell[T]) setDeferred(fn func() result.Result[T]) {
	c.mu.Lock()
	switch {
	case !c.ready:
		c.deferred = fn
		c.ready = true
	case !c.retrieved:
		c.slot = result.OfError[T](ErrPromiseAlreadySatisfied)
		c.deferred = nil
	default:
		c.slot = result.OfError[T](ErrNoState)
		c.deferred = nil
	}
	c.mu.Unlock()
	c.wake()
}

// take blocks until the cell is ready, evaluates a pending deferred
// computation, marks the result retrieved and moves it out. A second
// take observes a no-state error.
func (c *cell[T]) take() result.Result[T] {
	c.wait()

	c.mu.Lock()
	if c.poisoned {
		// Every holder of a doubly-issued future observes the same
		// error, however many times it retrieves.
		c.mu.Unlock()
		return result.OfError[T](ErrFutureAlreadyRetrieved)
	}
	if c.retrieved {
		c.mu.Unlock()
		return result.OfError[T](ErrNoState)
	}
	c.retrieved = true
	fn := c.deferred
	c.deferred = nil
	if fn != nil {
		// Run caller-supplied code outside the lock. The retrieved
		// flag already excludes competing takers.
		c.mu.Unlock()
		r := evalDeferred(fn)
		c.mu.Lock()
		c.slot = r
	}
	out := c.slot
	c.slot = result.OfError[T](ErrNoState)
	c.mu.Unlock()
	return out
}

// wait blocks until the cell is ready. It has no effect on the slot or
// the retrieved flag.
func (c *cell[T]) wait() {
	if c.isReady() {
		return
	}
	c.lazyInit()
	<-c.done
}

// waitFor blocks up to d and reports whether the cell became ready.
func (c *cell[T]) waitFor(d time.Duration) bool {
	if c.isReady() {
		return true
	}
	if d <= 0 {
		return false
	}
	c.lazyInit()
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-c.done:
		return true
	case <-t.C:
		// A set racing the deadline may have just landed.
		return c.isReady()
	}
}

// waitUntil blocks up to the deadline and reports whether the cell
// became ready.
func (c *cell[T]) waitUntil(deadline time.Time) bool {
	return c.waitFor(time.Until(deadline))
}

// markRetrievable records that a future has been issued. The second
// call poisons the slot with ErrFutureAlreadyRetrieved, marks the cell
// ready and returns false.
func (c *cell[T]) markRetrievable() bool {
	c.mu.Lock()
	if !c.marked {
		c.marked = true
		c.mu.Unlock()
		return true
	}
	c.slot = result.OfError[T](ErrFutureAlreadyRetrieved)
	c.ready = true
	c.poisoned = true
	c.deferred = nil
	c.mu.Unlock()
	c.wake()
	return false
}

func (c *cell[T]) isReady() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ready
}

// abandon marks the cell broken if no result was ever set, and always
// wakes waiters.
func (c *cell[T]) abandon() {
	c.mu.Lock()
	if !c.ready {
		c.slot = result.OfError[T](ErrBrokenPromise)
		c.ready = true
	}
	c.mu.Unlock()
	c.wake()
}

// evalDeferred runs a deferred computation, converting a panic into an
// error result so the retriever observes a failure instead of crashing.
func evalDeferred[T any](fn func() result.Result[T]) (r result.Result[T]) {
	defer func() {
		if rec := recover(); rec != nil {
			r = result.OfError[T](routine.NewRecovered(2, rec).AsError())
		}
	}()
	return fn()
}

// noCopy may be added to structs which must not be copied after first
// use. See https://golang.org/issues/8005#issuecomment-190753527.
type noCopy struct{}

// Lock is a no-op used by the -copylocks checker from `go vet`.
func (*noCopy) Lock() {}

func (*noCopy) Unlock() {}
