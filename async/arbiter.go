package async

import (
	"sync"
	"sync/atomic"
)

// arbiter decides which side runs the registered continuation: the
// producer that makes the state ready, or the consumer that attaches
// after readiness. Registration and execution share one mutex, so the
// two racing call sites can never both conclude there is nothing to
// run; the consumed flag additionally guards against a double run when
// both a setter and a close believe a record is pending.
//
// State machine: empty -> registered -> executed, or empty -> executed
// directly when registration observes the state already ready.
type arbiter struct {
	mu       sync.Mutex
	record   func()
	exec     Executor
	consumed atomic.Bool
}

// setContext installs the executor future execution is dispatched
// through. It succeeds at most once.
func (a *arbiter) setContext(e Executor) bool {
	if e == nil {
		return false
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.exec != nil {
		return false
	}
	a.exec = e
	return true
}

func (a *arbiter) context() Executor {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.exec
}

// register stores fn to be run by the producer side, unless the ready
// probe already reports true, in which case fn runs now (inline or on
// the executor). The probe is evaluated under the registration mutex
// so the decision and the store are atomic with respect to execute.
func (a *arbiter) register(ready func() bool, fn func()) {
	a.mu.Lock()
	if ready() {
		a.mu.Unlock()
		if a.consumed.CompareAndSwap(false, true) {
			a.dispatch(fn)
		}
		return
	}
	a.record = fn
	a.mu.Unlock()
}

// execute runs the registered continuation if one is pending. Called by
// the producer after making the state ready, and by handle close paths
// so a registered continuation is never stranded.
func (a *arbiter) execute() {
	a.mu.Lock()
	fn := a.record
	a.record = nil
	a.mu.Unlock()
	if fn == nil {
		return
	}
	if a.consumed.CompareAndSwap(false, true) {
		a.dispatch(fn)
	}
}

func (a *arbiter) dispatch(fn func()) {
	if e := a.context(); e != nil {
		e.Submit(fn)
		return
	}
	fn()
}
