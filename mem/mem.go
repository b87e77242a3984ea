// Package mem provides the allocation resource consulted when a
// promise creates its shared state.
//
// A Resource hands out units of allocation budget, one per live
// promise/future pair. The default resource is unbounded; a bounded
// resource lets an embedder cap the number of outstanding asynchronous
// results and observe exhaustion as a construction-time failure instead
// of unbounded growth.
//
// Set the process-wide default with SetDefault before creating
// promises. Replacing the default affects only promises created
// afterwards; pairs already live keep the resource they were acquired
// from and return their budget to it when released.
package mem

import (
	"sync"

	"github.com/pkg/errors"
)

// ErrExhausted is returned by Acquire when a bounded resource has no
// budget left.
var ErrExhausted = errors.New("mem: resource exhausted")

// Resource reserves and returns allocation budget for shared state.
// Implementations must be safe for concurrent use.
type Resource interface {
	// Acquire reserves one unit. It returns an error if no budget is
	// available; the caller must not call Release for a failed Acquire.
	Acquire() error

	// Release returns one previously acquired unit.
	Release()
}

// Unbounded returns a Resource whose Acquire never fails.
func Unbounded() Resource {
	return unbounded{}
}

type unbounded struct{}

func (unbounded) Acquire() error { return nil }

func (unbounded) Release() {}

// Bounded returns a Resource that admits at most n live units.
func Bounded(n int) Resource {
	return &bounded{capacity: n}
}

type bounded struct {
	mu       sync.Mutex
	capacity int
	live     int
}

func (b *bounded) Acquire() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.live >= b.capacity {
		return errors.WithStack(ErrExhausted)
	}
	b.live++
	return nil
}

func (b *bounded) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.live > 0 {
		b.live--
	}
}

var (
	defaultMu       sync.RWMutex
	defaultResource Resource = Unbounded()
)

// Default returns the process-wide resource used by promise
// construction when no explicit resource is given.
func Default() Resource {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultResource
}

// SetDefault replaces the process-wide resource. It panics if r is nil.
func SetDefault(r Resource) {
	if r == nil {
		panic("mem: resource is nil")
	}
	defaultMu.Lock()
	defaultResource = r
	defaultMu.Unlock()
}
