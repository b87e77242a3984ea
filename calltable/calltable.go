// Package calltable tracks outstanding asynchronous calls awaiting
// replies, the way an RPC dispatch layer tracks in-flight requests.
//
// Open registers a call and hands back its future; Complete and Fail
// resolve it from the reply path. The future's cleanup hook removes
// the entry when the caller closes a still-pending future, so an
// abandoned call does not occupy the table forever.
package calltable

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/mivranec/go-async/async"
	"github.com/mivranec/go-async/result"
)

// Table maps call ids to the promises of their replies. Safe for
// concurrent use.
type Table[T any] struct {
	mu      sync.Mutex
	pending map[uint64]*async.Promise[T]
	closed  bool
}

func New[T any]() *Table[T] {
	return &Table[T]{
		pending: make(map[uint64]*async.Promise[T]),
	}
}

// Open registers an outstanding call and returns the future its reply
// will arrive on. Closing the returned future while the call is still
// pending abandons the call and removes it from the table.
func (t *Table[T]) Open(id uint64) (*async.Future[T], error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil, errors.New("calltable: table is shut down")
	}
	if _, ok := t.pending[id]; ok {
		return nil, errors.Errorf("calltable: call %d already pending", id)
	}
	p := async.NewPromise[T]()
	f := p.GetFutureWithCleanup(func() {
		t.abandon(id)
	})
	t.pending[id] = p
	return f, nil
}

// Complete resolves the call with a ready result and removes it.
func (t *Table[T]) Complete(id uint64, r result.Result[T]) error {
	p, err := t.remove(id)
	if err != nil {
		return err
	}
	p.SetResult(r)
	p.Close()
	return nil
}

// Fail resolves the call with an error and removes it.
func (t *Table[T]) Fail(id uint64, err error) error {
	p, rerr := t.remove(id)
	if rerr != nil {
		return rerr
	}
	p.SetError(err)
	p.Close()
	return nil
}

// Break abandons the call without a reply; its waiter observes
// async.ErrBrokenPromise.
func (t *Table[T]) Break(id uint64) error {
	p, err := t.remove(id)
	if err != nil {
		return err
	}
	p.Close()
	return nil
}

// Len returns the number of calls still pending.
func (t *Table[T]) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.pending)
}

// Shutdown abandons every pending call and rejects subsequent Opens.
// All current waiters observe async.ErrBrokenPromise.
func (t *Table[T]) Shutdown() {
	t.mu.Lock()
	ps := make([]*async.Promise[T], 0, len(t.pending))
	for _, p := range t.pending {
		ps = append(ps, p)
	}
	t.pending = make(map[uint64]*async.Promise[T])
	t.closed = true
	t.mu.Unlock()

	for _, p := range ps {
		p.Close()
	}
}

func (t *Table[T]) remove(id uint64) (*async.Promise[T], error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	p, ok := t.pending[id]
	if !ok {
		return nil, errors.Errorf("calltable: no pending call %d", id)
	}
	delete(t.pending, id)
	return p, nil
}

// abandon is the future cleanup hook: drop the entry and break the
// promise. The entry may already be gone if a reply raced the
// abandonment.
func (t *Table[T]) abandon(id uint64) {
	t.mu.Lock()
	p, ok := t.pending[id]
	delete(t.pending, id)
	t.mu.Unlock()
	if ok {
		p.Close()
	}
}
