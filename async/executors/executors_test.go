package executors

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGoExecutor(t *testing.T) {
	var wg sync.WaitGroup
	var ran atomic.Int32

	e := GoExecutor{}
	for i := 0; i < 10; i++ {
		wg.Add(1)
		e.Submit(func() {
			defer wg.Done()
			ran.Add(1)
		})
	}
	wg.Wait()
	assert.Equal(t, int32(10), ran.Load())
}

func TestGoExecutorContainsPanic(t *testing.T) {
	var wg sync.WaitGroup
	wg.Add(1)

	e := GoExecutor{}
	e.Submit(func() {
		defer wg.Done()
		panic("contained")
	})
	wg.Wait()
}

func TestPoolExecutorBoundsConcurrency(t *testing.T) {
	const workers = 2
	const tasks = 10

	p := NewPoolExecutor(workers)

	var wg sync.WaitGroup
	var running, peak atomic.Int32
	for i := 0; i < tasks; i++ {
		wg.Add(1)
		p.Submit(func() {
			defer wg.Done()
			n := running.Add(1)
			for {
				old := peak.Load()
				if n <= old || peak.CompareAndSwap(old, n) {
					break
				}
			}
			running.Add(-1)
		})
	}
	wg.Wait()
	assert.LessOrEqual(t, peak.Load(), int32(workers))
}

func TestPoolExecutorContainsPanic(t *testing.T) {
	p := NewPoolExecutor(1)

	var wg sync.WaitGroup
	wg.Add(2)
	p.Submit(func() {
		defer wg.Done()
		panic("contained")
	})
	// The pool slot freed by the panicking task must be usable again.
	p.Submit(func() {
		defer wg.Done()
	})
	wg.Wait()
}
