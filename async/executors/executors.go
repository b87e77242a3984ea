// Package executors provides stock implementations of async.Executor.
package executors

import "github.com/mivranec/go-async/routine"

// GoExecutor runs every unit of work on its own goroutine.
type GoExecutor struct{}

func (GoExecutor) Submit(f func()) {
	routine.GoSafe(f)
}

// PoolExecutor bounds the number of concurrently running units with a
// semaphore. Submit blocks while the pool is saturated.
type PoolExecutor struct {
	sem chan struct{}
}

func NewPoolExecutor(maxWorkers int) *PoolExecutor {
	return &PoolExecutor{
		sem: make(chan struct{}, maxWorkers),
	}
}

func (p *PoolExecutor) Submit(f func()) {
	p.sem <- struct{}{}
	go func() {
		defer func() { <-p.sem }()
		routine.RunSafe(f)
	}()
}
