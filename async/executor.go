package async

// Executor submits a zero-argument unit of work for later execution on
// a goroutine of its choosing. The core never starts goroutines on its
// own: without an executor, continuations run inline on whichever
// goroutine made the state ready.
//
// Stock implementations live in the executors subpackage.
type Executor interface {
	Submit(func())
}

// ExecutorFunc adapts a plain function to the Executor interface.
type ExecutorFunc func(func())

func (e ExecutorFunc) Submit(f func()) {
	e(f)
}
