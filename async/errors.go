package async

import "github.com/pkg/errors"

// Error values delivered through result slots. All of them are
// recoverable and observed only by inspecting the retrieved result;
// the core never panics with one of these.
var (
	// ErrNoState reports an operation on an empty, expired or
	// already-retrieved state.
	ErrNoState = errors.New("async: no state")

	// ErrBrokenPromise reports a producer that was closed before
	// supplying a value or an error.
	ErrBrokenPromise = errors.New("async: broken promise")

	// ErrPromiseAlreadySatisfied reports a second value/error set on
	// the same promise.
	ErrPromiseAlreadySatisfied = errors.New("async: promise already satisfied")

	// ErrFutureAlreadyRetrieved reports a second GetFuture call on the
	// same promise.
	ErrFutureAlreadyRetrieved = errors.New("async: future already retrieved")
)
