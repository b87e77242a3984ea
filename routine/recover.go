package routine

import (
	"fmt"
	"runtime"

	"github.com/pkg/errors"
)

// Recover swallows an in-flight panic, handing the recovered value to
// each cleanup in order. Must be deferred.
func Recover(cleanups ...func(r interface{})) {
	if r := recover(); r != nil {
		for _, cleanup := range cleanups {
			cleanup(r)
		}
	}
}

// Recovered captures a panic value together with the call stack at the
// recovery site.
type Recovered struct {
	Value   interface{}
	Callers []uintptr
}

// NewRecovered records value and the current call stack, skipping the
// given number of frames above the caller.
func NewRecovered(skip int, value interface{}) *Recovered {
	var callers [32]uintptr
	n := runtime.Callers(skip+1, callers[:])
	return &Recovered{
		Value:   value,
		Callers: callers[:n],
	}
}

// AsError converts the capture into an error carrying the stack trace.
func (p *Recovered) AsError() error {
	if p == nil {
		return nil
	}
	return &RecoveredError{p}
}

// RecoveredError is a panic capture presented as an error. It exposes
// the stack through the errors.StackTrace convention so %+v formatting
// prints the frames.
type RecoveredError struct {
	*Recovered
}

func (e *RecoveredError) Error() string {
	return fmt.Sprintf("panic: %v\nstacktrace:%+v", e.Value, e.StackTrace())
}

func (e *RecoveredError) StackTrace() errors.StackTrace {
	if e == nil {
		return nil
	}
	frames := make([]errors.Frame, len(e.Callers))
	for i, pc := range e.Callers {
		frames[i] = errors.Frame(pc)
	}
	return frames
}
