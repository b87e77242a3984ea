// Package routine contains panic-safe invocation helpers used wherever
// this module runs caller-supplied code: continuation bodies, deferred
// computations and executor work units.
//
// RunSafe and GoSafe execute a function while containing panics, and
// Recovered/RecoveredError turn a recovered panic value into an error
// that carries the capture-site stack.
package routine
