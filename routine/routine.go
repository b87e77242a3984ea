package routine

// RunSafe calls fn, recovering any panic instead of letting it unwind
// into the caller. Each cleanup (if any) receives the recovered value.
func RunSafe(fn func(), cleanup ...func(r interface{})) {
	defer Recover(cleanup...)

	fn()
}

// GoSafe runs fn on a new goroutine with the same panic containment as
// RunSafe. A panic in fn never terminates the process.
func GoSafe(fn func(), cleanup ...func(r interface{})) {
	go RunSafe(fn, cleanup...)
}
