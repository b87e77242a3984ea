// Package result provides the tagged value-or-error container that
// promises store and futures hand back.
//
// A Result holds exactly one of a value or an error. The zero value is
// empty: it reports neither a value nor an error, and Err returns
// ErrEmpty. Callers that produce results should use the factory
// functions rather than the zero value.
package result

import "errors"

// ErrEmpty is reported by an empty (zero-value) Result.
var ErrEmpty = errors.New("result: empty")

type kind uint8

const (
	kindEmpty kind = iota
	kindValue
	kindError
)

// Result is a tagged value-or-error container.
type Result[T any] struct {
	kind kind
	val  T
	err  error
}

// OfValue returns a Result holding v as a success value.
func OfValue[T any](v T) Result[T] {
	return Result[T]{kind: kindValue, val: v}
}

// OfError returns a Result holding err. A nil err still produces an
// error-kinded Result whose Err reports ErrEmpty.
func OfError[T any](err error) Result[T] {
	if err == nil {
		err = ErrEmpty
	}
	return Result[T]{kind: kindError, err: err}
}

// Of classifies a (value, error) pair: a non-nil error wins.
func Of[T any](v T, err error) Result[T] {
	if err != nil {
		return OfError[T](err)
	}
	return OfValue(v)
}

// HasValue reports whether r holds a success value.
func (r Result[T]) HasValue() bool {
	return r.kind == kindValue
}

// HasError reports whether r holds an error.
func (r Result[T]) HasError() bool {
	return r.kind == kindError
}

// Value returns the stored value, or the zero value if r does not hold
// one.
func (r Result[T]) Value() T {
	return r.val
}

// Err returns the stored error. It returns nil for a success value and
// ErrEmpty for the zero Result.
func (r Result[T]) Err() error {
	if r.kind == kindEmpty {
		return ErrEmpty
	}
	return r.err
}

// Unpack converts r back into Go's native (value, error) pair.
func (r Result[T]) Unpack() (T, error) {
	if r.kind == kindValue {
		return r.val, nil
	}
	var zero T
	return zero, r.Err()
}
