package kv

import (
	"errors"
	"fmt"
)

type resultState uint8

const (
	stateAbsent resultState = iota
	stateFound
	stateFailed
)

// Result is the outcome of a read: exactly one of Found, Absent or Failed.
// The zero Result is Absent.
type Result[T any] struct {
	state resultState
	value T
	err   error
}

// Found returns a Result holding v.
func Found[T any](v T) Result[T] {
	return Result[T]{state: stateFound, value: v}
}

// Absent returns a Result for a missing key.
func Absent[T any]() Result[T] {
	return Result[T]{state: stateAbsent}
}

// Failed returns a Result for a failed read. A nil err is replaced with a
// generic error so that Failed never carries nil.
func Failed[T any](err error) Result[T] {
	if err == nil {
		err = errors.New("kv: read failed")
	}
	return Result[T]{state: stateFailed, err: err}
}

func (r Result[T]) IsFound() bool  { return r.state == stateFound }
func (r Result[T]) IsAbsent() bool { return r.state == stateAbsent }
func (r Result[T]) IsFailed() bool { return r.state == stateFailed }

// Value returns the found value, or the zero T.
func (r Result[T]) Value() T { return r.value }

// Err returns the failure, or nil.
func (r Result[T]) Err() error { return r.err }

// Get returns the value and whether it was found, plus any failure.
func (r Result[T]) Get() (T, bool, error) {
	return r.value, r.state == stateFound, r.err
}

// Unwrap returns the found value and panics on Absent or Failed.
func (r Result[T]) Unwrap() T {
	switch r.state {
	case stateFound:
		return r.value
	case stateFailed:
		panic(fmt.Sprintf("kv: Unwrap on failed result: %v", r.err))
	default:
		panic("kv: Unwrap on absent result")
	}
}

// OnError calls fn with the failure, if any, and returns r.
func (r Result[T]) OnError(fn func(error)) Result[T] {
	if r.state == stateFailed {
		fn(r.err)
	}
	return r
}

// OnAbsent calls fn when r is Absent and returns r.
func (r Result[T]) OnAbsent(fn func()) Result[T] {
	if r.state == stateAbsent {
		fn()
	}
	return r
}

func (r Result[T]) String() string {
	switch r.state {
	case stateFound:
		return fmt.Sprintf("Found(%v)", r.value)
	case stateFailed:
		return fmt.Sprintf("Failed(%v)", r.err)
	default:
		return "Absent"
	}
}

// Map applies fn to a found value. Absent and Failed pass through.
func Map[T, U any](r Result[T], fn func(T) U) Result[U] {
	switch r.state {
	case stateFound:
		return Found(fn(r.value))
	case stateFailed:
		return Failed[U](r.err)
	default:
		return Absent[U]()
	}
}
