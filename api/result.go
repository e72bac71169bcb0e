// Package api
// Author: momentics@gmail.com
//
// Generic result and error propagation.

package api

// Result wraps any payload or error.
type Result[T any] struct {
    Value T
    Err   error
}

// Ok builds a successful result.
func Ok[T any](v T) Result[T] { return Result[T]{Value: v} }

// Fail builds a failed result.
func Fail[T any](err error) Result[T] { return Result[T]{Err: err} }

// Failed reports whether the result carries an error.
func (r Result[T]) Failed() bool { return r.Err != nil }
