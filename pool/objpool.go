// Author: momentics <momentics@gmail.com>
// SPDX-License-Identifier: MIT

package pool

import "sync"

// Pool is a typed sync.Pool. reset, if set, runs on every value handed back
// and may veto reuse by returning false.
type Pool[T any] struct {
	pool  sync.Pool
	reset func(T) bool
}

// NewPool creates a Pool. newFn builds values when the pool is empty.
func NewPool[T any](newFn func() T, reset func(T) bool) *Pool[T] {
	p := &Pool[T]{reset: reset}
	p.pool.New = func() any { return newFn() }
	return p
}

// Get returns a pooled or fresh value.
func (p *Pool[T]) Get() T {
	return p.pool.Get().(T)
}

// Put offers v for reuse.
func (p *Pool[T]) Put(v T) {
	if p.reset != nil && !p.reset(v) {
		return
	}
	p.pool.Put(v)
}
