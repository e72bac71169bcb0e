// File: internal/registry/registry.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package registry

import (
	"math"

	"github.com/momentics/hioload-mux/api"
)

// maxSlots keeps issued indices clear of the reserved tokens.
const maxSlots = math.MaxUint32 - 8

type slot[T any] struct {
	val  T
	gen  uint32
	used bool
}

// Registry is a generational slab with O(1) insert, lookup and removal.
type Registry[T any] struct {
	slots []slot[T]
	free  []uint32
	count int
}

// New creates a registry with room for capacity entries before growing.
func New[T any](capacity int) *Registry[T] {
	if capacity < 0 {
		capacity = 0
	}
	return &Registry[T]{slots: make([]slot[T], 0, capacity)}
}

// Insert stores v and returns its token. Freed slots are reused first.
// It panics when the slab is exhausted.
func (r *Registry[T]) Insert(v T) api.Token {
	var idx uint32
	if n := len(r.free); n > 0 {
		idx = r.free[n-1]
		r.free = r.free[:n-1]
	} else {
		if len(r.slots) >= maxSlots {
			panic("registry: slab exhausted")
		}
		idx = uint32(len(r.slots))
		r.slots = append(r.slots, slot[T]{})
	}
	s := &r.slots[idx]
	s.val = v
	s.used = true
	r.count++
	return api.NewToken(idx, s.gen)
}

// Get returns the value for tok, or false if tok was removed or never issued.
func (r *Registry[T]) Get(tok api.Token) (T, bool) {
	s := r.lookup(tok)
	if s == nil {
		var zero T
		return zero, false
	}
	return s.val, true
}

// Contains reports whether tok is live.
func (r *Registry[T]) Contains(tok api.Token) bool {
	return r.lookup(tok) != nil
}

// Remove releases the slot of tok and returns the value it held so the
// caller can drop owned resources. The slot generation is bumped, which
// invalidates tok.
func (r *Registry[T]) Remove(tok api.Token) (T, bool) {
	var zero T
	s := r.lookup(tok)
	if s == nil {
		return zero, false
	}
	v := s.val
	s.val = zero
	s.used = false
	s.gen++
	r.free = append(r.free, tok.Index())
	r.count--
	return v, true
}

// Len returns the number of live entries.
func (r *Registry[T]) Len() int { return r.count }

// Range calls fn for every live entry in slot order until fn returns false.
// fn must not insert or remove.
func (r *Registry[T]) Range(fn func(tok api.Token, v T) bool) {
	for i := range r.slots {
		s := &r.slots[i]
		if !s.used {
			continue
		}
		if !fn(api.NewToken(uint32(i), s.gen), s.val) {
			return
		}
	}
}

func (r *Registry[T]) lookup(tok api.Token) *slot[T] {
	idx := tok.Index()
	if uint64(idx) >= uint64(len(r.slots)) {
		return nil
	}
	s := &r.slots[idx]
	if !s.used || s.gen != tok.Generation() {
		return nil
	}
	return s
}
