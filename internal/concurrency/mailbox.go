// File: internal/concurrency/mailbox.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Mailbox is a multi-producer, single-consumer FIFO that hands results from
// executor goroutines back to the reactor goroutine.

package concurrency

import (
	"sync"

	"github.com/eapache/queue"
)

// Mailbox queues values and calls notify when the queue goes from empty to
// non-empty. The consumer must drain after every wakeup; values pushed while
// a drain is pending do not notify again.
type Mailbox[T any] struct {
	mu     sync.Mutex
	q      *queue.Queue
	notify func()
}

// NewMailbox creates an empty mailbox. notify may be nil.
func NewMailbox[T any](notify func()) *Mailbox[T] {
	return &Mailbox[T]{q: queue.New(), notify: notify}
}

// Push appends v. Safe for concurrent use.
func (m *Mailbox[T]) Push(v T) {
	m.mu.Lock()
	wasEmpty := m.q.Length() == 0
	m.q.Add(v)
	m.mu.Unlock()
	if wasEmpty && m.notify != nil {
		m.notify()
	}
}

// Drain removes every queued value in FIFO order and appends it to dst.
func (m *Mailbox[T]) Drain(dst []T) []T {
	m.mu.Lock()
	defer m.mu.Unlock()
	for m.q.Length() > 0 {
		dst = append(dst, m.q.Remove().(T))
	}
	return dst
}

// Len returns the number of queued values.
func (m *Mailbox[T]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.q.Length()
}
