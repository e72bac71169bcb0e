// Author: momentics <momentics@gmail.com>
// SPDX-License-Identifier: MIT

package fake

import (
	"sync"

	"github.com/momentics/hioload-mux/api"
)

// Executor holds submitted tasks until the test runs them, in any order.
type Executor struct {
	mu     sync.Mutex
	tasks  []func()
	closed bool
}

var _ api.Executor = (*Executor)(nil)

// NewExecutor returns an empty manual executor.
func NewExecutor() *Executor { return &Executor{} }

// Submit implements api.Executor.
func (e *Executor) Submit(task func()) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return api.ErrExecutorClosed
	}
	e.tasks = append(e.tasks, task)
	return nil
}

// NumWorkers implements api.Executor.
func (e *Executor) NumWorkers() int { return 0 }

// Close implements api.Executor.
func (e *Executor) Close() {
	e.mu.Lock()
	e.closed = true
	e.mu.Unlock()
}

// Pending returns the number of tasks not yet run.
func (e *Executor) Pending() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := 0
	for _, t := range e.tasks {
		if t != nil {
			n++
		}
	}
	return n
}

// Run executes the i-th submitted task (0-based). Each task runs at most once.
func (e *Executor) Run(i int) bool {
	e.mu.Lock()
	if i < 0 || i >= len(e.tasks) || e.tasks[i] == nil {
		e.mu.Unlock()
		return false
	}
	task := e.tasks[i]
	e.tasks[i] = nil
	e.mu.Unlock()
	task()
	return true
}
