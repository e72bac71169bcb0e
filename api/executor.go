// Package api
// Author: momentics
//
// Executor contract for asynchronous task dispatch off the reactor goroutine.

package api

// Executor abstracts task execution.
type Executor interface {
    // Submit schedules task for execution.
    Submit(task func()) error

    // NumWorkers returns current number of active worker routines.
    // Inline executors report zero.
    NumWorkers() int

    // Close stops accepting tasks.
    Close()
}
