// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package concurrency

import "github.com/momentics/hioload-mux/api"

// Inline runs every task synchronously on the submitting goroutine.
type Inline struct{}

var _ api.Executor = Inline{}

// Submit runs task before returning.
func (Inline) Submit(task func()) error {
	if task == nil {
		return api.ErrInvalidArgument
	}
	task()
	return nil
}

// NumWorkers returns zero.
func (Inline) NumWorkers() int { return 0 }

// Close is a no-op.
func (Inline) Close() {}
