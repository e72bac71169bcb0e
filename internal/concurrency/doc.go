// File: internal/concurrency/doc.go
// Package concurrency
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Task execution off the reactor goroutine and the mailbox that carries
// results back to it. Executor runs service calls on a fixed pool of worker
// goroutines; Inline runs them on the caller. Mailbox is the only structure
// touched by both sides and serializes access with a mutex.

package concurrency
