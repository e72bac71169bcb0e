// Package server
// Author: momentics <momentics@gmail.com>
//
// Single-goroutine reactor loop serving the tagged line protocol.
//
// One goroutine owns the listener, every connection and the readiness poller.
// Frames are handed to a mux.Dispatcher; completions come back through a
// mailbox that wakes the poller, so connection state is never shared.
package server
