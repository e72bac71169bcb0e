// Package fake
// Author: momentics <momentics@gmail.com>
//
// Fake implementations for testing and development.
// Provides predictable, controllable behavior for the core interfaces.

package fake

import (
	"sync"

	"github.com/momentics/hioload-mux/api"
)

// NetConn is a fake non-blocking api.NetConn. Queued chunks are returned by
// Read one at a time; once the queue is empty Read reports api.ErrWouldBlock,
// or a zero-length read if the peer was marked closed.
type NetConn struct {
	mu         sync.Mutex
	recv       [][]byte
	sent       []byte
	eof        bool
	closed     bool
	readErr    error
	writeErr   error
	writeLimit int
	reads      int
}

var _ api.NetConn = (*NetConn)(nil)

// NewNetConn creates a fake connection with unlimited write capacity.
func NewNetConn() *NetConn {
	return &NetConn{writeLimit: -1}
}

// Read implements api.NetConn.
func (c *NetConn) Read(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reads++
	if c.closed {
		return 0, api.ErrTransportClosed
	}
	if len(c.recv) == 0 {
		if c.readErr != nil {
			return 0, c.readErr
		}
		if c.eof {
			return 0, nil
		}
		return 0, api.ErrWouldBlock
	}
	n := copy(p, c.recv[0])
	if n == len(c.recv[0]) {
		c.recv = c.recv[1:]
	} else {
		c.recv[0] = c.recv[0][n:]
	}
	return n, nil
}

// Write implements api.NetConn. With a write limit set, at most that many
// bytes are accepted before api.ErrWouldBlock.
func (c *NetConn) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return 0, api.ErrTransportClosed
	}
	if c.writeErr != nil {
		return 0, c.writeErr
	}
	n := len(p)
	if c.writeLimit >= 0 {
		if c.writeLimit == 0 {
			return 0, api.ErrWouldBlock
		}
		if n > c.writeLimit {
			n = c.writeLimit
		}
		c.writeLimit -= n
	}
	c.sent = append(c.sent, p[:n]...)
	return n, nil
}

// Close implements api.NetConn.
func (c *NetConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

// RawFD implements api.NetConn.
func (c *NetConn) RawFD() uintptr { return ^uintptr(0) }

// RemoteAddr implements api.NetConn.
func (c *NetConn) RemoteAddr() string { return "fake:0" }

// Feed queues bytes for the next reads.
func (c *NetConn) Feed(data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.recv = append(c.recv, append([]byte(nil), data...))
}

// SetEOF makes reads return zero bytes once the queue is drained.
func (c *NetConn) SetEOF() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.eof = true
}

// SetReadError configures the error returned once the queue is drained.
func (c *NetConn) SetReadError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.readErr = err
}

// SetWriteError configures the transport to return an error on Write.
func (c *NetConn) SetWriteError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writeErr = err
}

// SetWriteLimit caps the bytes accepted before writes would block.
// A negative limit removes the cap.
func (c *NetConn) SetWriteLimit(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writeLimit = n
}

// Sent returns a copy of everything written so far.
func (c *NetConn) Sent() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]byte(nil), c.sent...)
}

// Closed reports whether Close was called.
func (c *NetConn) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Reads returns the number of Read calls.
func (c *NetConn) Reads() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reads
}
