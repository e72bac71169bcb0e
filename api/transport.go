// File: api/transport.go
// Author: momentics <momentics@gmail.com>
//
// Defines the non-blocking socket abstraction (NetConn) consumed by the
// frame binder and the reactor loop.

package api

// NetConn abstracts a full-duplex, non-blocking connection.
// Read and Write return ErrWouldBlock when the socket is drained or full.
type NetConn interface {
	// Read reads into a preallocated buffer. A zero count with a nil error
	// means the peer closed its side.
	Read(p []byte) (n int, err error)

	// Write writes buffer contents into the connection
	Write(p []byte) (n int, err error)

	// Close shuts down the connection
	Close() error

	// RawFD returns the underlying OS-level file descriptor
	RawFD() uintptr

	// RemoteAddr returns the peer address in host:port form.
	RemoteAddr() string
}
