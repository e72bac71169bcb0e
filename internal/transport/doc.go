// File: internal/transport/doc.go
// Package transport
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Raw non-blocking TCP sockets for the reactor loop. Listener and Conn wrap
// plain file descriptors so they can be registered with the epoll reactor
// directly; every operation returns api.ErrWouldBlock instead of parking the
// goroutine. Linux only, other platforms get api.ErrNotSupported.

package transport
