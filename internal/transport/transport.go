// Package transport
// Author: momentics <momentics@gmail.com>
//
// Platform-independent socket types.

package transport

import (
	"net"

	"github.com/momentics/hioload-mux/api"
)

// Listener is a non-blocking listening socket.
type Listener struct {
	fd   int
	addr *net.TCPAddr
}

// FD returns the descriptor to register with the reactor.
func (l *Listener) FD() int { return l.fd }

// Addr returns the bound address, with the kernel-chosen port filled in.
func (l *Listener) Addr() *net.TCPAddr { return l.addr }

// Conn is an accepted non-blocking TCP connection.
type Conn struct {
	fd     int
	remote string
	closed bool
}

var _ api.NetConn = (*Conn)(nil)

// RawFD implements api.NetConn.
func (c *Conn) RawFD() uintptr { return uintptr(c.fd) }

// FD returns the descriptor as an int for reactor registration.
func (c *Conn) FD() int { return c.fd }

// RemoteAddr implements api.NetConn.
func (c *Conn) RemoteAddr() string { return c.remote }
