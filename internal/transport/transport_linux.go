// internal/transport/transport_linux.go
//go:build linux
// +build linux

//
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Linux sockets created with SOCK_NONBLOCK and driven through x/sys/unix.

package transport

import (
	"net"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-mux/api"
)

// Listen binds a non-blocking TCP listener on addr ("host:port").
func Listen(addr string) (*Listener, error) {
	tcpAddr, err := net.ResolveTCPAddr("tcp", addr)
	if err != nil {
		return nil, errors.Wrap(err, "resolve listen address")
	}
	family, sa, err := toSockaddr(tcpAddr)
	if err != nil {
		return nil, err
	}
	fd, err := unix.Socket(family, unix.SOCK_STREAM|unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC, unix.IPPROTO_TCP)
	if err != nil {
		return nil, errors.Wrap(err, "socket create")
	}
	_ = unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
	if err := unix.Bind(fd, sa); err != nil {
		unix.Close(fd)
		return nil, errors.Wrapf(err, "bind %s", addr)
	}
	if err := unix.Listen(fd, unix.SOMAXCONN); err != nil {
		unix.Close(fd)
		return nil, errors.Wrapf(err, "listen %s", addr)
	}
	bound, err := unix.Getsockname(fd)
	if err != nil {
		unix.Close(fd)
		return nil, errors.Wrap(err, "getsockname")
	}
	return &Listener{fd: fd, addr: toTCPAddr(bound)}, nil
}

// Accept returns the next pending connection or api.ErrWouldBlock when the
// backlog is empty. Connections aborted before accept are skipped.
// Descriptor or memory exhaustion is reported as api.ErrResourceLimit.
func (l *Listener) Accept() (*Conn, error) {
	for {
		nfd, sa, err := unix.Accept4(l.fd, unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC)
		switch err {
		case nil:
			_ = unix.SetsockoptInt(nfd, unix.IPPROTO_TCP, unix.TCP_NODELAY, 1)
			remote := ""
			if a := toTCPAddr(sa); a != nil {
				remote = a.String()
			}
			return &Conn{fd: nfd, remote: remote}, nil
		case unix.EAGAIN:
			return nil, api.ErrWouldBlock
		case unix.EINTR, unix.ECONNABORTED:
			continue
		case unix.EMFILE, unix.ENFILE, unix.ENOBUFS, unix.ENOMEM:
			return nil, errors.Wrapf(api.ErrResourceLimit, "accept: %v", err)
		default:
			return nil, errors.Wrap(err, "accept")
		}
	}
}

// Close closes the listening socket.
func (l *Listener) Close() error {
	return errors.Wrap(unix.Close(l.fd), "listener close")
}

// Read implements api.NetConn.
func (c *Conn) Read(p []byte) (int, error) {
	if c.closed {
		return 0, api.ErrTransportClosed
	}
	for {
		n, err := unix.Read(c.fd, p)
		switch err {
		case nil:
			return n, nil
		case unix.EAGAIN:
			return 0, api.ErrWouldBlock
		case unix.EINTR:
			continue
		default:
			return 0, errors.Wrap(err, "read")
		}
	}
}

// Write implements api.NetConn. Short writes are returned as-is; the caller
// retries the remainder on the next writable edge.
func (c *Conn) Write(p []byte) (int, error) {
	if c.closed {
		return 0, api.ErrTransportClosed
	}
	for {
		n, err := unix.Write(c.fd, p)
		switch err {
		case nil:
			return n, nil
		case unix.EAGAIN:
			return 0, api.ErrWouldBlock
		case unix.EINTR:
			continue
		default:
			return 0, errors.Wrap(err, "write")
		}
	}
}

// Close implements api.NetConn. It is idempotent.
func (c *Conn) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	return errors.Wrap(unix.Close(c.fd), "close")
}

func toSockaddr(a *net.TCPAddr) (int, unix.Sockaddr, error) {
	if a.IP == nil || a.IP.To4() != nil {
		sa := &unix.SockaddrInet4{Port: a.Port}
		if a.IP != nil {
			copy(sa.Addr[:], a.IP.To4())
		}
		return unix.AF_INET, sa, nil
	}
	if ip6 := a.IP.To16(); ip6 != nil {
		sa := &unix.SockaddrInet6{Port: a.Port}
		copy(sa.Addr[:], ip6)
		return unix.AF_INET6, sa, nil
	}
	return 0, nil, errors.Wrapf(api.ErrInvalidArgument, "address %s", a)
}

func toTCPAddr(sa unix.Sockaddr) *net.TCPAddr {
	switch a := sa.(type) {
	case *unix.SockaddrInet4:
		return &net.TCPAddr{IP: net.IP(append([]byte(nil), a.Addr[:]...)), Port: a.Port}
	case *unix.SockaddrInet6:
		return &net.TCPAddr{IP: net.IP(append([]byte(nil), a.Addr[:]...)), Port: a.Port}
	default:
		return nil
	}
}
