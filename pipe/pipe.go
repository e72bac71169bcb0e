// File: pipe/pipe.go
// Package pipe implements a dumb byte sink: every accepted connection is
// copied verbatim to one writer.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package pipe

import (
	"io"
	"log"
	"net"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/net/netutil"
)

// DefaultMaxConns caps concurrent connections when none is given.
const DefaultMaxConns = 1024

// Sink accepts TCP connections and copies their bytes to an io.Writer.
type Sink struct {
	ln     net.Listener
	out    *lockedWriter
	logger *log.Logger

	mu     sync.Mutex
	conns  map[net.Conn]struct{}
	closed bool
	wg     sync.WaitGroup
}

// Listen binds addr. maxConns <= 0 selects DefaultMaxConns.
func Listen(addr string, maxConns int, out io.Writer, logger *log.Logger) (*Sink, error) {
	if out == nil {
		return nil, errors.New("pipe: nil writer")
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if maxConns <= 0 {
		maxConns = DefaultMaxConns
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, errors.Wrapf(err, "listen %s", addr)
	}
	return &Sink{
		ln:     netutil.LimitListener(ln, maxConns),
		out:    &lockedWriter{w: out},
		logger: logger,
		conns:  make(map[net.Conn]struct{}),
	}, nil
}

// Addr returns the bound address.
func (s *Sink) Addr() string { return s.ln.Addr().String() }

// Serve accepts until Close. It returns nil after Close.
func (s *Sink) Serve() error {
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			if s.isClosed() {
				return nil
			}
			return errors.Wrap(err, "accept")
		}
		if !s.track(conn) {
			conn.Close()
			return nil
		}
		s.logger.Printf("Accepted connection: %s", conn.RemoteAddr())
		s.wg.Add(1)
		go s.drain(conn)
	}
}

// Close stops accepting, closes live connections and waits for their
// copiers.
func (s *Sink) Close() error {
	s.mu.Lock()
	s.closed = true
	for c := range s.conns {
		c.Close()
	}
	s.mu.Unlock()
	err := s.ln.Close()
	s.wg.Wait()
	return err
}

func (s *Sink) drain(conn net.Conn) {
	defer s.wg.Done()
	n, err := io.Copy(s.out, conn)
	if err != nil && !s.isClosed() {
		s.logger.Printf("copy from %s: %v", conn.RemoteAddr(), err)
	}
	s.logger.Printf("Closing connection: %s (%d bytes)", conn.RemoteAddr(), n)
	s.mu.Lock()
	delete(s.conns, conn)
	s.mu.Unlock()
	conn.Close()
}

func (s *Sink) track(conn net.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.conns[conn] = struct{}{}
	return true
}

func (s *Sink) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// lockedWriter serializes chunks from concurrent copiers.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}
