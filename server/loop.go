// File: server/loop.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Reactor loop: accept, read, decode, dispatch, and write back completions.

package server

import (
	"net"

	"github.com/pkg/errors"

	"github.com/momentics/hioload-mux/api"
	sock "github.com/momentics/hioload-mux/internal/transport"
	"github.com/momentics/hioload-mux/mux"
	"github.com/momentics/hioload-mux/transport"
)

// acceptor is the listening socket as seen by the loop.
type acceptor interface {
	FD() int
	Addr() *net.TCPAddr
	Accept() (*sock.Conn, error)
	Close() error
}

// conn is a registered client connection. Owned by the loop goroutine.
type conn struct {
	tok      api.Token
	sock     *sock.Conn
	framed   *transport.Framed
	addr     string
	state    api.ConnState
	writable bool // armed for write readiness
}

// Serve runs the reactor loop until Shutdown or a fatal listener/poller
// error. It returns nil after Shutdown.
func (s *Server) Serve() error {
	if !s.serving.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer close(s.done)
	defer s.teardown()
	if s.stopping.Load() {
		return api.ErrServerClosed
	}

	if err := s.reactor.Register(s.listener.FD(), api.ListenerToken, api.InterestRead); err != nil {
		return fatal("register listener", err)
	}
	for {
		n, err := s.reactor.Wait(s.events, -1)
		if err != nil {
			return fatal("wait", err)
		}
		for _, ev := range s.events[:n] {
			switch ev.Token {
			case api.ListenerToken:
				if err := s.acceptAll(ev.Kind); err != nil {
					return err
				}
			case api.WakeToken:
				if err := s.reactor.ResetWake(); err != nil {
					return fatal("reset wake", err)
				}
			default:
				s.handleConn(ev)
			}
		}
		if s.stopping.Load() {
			return nil
		}
		s.deliverCompletions()
	}
}

func (s *Server) acceptAll(kind api.EventKind) error {
	if kind.IsError() || !kind.IsReadable() {
		return fatal("listener", api.ErrTransportClosed)
	}
	for {
		sc, err := s.listener.Accept()
		if errors.Is(err, api.ErrWouldBlock) {
			return nil
		}
		if errors.Is(err, api.ErrResourceLimit) {
			// Pending connections stay in the backlog until the next edge.
			s.metrics.Add(MetricAcceptErrors, 1)
			s.logger.Printf("[server] accept deferred: %v", err)
			return nil
		}
		if err != nil {
			return fatal("accept", err)
		}
		c := &conn{
			sock:   sc,
			framed: transport.NewFramed(sc, s.codec),
			addr:   sc.RemoteAddr(),
			state:  api.StateActive,
		}
		c.tok = s.conns.Insert(c)
		if err := s.reactor.Register(sc.FD(), c.tok, api.InterestRead); err != nil {
			s.conns.Remove(c.tok)
			sc.Close()
			return fatal("register connection", err)
		}
		s.open.Add(1)
		s.metrics.Add(MetricAccepted, 1)
		s.logger.Printf("Accepted connection: %s", c.addr)
	}
}

func (s *Server) handleConn(ev api.Event) {
	c, ok := s.conns.Get(ev.Token)
	if !ok {
		return
	}
	switch {
	case ev.Kind.IsError():
		c.state = api.StateClosing
	case ev.Kind.IsReadable() || ev.Kind.IsWritable():
		if ev.Kind.IsReadable() {
			s.readConn(c)
		}
		if ev.Kind.IsWritable() && c.state == api.StateActive {
			s.flushConn(c)
		}
	default:
		c.state = api.StateClosing
	}
	if c.state == api.StateClosing {
		s.closeConn(c)
	}
}

// readConn drains the socket, then dispatches every complete frame.
func (s *Server) readConn(c *conn) {
	eof, err := c.framed.Fill(s.scratch)
	if err != nil {
		c.state = api.StateClosing
	}
	for {
		f, ok, err := c.framed.Next()
		if err != nil {
			s.metrics.Add(MetricDecodeErrors, 1)
			c.state = api.StateClosing
			break
		}
		if !ok {
			break
		}
		s.metrics.Add(MetricFramesIn, 1)
		s.dispatch.Dispatch(c.tok, f)
	}
	if eof {
		c.state = api.StateClosing
	}
}

func (s *Server) flushConn(c *conn) {
	done, err := c.framed.Flush()
	if err != nil {
		c.state = api.StateClosing
		return
	}
	s.armWrite(c, !done)
}

func (s *Server) armWrite(c *conn, want bool) {
	if c.writable == want {
		return
	}
	interest := api.InterestRead
	if want {
		interest |= api.InterestWrite
	}
	if err := s.reactor.Modify(c.sock.FD(), c.tok, interest); err != nil {
		c.state = api.StateClosing
		return
	}
	c.writable = want
}

// deliverCompletions writes back every completion whose connection is still
// registered under the same token.
func (s *Server) deliverCompletions() {
	s.pending = s.mailbox.Drain(s.pending[:0])
	for i := range s.pending {
		cpl := s.pending[i]
		s.pending[i] = mux.Completion{}
		c, ok := s.conns.Get(cpl.Token)
		if !ok || c.state != api.StateActive {
			s.metrics.Add(MetricStaleCompletion, 1)
			continue
		}
		c.framed.Push(cpl.ID, cpl.Reply())
		s.metrics.Add(MetricFramesOut, 1)
		if !c.writable {
			s.flushConn(c)
		}
		if c.state == api.StateClosing {
			s.closeConn(c)
		}
	}
}

func (s *Server) closeConn(c *conn) {
	if _, ok := s.conns.Remove(c.tok); !ok {
		return
	}
	if err := s.reactor.Deregister(c.sock.FD()); err != nil {
		s.logger.Printf("[server] deregister token=%d: %v", uint64(c.tok), err)
	}
	c.framed.Release()
	c.sock.Close()
	s.open.Add(-1)
	s.metrics.Add(MetricClosed, 1)
	s.logger.Printf("Closing connection on token=%d", uint64(c.tok))
}
