// File: server/server.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package server

import (
	"context"
	"log"
	"os"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"

	"github.com/momentics/hioload-mux/api"
	"github.com/momentics/hioload-mux/control"
	"github.com/momentics/hioload-mux/internal/concurrency"
	"github.com/momentics/hioload-mux/internal/registry"
	sock "github.com/momentics/hioload-mux/internal/transport"
	"github.com/momentics/hioload-mux/mux"
	"github.com/momentics/hioload-mux/protocol"
	"github.com/momentics/hioload-mux/reactor"
)

var ErrAlreadyRunning = errors.New("server already running")

// Metric names maintained by the loop.
const (
	MetricAccepted        = "connections_accepted"
	MetricClosed          = "connections_closed"
	MetricFramesIn        = "frames_in"
	MetricFramesOut       = "frames_out"
	MetricDecodeErrors    = "decode_errors"
	MetricStaleCompletion = "completions_stale"
	MetricAcceptErrors    = "accept_errors"
)

// Server multiplexes every client connection over one reactor goroutine.
type Server struct {
	cfg     *Config
	logger  *log.Logger
	metrics *control.MetricsRegistry
	probes  *control.DebugProbes

	reactor  api.Reactor
	listener acceptor
	conns    *registry.Registry[*conn]
	exec     api.Executor
	mailbox  *concurrency.Mailbox[mux.Completion]
	dispatch *mux.Dispatcher
	codec    protocol.LineCodec
	cancel   context.CancelFunc

	scratch []byte
	events  []api.Event
	pending []mux.Completion

	open      atomic.Int64
	serving   atomic.Bool
	stopping  atomic.Bool
	done      chan struct{}
	closeOnce sync.Once
}

// NewServer binds the listener and builds the loop. cfg may be nil.
func NewServer(cfg *Config, opts ...ServerOption) (*Server, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	c := *cfg
	s := &Server{
		cfg:    &c,
		logger: log.New(os.Stdout, "", log.LstdFlags),
		probes: control.NewDebugProbes(),
		done:   make(chan struct{}),
	}
	for _, o := range opts {
		o(s)
	}
	s.cfg.normalize()
	if s.metrics == nil {
		s.metrics = control.NewMetricsRegistry()
	}

	svc, err := mux.NewService(s.cfg.Service)
	if err != nil {
		return nil, err
	}

	rt, err := reactor.New()
	if err != nil {
		return nil, errors.Wrap(err, "create reactor")
	}
	ln, err := sock.Listen(s.cfg.ListenAddr)
	if err != nil {
		rt.Close()
		return nil, err
	}

	switch {
	case s.exec != nil:
	case s.cfg.Workers > 0:
		s.exec = concurrency.NewExecutor(s.cfg.Workers, s.cfg.QueueSize)
	default:
		s.exec = concurrency.Inline{}
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.reactor = rt
	s.listener = ln
	s.conns = registry.New[*conn](64)
	s.codec = protocol.LineCodec{MaxPayload: s.cfg.MaxPayload}
	s.mailbox = concurrency.NewMailbox[mux.Completion](s.wake)
	s.dispatch = mux.NewDispatcher(ctx, svc, s.exec, s.mailbox)
	s.scratch = make([]byte, s.cfg.ReadBufferSize)
	s.events = make([]api.Event, s.cfg.EventBatch)

	s.metrics.Set("listen_addr", ln.Addr().String())
	s.metrics.Set("service", s.cfg.Service.String())
	s.registerProbes()
	return s, nil
}

func (s *Server) registerProbes() {
	s.probes.RegisterProbe("connections_open", func() any { return s.open.Load() })
	s.probes.RegisterProbe("mailbox_len", func() any { return s.mailbox.Len() })
	s.probes.RegisterProbe("metrics", func() any { return s.metrics.GetSnapshot() })
	if st, ok := s.exec.(interface{ Stats() map[string]int64 }); ok {
		s.probes.RegisterProbe("executor", func() any { return st.Stats() })
	}
}

// Addr returns the bound listener address.
func (s *Server) Addr() string { return s.listener.Addr().String() }

// Metrics returns the server's metrics registry.
func (s *Server) Metrics() *control.MetricsRegistry { return s.metrics }

// DebugState returns the output of every registered probe.
func (s *Server) DebugState() map[string]any { return s.probes.DumpState() }

// Shutdown stops the loop, closes every connection, the listener and the
// poller. It waits for Serve to return.
func (s *Server) Shutdown() error {
	s.stopping.Store(true)
	if !s.serving.Load() {
		s.teardown()
		return nil
	}
	select {
	case <-s.done:
		return nil
	default:
	}
	// A closed reactor means Serve is already tearing down.
	if err := s.reactor.Wake(); err != nil && !errors.Is(err, api.ErrReactorClosed) {
		return errors.Wrap(err, "wake reactor")
	}
	<-s.done
	return nil
}

func (s *Server) wake() {
	if err := s.reactor.Wake(); err != nil && !errors.Is(err, api.ErrReactorClosed) {
		s.logger.Printf("[server] wake failed: %v", err)
	}
}

func (s *Server) teardown() {
	s.closeOnce.Do(func() {
		s.stopping.Store(true)
		var open []*conn
		s.conns.Range(func(_ api.Token, c *conn) bool {
			open = append(open, c)
			return true
		})
		for _, c := range open {
			s.closeConn(c)
		}
		s.cancel()
		s.exec.Close()
		if err := s.listener.Close(); err != nil {
			s.logger.Printf("[server] listener close: %v", err)
		}
		if err := s.reactor.Close(); err != nil {
			s.logger.Printf("[server] reactor close: %v", err)
		}
		s.logger.Printf("[server] stopped, metrics: %v", s.metrics.GetSnapshot())
	})
}

func fatal(stage string, err error) error {
	return api.NewError(api.ErrCodeInternal, "reactor loop failed").
		WithContext("stage", stage).
		WithCause(errors.Wrap(err, stage))
}
