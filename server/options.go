// File: server/options.go
// Package server defines functional options for the Server.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package server

import (
	"log"

	"github.com/momentics/hioload-mux/control"
	"github.com/momentics/hioload-mux/mux"
)

// ServerOption customizes server initialization.
type ServerOption func(*Server)

// WithLogger sets the logger used for connection notices.
func WithLogger(l *log.Logger) ServerOption {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithWorkers sets the number of executor goroutines. Zero runs services
// inline on the loop goroutine.
func WithWorkers(n int) ServerOption {
	return func(s *Server) {
		s.cfg.Workers = n
	}
}

// WithService selects the business service.
func WithService(k mux.Kind) ServerOption {
	return func(s *Server) {
		s.cfg.Service = k
	}
}

// WithMetrics shares an existing metrics registry.
func WithMetrics(m *control.MetricsRegistry) ServerOption {
	return func(s *Server) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithReadBufferSize overrides the per-read scratch size.
func WithReadBufferSize(n int) ServerOption {
	return func(s *Server) {
		s.cfg.ReadBufferSize = n
	}
}

// WithMaxPayload bounds the payload of a single inbound frame.
func WithMaxPayload(n int) ServerOption {
	return func(s *Server) {
		s.cfg.MaxPayload = n
	}
}

// WithEventBatch overrides the reactor batch size.
func WithEventBatch(n int) ServerOption {
	return func(s *Server) {
		s.cfg.EventBatch = n
	}
}
