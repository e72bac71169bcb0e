// File: server/types.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package server

import (
	"github.com/momentics/hioload-mux/mux"
)

// Config holds all server-side configuration parameters.
type Config struct {
	ListenAddr     string   // TCP bind address, e.g. "127.0.0.1:9000"
	ReadBufferSize int      // per-read scratch buffer size
	EventBatch     int      // max readiness events returned per Wait
	Workers        int      // executor workers; 0 runs services inline on the loop
	QueueSize      int      // executor queue capacity (0 = derived from Workers)
	Service        mux.Kind // business service for every frame
	MaxPayload     int      // max frame payload in bytes (0 = unbounded)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		ListenAddr:     "127.0.0.1:9000",
		ReadBufferSize: 1024,
		EventBatch:     1024,
		Workers:        4,
		Service:        mux.KindEcho,
	}
}

func (c *Config) normalize() {
	def := DefaultConfig()
	if c.ListenAddr == "" {
		c.ListenAddr = def.ListenAddr
	}
	if c.ReadBufferSize <= 0 {
		c.ReadBufferSize = def.ReadBufferSize
	}
	if c.EventBatch <= 0 {
		c.EventBatch = def.EventBatch
	}
	if c.Workers < 0 {
		c.Workers = 0
	}
	if c.MaxPayload < 0 {
		c.MaxPayload = 0
	}
}
