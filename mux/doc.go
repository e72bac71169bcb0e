// File: mux/doc.go
// Package mux
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Request multiplexing for the framed protocol. Each decoded frame is handed
// to a Service on an api.Executor; the result comes back as a Completion
// tagged with the originating connection token and request id. Completions
// for one connection may resolve in any order, the request id is the only
// correlation the client gets.

package mux
