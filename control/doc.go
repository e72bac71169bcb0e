// Package control
// Author: momentics <momentics@gmail.com>
//
// Runtime metrics and debug introspection for the reactor.
//
// Provides concurrent-safe state handling primitives including:
//   - Named counters and gauges with snapshot reads
//   - Probe registration for on-demand state export
package control
