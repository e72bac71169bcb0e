// Package pool
// Author: momentics <momentics@gmail.com>
//
// Memory reuse for per-connection I/O buffers.
// Buffers released by closed connections are recycled for new ones.
package pool
