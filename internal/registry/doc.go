// File: internal/registry/doc.go
// Package registry
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Dense, slot-reusing table of live connections keyed by api.Token.
// Every slot carries a generation counter that is bumped on removal, so a
// token held by an event or an in-flight completion never resolves to the
// connection that later reuses the same slot. The table is owned by a single
// goroutine (the reactor loop) and is not safe for concurrent use.

package registry
