// File: api/reactor.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Readiness-notification contract shared by the poller backends and the
// reactor loop that consumes them.

package api

import "math"

// Token identifies a registered handle. Connection tokens are issued by the
// connection registry: the low 32 bits hold the slot index and the high 32
// bits the slot generation.
type Token uint64

// Reserved tokens. The registry never issues them.
const (
	ListenerToken Token = math.MaxUint64 - 1
	WakeToken     Token = math.MaxUint64 - 2
)

// NewToken packs a slot index and its generation.
func NewToken(index, gen uint32) Token {
	return Token(uint64(gen)<<32 | uint64(index))
}

// Index returns the slot index part of the token.
func (t Token) Index() uint32 { return uint32(t) }

// Generation returns the generation part of the token.
func (t Token) Generation() uint32 { return uint32(t >> 32) }

// Interest selects which readiness transitions a handle is armed for.
type Interest uint8

const (
	InterestRead Interest = 1 << iota
	InterestWrite
)

// EventKind is a bitmask of readiness conditions reported for one handle.
type EventKind uint8

const (
	EventRead EventKind = 1 << iota
	EventWrite
	EventError
	EventHangup
)

// IsReadable reports whether the read bit is set.
func (k EventKind) IsReadable() bool { return k&EventRead != 0 }

// IsWritable reports whether the write bit is set.
func (k EventKind) IsWritable() bool { return k&EventWrite != 0 }

// IsError reports an error or hangup condition.
func (k EventKind) IsError() bool { return k&(EventError|EventHangup) != 0 }

// Event is one readiness notification. Notifications are edge-triggered: a
// transition is reported once and the consumer must drain the handle until
// it would block.
type Event struct {
	Token Token
	Kind  EventKind
}

// Reactor is the readiness poller consumed by the server loop.
type Reactor interface {
	// Register arms notifications for fd under the given token.
	Register(fd int, tok Token, interest Interest) error

	// Modify changes the interest set of an already registered fd.
	Modify(fd int, tok Token, interest Interest) error

	// Deregister removes fd from the interest list.
	Deregister(fd int) error

	// Wait blocks until at least one event is ready or timeoutMs elapses
	// (negative blocks indefinitely) and fills events. An interrupted wait
	// returns zero events and no error.
	Wait(events []Event, timeoutMs int) (int, error)

	// Wake interrupts a blocked Wait from any goroutine; the loop observes
	// an event carrying WakeToken.
	Wake() error

	// ResetWake consumes pending wake notifications.
	ResetWake() error

	// Close releases the poller.
	Close() error
}
