// Package protocol
// Author: momentics <momentics@gmail.com>
//
// Frame model and codec contract.

package protocol

import "github.com/pkg/errors"

// Frame is one logical message on the wire.
type Frame struct {
	ID      uint32 // opaque, client-chosen request id
	Payload string // UTF-8 text without Terminator
}

// Codec turns an accumulating byte buffer into frames and back.
type Codec interface {
	// Decode inspects buf and returns the first complete frame together with
	// the number of bytes it occupied. n == 0 with a nil error means more
	// bytes are needed. On error n still reports bytes already consumed and
	// the connection must be closed.
	Decode(buf []byte) (f Frame, n int, err error)

	// Encode appends the wire form of f to dst.
	Encode(dst []byte, f Frame) []byte
}

// Decode errors. Both are fatal to the connection that produced them.
var (
	ErrInvalidPayload = errors.New("invalid string")
	ErrFrameTooLarge  = errors.New("frame exceeds maximum size")
)
