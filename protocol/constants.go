// Package protocol
// Author: momentics <momentics@gmail.com>
//
// Wire protocol constants

package protocol

const (
	// IDLen is the size of the request id prefix.
	IDLen = 4

	// Terminator ends every frame.
	Terminator = '\n'

	// MinFrameLen is the smallest decodable frame: id plus terminator.
	MinFrameLen = IDLen + 1

	// ErrorPrefix marks a payload that reports a failed request. Failures are
	// in-band, so a successful payload that happens to start with the prefix
	// reads as a failure on the client side.
	ErrorPrefix = "ERR "
)
