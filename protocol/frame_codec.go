// File: protocol/frame_codec.go
// Package protocol implements the id-prefixed, newline-delimited frame codec.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package protocol

import (
	"bytes"
	"encoding/binary"
	"unicode/utf8"
)

// LineCodec implements Codec. The zero value accepts frames of any size.
type LineCodec struct {
	// MaxPayload caps the payload length searched for a terminator.
	// Zero disables the limit.
	MaxPayload int
}

var _ Codec = LineCodec{}

// Decode implements Codec.
func (c LineCodec) Decode(buf []byte) (Frame, int, error) {
	if len(buf) < MinFrameLen {
		return Frame{}, 0, nil
	}
	body := buf[IDLen:]
	n := bytes.IndexByte(body, Terminator)
	if n < 0 {
		if c.MaxPayload > 0 && len(body) > c.MaxPayload {
			return Frame{}, 0, ErrFrameTooLarge
		}
		return Frame{}, 0, nil
	}
	consumed := IDLen + n + 1
	if c.MaxPayload > 0 && n > c.MaxPayload {
		return Frame{}, consumed, ErrFrameTooLarge
	}
	payload := body[:n]
	if !utf8.Valid(payload) {
		return Frame{}, consumed, ErrInvalidPayload
	}
	return Frame{
		ID:      binary.BigEndian.Uint32(buf[:IDLen]),
		Payload: string(payload),
	}, consumed, nil
}

// Encode implements Codec. The payload is not checked for Terminator.
func (LineCodec) Encode(dst []byte, f Frame) []byte {
	dst = binary.BigEndian.AppendUint32(dst, f.ID)
	dst = append(dst, f.Payload...)
	return append(dst, Terminator)
}

// Decode decodes one frame with an unbounded LineCodec.
func Decode(buf []byte) (Frame, int, error) {
	return LineCodec{}.Decode(buf)
}

// AppendFrame appends the encoding of (id, payload) to dst.
func AppendFrame(dst []byte, id uint32, payload string) []byte {
	return LineCodec{}.Encode(dst, Frame{ID: id, Payload: payload})
}
