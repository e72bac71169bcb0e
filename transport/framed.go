// Author: momentics <momentics@gmail.com>
// SPDX-License-Identifier: MIT

package transport

import (
	"io"

	"github.com/pkg/errors"

	"github.com/momentics/hioload-mux/api"
	"github.com/momentics/hioload-mux/pool"
	"github.com/momentics/hioload-mux/protocol"
)

// shrinkThreshold is the idle read-buffer capacity above which the buffer is
// released after being drained.
const shrinkThreshold = 64 * 1024

// buffers is shared by every Framed so closed connections hand their
// buffers to new ones.
var buffers = pool.NewBytes(4096, shrinkThreshold)

// Framed is a duplex frame stream over one api.NetConn.
type Framed struct {
	conn  api.NetConn
	codec protocol.Codec
	in    []byte
	r     int // decode offset into in
	out   []byte
	w     int // write offset into out
}

// NewFramed attaches codec to conn.
func NewFramed(conn api.NetConn, codec protocol.Codec) *Framed {
	if codec == nil {
		codec = protocol.LineCodec{}
	}
	return &Framed{conn: conn, codec: codec}
}

// Conn returns the wrapped connection.
func (f *Framed) Conn() api.NetConn { return f.conn }

// Fill reads from the connection until it would block, appending to the read
// buffer. scratch is the per-read buffer. eof is set on a zero-length read;
// bytes read before it stay buffered.
func (f *Framed) Fill(scratch []byte) (eof bool, err error) {
	if len(scratch) == 0 {
		return false, api.ErrInvalidArgument
	}
	f.compactIn()
	for {
		n, err := f.conn.Read(scratch)
		if errors.Is(err, api.ErrWouldBlock) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		if n == 0 {
			return true, nil
		}
		if f.in == nil {
			f.in = buffers.Get()
		}
		f.in = append(f.in, scratch[:n]...)
	}
}

// Next decodes one frame from the read buffer. ok is false when more bytes
// are needed. A decode error leaves the stream unusable.
func (f *Framed) Next() (fr protocol.Frame, ok bool, err error) {
	fr, n, err := f.codec.Decode(f.in[f.r:])
	if n > 0 {
		f.r += n
		if f.r == len(f.in) {
			f.resetIn()
		}
	}
	if err != nil {
		return protocol.Frame{}, false, err
	}
	return fr, n > 0, nil
}

// Push encodes (id, payload) into the write buffer.
func (f *Framed) Push(id uint32, payload string) {
	if f.out == nil {
		f.out = buffers.Get()
	}
	if f.w > 0 && f.w >= len(f.out)/2 {
		rest := copy(f.out, f.out[f.w:])
		f.out, f.w = f.out[:rest], 0
	}
	f.out = f.codec.Encode(f.out, protocol.Frame{ID: id, Payload: payload})
}

// Flush writes buffered output until it is empty (done) or the connection
// would block.
func (f *Framed) Flush() (done bool, err error) {
	for f.w < len(f.out) {
		n, err := f.conn.Write(f.out[f.w:])
		f.w += n
		if f.w == len(f.out) {
			f.out, f.w = f.out[:0], 0
		}
		if errors.Is(err, api.ErrWouldBlock) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		if n == 0 {
			return false, io.ErrShortWrite
		}
	}
	return true, nil
}

// Buffered returns the number of undecoded inbound bytes.
func (f *Framed) Buffered() int { return len(f.in) - f.r }

// Pending returns the number of encoded bytes waiting to be written.
func (f *Framed) Pending() int { return len(f.out) - f.w }

// Release returns both buffers to the shared pool. The Framed must not be
// used afterwards.
func (f *Framed) Release() {
	buffers.Put(f.in)
	buffers.Put(f.out)
	f.in, f.r = nil, 0
	f.out, f.w = nil, 0
}

// compactIn moves undecoded bytes to the front of the read buffer. It runs
// once per Fill, so draining a burst of frames stays linear.
func (f *Framed) compactIn() {
	if f.r == 0 {
		return
	}
	rest := copy(f.in, f.in[f.r:])
	f.in = f.in[:rest]
	f.r = 0
}

func (f *Framed) resetIn() {
	f.r = 0
	f.in = f.in[:0]
	if cap(f.in) > shrinkThreshold {
		f.in = nil
	}
}
