package transport_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-mux/fake"
	"github.com/momentics/hioload-mux/protocol"
	"github.com/momentics/hioload-mux/transport"
)

func TestFramedDecodesAcrossReads(t *testing.T) {
	conn := fake.NewNetConn()
	f := transport.NewFramed(conn, protocol.LineCodec{})

	wire := protocol.AppendFrame(nil, 1, "alpha")
	wire = protocol.AppendFrame(wire, 2, "beta")
	conn.Feed(wire[:3])
	conn.Feed(wire[3:12])

	eof, err := f.Fill(make([]byte, 4))
	require.NoError(t, err)
	assert.False(t, eof)

	fr, ok, err := f.Next()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, protocol.Frame{ID: 1, Payload: "alpha"}, fr)

	_, ok, err = f.Next()
	require.NoError(t, err)
	assert.False(t, ok, "second frame is incomplete")
	assert.Equal(t, 2, f.Buffered())

	conn.Feed(wire[12:])
	_, err = f.Fill(make([]byte, 4))
	require.NoError(t, err)
	fr, ok, err = f.Next()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, protocol.Frame{ID: 2, Payload: "beta"}, fr)
	assert.Zero(t, f.Buffered())
}

func TestFramedFillDrainsUntilWouldBlock(t *testing.T) {
	conn := fake.NewNetConn()
	for i := 0; i < 5; i++ {
		conn.Feed([]byte("chunk"))
	}
	f := transport.NewFramed(conn, nil)
	_, err := f.Fill(make([]byte, 1024))
	require.NoError(t, err)
	assert.Equal(t, 25, f.Buffered())
	assert.Equal(t, 6, conn.Reads(), "five data reads plus the would-block probe")
}

func TestFramedFillEOF(t *testing.T) {
	conn := fake.NewNetConn()
	conn.Feed(protocol.AppendFrame(nil, 3, "last"))
	conn.SetEOF()
	f := transport.NewFramed(conn, nil)

	eof, err := f.Fill(make([]byte, 64))
	require.NoError(t, err)
	assert.True(t, eof)

	fr, ok, err := f.Next()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "last", fr.Payload)
}

func TestFramedFillReadError(t *testing.T) {
	conn := fake.NewNetConn()
	boom := errors.New("connection reset")
	conn.SetReadError(boom)
	f := transport.NewFramed(conn, nil)
	_, err := f.Fill(make([]byte, 8))
	assert.ErrorIs(t, err, boom)
}

func TestFramedDecodeError(t *testing.T) {
	conn := fake.NewNetConn()
	conn.Feed([]byte{0, 0, 0, 1, 0xc3, 0x28, '\n'})
	f := transport.NewFramed(conn, nil)
	_, err := f.Fill(make([]byte, 8))
	require.NoError(t, err)
	_, ok, err := f.Next()
	assert.False(t, ok)
	assert.ErrorIs(t, err, protocol.ErrInvalidPayload)
}

func TestFramedPushFlush(t *testing.T) {
	conn := fake.NewNetConn()
	f := transport.NewFramed(conn, nil)
	f.Push(7, "hi")
	f.Push(8, "there")
	assert.Equal(t, 7+10, f.Pending())

	done, err := f.Flush()
	require.NoError(t, err)
	assert.True(t, done)
	assert.Zero(t, f.Pending())

	want := protocol.AppendFrame(nil, 7, "hi")
	want = protocol.AppendFrame(want, 8, "there")
	assert.Equal(t, want, conn.Sent())
}

func TestFramedFlushPartial(t *testing.T) {
	conn := fake.NewNetConn()
	conn.SetWriteLimit(4)
	f := transport.NewFramed(conn, nil)
	f.Push(7, "hi")

	done, err := f.Flush()
	require.NoError(t, err)
	assert.False(t, done)
	assert.Equal(t, 3, f.Pending())

	conn.SetWriteLimit(-1)
	done, err = f.Flush()
	require.NoError(t, err)
	assert.True(t, done)
	assert.Equal(t, []byte{0, 0, 0, 7, 'h', 'i', '\n'}, conn.Sent())
}

func TestFramedFlushError(t *testing.T) {
	conn := fake.NewNetConn()
	boom := errors.New("broken pipe")
	conn.SetWriteError(boom)
	f := transport.NewFramed(conn, nil)
	f.Push(1, "x")
	_, err := f.Flush()
	assert.ErrorIs(t, err, boom)
}

func TestFramedReleaseAndReuse(t *testing.T) {
	conn := fake.NewNetConn()
	f := transport.NewFramed(conn, nil)
	conn.Feed([]byte{0, 0, 0, 1, 'a'})
	_, err := f.Fill(make([]byte, 16))
	require.NoError(t, err)
	f.Push(1, "pending")
	f.Release()
	assert.Zero(t, f.Buffered())
	assert.Zero(t, f.Pending())

	next := transport.NewFramed(fake.NewNetConn(), nil)
	next.Push(2, "ok")
	assert.Equal(t, 7, next.Pending())
}

func TestFramedDrainsLargeBurstInLinearTime(t *testing.T) {
	const frames = 200000
	conn := fake.NewNetConn()
	var wire []byte
	for i := uint32(0); i < frames; i++ {
		wire = protocol.AppendFrame(wire, i, "ab")
	}
	conn.Feed(wire)

	f := transport.NewFramed(conn, nil)
	_, err := f.Fill(make([]byte, 64*1024))
	require.NoError(t, err)
	require.Equal(t, len(wire), f.Buffered())

	start := time.Now()
	n := 0
	for {
		fr, ok, err := f.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		if fr.ID != uint32(n) {
			t.Fatalf("frame %d has id %d", n, fr.ID)
		}
		n++
	}
	assert.Equal(t, frames, n)
	assert.Zero(t, f.Buffered())
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestFramedKeepsPartialFrameAcrossFills(t *testing.T) {
	conn := fake.NewNetConn()
	f := transport.NewFramed(conn, nil)
	wire := protocol.AppendFrame(protocol.AppendFrame(nil, 1, "one"), 2, "two")

	conn.Feed(wire[:len(wire)-2])
	_, err := f.Fill(make([]byte, 8))
	require.NoError(t, err)
	fr, ok, err := f.Next()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, uint32(1), fr.ID)
	_, ok, _ = f.Next()
	assert.False(t, ok)

	conn.Feed(wire[len(wire)-2:])
	_, err = f.Fill(make([]byte, 8))
	require.NoError(t, err)
	fr, ok, err = f.Next()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, protocol.Frame{ID: 2, Payload: "two"}, fr)
}

func TestFramedPartialWritesResume(t *testing.T) {
	conn := fake.NewNetConn()
	f := transport.NewFramed(conn, nil)
	for i := uint32(1); i <= 3; i++ {
		f.Push(i, "payload")
	}
	conn.SetWriteLimit(5)
	done, err := f.Flush()
	require.NoError(t, err)
	assert.False(t, done)
	assert.Equal(t, 3*12-5, f.Pending())

	f.Push(4, "more")
	conn.SetWriteLimit(-1)
	done, err = f.Flush()
	require.NoError(t, err)
	assert.True(t, done)

	var want []byte
	for i := uint32(1); i <= 3; i++ {
		want = protocol.AppendFrame(want, i, "payload")
	}
	want = protocol.AppendFrame(want, 4, "more")
	assert.Equal(t, want, conn.Sent())
}
