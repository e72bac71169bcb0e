//go:build linux

// File: server/loop_internal_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package server

import (
	"bytes"
	"io"
	"log"
	"net"
	"regexp"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-mux/api"
	"github.com/momentics/hioload-mux/fake"
	sock "github.com/momentics/hioload-mux/internal/transport"
	"github.com/momentics/hioload-mux/protocol"
)

func withExecutor(e api.Executor) ServerOption {
	return func(s *Server) { s.exec = e }
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

var closedLine = regexp.MustCompile(`Closing connection on token=(\d+)`)

func closedTokens(t *testing.T, logs *syncBuffer) []api.Token {
	t.Helper()
	var toks []api.Token
	for _, m := range closedLine.FindAllStringSubmatch(logs.String(), -1) {
		v, err := strconv.ParseUint(m[1], 10, 64)
		require.NoError(t, err)
		toks = append(toks, api.Token(v))
	}
	return toks
}

func newLoopServer(t *testing.T, logs io.Writer, opts ...ServerOption) *Server {
	t.Helper()
	cfg := DefaultConfig()
	cfg.ListenAddr = "127.0.0.1:0"
	opts = append([]ServerOption{WithLogger(log.New(logs, "", 0))}, opts...)
	srv, err := NewServer(cfg, opts...)
	require.NoError(t, err)
	return srv
}

func readOneFrame(t *testing.T, r io.Reader) protocol.Frame {
	t.Helper()
	var buf []byte
	one := make([]byte, 1)
	for {
		_, err := io.ReadFull(r, one)
		require.NoError(t, err)
		buf = append(buf, one[0])
		f, n, err := protocol.Decode(buf)
		require.NoError(t, err)
		if n > 0 {
			return f
		}
	}
}

func TestCompletionForClosedConnectionIsDropped(t *testing.T) {
	exec := fake.NewExecutor()
	logs := &syncBuffer{}
	srv := newLoopServer(t, logs, withExecutor(exec))

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve() }()
	defer func() {
		require.NoError(t, srv.Shutdown())
		require.NoError(t, <-errCh)
	}()

	counter := func(key string, want int64) func() bool {
		return func() bool { return srv.Metrics().Counter(key) == want }
	}
	pending := func(want int) func() bool {
		return func() bool { return exec.Pending() == want }
	}

	first, err := net.Dial("tcp", srv.Addr())
	require.NoError(t, err)
	_, err = first.Write(protocol.AppendFrame(nil, 1, "late"))
	require.NoError(t, err)
	require.Eventually(t, pending(1), 2*time.Second, 5*time.Millisecond)

	require.NoError(t, first.Close())
	require.Eventually(t, counter(MetricClosed, 1), 2*time.Second, 5*time.Millisecond)

	second, err := net.Dial("tcp", srv.Addr())
	require.NoError(t, err)
	defer second.Close()
	require.NoError(t, second.SetDeadline(time.Now().Add(5*time.Second)))
	_, err = second.Write(protocol.AppendFrame(nil, 2, "fresh"))
	require.NoError(t, err)
	require.Eventually(t, pending(2), 2*time.Second, 5*time.Millisecond)

	// The first request finishes after its connection is gone.
	require.True(t, exec.Run(0))
	require.Eventually(t, counter(MetricStaleCompletion, 1), 2*time.Second, 5*time.Millisecond)
	assert.Zero(t, srv.Metrics().Counter(MetricFramesOut))

	require.True(t, exec.Run(1))
	assert.Equal(t, protocol.Frame{ID: 2, Payload: "fresh"}, readOneFrame(t, second))
	assert.Equal(t, int64(1), srv.Metrics().Counter(MetricFramesOut))

	require.NoError(t, second.Close())
	require.Eventually(t, counter(MetricClosed, 2), 2*time.Second, 5*time.Millisecond)
	toks := closedTokens(t, logs)
	require.Len(t, toks, 2)
	assert.Equal(t, toks[0].Index(), toks[1].Index(), "slot is reused")
	assert.NotEqual(t, toks[0].Generation(), toks[1].Generation())
}

func TestShutdownAfterLoopTeardown(t *testing.T) {
	srv := newLoopServer(t, io.Discard)

	// Serve has started and is exiting on a fatal error: the reactor is
	// closed but done is not yet signalled.
	srv.serving.Store(true)
	srv.teardown()
	go func() {
		time.Sleep(20 * time.Millisecond)
		close(srv.done)
	}()

	assert.NoError(t, srv.Shutdown())
	assert.ErrorIs(t, srv.reactor.Wake(), api.ErrReactorClosed)
}

type exhaustedListener struct {
	acceptor
	calls int
}

func (l *exhaustedListener) Accept() (*sock.Conn, error) {
	l.calls++
	return nil, errors.Wrap(api.ErrResourceLimit, "accept: too many open files")
}

func TestAcceptResourceLimitIsNotFatal(t *testing.T) {
	logs := &syncBuffer{}
	srv := newLoopServer(t, logs)
	defer srv.Shutdown()

	ln := &exhaustedListener{acceptor: srv.listener}
	srv.listener = ln

	assert.NoError(t, srv.acceptAll(api.EventRead))
	assert.Equal(t, 1, ln.calls)
	assert.Equal(t, int64(1), srv.Metrics().Counter(MetricAcceptErrors))
	assert.Contains(t, logs.String(), "accept deferred")
	assert.Zero(t, srv.open.Load())
}

func TestAcceptOtherErrorsAreFatal(t *testing.T) {
	srv := newLoopServer(t, io.Discard)
	defer srv.Shutdown()

	srv.listener = &failingListener{acceptor: srv.listener}
	err := srv.acceptAll(api.EventRead)
	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, api.ErrCodeInternal, apiErr.Code)
}

type failingListener struct {
	acceptor
}

func (l *failingListener) Accept() (*sock.Conn, error) {
	return nil, errors.New("accept: bad file descriptor")
}
