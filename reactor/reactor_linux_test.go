//go:build linux

package reactor_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-mux/api"
	"github.com/momentics/hioload-mux/reactor"
)

func newPipe(t *testing.T) (r, w int) {
	t.Helper()
	var fds [2]int
	require.NoError(t, unix.Pipe2(fds[:], unix.O_NONBLOCK|unix.O_CLOEXEC))
	t.Cleanup(func() {
		unix.Close(fds[0])
		unix.Close(fds[1])
	})
	return fds[0], fds[1]
}

func TestReactorReportsReadableWithToken(t *testing.T) {
	rc, err := reactor.New()
	require.NoError(t, err)
	defer rc.Close()

	r, w := newPipe(t)
	tok := api.NewToken(5, 9)
	require.NoError(t, rc.Register(r, tok, api.InterestRead))

	_, err = unix.Write(w, []byte("x"))
	require.NoError(t, err)

	events := make([]api.Event, 8)
	n, err := rc.Wait(events, 1000)
	require.NoError(t, err)
	require.Equal(t, 1, n)
	assert.Equal(t, tok, events[0].Token)
	assert.True(t, events[0].Kind.IsReadable())
}

func TestReactorIsEdgeTriggered(t *testing.T) {
	rc, err := reactor.New()
	require.NoError(t, err)
	defer rc.Close()

	r, w := newPipe(t)
	require.NoError(t, rc.Register(r, api.NewToken(1, 0), api.InterestRead))
	_, err = unix.Write(w, []byte("abc"))
	require.NoError(t, err)

	events := make([]api.Event, 8)
	n, err := rc.Wait(events, 1000)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	// Nothing was drained, yet no new edge is reported.
	n, err = rc.Wait(events, 50)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	_, err = unix.Write(w, []byte("d"))
	require.NoError(t, err)
	n, err = rc.Wait(events, 1000)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestReactorWake(t *testing.T) {
	rc, err := reactor.New()
	require.NoError(t, err)
	defer rc.Close()

	go func() {
		_ = rc.Wake()
	}()

	events := make([]api.Event, 4)
	n, err := rc.Wait(events, 2000)
	require.NoError(t, err)
	require.Equal(t, 1, n)
	assert.Equal(t, api.WakeToken, events[0].Token)
	require.NoError(t, rc.ResetWake())
	require.NoError(t, rc.ResetWake())
}

func TestReactorDeregister(t *testing.T) {
	rc, err := reactor.New()
	require.NoError(t, err)
	defer rc.Close()

	r, w := newPipe(t)
	require.NoError(t, rc.Register(r, api.NewToken(2, 0), api.InterestRead))
	require.NoError(t, rc.Deregister(r))
	_, err = unix.Write(w, []byte("x"))
	require.NoError(t, err)

	events := make([]api.Event, 4)
	n, err := rc.Wait(events, 50)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestReactorWaitRejectsEmptyBuffer(t *testing.T) {
	rc, err := reactor.New()
	require.NoError(t, err)
	defer rc.Close()

	_, err = rc.Wait(nil, 0)
	assert.ErrorIs(t, err, api.ErrInvalidArgument)
}

func TestReactorWakeAfterClose(t *testing.T) {
	rc, err := reactor.New()
	require.NoError(t, err)
	require.NoError(t, rc.Close())

	assert.ErrorIs(t, rc.Wake(), api.ErrReactorClosed)
	assert.ErrorIs(t, rc.ResetWake(), api.ErrReactorClosed)
	assert.NoError(t, rc.Close(), "second Close is a no-op")
}
