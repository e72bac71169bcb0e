package cli_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-mux/internal/cli"
)

func TestLoopbackAddr(t *testing.T) {
	addr, err := cli.LoopbackAddr([]string{"/usr/bin/muxechod", "8080"})
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:8080", addr)
}

func TestLoopbackAddrMissingPort(t *testing.T) {
	_, err := cli.LoopbackAddr([]string{"/usr/bin/muxechod"})
	var ue *cli.UsageError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, "Usage: muxechod [port]", err.Error())
}

func TestLoopbackAddrBadPort(t *testing.T) {
	for _, arg := range []string{"http", "-1", "65536", ""} {
		_, err := cli.LoopbackAddr([]string{"muxechod", arg})
		assert.ErrorIs(t, err, cli.ErrPortFormat, arg)
	}
}
