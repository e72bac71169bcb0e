// File: internal/cli/cli.go
// Package cli parses the single positional port argument shared by the
// binaries.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package cli

import (
	"fmt"
	"net"
	"path/filepath"
	"strconv"

	"github.com/pkg/errors"
)

// ErrPortFormat is returned for a port that is not a decimal uint16.
var ErrPortFormat = errors.New("argument format error: port")

// UsageError reports a missing port argument.
type UsageError struct {
	Cmd string
}

func (e *UsageError) Error() string {
	return fmt.Sprintf("Usage: %s [port]", e.Cmd)
}

// LoopbackAddr returns 127.0.0.1:<port> from os.Args-style args.
func LoopbackAddr(args []string) (string, error) {
	cmd := "cmd"
	if len(args) > 0 {
		cmd = filepath.Base(args[0])
	}
	if len(args) < 2 {
		return "", &UsageError{Cmd: cmd}
	}
	port, err := strconv.ParseUint(args[1], 10, 16)
	if err != nil {
		return "", ErrPortFormat
	}
	return net.JoinHostPort("127.0.0.1", strconv.FormatUint(port, 10)), nil
}
