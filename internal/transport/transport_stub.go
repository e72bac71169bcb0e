//go:build !linux
// +build !linux

// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package transport

import "github.com/momentics/hioload-mux/api"

// Listen is not available on this platform.
func Listen(addr string) (*Listener, error) { return nil, api.ErrNotSupported }

func (l *Listener) Accept() (*Conn, error)  { return nil, api.ErrNotSupported }
func (l *Listener) Close() error            { return api.ErrNotSupported }
func (c *Conn) Read(p []byte) (int, error)  { return 0, api.ErrNotSupported }
func (c *Conn) Write(p []byte) (int, error) { return 0, api.ErrNotSupported }
func (c *Conn) Close() error                { return api.ErrNotSupported }
