// File: client/client.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package client

import (
	"bufio"
	"context"
	"io"
	"net"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"

	"github.com/momentics/hioload-mux/api"
	"github.com/momentics/hioload-mux/protocol"
)

// RemoteError is a failure reported by the server for one request.
type RemoteError struct {
	Reason string
}

func (e *RemoteError) Error() string { return "remote: " + e.Reason }

// ErrTerminatorInPayload rejects requests that cannot be framed.
var ErrTerminatorInPayload = errors.New("payload contains frame terminator")

// ClientConfig holds connection parameters.
type ClientConfig struct {
	Addr         string        // host:port
	DialTimeout  time.Duration // 0 = no timeout
	WriteTimeout time.Duration // per-request write deadline (0 = none)
}

// Client issues concurrent requests over a single connection.
type Client struct {
	cfg    ClientConfig
	conn   net.Conn
	nextID atomic.Uint32

	wmu sync.Mutex
	out []byte

	mu      sync.Mutex
	pending map[uint32]chan protocol.Frame
	err     error

	done chan struct{}
}

// Dial connects to addr with default settings.
func Dial(addr string) (*Client, error) {
	return DialConfig(ClientConfig{Addr: addr})
}

// DialConfig connects using cfg and starts the reply reader.
func DialConfig(cfg ClientConfig) (*Client, error) {
	d := net.Dialer{Timeout: cfg.DialTimeout}
	conn, err := d.Dial("tcp", cfg.Addr)
	if err != nil {
		return nil, errors.Wrapf(err, "dial %s", cfg.Addr)
	}
	c := &Client{
		cfg:     cfg,
		conn:    conn,
		pending: make(map[uint32]chan protocol.Frame),
		done:    make(chan struct{}),
	}
	go c.readLoop()
	return c, nil
}

// Call sends payload and waits for the matching reply. A server-side
// failure is returned as *RemoteError.
//
// Failures share the reply channel with results: any reply payload starting
// with protocol.ErrorPrefix is reported as *RemoteError. A service that can
// legitimately return such a payload (echo of "ERR x", for instance) is
// indistinguishable from a failure.
func (c *Client) Call(ctx context.Context, payload string) (string, error) {
	if strings.IndexByte(payload, protocol.Terminator) >= 0 {
		return "", ErrTerminatorInPayload
	}
	id := c.nextID.Add(1)
	ch := make(chan protocol.Frame, 1)

	c.mu.Lock()
	if c.err != nil {
		err := c.err
		c.mu.Unlock()
		return "", err
	}
	c.pending[id] = ch
	c.mu.Unlock()

	if err := c.send(id, payload); err != nil {
		c.forget(id)
		return "", err
	}

	select {
	case f := <-ch:
		return reply(f)
	case <-ctx.Done():
		c.forget(id)
		return "", ctx.Err()
	case <-c.done:
		select {
		case f := <-ch:
			return reply(f)
		default:
		}
		return "", c.Err()
	}
}

func reply(f protocol.Frame) (string, error) {
	if reason, ok := strings.CutPrefix(f.Payload, protocol.ErrorPrefix); ok {
		return "", &RemoteError{Reason: reason}
	}
	return f.Payload, nil
}

// Err returns the error that stopped the reader, if any.
func (c *Client) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Close shuts down the connection. Pending calls fail with
// api.ErrTransportClosed.
func (c *Client) Close() error {
	c.fail(api.ErrTransportClosed)
	err := c.conn.Close()
	<-c.done
	return err
}

func (c *Client) send(id uint32, payload string) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	c.out = protocol.AppendFrame(c.out[:0], id, payload)
	if c.cfg.WriteTimeout > 0 {
		c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
	}
	_, err := c.conn.Write(c.out)
	return errors.Wrap(err, "write request")
}

func (c *Client) forget(id uint32) {
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
}

func (c *Client) fail(err error) {
	c.mu.Lock()
	if c.err == nil {
		c.err = err
	}
	c.mu.Unlock()
}

func (c *Client) readLoop() {
	defer close(c.done)
	r := bufio.NewReader(c.conn)
	buf := make([]byte, 0, 256)
	for {
		buf = buf[:protocol.IDLen]
		if _, err := io.ReadFull(r, buf); err != nil {
			c.fail(errors.Wrap(err, "read reply"))
			return
		}
		line, err := r.ReadSlice(protocol.Terminator)
		for errors.Is(err, bufio.ErrBufferFull) {
			buf = append(buf, line...)
			line, err = r.ReadSlice(protocol.Terminator)
		}
		if err != nil {
			c.fail(errors.Wrap(err, "read reply"))
			return
		}
		buf = append(buf, line...)
		f, _, err := protocol.Decode(buf)
		if err != nil {
			c.fail(errors.Wrap(err, "decode reply"))
			c.conn.Close()
			return
		}
		c.mu.Lock()
		ch, ok := c.pending[f.ID]
		delete(c.pending, f.ID)
		c.mu.Unlock()
		if ok {
			ch <- f
		}
	}
}
