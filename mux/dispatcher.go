// File: mux/dispatcher.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package mux

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/momentics/hioload-mux/api"
	"github.com/momentics/hioload-mux/protocol"
)

// ErrTerminatorInPayload rejects a service result that would break framing.
var ErrTerminatorInPayload = errors.New("payload contains frame terminator")

// Completion is a finished request, still bound to its connection token.
type Completion struct {
	Token  api.Token
	ID     uint32
	Result api.Result[string]
}

// Reply returns the payload to send back. Failures are reported as
// protocol.ErrorPrefix followed by the reason on a single line.
func (c Completion) Reply() string {
	if c.Result.Err == nil {
		return c.Result.Value
	}
	reason := strings.NewReplacer("\r\n", " ", "\n", " ").Replace(c.Result.Err.Error())
	return protocol.ErrorPrefix + reason
}

// Sink receives completions. It may be called from any goroutine.
type Sink interface {
	Push(Completion)
}

// Dispatcher submits one service call per frame and forwards the tagged
// result to a Sink. It keeps no per-request state.
type Dispatcher struct {
	ctx  context.Context
	svc  Service
	exec api.Executor
	sink Sink
}

// NewDispatcher wires svc, exec and sink together. ctx is passed to every
// service call.
func NewDispatcher(ctx context.Context, svc Service, exec api.Executor, sink Sink) *Dispatcher {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Dispatcher{ctx: ctx, svc: svc, exec: exec, sink: sink}
}

// Dispatch schedules the call for f. If the executor refuses the task the
// failure is still delivered to the sink under f.ID.
func (d *Dispatcher) Dispatch(tok api.Token, f protocol.Frame) {
	id, payload := f.ID, f.Payload
	err := d.exec.Submit(func() {
		d.sink.Push(Completion{Token: tok, ID: id, Result: d.call(payload)})
	})
	if err != nil {
		d.sink.Push(Completion{Token: tok, ID: id, Result: api.Fail[string](errors.Wrap(err, "dispatch"))})
	}
}

func (d *Dispatcher) call(payload string) (res api.Result[string]) {
	defer func() {
		if r := recover(); r != nil {
			res = api.Fail[string](errors.Errorf("service panic: %v", r))
		}
	}()
	res = d.svc.Call(d.ctx, payload)
	if res.Err == nil && strings.IndexByte(res.Value, protocol.Terminator) >= 0 {
		res = api.Fail[string](ErrTerminatorInPayload)
	}
	return res
}
