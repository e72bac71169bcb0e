// File: mux/service.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package mux

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/momentics/hioload-mux/api"
)

// Service is the business logic invoked once per request frame.
type Service interface {
	Call(ctx context.Context, payload string) api.Result[string]
}

// ServiceFunc adapts a function to Service.
type ServiceFunc func(ctx context.Context, payload string) api.Result[string]

// Call implements Service.
func (f ServiceFunc) Call(ctx context.Context, payload string) api.Result[string] {
	return f(ctx, payload)
}

// Kind selects one of the built-in services.
type Kind int

const (
	KindEcho Kind = iota
	KindUpper
)

// ErrUnknownService is returned for a Kind outside the built-in set.
var ErrUnknownService = errors.New("unknown service")

func (k Kind) String() string {
	switch k {
	case KindEcho:
		return "echo"
	case KindUpper:
		return "upper"
	default:
		return "unknown"
	}
}

// ParseKind maps a service name to its Kind.
func ParseKind(name string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "echo":
		return KindEcho, nil
	case "upper":
		return KindUpper, nil
	default:
		return 0, errors.Wrapf(ErrUnknownService, "%q", name)
	}
}

// NewService returns the built-in service for k.
func NewService(k Kind) (Service, error) {
	switch k {
	case KindEcho:
		return Echo{}, nil
	case KindUpper:
		return Upper{}, nil
	default:
		return nil, errors.Wrapf(ErrUnknownService, "kind %d", int(k))
	}
}

// Echo returns the payload unchanged.
type Echo struct{}

// Call implements Service.
func (Echo) Call(_ context.Context, payload string) api.Result[string] {
	return api.Ok(payload)
}

// Upper returns the payload upper-cased.
type Upper struct{}

// Call implements Service.
func (Upper) Call(_ context.Context, payload string) api.Result[string] {
	return api.Ok(strings.ToUpper(payload))
}
