// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package reactor provides the readiness poller behind the server loop: an
// edge-triggered epoll backend on Linux with an eventfd waker, and a stub that
// reports api.ErrNotSupported elsewhere.
package reactor
