// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package transport binds a frame codec to a non-blocking connection.
// Framed owns the per-connection read and write buffers: it drains the socket
// to would-block, hands out whole frames, and queues encoded replies until the
// socket accepts them. It performs no business logic and holds no state shared
// across connections.
package transport
