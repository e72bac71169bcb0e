// Package client
// Author: momentics <momentics@gmail.com>
//
// Multiplexing client for the tagged line protocol.
//
// Many Call invocations share one TCP connection. Each request carries a
// fresh id; replies are matched by id and may arrive in any order.
package client
