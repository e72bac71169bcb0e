// Package protocol
// Author: momentics <momentics@gmail.com>
//
// Implements the request-tagged line protocol spoken by hioload-mux.
//
// Every frame is a 4-byte big-endian request id, a UTF-8 payload that never
// contains a newline, and a terminating '\n'. There is no length prefix:
// framing is delimiter based after the fixed id prefix. The request id is
// chosen by the client and echoed back unchanged so responses may arrive in
// any order.
//
//	+-- request id --+------- frame payload --------+
//	|   00 00 00 01  | This is the frame payload \n |
//	+----------------+------------------------------+
package protocol
