// Package client implements the client-side protocol driver: the
// symmetric counterpart of the session server's handshake and the
// send_message/receive_messages request/reply exchange.
package client

import (
	"errors"
	"fmt"

	"github.com/kuyugama/kmessenger/protocol"
)

// ErrTransportClosed is returned when the connection is unexpectedly
// closed by the peer during a request/reply exchange. Every Driver method
// that reads or writes a frame translates wire.ErrConnectionClosed into
// this sentinel (see wrapTransportErr), so callers can match it without
// importing the wire package.
var ErrTransportClosed = errors.New("client: transport closed")

// NoReceiverError is raised when send_message addresses an unknown name
// (§7: "Addressing errors").
type NoReceiverError struct {
	Receiver []byte
}

func (e *NoReceiverError) Error() string {
	return fmt.Sprintf("client: no such receiver: %q", e.Receiver)
}

// NoSenderError is raised when receive_messages names an unknown sender.
type NoSenderError struct {
	Sender []byte
}

func (e *NoSenderError) Error() string {
	return fmt.Sprintf("client: no such sender: %q", e.Sender)
}

// HandshakeFailedError is raised whenever the server returns a non-ok
// code at any handshake step, carrying the offending code so a caller
// can distinguish, e.g., name_too_long from an unexpected failure.
type HandshakeFailedError struct {
	Code protocol.Code
}

func (e *HandshakeFailedError) Error() string {
	return fmt.Sprintf("client: handshake failed: %s", e.Code)
}

// UnexpectedCodeError is raised when a reply carries a Code outside what
// the calling operation recognizes as a defined outcome.
type UnexpectedCodeError struct {
	Code protocol.Code
}

func (e *UnexpectedCodeError) Error() string {
	return fmt.Sprintf("client: unexpected reply code: %s", e.Code)
}
