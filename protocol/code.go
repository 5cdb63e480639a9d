// Package protocol defines the wire-level vocabulary shared by the session
// server and the client driver: status codes, command tags, and the
// per-connection handshake stages.
package protocol

import "fmt"

// Code is an 8-bit status value returned by the server, transmitted as a
// single byte on the wire.
type Code uint8

const (
	// OK indicates success.
	OK Code = iota
	// NameTooLong indicates a client name exceeded 255 bytes.
	NameTooLong
	// NoReceiver indicates send_message addressed an unknown name.
	NoReceiver
	// NoSender indicates receive_messages named an unknown sender.
	NoSender
)

// String returns a human-readable name for the code.
func (c Code) String() string {
	switch c {
	case OK:
		return "ok"
	case NameTooLong:
		return "name_too_long"
	case NoReceiver:
		return "no_receiver"
	case NoSender:
		return "no_sender"
	default:
		return fmt.Sprintf("code(%d)", uint8(c))
	}
}

// Encode returns the single-byte wire representation of the code.
func (c Code) Encode() []byte {
	return []byte{byte(c)}
}

// DecodeCode parses a single-byte wire representation into a Code. It
// returns ErrMalformed if the byte slice isn't exactly one byte long, and
// ErrUnknownCode if the value doesn't match a known code -- the closed set
// in §3 of the protocol is never extended silently.
func DecodeCode(b []byte) (Code, error) {
	if len(b) != 1 {
		return 0, fmt.Errorf("protocol: decode code: %w: want 1 byte, got %d", ErrMalformed, len(b))
	}
	c := Code(b[0])
	switch c {
	case OK, NameTooLong, NoReceiver, NoSender:
		return c, nil
	default:
		return 0, fmt.Errorf("protocol: decode code: %w: %d", ErrUnknownCode, b[0])
	}
}
