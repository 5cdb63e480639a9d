package protocol

import "fmt"

// Tag identifies the kind of an online-stage command.
type Tag string

const (
	// GetStage requests the current stage of the connection. Reserved:
	// accepted by the decoder but not dispatched by the session server.
	GetStage Tag = "gs"
	// Ping is answered with an AES-encrypted OK.
	Ping Tag = "p"
	// SendMessage enqueues a message for a named receiver.
	SendMessage Tag = "sm"
	// ReceiveMessages drains the mailbox a named sender keeps for this
	// client.
	ReceiveMessages Tag = "rm"
	// ResetKeys requests a session re-key. Reserved: accepted by the
	// decoder but not dispatched by the session server.
	ResetKeys Tag = "rk"
)

// Known reports whether t is one of the tags in the closed set. Unknown
// tags are a decode error (see ErrUnknownTag), not a silent no-op.
func (t Tag) Known() bool {
	switch t {
	case GetStage, Ping, SendMessage, ReceiveMessages, ResetKeys:
		return true
	default:
		return false
	}
}

// ParseTag validates a decoded tag string against the known set.
func ParseTag(s string) (Tag, error) {
	t := Tag(s)
	if !t.Known() {
		return "", fmt.Errorf("%w: %q", ErrUnknownTag, s)
	}
	return t, nil
}
