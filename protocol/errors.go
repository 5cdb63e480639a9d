package protocol

import "errors"

var (
	// ErrUnknownCode is returned when a byte doesn't map to a known Code.
	ErrUnknownCode = errors.New("protocol: unknown code")

	// ErrUnknownTag is returned when a command payload names a tag outside
	// the closed set of known command tags.
	ErrUnknownTag = errors.New("protocol: unknown command tag")

	// ErrMalformed is returned when a wire value has the wrong shape to be
	// decoded (wrong length, truncated field, etc.).
	ErrMalformed = errors.New("protocol: malformed value")
)
