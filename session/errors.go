package session

import "errors"

var (
	// ErrConnectionClosed names a client connection closing mid-handshake
	// or mid-session. The server does not return it: a closed connection
	// surfaces as wire.ErrConnectionClosed from the frame reads.
	ErrConnectionClosed = errors.New("session: connection closed")

	// ErrHandshakeCrypto is returned when RSA/AES decryption fails during
	// a handshake stage -- fatal for the connection per §4.3.
	ErrHandshakeCrypto = errors.New("session: handshake crypto failure")

	// ErrOnlineCrypto is returned when AES decryption of an online-stage
	// frame fails or its decrypted command payload is malformed.
	ErrOnlineCrypto = errors.New("session: online-stage crypto failure")

	// ErrUnknownClient names a registry lookup that finds no matching
	// record. Registry.FindByName reports that case by returning nil, not
	// this error.
	ErrUnknownClient = errors.New("session: unknown client")

	// ErrAlreadyRegistered is returned when a remote address is
	// registered twice (should not happen: accept always yields a new
	// connection).
	ErrAlreadyRegistered = errors.New("session: client already registered")
)
