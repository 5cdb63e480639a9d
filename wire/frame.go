// Package wire implements the length-prefixed frame codec and the
// command payload encoding shared by the session server and the client
// driver.
package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"time"
)

var (
	// ErrConnectionClosed is returned by Recv/Poll when the peer has
	// closed the connection (EOF on the length prefix).
	ErrConnectionClosed = errors.New("wire: connection closed")

	// ErrFrameTooLarge is returned when a frame's declared length exceeds
	// MaxFrameSize.
	ErrFrameTooLarge = errors.New("wire: frame too large")
)

// MaxFrameSize bounds the length a Frame's 4-byte prefix may declare. It
// exists purely as a sanity bound against a malicious/corrupt peer; the
// protocol itself places no ceiling below 2^32-1 on frame size (see
// command.go's Overflow error for the analogous bound on pack).
const MaxFrameSize = 64 << 20 // 64 MiB

// Frame is one length-prefixed record on the wire: a 4-byte big-endian
// length L followed by L bytes of payload. L may be zero.
type Frame struct {
	Payload []byte
}

// Send transmits payload as a single Frame: a 4-byte big-endian length
// prefix followed by the payload bytes. Short writes on conn are
// completed by net.Conn.Write's own contract (it returns a non-nil error
// on any short write), so a single Write call per segment suffices.
func Send(conn net.Conn, payload []byte) error {
	if uint64(len(payload)) > MaxFrameSize {
		return fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, len(payload))
	}

	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(payload)))

	if _, err := conn.Write(lenBuf[:]); err != nil {
		return fmt.Errorf("wire: send length prefix: %w", err)
	}
	if len(payload) > 0 {
		if _, err := conn.Write(payload); err != nil {
			return fmt.Errorf("wire: send payload: %w", err)
		}
	}
	return nil
}

// Recv blocks until a full Frame has been read from conn, or returns
// ErrConnectionClosed if the peer closed the connection before (or while)
// sending the length prefix.
func Recv(conn net.Conn) (Frame, error) {
	return recv(conn, nil)
}

// Poll behaves like Recv, but returns (Frame{}, false, nil) if no length
// prefix arrives within a probe window of one millisecond -- the
// near-non-blocking probe the session server's handler loop uses to
// advance the stage machine by at most one frame per invocation. Once any
// byte of the length prefix has arrived, Poll blocks like Recv for the
// remainder: only the initial probe is time-limited.
//
// ok is false exactly when no frame was available; err is non-nil only
// on a genuine transport failure or closed connection.
func Poll(conn net.Conn) (frame Frame, ok bool, err error) {
	// A deadline of exactly now expires before any read is attempted, even
	// when bytes are already buffered, so the probe gets a short window.
	if err := conn.SetReadDeadline(time.Now().Add(time.Millisecond)); err != nil {
		return Frame{}, false, fmt.Errorf("wire: poll: set deadline: %w", err)
	}

	var lenBuf [4]byte
	n, err := io.ReadFull(conn, lenBuf[:])
	if n == 0 && isTimeout(err) {
		// Nothing arrived yet: restore blocking mode and report NoMessage.
		if clearErr := conn.SetReadDeadline(time.Time{}); clearErr != nil {
			return Frame{}, false, fmt.Errorf("wire: poll: clear deadline: %w", clearErr)
		}
		return Frame{}, false, nil
	}

	// Bytes did arrive but the length prefix wasn't fully available within
	// the non-blocking probe: finish the read blockingly, matching the
	// original semantics ("if any length bytes arrive but fewer than 4,
	// block until the remaining arrive").
	if n > 0 && n < len(lenBuf) && isTimeout(err) {
		if clearErr := conn.SetReadDeadline(time.Time{}); clearErr != nil {
			return Frame{}, false, fmt.Errorf("wire: poll: clear deadline: %w", clearErr)
		}
		if _, err := io.ReadFull(conn, lenBuf[n:]); err != nil {
			return Frame{}, false, closeOrWrap(err)
		}
	} else {
		if clearErr := conn.SetReadDeadline(time.Time{}); clearErr != nil {
			return Frame{}, false, fmt.Errorf("wire: poll: clear deadline: %w", clearErr)
		}
		if err != nil {
			return Frame{}, false, closeOrWrap(err)
		}
	}

	f, err := recvPayload(conn, lenBuf)
	if err != nil {
		return Frame{}, false, err
	}
	return f, true, nil
}

// recv performs a fully blocking length+payload read. lenBuf, if non-nil,
// is unused here (kept for symmetry with Poll's two-phase structure).
func recv(conn net.Conn, _ []byte) (Frame, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(conn, lenBuf[:]); err != nil {
		return Frame{}, closeOrWrap(err)
	}
	return recvPayload(conn, lenBuf)
}

func recvPayload(conn net.Conn, lenBuf [4]byte) (Frame, error) {
	length := binary.BigEndian.Uint32(lenBuf[:])
	if uint64(length) > MaxFrameSize {
		return Frame{}, fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, length)
	}

	payload := make([]byte, length)
	if length > 0 {
		if _, err := io.ReadFull(conn, payload); err != nil {
			return Frame{}, closeOrWrap(err)
		}
	}
	return Frame{Payload: payload}, nil
}

func closeOrWrap(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return ErrConnectionClosed
	}
	return fmt.Errorf("wire: recv: %w", err)
}

func isTimeout(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
