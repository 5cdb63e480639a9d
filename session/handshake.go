package session

import (
	"fmt"
	"net"

	"github.com/kuyugama/kmessenger/cryptobox"
	"github.com/kuyugama/kmessenger/protocol"
	"github.com/kuyugama/kmessenger/wire"
)

// MaxNameLength is the largest accepted client name (§3: "1..=255 bytes").
const MaxNameLength = 255

// advanceConnection performs the connection-stage action: the server
// owes the client a public key and a plaintext ok before any frame is
// expected from it (§4.3). It does not read from conn.
func (s *Server) advanceConnection(conn net.Conn, rec *ClientRecord) error {
	priv, err := cryptobox.GenerateKeyPair()
	if err != nil {
		return fmt.Errorf("session: generate rsa key: %w", err)
	}
	rec.SetCredentials(Credentials{PrivateKey: priv})

	der, err := cryptobox.MarshalPublicKey(&priv.PublicKey)
	if err != nil {
		return fmt.Errorf("session: marshal public key: %w", err)
	}
	if err := wire.Send(conn, der); err != nil {
		return fmt.Errorf("session: send public key: %w", err)
	}

	rec.SetStage(protocol.RSA)

	if err := wire.Send(conn, protocol.OK.Encode()); err != nil {
		return fmt.Errorf("session: send rsa-stage ok: %w", err)
	}
	return nil
}

// advanceRSA performs the rsa-stage action: decrypt the RSA-OAEP-wrapped
// iv||key plaintext, store the session box, and transition to aes (or
// directly to online on a key-refresh re-entry, §4.3).
func (s *Server) advanceRSA(conn net.Conn, rec *ClientRecord) error {
	frame, err := wire.Recv(conn)
	if err != nil {
		return err
	}

	priv := rec.GetCredentials().PrivateKey
	plaintext, err := cryptobox.Decrypt(priv, frame.Payload)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrHandshakeCrypto, err)
	}

	box, err := cryptobox.BoxFromBytes(plaintext)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrHandshakeCrypto, err)
	}
	rec.SetCredentials(Credentials{PrivateKey: priv, Box: box})

	if err := wire.Send(conn, protocol.OK.Encode()); err != nil {
		return fmt.Errorf("session: send aes-stage ok: %w", err)
	}

	if rec.HasName() {
		// Already authenticated before: this is a key-refresh re-entry,
		// skip straight back to online (§4.3).
		rec.SetStage(protocol.Online)
	} else {
		rec.SetStage(protocol.AES)
	}
	return nil
}

// advanceAES performs the aes-stage action: decrypt the client's
// AES-CFB-wrapped name, enforce the length limit, and transition to
// online.
func (s *Server) advanceAES(conn net.Conn, rec *ClientRecord) error {
	frame, err := wire.Recv(conn)
	if err != nil {
		return err
	}

	box := rec.GetCredentials().Box
	name, err := box.Open(frame.Payload)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrHandshakeCrypto, err)
	}

	if len(name) > MaxNameLength {
		reply, err := box.Seal(protocol.NameTooLong.Encode())
		if err != nil {
			return fmt.Errorf("session: seal name_too_long reply: %w", err)
		}
		return wire.Send(conn, reply)
	}

	rec.SetName(name)
	rec.SetStage(protocol.Online)

	reply, err := box.Seal(protocol.OK.Encode())
	if err != nil {
		return fmt.Errorf("session: seal aes-stage ok: %w", err)
	}
	return wire.Send(conn, reply)
}
