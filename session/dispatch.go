package session

import (
	"fmt"
	"net"

	"github.com/kuyugama/kmessenger/protocol"
	"github.com/kuyugama/kmessenger/wire"
)

// advanceOnline services one already-decoded online-stage frame: decrypt,
// parse the command tag, and dispatch per §4.4.
func (s *Server) advanceOnline(conn net.Conn, rec *ClientRecord, frame wire.Frame) error {
	box := rec.GetCredentials().Box
	plaintext, err := box.Open(frame.Payload)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrOnlineCrypto, err)
	}

	cmd, err := wire.Parse(plaintext)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrOnlineCrypto, err)
	}

	tag, err := protocol.ParseTag(cmd.Tag)
	if err != nil {
		// Unknown tag: no reply, connection stays open (§4.4 failure
		// modes; §9 resolves the ambiguity as an explicit decode error
		// that is logged rather than a silent no-op).
		s.stats.unknownCommand()
		s.log.Warn("unknown command tag", "remote", rec.RemoteAddr, "error", err)
		return nil
	}

	switch tag {
	case protocol.Ping:
		return s.replyEncrypted(conn, box, protocol.OK)

	case protocol.SendMessage:
		return s.dispatchSendMessage(conn, rec, box, cmd.Args)

	case protocol.ReceiveMessages:
		return s.dispatchReceiveMessages(conn, rec, box, cmd.Args)

	case protocol.GetStage, protocol.ResetKeys:
		// Reserved tags: accepted by the decoder but not dispatched
		// (§3). No reply, matching the "no reply" failure-mode policy
		// for anything the server doesn't actively handle.
		return nil

	default:
		// Unreachable: protocol.ParseTag only returns tags covered above.
		return nil
	}
}

func (s *Server) dispatchSendMessage(conn net.Conn, rec *ClientRecord, box cryptoBoxSealer, args []byte) error {
	receiver, rest, err := wire.ParsePart(1, args)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrOnlineCrypto, err)
	}
	message, _, err := wire.ParsePart(2, rest)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrOnlineCrypto, err)
	}

	if s.registry.FindByName(receiver) == nil {
		return s.replyEncrypted(conn, box, protocol.NoReceiver)
	}

	rec.Enqueue(receiver, message)
	s.stats.messageEnqueued()

	return s.replyEncrypted(conn, box, protocol.OK)
}

func (s *Server) dispatchReceiveMessages(conn net.Conn, rec *ClientRecord, box cryptoBoxSealer, args []byte) error {
	sender, _, err := wire.ParsePart(1, args)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrOnlineCrypto, err)
	}

	senderRec := s.registry.FindByName(sender)
	if senderRec == nil {
		return s.replyEncrypted(conn, box, protocol.NoSender)
	}

	// The snapshot is taken against my own name, as seen by the sender's
	// mailbox (§3/§4.4: the mailbox belongs to the sender, keyed by
	// receiver name).
	messages := senderRec.DrainSnapshot(rec.GetName())
	s.stats.messagesDeliveredBy(len(messages))

	header, err := wire.Pack(string(protocol.ReceiveMessages), wire.Field{
		Data:       []byte{byte(len(messages))},
		LengthSize: 1,
	})
	if err != nil {
		return fmt.Errorf("session: pack receive_messages header: %w", err)
	}
	if err := s.replyEncryptedBytes(conn, box, header); err != nil {
		return err
	}

	for _, message := range messages {
		if err := s.replyEncryptedBytes(conn, box, message); err != nil {
			return err
		}
	}

	return s.replyEncrypted(conn, box, protocol.OK)
}

// cryptoBoxSealer is the subset of cryptobox.Box used by dispatch; kept
// as an interface purely to avoid an import cycle in doc comments, not
// for mocking -- cryptobox.Box always satisfies it.
type cryptoBoxSealer interface {
	Seal(plaintext []byte) ([]byte, error)
}

func (s *Server) replyEncrypted(conn net.Conn, box cryptoBoxSealer, code protocol.Code) error {
	return s.replyEncryptedBytes(conn, box, code.Encode())
}

func (s *Server) replyEncryptedBytes(conn net.Conn, box cryptoBoxSealer, plaintext []byte) error {
	ciphertext, err := box.Seal(plaintext)
	if err != nil {
		return fmt.Errorf("session: seal reply: %w", err)
	}
	return wire.Send(conn, ciphertext)
}
