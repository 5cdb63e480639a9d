package client

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/kuyugama/kmessenger/cryptobox"
	"github.com/kuyugama/kmessenger/log"
	"github.com/kuyugama/kmessenger/protocol"
	"github.com/kuyugama/kmessenger/wire"
)

// wrapTransportErr wraps a wire-layer error with context, translating
// wire.ErrConnectionClosed to the package's own ErrTransportClosed
// sentinel so callers can errors.Is(err, client.ErrTransportClosed)
// without reaching into the wire package.
func wrapTransportErr(context string, err error) error {
	if errors.Is(err, wire.ErrConnectionClosed) {
		return fmt.Errorf("%s: %w", context, ErrTransportClosed)
	}
	return fmt.Errorf("%s: %w", context, err)
}

// DefaultPollInterval is the spec's recommended background-poller
// cadence (§5, §9: "100 ms is a compromise between latency and load").
const DefaultPollInterval = 100 * time.Millisecond

// Driver is the client-side protocol driver. All request/reply exchanges
// are serialized under a single mutex (§4.5), so SendMessage and
// ReceiveMessages may be called concurrently (including from a
// background poller, see Poll) without corrupting the wire stream.
type Driver struct {
	host string
	port int
	name []byte

	PollInterval time.Duration

	mu   sync.Mutex
	conn net.Conn
	box  cryptobox.Box
	log  *log.Logger

	pollOnce sync.Once
	pollQuit chan struct{}
	pollWG   sync.WaitGroup
}

// New constructs a Driver. Networking is deferred to Start, per §4.5.
func New(host string, port int, name []byte) *Driver {
	return &Driver{
		host:         host,
		port:         port,
		name:         append([]byte(nil), name...),
		PollInterval: DefaultPollInterval,
		log:          log.Default().Module("client"),
	}
}

// Start connects to the server and performs the full handshake transcript
// of §6: receive the public key, receive plaintext ok, send the
// RSA-wrapped session box, receive plaintext ok, send the AES-wrapped
// name, and receive the final ok/name_too_long code.
func (d *Driver) Start() error {
	addr := net.JoinHostPort(d.host, strconv.Itoa(d.port))
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return fmt.Errorf("client: dial %s: %w", addr, err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.conn = conn

	pubKeyFrame, err := wire.Recv(conn)
	if err != nil {
		return wrapTransportErr("client: receive public key", err)
	}
	pub, err := cryptobox.ParsePublicKey(pubKeyFrame.Payload)
	if err != nil {
		return fmt.Errorf("client: parse public key: %w", err)
	}

	if err := d.expectPlaintextOK(); err != nil {
		return err
	}

	box := cryptobox.NewBox()
	wrapped, err := cryptobox.Encrypt(pub, box.Bytes())
	if err != nil {
		return fmt.Errorf("client: wrap session box: %w", err)
	}
	if err := wire.Send(conn, wrapped); err != nil {
		return wrapTransportErr("client: send session box", err)
	}

	if err := d.expectPlaintextOK(); err != nil {
		return err
	}
	d.box = box

	nameFrame, err := box.Seal(d.name)
	if err != nil {
		return fmt.Errorf("client: seal name: %w", err)
	}
	if err := wire.Send(conn, nameFrame); err != nil {
		return wrapTransportErr("client: send name", err)
	}

	return d.expectEncryptedOK()
}

func (d *Driver) expectPlaintextOK() error {
	frame, err := wire.Recv(d.conn)
	if err != nil {
		return wrapTransportErr("client: handshake read", err)
	}
	code, err := protocol.DecodeCode(frame.Payload)
	if err != nil {
		return fmt.Errorf("client: handshake decode: %w", err)
	}
	if code != protocol.OK {
		return &HandshakeFailedError{Code: code}
	}
	return nil
}

func (d *Driver) expectEncryptedOK() error {
	frame, err := wire.Recv(d.conn)
	if err != nil {
		return wrapTransportErr("client: handshake read", err)
	}
	plaintext, err := d.box.Open(frame.Payload)
	if err != nil {
		return fmt.Errorf("client: handshake decrypt: %w", err)
	}
	code, err := protocol.DecodeCode(plaintext)
	if err != nil {
		return fmt.Errorf("client: handshake decode: %w", err)
	}
	if code != protocol.OK {
		return &HandshakeFailedError{Code: code}
	}
	return nil
}

// SendMessage enqueues message for receiver on the server.
func (d *Driver) SendMessage(receiver, message []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	payload, err := wire.Pack(string(protocol.SendMessage),
		wire.Field{Data: receiver, LengthSize: 1},
		wire.Field{Data: message, LengthSize: 2},
	)
	if err != nil {
		return fmt.Errorf("client: pack send_message: %w", err)
	}

	reply, err := d.roundTrip(payload)
	if err != nil {
		return err
	}

	code, err := protocol.DecodeCode(reply)
	if err != nil {
		return fmt.Errorf("client: decode send_message reply: %w", err)
	}

	switch code {
	case protocol.OK:
		return nil
	case protocol.NoReceiver:
		return &NoReceiverError{Receiver: receiver}
	default:
		return &UnexpectedCodeError{Code: code}
	}
}

// ReceiveMessages drains the messages sender has enqueued for this
// client, per §4.5.
func (d *Driver) ReceiveMessages(sender []byte) ([][]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	payload, err := wire.Pack(string(protocol.ReceiveMessages),
		wire.Field{Data: sender, LengthSize: 1},
	)
	if err != nil {
		return nil, fmt.Errorf("client: pack receive_messages: %w", err)
	}

	reply, err := d.roundTrip(payload)
	if err != nil {
		return nil, err
	}

	// The reply is either a bare Code (no_sender) or a receive_messages
	// header command. Try decoding as a Code first; any decode failure
	// means it must be the header instead.
	if code, err := protocol.DecodeCode(reply); err == nil {
		if code == protocol.NoSender {
			return nil, &NoSenderError{Sender: sender}
		}
		return nil, &UnexpectedCodeError{Code: code}
	}

	cmd, err := wire.Parse(reply)
	if err != nil {
		return nil, fmt.Errorf("client: parse receive_messages header: %w", err)
	}
	if protocol.Tag(cmd.Tag) != protocol.ReceiveMessages {
		return nil, fmt.Errorf("client: unexpected reply tag %q", cmd.Tag)
	}

	countBytes, _, err := wire.ParsePart(1, cmd.Args)
	if err != nil {
		return nil, fmt.Errorf("client: parse receive_messages count: %w", err)
	}
	count := int(countBytes[0])

	messages := make([][]byte, 0, count)
	for i := 0; i < count; i++ {
		frame, err := wire.Recv(d.conn)
		if err != nil {
			return nil, wrapTransportErr(fmt.Sprintf("client: receive message %d/%d", i+1, count), err)
		}
		plaintext, err := d.box.Open(frame.Payload)
		if err != nil {
			return nil, fmt.Errorf("client: decrypt message %d/%d: %w", i+1, count, err)
		}
		messages = append(messages, plaintext)
	}

	if err := d.expectEncryptedOKLocked(); err != nil {
		return nil, err
	}

	return messages, nil
}

func (d *Driver) expectEncryptedOKLocked() error {
	frame, err := wire.Recv(d.conn)
	if err != nil {
		return wrapTransportErr("client: receive_messages terminator", err)
	}
	plaintext, err := d.box.Open(frame.Payload)
	if err != nil {
		return fmt.Errorf("client: decrypt terminator: %w", err)
	}
	code, err := protocol.DecodeCode(plaintext)
	if err != nil {
		return fmt.Errorf("client: decode terminator: %w", err)
	}
	if code != protocol.OK {
		return &UnexpectedCodeError{Code: code}
	}
	return nil
}

// roundTrip seals plaintext, sends it, and returns the AES-decrypted
// reply payload. Callers must already hold d.mu.
func (d *Driver) roundTrip(plaintext []byte) ([]byte, error) {
	ciphertext, err := d.box.Seal(plaintext)
	if err != nil {
		return nil, fmt.Errorf("client: seal request: %w", err)
	}
	if err := wire.Send(d.conn, ciphertext); err != nil {
		return nil, wrapTransportErr("client: send request", err)
	}

	frame, err := wire.Recv(d.conn)
	if err != nil {
		return nil, wrapTransportErr("client: receive reply", err)
	}
	reply, err := d.box.Open(frame.Payload)
	if err != nil {
		return nil, fmt.Errorf("client: decrypt reply: %w", err)
	}
	return reply, nil
}

// Stop closes the underlying connection and stops any background poller
// started via Poll.
func (d *Driver) Stop() error {
	d.stopPolling()

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.conn == nil {
		return nil
	}
	return d.conn.Close()
}
