package client_test

import (
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kuyugama/kmessenger/client"
	"github.com/kuyugama/kmessenger/protocol"
	"github.com/kuyugama/kmessenger/session"
)

// startServer binds an ephemeral port and returns its host/port, ready
// for Driver.Start to dial. Scenarios A-F (SPEC_FULL.md §8) are driven
// end-to-end against a real session.Server here, the only place in the
// tree both the server and client halves are exercised together.
func startServer(t *testing.T) (host string, port int) {
	t.Helper()

	srv := session.NewServer(session.Config{Host: "127.0.0.1", Port: 0})
	require.NoError(t, srv.Start())
	t.Cleanup(func() { require.NoError(t, srv.Stop()) })

	addr := srv.Addr().(*net.TCPAddr)
	return "127.0.0.1", addr.Port
}

func newDriver(t *testing.T, host string, port int, name string) *client.Driver {
	t.Helper()
	d := client.New(host, port, []byte(name))
	require.NoError(t, d.Start())
	t.Cleanup(func() { require.NoError(t, d.Stop()) })
	return d
}

// TestScenarioA_SingleMessageRoundTrip matches SPEC_FULL.md §8 scenario A.
func TestScenarioA_SingleMessageRoundTrip(t *testing.T) {
	host, port := startServer(t)
	alice := newDriver(t, host, port, "alice")
	bob := newDriver(t, host, port, "bob")

	require.NoError(t, alice.SendMessage([]byte("bob"), []byte("hi")))

	got, err := bob.ReceiveMessages([]byte("alice"))
	require.NoError(t, err)
	require.Equal(t, [][]byte{[]byte("hi")}, got)

	got, err = bob.ReceiveMessages([]byte("alice"))
	require.NoError(t, err)
	require.Empty(t, got)
}

// TestScenarioB_FIFOOrder matches scenario B.
func TestScenarioB_FIFOOrder(t *testing.T) {
	host, port := startServer(t)
	alice := newDriver(t, host, port, "alice")
	bob := newDriver(t, host, port, "bob")

	require.NoError(t, alice.SendMessage([]byte("bob"), []byte("1")))
	require.NoError(t, alice.SendMessage([]byte("bob"), []byte("2")))
	require.NoError(t, alice.SendMessage([]byte("bob"), []byte("3")))

	got, err := bob.ReceiveMessages([]byte("alice"))
	require.NoError(t, err)
	require.Equal(t, [][]byte{[]byte("1"), []byte("2"), []byte("3")}, got)
}

// TestScenarioC_SnapshotSemantics approximates scenario C sequentially: a
// send made after a receive has returned is not part of that receive's
// batch and is delivered by the next one. It does not interleave a send
// with a receive in progress.
func TestScenarioC_SnapshotSemantics(t *testing.T) {
	host, port := startServer(t)
	alice := newDriver(t, host, port, "alice")
	bob := newDriver(t, host, port, "bob")

	require.NoError(t, alice.SendMessage([]byte("bob"), []byte("a")))

	got, err := bob.ReceiveMessages([]byte("alice"))
	require.NoError(t, err)
	require.Equal(t, [][]byte{[]byte("a")}, got)

	require.NoError(t, alice.SendMessage([]byte("bob"), []byte("b")))

	got, err = bob.ReceiveMessages([]byte("alice"))
	require.NoError(t, err)
	require.Equal(t, [][]byte{[]byte("b")}, got)
}

// TestScenarioD_NoReceiver matches scenario D.
func TestScenarioD_NoReceiver(t *testing.T) {
	host, port := startServer(t)
	alice := newDriver(t, host, port, "alice")

	err := alice.SendMessage([]byte("nobody"), []byte("hi"))
	var noReceiver *client.NoReceiverError
	require.ErrorAs(t, err, &noReceiver)
}

// TestScenarioE_NameTooLong matches scenario E.
func TestScenarioE_NameTooLong(t *testing.T) {
	host, port := startServer(t)

	longName := make([]byte, 256)
	for i := range longName {
		longName[i] = 'x'
	}

	d := client.New(host, port, longName)
	err := d.Start()

	var handshakeFailed *client.HandshakeFailedError
	require.ErrorAs(t, err, &handshakeFailed)
	require.Equal(t, protocol.NameTooLong, handshakeFailed.Code)
}

// TestScenarioF_BatchCap matches scenario F: a 300-message backlog is
// delivered as 255 then 45.
func TestScenarioF_BatchCap(t *testing.T) {
	host, port := startServer(t)
	alice := newDriver(t, host, port, "alice")
	bob := newDriver(t, host, port, "bob")

	for i := 0; i < 300; i++ {
		require.NoError(t, alice.SendMessage([]byte("bob"), []byte(fmt.Sprintf("%d", i))))
	}

	first, err := bob.ReceiveMessages([]byte("alice"))
	require.NoError(t, err)
	require.Len(t, first, 255)

	second, err := bob.ReceiveMessages([]byte("alice"))
	require.NoError(t, err)
	require.Len(t, second, 45)
}

// TestNoSender covers the symmetric addressing error for receive_messages.
func TestNoSender(t *testing.T) {
	host, port := startServer(t)
	bob := newDriver(t, host, port, "bob")

	_, err := bob.ReceiveMessages([]byte("nobody"))
	var noSender *client.NoSenderError
	require.ErrorAs(t, err, &noSender)
}

// TestSendMessage_TransportClosed confirms a server-initiated disconnect
// surfaces as client.ErrTransportClosed, not a bare wire-layer error.
func TestSendMessage_TransportClosed(t *testing.T) {
	srv := session.NewServer(session.Config{Host: "127.0.0.1", Port: 0})
	require.NoError(t, srv.Start())

	addr := srv.Addr().(*net.TCPAddr)
	d := client.New("127.0.0.1", addr.Port, []byte("alice"))
	require.NoError(t, d.Start())

	require.NoError(t, srv.Stop())

	err := d.SendMessage([]byte("bob"), []byte("hi"))
	require.ErrorIs(t, err, client.ErrTransportClosed)

	require.NoError(t, d.Stop())
}

// TestPollDeliversMessages exercises the background poller (§5/§9).
func TestPollDeliversMessages(t *testing.T) {
	host, port := startServer(t)
	alice := newDriver(t, host, port, "alice")
	bob := newDriver(t, host, port, "bob")
	bob.PollInterval = 10 * time.Millisecond

	received := make(chan []byte, 1)
	bob.Poll([]byte("alice"), func(messages [][]byte) {
		for _, m := range messages {
			received <- m
		}
	}, nil)

	require.NoError(t, alice.SendMessage([]byte("bob"), []byte("polled")))

	select {
	case m := <-received:
		require.Equal(t, []byte("polled"), m)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for polled message")
	}
}
