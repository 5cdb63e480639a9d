package session

import "sync/atomic"

// Stats holds ambient operational counters for a Server, in the spirit
// of the teacher's hand-rolled metrics collector (pkg/metrics/collector.go):
// plain counters, no external metrics backend. The protocol's Non-goals
// (§1) exclude rate limiting and similar *features*, not basic
// operational visibility -- this is the ambient logging/metrics layer
// every deployable service carries (SPEC_FULL.md §10).
type Stats struct {
	connectionsAccepted  atomic.Int64
	connectionsActive    atomic.Int64
	handshakesCompleted  atomic.Int64
	handshakeFailures    atomic.Int64
	messagesEnqueued     atomic.Int64
	messagesDelivered    atomic.Int64
	unknownCommandsSeen  atomic.Int64
}

func (s *Stats) connectionAccepted() {
	s.connectionsAccepted.Add(1)
	s.connectionsActive.Add(1)
}

func (s *Stats) connectionClosed() {
	s.connectionsActive.Add(-1)
}

func (s *Stats) handshakeCompleted() {
	s.handshakesCompleted.Add(1)
}

func (s *Stats) handshakeFailed() {
	s.handshakeFailures.Add(1)
}

func (s *Stats) messageEnqueued() {
	s.messagesEnqueued.Add(1)
}

func (s *Stats) messagesDeliveredBy(n int) {
	s.messagesDelivered.Add(int64(n))
}

func (s *Stats) unknownCommand() {
	s.unknownCommandsSeen.Add(1)
}

// Snapshot is a point-in-time copy of the counters, safe to read after
// the server has been stopped or log/print while it is running.
type Snapshot struct {
	ConnectionsAccepted int64
	ConnectionsActive   int64
	HandshakesCompleted int64
	HandshakeFailures   int64
	MessagesEnqueued    int64
	MessagesDelivered   int64
	UnknownCommandsSeen int64
}

// Snapshot returns the current counter values.
func (s *Stats) Snapshot() Snapshot {
	return Snapshot{
		ConnectionsAccepted: s.connectionsAccepted.Load(),
		ConnectionsActive:   s.connectionsActive.Load(),
		HandshakesCompleted: s.handshakesCompleted.Load(),
		HandshakeFailures:   s.handshakeFailures.Load(),
		MessagesEnqueued:    s.messagesEnqueued.Load(),
		MessagesDelivered:   s.messagesDelivered.Load(),
		UnknownCommandsSeen: s.unknownCommandsSeen.Load(),
	}
}
