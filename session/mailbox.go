package session

// Mailbox is the per-sender collection of outbound message queues, keyed
// by receiver name (§3: "this mailbox belongs to the sender"). It is not
// itself safe for concurrent use; callers (ClientRecord) hold their own
// lock around it.
type Mailbox struct {
	queues map[string][][]byte
}

// Enqueue appends message to the queue addressed to receiver.
func (m *Mailbox) Enqueue(receiver, message []byte) {
	if m.queues == nil {
		m.queues = make(map[string][][]byte)
	}
	key := string(receiver)
	m.queues[key] = append(m.queues[key], append([]byte(nil), message...))
}

// MaxBatch is the largest number of messages one receive_messages call
// may deliver: the batch count is encoded in a single byte (§4.4/§6).
const MaxBatch = 255

// DrainSnapshot returns (up to MaxBatch of) the messages currently
// queued for receiver and removes that exact prefix from the queue.
// Messages enqueued after the snapshot is taken (by a concurrent Enqueue
// under the same lock) are necessarily not part of it, since the caller
// holds the record's lock for the whole call -- this is what gives
// scenario C (§8) its snapshot-then-drain semantics: a send racing with
// the *next* poll is visible, but never with the poll in progress.
// Scenario F (§8): a queue longer than MaxBatch is drained in batches
// across successive polls, never truncated silently.
func (m *Mailbox) DrainSnapshot(receiver []byte) [][]byte {
	if m.queues == nil {
		return nil
	}
	key := string(receiver)
	queue := m.queues[key]
	if len(queue) == 0 {
		return nil
	}

	n := len(queue)
	if n > MaxBatch {
		n = MaxBatch
	}

	snapshot := make([][]byte, n)
	copy(snapshot, queue[:n])
	m.queues[key] = queue[n:]
	return snapshot
}
