package session

import (
	"crypto/rsa"
	"sync"

	"github.com/kuyugama/kmessenger/cryptobox"
	"github.com/kuyugama/kmessenger/protocol"
)

// Credentials holds the per-connection cryptographic state established
// during the handshake. PrivateKey is set on entering the rsa stage; Box
// (session key + IV) is set on completing it.
type Credentials struct {
	PrivateKey *rsa.PrivateKey
	Box        cryptobox.Box
}

// ClientRecord is the server-side state for one accepted connection: its
// credentials, handshake stage, optional name, and the mailbox of
// messages this client has enqueued for its peers. All fields are
// guarded by mu -- the registry's own lock only protects the map of
// records, not their contents, mirroring the teacher's split between
// PeerSet's map lock and each Peer's own mutex.
type ClientRecord struct {
	mu sync.RWMutex

	RemoteAddr string
	Creds      Credentials
	Stage      protocol.Stage
	Name       []byte
	mailbox    Mailbox
}

// SetStage updates the record's handshake stage.
func (c *ClientRecord) SetStage(s protocol.Stage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Stage = s
}

// GetStage returns the record's current handshake stage.
func (c *ClientRecord) GetStage() protocol.Stage {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Stage
}

// SetCredentials stores the handshake credentials.
func (c *ClientRecord) SetCredentials(creds Credentials) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Creds = creds
}

// GetCredentials returns a copy of the record's credentials.
func (c *ClientRecord) GetCredentials() Credentials {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Creds
}

// SetName records the client's self-asserted name, replacing any name
// already set. The handshake calls it once, in the aes stage.
func (c *ClientRecord) SetName(name []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Name = append([]byte(nil), name...)
}

// GetName returns the client's name, or nil if unset.
func (c *ClientRecord) GetName() []byte {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.Name == nil {
		return nil
	}
	return append([]byte(nil), c.Name...)
}

// HasName reports whether a name has been recorded yet -- used to decide
// between the aes and rsa-reentry (re-key) stage transitions per §4.3.
func (c *ClientRecord) HasName() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Name != nil
}

// Enqueue appends message to this record's mailbox for receiver.
func (c *ClientRecord) Enqueue(receiver, message []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mailbox.Enqueue(receiver, message)
}

// DrainSnapshot takes a snapshot of the messages queued for receiver and
// removes exactly that prefix from the mailbox, per the snapshot-then-
// drain semantics of receive_messages (§4.4, scenario C).
func (c *ClientRecord) DrainSnapshot(receiver []byte) [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mailbox.DrainSnapshot(receiver)
}

// Registry is the thread-safe collection of live client records, keyed
// by remote address (host:port), mirroring the teacher's ManagedPeerSet
// shape but without a capacity cap -- the protocol places no bound on
// concurrent clients.
type Registry struct {
	mu      sync.RWMutex
	clients map[string]*ClientRecord
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{clients: make(map[string]*ClientRecord)}
}

// Register adds a new record for remoteAddr. Returns ErrAlreadyRegistered
// if one already exists for that address.
func (r *Registry) Register(remoteAddr string) (*ClientRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.clients[remoteAddr]; exists {
		return nil, ErrAlreadyRegistered
	}
	rec := &ClientRecord{RemoteAddr: remoteAddr, Stage: protocol.Connection}
	r.clients[remoteAddr] = rec
	return rec, nil
}

// Unregister removes the record for remoteAddr, if present.
func (r *Registry) Unregister(remoteAddr string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.clients, remoteAddr)
}

// Len returns the number of live client records.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients)
}

// FindByName performs the linear scan described in §4.4/§9: the first
// record (in map-iteration order) whose name matches is returned.
// Duplicate names resolve to whichever is encountered first; the spec
// does not tighten this.
func (r *Registry) FindByName(name []byte) *ClientRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, rec := range r.clients {
		if recordNameEquals(rec, name) {
			return rec
		}
	}
	return nil
}

func recordNameEquals(rec *ClientRecord, name []byte) bool {
	rec.mu.RLock()
	defer rec.mu.RUnlock()
	if rec.Name == nil {
		return false
	}
	if len(rec.Name) != len(name) {
		return false
	}
	for i := range rec.Name {
		if rec.Name[i] != name[i] {
			return false
		}
	}
	return true
}
