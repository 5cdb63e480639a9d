// Package session implements the server side of the protocol: the
// accept loop, the per-connection stage machine, the client registry,
// and the online-stage command dispatch. It is grounded on the
// teacher's pkg/p2p server/peer-set shape (Server.Start/Stop/listenLoop,
// a registry of live connections) adapted from a devp2p peer swarm to a
// single-stream handshake-then-request/reply protocol.
package session

import (
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/kuyugama/kmessenger/log"
	"github.com/kuyugama/kmessenger/protocol"
	"github.com/kuyugama/kmessenger/wire"
)

// Server accepts connections and runs the per-connection handshake and
// online dispatch described in SPEC_FULL.md §4.3/§4.4.
type Server struct {
	config   Config
	registry *Registry
	stats    Stats
	log      *log.Logger

	mu       sync.Mutex
	listener net.Listener
	running  bool
	quit     chan struct{}
	wg       sync.WaitGroup
}

// NewServer creates a Server that will listen per cfg once Start is
// called.
func NewServer(cfg Config) *Server {
	return &Server{
		config:   cfg.withDefaults(),
		registry: NewRegistry(),
		log:      log.Default().Module("session"),
	}
}

// Start binds the configured address and spawns the accept loop in a
// background goroutine. It returns once the listener is bound, mirroring
// the teacher's Server.Start (bind first, accept asynchronously).
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("session: server already running")
	}

	addr := net.JoinHostPort(s.config.Host, strconv.Itoa(s.config.Port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("session: listen on %s: %w", addr, err)
	}

	s.listener = ln
	s.quit = make(chan struct{})
	s.running = true

	s.wg.Add(1)
	go s.listenLoop()

	s.log.Info("server started", "addr", ln.Addr().String())
	return nil
}

// Stop closes the listener and waits for the accept loop and all
// in-flight connection handlers to exit.
func (s *Server) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	close(s.quit)
	err := s.listener.Close()
	s.mu.Unlock()

	s.wg.Wait()
	s.log.Info("server stopped")
	return err
}

// Stats returns a snapshot of the server's ambient operational counters.
func (s *Server) Stats() Snapshot {
	return s.stats.Snapshot()
}

// Addr returns the bound listener address. Only valid after Start.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

func (s *Server) listenLoop() {
	defer s.wg.Done()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.quit:
				return
			default:
				s.log.Error("accept failed", "error", err)
				return
			}
		}

		s.wg.Add(1)
		go s.handleConn(conn)
	}
}

// handleConn drives one connection through the full stage machine:
// connection -> rsa -> aes -> online (with the rsa-reentry shortcut to
// online on key refresh), then the online poll loop until the peer
// disconnects.
func (s *Server) handleConn(conn net.Conn) {
	defer s.wg.Done()
	defer conn.Close()

	remoteAddr := conn.RemoteAddr().String()
	rec, err := s.registry.Register(remoteAddr)
	if err != nil {
		s.log.Error("register connection", "remote", remoteAddr, "error", err)
		return
	}
	s.stats.connectionAccepted()
	defer func() {
		s.registry.Unregister(remoteAddr)
		s.stats.connectionClosed()
	}()

	s.log.Debug("connection accepted", "remote", remoteAddr)

	if err := s.advanceConnection(conn, rec); err != nil {
		s.log.Warn("connection-stage handshake failed", "remote", remoteAddr, "error", err)
		s.stats.handshakeFailed()
		return
	}

	if err := s.advanceRSA(conn, rec); err != nil {
		s.log.Warn("rsa-stage handshake failed", "remote", remoteAddr, "error", err)
		s.stats.handshakeFailed()
		return
	}

	// A rejected (over-length) name keeps the connection in the aes
	// stage; the client is expected to retry with a shorter name on the
	// same connection (§7), so this advances repeatedly until it either
	// succeeds (stage becomes online) or the connection fails.
	for rec.GetStage() == protocol.AES {
		if err := s.advanceAES(conn, rec); err != nil {
			s.log.Warn("aes-stage handshake failed", "remote", remoteAddr, "error", err)
			s.stats.handshakeFailed()
			return
		}
	}

	s.stats.handshakeCompleted()
	s.log.Debug("connection online", "remote", remoteAddr)

	s.onlineLoop(conn, rec)
}

func (s *Server) onlineLoop(conn net.Conn, rec *ClientRecord) {
	for {
		select {
		case <-s.quit:
			return
		default:
		}

		frame, ok, err := wire.Poll(conn)
		if err != nil {
			s.log.Debug("connection closed", "remote", rec.RemoteAddr, "error", err)
			return
		}
		if !ok {
			time.Sleep(s.config.HandlerInterval)
			continue
		}

		if err := s.advanceOnline(conn, rec, frame); err != nil {
			s.log.Warn("online dispatch failed, closing connection", "remote", rec.RemoteAddr, "error", err)
			return
		}
	}
}
