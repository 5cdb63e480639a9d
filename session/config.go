package session

import "time"

// Config configures a Server.
type Config struct {
	// Host is the address to bind, e.g. "localhost" or "0.0.0.0".
	Host string
	// Port is the TCP port to bind.
	Port int

	// HandlerInterval is the sleep between online-stage poll iterations
	// of a per-connection handler (§4.4/§5: "≈10 ms"). Zero selects the
	// default.
	HandlerInterval time.Duration
}

// DefaultHandlerInterval is the spec's recommended inter-iteration sleep
// for a connection's online-stage poll loop.
const DefaultHandlerInterval = 10 * time.Millisecond

func (c Config) withDefaults() Config {
	if c.HandlerInterval <= 0 {
		c.HandlerInterval = DefaultHandlerInterval
	}
	return c
}
