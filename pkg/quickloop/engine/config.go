// Package engine is the single-threaded, readiness-driven event loop
// that ties together the poller, the route trie, and the per-connection
// state machine: one goroutine, one epoll fd, cooperative scheduling —
// the server never spawns a goroutine per connection. Config/Stats
// follow the shape of shockwave/pkg/shockwave/server.Config/Stats.
package engine

import "time"

// Config holds the engine's tunables, including every compile-time knob
// spec §6 lists — modeled here as ordinary fields rather than Go build
// tags, since they are operator-facing switches, not compilation
// variants (see SPEC_FULL.md Part B.3).
type Config struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string

	// MaxConnections bounds concurrently open connections; beyond this
	// the accept loop stops calling accept(2) until one closes.
	MaxConnections int

	// IdleTimeout closes a connection that hasn't completed a request
	// within this long of being accepted.
	IdleTimeout time.Duration

	// PollTimeout is how long a single poller.Wait call blocks when
	// there is no other scheduled work (idle-connection sweeps, signal
	// checks) to do between readiness batches.
	PollTimeout time.Duration

	// DisableHandleIfModifiedSince disables the conditional-GET 304
	// optimization in static file responses.
	DisableHandleIfModifiedSince bool

	// DisableFileAutoCache disables the automatic Last-Modified/Expires/
	// Cache-Control population on file-backed responses.
	DisableFileAutoCache bool

	// SkipLogRequests suppresses the per-request access log line.
	SkipLogRequests bool

	// LogConnects enables a log line for every accepted connection.
	LogConnects bool
}

// DefaultConfig returns the configuration used when the CLI is given
// nothing but a port, matching server.DefaultConfig's role in the
// teacher codebase.
func DefaultConfig(addr string) *Config {
	return &Config{
		Addr:           addr,
		MaxConnections: 10_000,
		IdleTimeout:    30 * time.Second,
		PollTimeout:    1 * time.Second,
	}
}
