// Package poller is the readiness demultiplexer the event-loop driver
// waits on: register a file descriptor's interest set, wait for a batch
// of readiness events, and modify that interest set as a connection
// moves between reading and writing. Grounded on the poller.Poller
// abstraction used by the in-pack fast-server core engine, with a real
// epoll(7) backend on Linux via golang.org/x/sys/unix.
package poller

// Event reports one fd's readiness after a Wait call.
type Event struct {
	Fd       int
	Readable bool
	Writable bool
	// Err/Hup report a socket error or a peer hangup detected by the
	// kernel itself (EPOLLERR/EPOLLHUP) — the driver treats both as
	// "stop driving this connection and close it", without bothering to
	// disambiguate further since either way the next read/write will
	// fail anyway.
	Err bool
	Hup bool
}

// Poller is the minimal readiness interface spec §4.6 names: register,
// modify, and wait. One Poller instance belongs to exactly one event
// loop; it is never shared across goroutines because the engine itself
// is single-threaded.
type Poller interface {
	// Register adds fd with the given interest (readable always true for
	// this server; writable toggled on depending on connection state).
	Register(fd int, readable, writable bool) error
	// Modify changes fd's interest set in place.
	Modify(fd int, readable, writable bool) error
	// Remove drops fd from the interest set. The driver calls this before
	// closing fd, since some poller implementations error on a stale fd.
	Remove(fd int) error
	// Wait blocks for up to timeoutMillis (0 = return immediately, -1 =
	// block indefinitely) and returns the events that became ready.
	Wait(timeoutMillis int) ([]Event, error)
	// Close releases the poller's own kernel resources (e.g. the epoll fd).
	Close() error
}
