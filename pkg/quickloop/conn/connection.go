// Package conn implements the non-blocking, single-request HTTP/1.0
// connection state machine: an incremental request parser and response
// writer driven by readiness events from the poller, never by a
// blocking read or write. One Connection serves exactly one request —
// HTTP/1.1 keep-alive and pipelining are explicit Non-goals — so once a
// response has been fully written the engine always closes the fd.
//
// The sliding buffer invariant held throughout is:
//
//	0 <= bufPtr <= bufEnd <= len(buf) <= MaxBufferSize
//
// bufPtr is the parser's read cursor; bufEnd is how much of buf holds
// data read from the socket but not yet consumed by the parser.
package conn

import (
	"os"
	"syscall"
	"time"

	"github.com/nkaush-go/quickloop/pkg/quickloop/bufpool"
	"github.com/nkaush-go/quickloop/pkg/quickloop/proto"
	"github.com/nkaush-go/quickloop/pkg/quickloop/request"
	"github.com/nkaush-go/quickloop/pkg/quickloop/response"
	"github.com/nkaush-go/quickloop/pkg/quickloop/route"
	"github.com/nkaush-go/quickloop/pkg/quickloop/socket"
)

// MaxBufferSize bounds how large the read buffer is ever allowed to grow
// while parsing a single request line and header block.
const MaxBufferSize = 16 * 1024

// MaxRequestLineSize and MaxHeadersSize cap the two sections of the
// request the parser consumes before handing off to a handler; a
// request exceeding either is malformed, not merely large.
const (
	MaxRequestLineSize = 8192
	MaxHeadersSize     = 8192
)

// MaxURLLength is the maximum request-target length this server accepts,
// per spec §4.2's URI-too-long threshold. It is independent of (and
// smaller than) MaxRequestLineSize, which bounds the request line as a
// whole.
const MaxURLLength = 2048

// Router is the subset of route.Trie the connection state machine needs.
// Declared as an interface so tests can substitute a stub without
// constructing a real trie.
type Router interface {
	Lookup(method proto.Method, path string) (route.Handler, bool)
}

// AccessLogRecord is handed to the configured logger once a response has
// been fully written, per spec §4.7. A connection torn down on an I/O
// error or hangup produces no record.
type AccessLogRecord struct {
	RemoteAddr   string
	Method       string
	Path         string
	Status       int
	BytesIn      int64
	BytesOut     int64
	ReceiveTime  time.Duration
	HandleTime   time.Duration
	SendTime     time.Duration
}

// Connection is one accepted, non-blocking client socket and the state
// of the single HTTP/1.0 request/response cycle it is currently
// driving. It is reused from a pool across connections (Reset, not
// reallocated) the way the engine pools every other per-connection
// scratch object.
type Connection struct {
	Fd    int
	State State

	buf    []byte
	bufEnd int
	bufPtr int

	req  request.Request
	resp *response.Response

	router Router
	pool   *bufpool.Pool

	// body ingest
	contentLength int64 // -1 if absent/not yet known
	bodyRead      int64
	bodyFile      *os.File
	bodyBuf       []byte

	// response write
	headerLine []byte
	headerBuf  []byte
	headerOff  int
	bodyOff    int64

	// timing, for the access log
	connectedAt time.Time
	requestDoneAt time.Time
	handledAt   time.Time

	RemoteAddr string

	malformed bool
}

// New constructs a Connection bound to fd, ready to drive one request.
// router resolves the path once headers are fully parsed. Its buffers
// are not drawn from a shared pool; use NewPooled from the engine,
// which recycles Connections (and their buffers) across accepted fds.
func New(fd int, remoteAddr string, router Router) *Connection {
	return NewPooled(fd, remoteAddr, router, nil)
}

// NewPooled is New, but draws the sliding read buffer and the outgoing
// header buffer from pool instead of allocating fresh ones. pool may be
// nil, in which case it behaves exactly like New.
func NewPooled(fd int, remoteAddr string, router Router, pool *bufpool.Pool) *Connection {
	c := &Connection{
		Fd:         fd,
		RemoteAddr: remoteAddr,
		router:     router,
		pool:       pool,
	}
	c.Reset()
	return c
}

// Rebind repoints a released, pooled Connection at a newly accepted fd
// and resets its state, avoiding a fresh allocation for every accept.
func (c *Connection) Rebind(fd int, remoteAddr string, router Router) {
	c.Fd = fd
	c.RemoteAddr = remoteAddr
	c.router = router
	c.Reset()
}

// Release returns the connection's buffers to its pool, if any. The
// engine calls this once a Connection is done being driven and before
// recycling the Connection itself, so the next accept's NewPooled/
// Rebind can draw fresh buffers from the same pool.
func (c *Connection) Release() {
	if c.bodyFile != nil {
		name := c.bodyFile.Name()
		c.bodyFile.Close()
		os.Remove(name)
		c.bodyFile = nil
	}
	if c.resp != nil {
		c.resp.Close()
		c.resp = nil
	}
	if c.pool == nil {
		return
	}
	if c.buf != nil {
		c.pool.Put(c.buf)
		c.buf = nil
	}
	if c.headerBuf != nil {
		c.pool.Put(c.headerBuf)
		c.headerBuf = nil
	}
}

// Reset returns the connection to its initial state so the Connection
// object can be recycled from the pool for a different, freshly
// accepted fd (never the same fd — there is no keep-alive reuse).
func (c *Connection) Reset() {
	if c.buf == nil {
		if c.pool != nil {
			c.buf = c.pool.Get(bufpool.SizeSmall)
		} else {
			c.buf = make([]byte, bufpool.SizeSmall)
		}
	}
	c.bufEnd = 0
	c.bufPtr = 0
	c.State = StateClientConnected
	c.req.Reset()
	if c.resp != nil {
		c.resp.Close()
		c.resp = nil
	}
	c.contentLength = -1
	c.bodyRead = 0
	if c.bodyFile != nil {
		name := c.bodyFile.Name()
		c.bodyFile.Close()
		os.Remove(name)
		c.bodyFile = nil
	}
	c.bodyBuf = nil
	c.headerLine = nil
	if c.headerBuf != nil && c.pool != nil {
		c.pool.Put(c.headerBuf)
	}
	c.headerBuf = nil
	c.headerOff = 0
	c.bodyOff = 0
	c.malformed = false
	c.connectedAt = time.Now()
}

// Done reports whether the connection has finished writing its response;
// this server serves exactly one request per connection (spec §1's
// "Connection: close" semantics, no keep-alive), so once Done is true
// the engine always closes the fd.
func (c *Connection) Done() bool {
	return c.State == StateDestroyed
}

// ConnectedAt returns when this connection was accepted, so the engine
// can sweep connections that have sat idle past its configured
// IdleTimeout.
func (c *Connection) ConnectedAt() time.Time {
	return c.connectedAt
}

// growBuffer doubles buf's capacity up to MaxBufferSize, compacting
// first if there's unused space behind bufPtr. It returns false if the
// buffer is already at MaxBufferSize and still full — the caller treats
// that as a malformed/oversized request.
func (c *Connection) growBuffer() bool {
	if c.bufPtr > 0 {
		n := copy(c.buf, c.buf[c.bufPtr:c.bufEnd])
		c.bufEnd = n
		c.bufPtr = 0
	}
	if c.bufEnd < len(c.buf) {
		return true
	}
	if len(c.buf) >= MaxBufferSize {
		return false
	}
	newCap := len(c.buf) * 2
	if newCap > MaxBufferSize {
		newCap = MaxBufferSize
	}
	var grown []byte
	if c.pool != nil {
		grown = c.pool.Get(newCap)
	} else {
		grown = make([]byte, newCap)
	}
	copy(grown, c.buf[:c.bufEnd])
	if c.pool != nil {
		c.pool.Put(c.buf)
	}
	c.buf = grown
	return true
}

// fillBuffer performs one non-blocking read into the free tail of buf.
// It returns (n, wouldBlock, err): wouldBlock is true on EAGAIN, in
// which case the caller should simply wait for the next readable event.
func (c *Connection) fillBuffer() (n int, wouldBlock bool, err error) {
	if c.bufEnd >= len(c.buf) {
		if !c.growBuffer() {
			return 0, false, errBufferFull
		}
	}
	n, err = syscall.Read(c.Fd, c.buf[c.bufEnd:])
	if err != nil {
		if err == syscall.EAGAIN || err == syscall.EWOULDBLOCK {
			return 0, true, nil
		}
		return 0, false, err
	}
	c.bufEnd += n
	return n, false, nil
}

// ApplySocketDefaults tunes fd right after accept; the engine calls this once.
func ApplySocketDefaults(fd int) error {
	if err := socket.Apply(fd, socket.DefaultConfig()); err != nil {
		return err
	}
	socket.ApplyPlatform(fd)
	return socket.SetNonblock(fd)
}
