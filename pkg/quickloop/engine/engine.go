//go:build linux

// This engine is Linux-only: it accepts with syscall.Accept4 (no BSD/
// Darwin equivalent) and its poller/socket tuning are most useful under
// epoll. See DESIGN.md for why no cross-platform accept loop was added.
package engine

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/nkaush-go/quickloop/pkg/quickloop/accesslog"
	"github.com/nkaush-go/quickloop/pkg/quickloop/bufpool"
	"github.com/nkaush-go/quickloop/pkg/quickloop/conn"
	"github.com/nkaush-go/quickloop/pkg/quickloop/poller"
	"github.com/nkaush-go/quickloop/pkg/quickloop/route"
	"github.com/nkaush-go/quickloop/pkg/quickloop/socket"
)

// Engine is the single-threaded event-loop driver: it owns the listening
// socket, the readiness poller, and every live Connection. Nothing here
// is safe for concurrent use — Run must be called from exactly one
// goroutine, matching spec §5's single-threaded cooperative model.
type Engine struct {
	cfg    *Config
	router *route.Trie
	log    *accesslog.Logger
	stats  *Stats

	listenFd int
	poll     poller.Poller
	conns    map[int]*conn.Connection

	bufs     *bufpool.Pool
	connPool sync.Pool

	shutdown chan struct{}
}

// New builds an Engine bound to cfg.Addr. The listening socket is not
// created until Run is called.
func New(cfg *Config, router *route.Trie, log *accesslog.Logger) *Engine {
	return &Engine{
		cfg:      cfg,
		router:   router,
		log:      log,
		stats:    NewStats(),
		conns:    make(map[int]*conn.Connection),
		bufs:     bufpool.New(),
		shutdown: make(chan struct{}),
	}
}

// Stats returns the engine's running counters.
func (e *Engine) Stats() *Stats { return e.stats }

// Run creates the listening socket, freezes the route trie, and drives
// the accept/readiness loop until Shutdown is called or a fatal error
// occurs. It installs its own SIGINT handler so a plain Ctrl-C triggers
// a graceful shutdown instead of an abrupt kill, per spec §6.
func (e *Engine) Run() error {
	e.router.Freeze()

	if err := e.listen(); err != nil {
		return fmt.Errorf("engine: listen: %w", err)
	}
	defer syscall.Close(e.listenFd)

	p, err := poller.New()
	if err != nil {
		return fmt.Errorf("engine: poller: %w", err)
	}
	e.poll = p
	defer p.Close()

	if err := e.poll.Register(e.listenFd, true, false); err != nil {
		return fmt.Errorf("engine: register listener: %w", err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	e.log.Infof("server listening", "addr", e.cfg.Addr)

	for {
		select {
		case <-e.shutdown:
			e.closeAll()
			return nil
		case <-sigCh:
			e.log.Infof("shutdown signal received")
			e.closeAll()
			return nil
		default:
		}

		events, err := e.poll.Wait(int(e.cfg.PollTimeout.Milliseconds()))
		if err != nil {
			return fmt.Errorf("engine: poll wait: %w", err)
		}

		for _, ev := range events {
			if ev.Fd == e.listenFd {
				e.acceptLoop()
				continue
			}
			e.driveConnection(ev)
		}

		e.sweepIdle()
	}
}

// sweepIdle closes any connection that has sat open longer than
// cfg.IdleTimeout without completing a request — the core contract
// (spec §5) has no per-operation timeout of its own, but names this
// sweep as something implementers MAY add by attaching a deadline to
// the Connection and checking it once per tick, which is exactly what
// this does.
func (e *Engine) sweepIdle() {
	if e.cfg.IdleTimeout <= 0 {
		return
	}
	deadline := time.Now().Add(-e.cfg.IdleTimeout)
	var stale []int
	for fd, c := range e.conns {
		if c.ConnectedAt().Before(deadline) {
			stale = append(stale, fd)
		}
	}
	for _, fd := range stale {
		e.closeConn(fd)
	}
}

// Shutdown requests a graceful stop; Run returns once the current
// readiness batch has been processed and every connection closed.
func (e *Engine) Shutdown() {
	close(e.shutdown)
}

func (e *Engine) listen() error {
	addr := e.cfg.Addr
	host, portStr, err := splitHostPort(addr)
	if err != nil {
		return err
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return fmt.Errorf("invalid port %q: %w", portStr, err)
	}

	fd, err := syscall.Socket(syscall.AF_INET, syscall.SOCK_STREAM, 0)
	if err != nil {
		return err
	}
	if err := syscall.SetsockoptInt(fd, syscall.SOL_SOCKET, syscall.SO_REUSEADDR, 1); err != nil {
		syscall.Close(fd)
		return err
	}

	sa := &syscall.SockaddrInet4{Port: port}
	if host != "" {
		ip := parseIPv4(host)
		sa.Addr = ip
	}
	if err := syscall.Bind(fd, sa); err != nil {
		syscall.Close(fd)
		return err
	}
	if err := syscall.Listen(fd, 1024); err != nil {
		syscall.Close(fd)
		return err
	}
	if err := socket.SetNonblock(fd); err != nil {
		syscall.Close(fd)
		return err
	}

	e.listenFd = fd
	return nil
}

func splitHostPort(addr string) (host, port string, err error) {
	idx := strings.LastIndexByte(addr, ':')
	if idx < 0 {
		return "", "", fmt.Errorf("address %q must be HOST:PORT or :PORT", addr)
	}
	return addr[:idx], addr[idx+1:], nil
}

func parseIPv4(host string) [4]byte {
	var out [4]byte
	if host == "" {
		return out
	}
	parts := strings.SplitN(host, ".", 4)
	if len(parts) != 4 {
		return out
	}
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 || n > 255 {
			return [4]byte{}
		}
		out[i] = byte(n)
	}
	return out
}

// acceptLoop drains syscall.Accept4 until it would block, matching the
// original C server's behavior of accepting everything the kernel
// backlog currently holds in one pass rather than one accept per
// readiness notification.
func (e *Engine) acceptLoop() {
	for {
		if e.cfg.MaxConnections > 0 && len(e.conns) >= e.cfg.MaxConnections {
			return
		}

		nfd, sa, err := syscall.Accept4(e.listenFd, syscall.SOCK_NONBLOCK)
		if err != nil {
			if err == syscall.EAGAIN || err == syscall.EWOULDBLOCK {
				return
			}
			e.log.Errorf("accept failed", "error", err.Error())
			return
		}

		if err := conn.ApplySocketDefaults(nfd); err != nil {
			syscall.Close(nfd)
			continue
		}

		remote := formatSockaddr(sa)
		c, _ := e.connPool.Get().(*conn.Connection)
		if c == nil {
			c = conn.NewPooled(nfd, remote, e.router, e.bufs)
		} else {
			c.Rebind(nfd, remote, e.router)
		}
		e.conns[nfd] = c
		e.stats.connectionsAccepted.Add(1)
		e.stats.connectionsActive.Add(1)
		e.log.Connect(remote, nfd)

		if err := e.poll.Register(nfd, true, false); err != nil {
			e.closeConn(nfd)
			continue
		}
	}
}

func formatSockaddr(sa syscall.Sockaddr) string {
	if in4, ok := sa.(*syscall.SockaddrInet4); ok {
		ip := in4.Addr
		return fmt.Sprintf("%d.%d.%d.%d:%d", ip[0], ip[1], ip[2], ip[3], in4.Port)
	}
	return "unknown"
}

// driveConnection runs one readiness event through its Connection's
// state machine, re-arming the poller for whichever direction it still
// needs, and tearing the connection down once the response has been
// fully written. This server serves exactly one request per connection
// (HTTP/1.0 "Connection: close" semantics) — there is no keep-alive
// reuse of the fd.
func (e *Engine) driveConnection(ev poller.Event) {
	c, ok := e.conns[ev.Fd]
	if !ok {
		return
	}

	if ev.Err || ev.Hup {
		e.closeConn(ev.Fd)
		return
	}

	if err := c.Drive(ev.Readable, ev.Writable); err != nil {
		e.closeConn(ev.Fd)
		return
	}

	if !c.Done() {
		wantWrite := c.State == conn.StateWritingResponseHeader || c.State == conn.StateWritingResponseBody
		_ = e.poll.Modify(ev.Fd, true, wantWrite)
		return
	}

	rec := c.LogRecord()
	e.stats.requestsHandled.Add(1)
	e.stats.bytesIn.Add(rec.BytesIn)
	e.stats.bytesOut.Add(rec.BytesOut)
	e.log.Request(rec)

	e.closeConn(ev.Fd)
}

func (e *Engine) closeConn(fd int) {
	c, ok := e.conns[fd]
	if !ok {
		return
	}
	_ = e.poll.Remove(fd)
	syscall.Close(fd)
	delete(e.conns, fd)
	e.stats.connectionsActive.Add(-1)
	c.Release()
	e.connPool.Put(c)
}

func (e *Engine) closeAll() {
	for fd := range e.conns {
		e.closeConn(fd)
	}
}
