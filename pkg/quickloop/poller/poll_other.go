//go:build !linux

package poller

import (
	"sync"

	"golang.org/x/sys/unix"
)

// pollPoller is a poll(2)-based fallback for non-Linux Unix targets.
// It re-walks its whole interest set on every Wait, which is the classic
// O(n) poll(2) tradeoff versus epoll — acceptable here because Linux is
// this server's primary deployment target and this path exists only so
// the poller package builds and its tests run on a developer's non-Linux
// workstation (the engine's event loop itself is Linux-only).
type pollPoller struct {
	mu       sync.Mutex
	interest map[int]unix.PollFd
}

// New returns the poll(2)-backed Poller used on non-Linux builds.
func New() (Poller, error) {
	return &pollPoller{interest: make(map[int]unix.PollFd)}, nil
}

func (p *pollPoller) Register(fd int, readable, writable bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.interest[fd] = unix.PollFd{Fd: int32(fd), Events: pollMask(readable, writable)}
	return nil
}

func (p *pollPoller) Modify(fd int, readable, writable bool) error {
	return p.Register(fd, readable, writable)
}

func (p *pollPoller) Remove(fd int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.interest, fd)
	return nil
}

func pollMask(readable, writable bool) int16 {
	var m int16
	if readable {
		m |= unix.POLLIN
	}
	if writable {
		m |= unix.POLLOUT
	}
	return m
}

func (p *pollPoller) Wait(timeoutMillis int) ([]Event, error) {
	p.mu.Lock()
	fds := make([]unix.PollFd, 0, len(p.interest))
	for _, pfd := range p.interest {
		fds = append(fds, pfd)
	}
	p.mu.Unlock()

	if len(fds) == 0 {
		return nil, nil
	}

	n, err := unix.Poll(fds, timeoutMillis)
	if err == unix.EINTR {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}

	events := make([]Event, 0, n)
	for _, pfd := range fds {
		if pfd.Revents == 0 {
			continue
		}
		events = append(events, Event{
			Fd:       int(pfd.Fd),
			Readable: pfd.Revents&unix.POLLIN != 0,
			Writable: pfd.Revents&unix.POLLOUT != 0,
			Err:      pfd.Revents&unix.POLLERR != 0,
			Hup:      pfd.Revents&unix.POLLHUP != 0,
		})
	}
	return events, nil
}

func (p *pollPoller) Close() error { return nil }
