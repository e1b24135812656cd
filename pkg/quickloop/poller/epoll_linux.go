//go:build linux

package poller

import "golang.org/x/sys/unix"

// epollPoller is a level-triggered epoll(7) wrapper. Level-triggered
// (rather than edge-triggered) matches this server's drive loop: a
// connection that only partially drains its read buffer in one Drive
// call simply gets the same readable event again next Wait, no manual
// re-arm bookkeeping required.
type epollPoller struct {
	fd int
}

// New returns the Linux epoll-backed Poller.
func New() (Poller, error) {
	fd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, err
	}
	return &epollPoller{fd: fd}, nil
}

func interestMask(readable, writable bool) uint32 {
	var ev uint32
	if readable {
		ev |= unix.EPOLLIN
	}
	if writable {
		ev |= unix.EPOLLOUT
	}
	return ev
}

func (p *epollPoller) Register(fd int, readable, writable bool) error {
	event := unix.EpollEvent{Events: interestMask(readable, writable), Fd: int32(fd)}
	return unix.EpollCtl(p.fd, unix.EPOLL_CTL_ADD, fd, &event)
}

func (p *epollPoller) Modify(fd int, readable, writable bool) error {
	event := unix.EpollEvent{Events: interestMask(readable, writable), Fd: int32(fd)}
	return unix.EpollCtl(p.fd, unix.EPOLL_CTL_MOD, fd, &event)
}

func (p *epollPoller) Remove(fd int) error {
	// Linux ignores the event argument for EPOLL_CTL_DEL but older kernels
	// (pre-2.6.9) require a non-nil pointer; pass one for safety.
	return unix.EpollCtl(p.fd, unix.EPOLL_CTL_DEL, fd, &unix.EpollEvent{})
}

func (p *epollPoller) Wait(timeoutMillis int) ([]Event, error) {
	raw := make([]unix.EpollEvent, 256)
	for {
		n, err := unix.EpollWait(p.fd, raw, timeoutMillis)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return nil, err
		}
		events := make([]Event, 0, n)
		for i := 0; i < n; i++ {
			e := raw[i]
			events = append(events, Event{
				Fd:       int(e.Fd),
				Readable: e.Events&unix.EPOLLIN != 0,
				Writable: e.Events&unix.EPOLLOUT != 0,
				Err:      e.Events&unix.EPOLLERR != 0,
				Hup:      e.Events&(unix.EPOLLHUP|unix.EPOLLRDHUP) != 0,
			})
		}
		return events, nil
	}
}

func (p *epollPoller) Close() error {
	return unix.Close(p.fd)
}
