package poller

import (
	"testing"

	"golang.org/x/sys/unix"
)

func TestRegisterAndWaitReadable(t *testing.T) {
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	if err != nil {
		t.Fatalf("Socketpair: %v", err)
	}
	defer unix.Close(fds[0])
	defer unix.Close(fds[1])

	p, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer p.Close()

	if err := p.Register(fds[0], true, false); err != nil {
		t.Fatalf("Register: %v", err)
	}

	if _, err := unix.Write(fds[1], []byte("ping")); err != nil {
		t.Fatalf("Write: %v", err)
	}

	events, err := p.Wait(1000)
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}

	found := false
	for _, e := range events {
		if e.Fd == fds[0] && e.Readable {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a readable event for fds[0], got %+v", events)
	}
}

func TestRemoveStopsDelivery(t *testing.T) {
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	if err != nil {
		t.Fatalf("Socketpair: %v", err)
	}
	defer unix.Close(fds[0])
	defer unix.Close(fds[1])

	p, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer p.Close()

	if err := p.Register(fds[0], true, false); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := p.Remove(fds[0]); err != nil {
		t.Fatalf("Remove: %v", err)
	}

	if _, err := unix.Write(fds[1], []byte("ping")); err != nil {
		t.Fatalf("Write: %v", err)
	}

	events, err := p.Wait(100)
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	for _, e := range events {
		if e.Fd == fds[0] {
			t.Errorf("expected no events for a removed fd, got %+v", e)
		}
	}
}
