//go:build linux

package socket

import (
	"golang.org/x/sys/unix"
	"syscall"
)

// ApplyPlatform sets the Linux-only options this server wants on every
// accepted connection: TCP_QUICKACK to avoid the 40ms delayed-ACK
// penalty on the first request of a short-lived connection.
func ApplyPlatform(fd int) {
	_ = unix.SetsockoptInt(fd, syscall.IPPROTO_TCP, unix.TCP_QUICKACK, 1)
}

// GrowSendBuffer increases SO_SNDBUF on fd to want, capped at
// SendBufferCeiling, never shrinking it. The conn package calls this
// before each sendfile chunk of a file-backed response body. Returns the
// buffer size actually in effect afterward.
func GrowSendBuffer(fd int, want int) int {
	if want > SendBufferCeiling {
		want = SendBufferCeiling
	}
	current, err := syscall.GetsockoptInt(fd, syscall.SOL_SOCKET, syscall.SO_SNDBUF)
	if err == nil && current >= want {
		return current
	}
	_ = syscall.SetsockoptInt(fd, syscall.SOL_SOCKET, syscall.SO_SNDBUF, want)
	after, err := syscall.GetsockoptInt(fd, syscall.SOL_SOCKET, syscall.SO_SNDBUF)
	if err != nil {
		return want
	}
	return after
}

// QueuedSendBytes returns the number of bytes still sitting in fd's send
// buffer, unacknowledged by the peer, via the Linux-only SIOCOUTQ ioctl
// (same request number as TIOCOUTQ). Nothing in the write path calls it;
// writes are paced by EAGAIN and writable-readiness events alone.
func QueuedSendBytes(fd int) (int, error) {
	return unix.IoctlGetInt(fd, unix.TIOCOUTQ)
}
