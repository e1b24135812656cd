// Package socket applies the low-level socket tuning and zero-copy
// streaming this server relies on, operating directly on raw file
// descriptors rather than net.Conn — the event-loop driver owns its
// connections as bare fds (accepted via syscall.Accept4, not
// net.Listener.Accept), so there is no net.Conn to pull a SyscallConn
// from. Adapted from shockwave's socket.Config/Apply, generalized from
// net.Conn/net.Listener to a plain int fd.
package socket

import "syscall"

// Config mirrors the tuning knobs the original per-net.Conn tuner
// exposed; DefaultConfig is the set this server applies to every
// accepted connection.
type Config struct {
	NoDelay    bool
	RecvBuffer int
	SendBuffer int
	KeepAlive  bool
}

// DefaultConfig returns the tuning applied to every accepted connection.
func DefaultConfig() *Config {
	return &Config{
		NoDelay:    true,
		RecvBuffer: 256 * 1024,
		SendBuffer: 256 * 1024,
		KeepAlive:  true,
	}
}

// SendBufferCeiling is the upper bound the adaptive SO_SNDBUF grower in
// GrowSendBuffer will push the buffer to, regardless of how large a size
// the caller asks for — past this point a slow client is better
// served by read/write readiness pacing than by an ever-larger kernel
// buffer.
const SendBufferCeiling = 256 * 1024

// Apply sets the cross-platform socket options in cfg on fd. The
// Linux-only TCP_QUICKACK option is applied by ApplyPlatform, called
// separately; on other platforms ApplyPlatform is a no-op.
func Apply(fd int, cfg *Config) error {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.NoDelay {
		if err := syscall.SetsockoptInt(fd, syscall.IPPROTO_TCP, syscall.TCP_NODELAY, 1); err != nil {
			return err
		}
	}
	if cfg.RecvBuffer > 0 {
		_ = syscall.SetsockoptInt(fd, syscall.SOL_SOCKET, syscall.SO_RCVBUF, cfg.RecvBuffer)
	}
	if cfg.SendBuffer > 0 {
		_ = syscall.SetsockoptInt(fd, syscall.SOL_SOCKET, syscall.SO_SNDBUF, cfg.SendBuffer)
	}
	if cfg.KeepAlive {
		_ = syscall.SetsockoptInt(fd, syscall.SOL_SOCKET, syscall.SO_KEEPALIVE, 1)
	}
	return nil
}

// SetNonblock puts fd in non-blocking mode, required before handing it
// to the readiness poller.
func SetNonblock(fd int) error {
	return syscall.SetNonblock(fd, true)
}
