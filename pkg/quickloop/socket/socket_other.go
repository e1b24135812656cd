//go:build !linux

package socket

// ApplyPlatform is a no-op outside Linux; TCP_QUICKACK has no portable
// equivalent and this server's primary deployment target is Linux.
func ApplyPlatform(fd int) {}

// GrowSendBuffer is a best-effort no-op outside Linux: it reports the
// buffer unchanged rather than guessing at a platform-specific sockopt.
func GrowSendBuffer(fd int, want int) int { return want }

// QueuedSendBytes always reports zero outside Linux — callers treat
// that as "no backlog visibility, pace by readiness events alone."
func QueuedSendBytes(fd int) (int, error) { return 0, nil }
