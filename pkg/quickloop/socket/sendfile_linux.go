//go:build linux

package socket

import "syscall"

// SendFile streams count bytes of srcFd starting at offset to dstFd using
// the sendfile(2) syscall, retrying on EINTR and returning on EAGAIN (the
// event loop re-arms on the next writable-readiness event rather than
// busy-looping here), and chunking at 1GB because sendfile's
// count argument is bounded. written may be > 0 even when err != nil —
// callers resume from offset+written on the next writable event.
func SendFile(dstFd, srcFd int, offset int64, count int64) (written int64, err error) {
	curOffset := offset
	remaining := count

	for remaining > 0 {
		chunk := remaining
		if chunk > 1<<30 {
			chunk = 1 << 30
		}

		n, sErr := syscall.Sendfile(dstFd, srcFd, &curOffset, int(chunk))
		if n > 0 {
			written += int64(n)
			remaining -= int64(n)
		}
		if sErr != nil {
			if sErr == syscall.EAGAIN {
				// Socket send buffer is full; the caller re-arms on the
				// next writable event and resumes from offset+written.
				return written, sErr
			}
			if sErr == syscall.EINTR {
				continue
			}
			return written, sErr
		}
		if n == 0 {
			break
		}
	}
	return written, nil
}
