package conn

import (
	"strconv"
	"syscall"

	"github.com/nkaush-go/quickloop/pkg/quickloop/bufpool"
	"github.com/nkaush-go/quickloop/pkg/quickloop/httpdate"
	"github.com/nkaush-go/quickloop/pkg/quickloop/response"
	"github.com/nkaush-go/quickloop/pkg/quickloop/socket"
)

// prepareWrite serializes the response's status line and headers into
// headerBuf and transitions into the writing states. It does not write
// to the socket itself — the next writable readiness event (which the
// caller must now register interest in) drives the actual send.
func (c *Connection) prepareWrite() {
	r := c.resp

	if !r.Headers.Has("Date") {
		r.Headers.Set("Date", httpdate.Now())
	}
	if !r.Headers.Has("Server") {
		r.Headers.Set("Server", "quickloop")
	}
	// HTTP/1.1 keep-alive and pipelining are explicit non-goals of this
	// server (spec §1); every response closes the connection, so this
	// header is unconditional, per spec §4.3/§6.
	r.Headers.Set("Connection", "close")

	var buf []byte
	if c.pool != nil {
		buf = c.pool.Get(bufpool.SizeSmall)[:0]
	} else {
		buf = make([]byte, 0, bufpool.SizeSmall)
	}
	buf = append(buf, r.WriteHeaderLine()...)
	r.Headers.VisitAll(func(name, value string) {
		buf = append(buf, name...)
		buf = append(buf, ':', ' ')
		buf = append(buf, value...)
		buf = append(buf, '\r', '\n')
	})
	buf = append(buf, '\r', '\n')

	c.headerBuf = buf
	c.headerOff = 0
	c.bodyOff = 0
	c.State = StateWritingResponseHeader
}

// driveWrite performs one non-blocking write step: finish the header
// buffer, then stream the body (bytes or sendfile), advancing through
// States until the whole response has been written.
func (c *Connection) driveWrite() error {
	if c.State == StateWritingResponseHeader {
		if err := c.writeHeaderChunk(); err != nil {
			return err
		}
		if c.headerOff >= len(c.headerBuf) {
			if methodSuppressesBody(c.req.RawMethod) || c.resp.Kind == response.BodyEmpty {
				c.State = StateDestroyed
				return nil
			}
			c.State = StateWritingResponseBody
		} else {
			return nil
		}
	}

	if c.State == StateWritingResponseBody {
		done, err := c.writeBodyChunk()
		if err != nil {
			return err
		}
		if done {
			c.State = StateDestroyed
		}
	}
	return nil
}

func methodSuppressesBody(rawMethod string) bool {
	return rawMethod == "HEAD"
}

func (c *Connection) writeHeaderChunk() error {
	for c.headerOff < len(c.headerBuf) {
		n, err := syscall.Write(c.Fd, c.headerBuf[c.headerOff:])
		if err != nil {
			if err == syscall.EAGAIN || err == syscall.EWOULDBLOCK {
				return nil
			}
			return err
		}
		c.headerOff += n
	}
	return nil
}

// writeBodyChunk writes as much of the response body as the socket will
// currently accept without blocking, returning done=true once the full
// body has been written.
func (c *Connection) writeBodyChunk() (done bool, err error) {
	total := c.resp.ContentLength()

	switch c.resp.Kind {
	case response.BodyBytes:
		for c.bodyOff < total {
			n, werr := syscall.Write(c.Fd, c.resp.Bytes[c.bodyOff:])
			if werr != nil {
				if werr == syscall.EAGAIN || werr == syscall.EWOULDBLOCK {
					return false, nil
				}
				return false, werr
			}
			c.bodyOff += int64(n)
		}
		return true, nil

	case response.BodyFile:
		f := c.resp.File()
		srcFd := int(f.Fd())
		for c.bodyOff < total {
			want := int(total - c.bodyOff)
			if want > 1<<20 {
				want = 1 << 20
			}
			_ = socket.GrowSendBuffer(c.Fd, want)
			n, serr := socket.SendFile(c.Fd, srcFd, c.bodyOff, int64(want))
			c.bodyOff += n
			if serr != nil {
				if serr == syscall.EAGAIN {
					return false, nil
				}
				return false, serr
			}
			if n == 0 {
				return false, nil
			}
		}
		return true, nil

	default:
		return true, nil
	}
}

// BytesWritten returns the total bytes written to the socket so far for
// the current response, used by the access log.
func (c *Connection) BytesWritten() int64 {
	return int64(c.headerOff) + c.bodyOff
}

// contentLengthHeader renders the request's Content-Length for logging when
// present, matching the access-log field spec §4.7 describes.
func (c *Connection) contentLengthHeader() string {
	if c.contentLength < 0 {
		return "0"
	}
	return strconv.FormatInt(c.contentLength, 10)
}
