package conn

import (
	"bytes"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/nkaush-go/quickloop/pkg/quickloop/proto"
	"github.com/nkaush-go/quickloop/pkg/quickloop/request"
	"github.com/nkaush-go/quickloop/pkg/quickloop/response"
)

// Drive advances the connection's state machine by at most one readiness
// event's worth of work. readable/writable report which way(s) the fd
// is currently ready, per the last poller event. It returns an error
// only for conditions that mean the connection must be torn down
// immediately (I/O failure); protocol-level problems instead set the
// connection up to write a canonical error response and return nil.
func (c *Connection) Drive(readable, writable bool) error {
	if readable && c.State < StateRequestReceived {
		if err := c.driveRead(); err != nil {
			return err
		}
	}
	if c.State == StateRequestReceived {
		c.dispatch()
	}
	if writable && (c.State == StateWritingResponseHeader || c.State == StateWritingResponseBody) {
		if err := c.driveWrite(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Connection) driveRead() error {
	if c.State < StateHeadersParsed {
		return c.readHeaders()
	}
	return c.readBody()
}

// readHeaders reads into buf until it finds the blank-line terminator,
// then parses the request line and header block in one pass.
func (c *Connection) readHeaders() error {
	n, wouldBlock, err := c.fillBuffer()
	if err != nil {
		if err == errBufferFull {
			c.failMalformed()
			return nil
		}
		return err
	}
	if wouldBlock || n == 0 {
		return nil
	}

	idx := bytes.Index(c.buf[:c.bufEnd], []byte("\r\n\r\n"))
	if idx < 0 {
		if c.bufEnd >= MaxRequestLineSize+MaxHeadersSize {
			c.failMalformed()
		}
		return nil
	}

	headerBlock := c.buf[:idx]
	lineEnd := bytes.Index(headerBlock, []byte("\r\n"))
	if lineEnd < 0 {
		lineEnd = len(headerBlock)
	}
	if lineEnd > MaxRequestLineSize {
		c.failMalformed()
		return nil
	}

	if err := c.parseRequestLine(headerBlock[:lineEnd]); err != nil {
		if err == errURITooLong {
			c.respondWith(response.URITooLong())
			return nil
		}
		c.failMalformed()
		return nil
	}
	c.State = StateRequestLineParsed

	if lineEnd+2 <= len(headerBlock) {
		if len(headerBlock)-(lineEnd+2) > MaxHeadersSize {
			c.failMalformed()
			return nil
		}
		if err := c.parseHeaders(headerBlock[lineEnd+2:]); err != nil {
			c.failMalformed()
			return nil
		}
	}
	c.State = StateHeadersParsed

	cl, hasCL := c.req.Headers.Get("Content-Length")
	if hasCL {
		if _, err := strconv.ParseInt(cl, 10, 64); err != nil {
			c.failMalformed()
			return nil
		}
	}
	c.contentLength = c.req.ContentLength()

	if !hasCL && requiresContentLength(c.req.Method) {
		c.respondWith(response.LengthRequired())
		return nil
	}

	// Move any bytes already read past the header terminator into the
	// body; they belong to the next section of the stream, not headers.
	leftover := c.buf[idx+4 : c.bufEnd]
	c.bufPtr = 0
	c.bufEnd = 0

	if c.contentLength <= 0 {
		c.State = StateRequestReceived
		return nil
	}

	if err := c.ingestBody(leftover); err != nil {
		return err
	}
	if c.bodyRead >= c.contentLength {
		c.finalizeBody()
		c.State = StateRequestReceived
	}
	return nil
}

func (c *Connection) readBody() error {
	n, wouldBlock, err := c.fillBuffer()
	if err != nil {
		return err
	}
	if wouldBlock || n == 0 {
		return nil
	}
	chunk := c.buf[c.bufPtr:c.bufEnd]
	if err := c.ingestBody(chunk); err != nil {
		return err
	}
	c.bufPtr = 0
	c.bufEnd = 0
	if c.bodyRead >= c.contentLength {
		c.finalizeBody()
		c.State = StateRequestReceived
	}
	return nil
}

// ingestBody appends chunk to whichever sink the body is currently
// using, spilling from memory to a temp file the moment the running
// total crosses request.TempFileThreshold.
func (c *Connection) ingestBody(chunk []byte) error {
	if len(chunk) == 0 {
		return nil
	}

	remaining := c.contentLength - c.bodyRead
	if int64(len(chunk)) > remaining {
		chunk = chunk[:remaining]
	}

	if c.bodyFile == nil && c.bodyRead+int64(len(chunk)) > request.TempFileThreshold {
		f, err := os.CreateTemp("", "quickloop-body-*")
		if err != nil {
			return err
		}
		if len(c.bodyBuf) > 0 {
			if _, err := f.Write(c.bodyBuf); err != nil {
				f.Close()
				os.Remove(f.Name())
				return err
			}
		}
		c.bodyFile = f
		c.bodyBuf = nil
	}

	if c.bodyFile != nil {
		if _, err := c.bodyFile.Write(chunk); err != nil {
			return err
		}
	} else {
		c.bodyBuf = append(c.bodyBuf, chunk...)
	}
	c.bodyRead += int64(len(chunk))
	return nil
}

func (c *Connection) finalizeBody() {
	if c.bodyFile != nil {
		c.req.Body = *request.NewFileBody(c.bodyFile, c.bodyRead)
		c.bodyFile = nil // ownership moved into req.Body
	} else {
		c.req.Body = *request.NewStringBody(c.bodyBuf)
		c.bodyBuf = nil
	}
}

func (c *Connection) failMalformed() {
	c.malformed = true
	c.State = StateRequestReceived
}

// respondWith short-circuits straight to WRITING_RESPONSE_HEADER with
// resp, bypassing router dispatch entirely — used for the protocol
// errors spec §4.5 says to produce before a route is ever consulted
// (missing Content-Length, an oversized request-target).
func (c *Connection) respondWith(resp *response.Response) {
	now := time.Now()
	c.resp = resp
	c.requestDoneAt = now
	c.handledAt = now
	c.prepareWrite()
}

// requiresContentLength reports whether m is a method whose body, if
// any, this server insists on framing with Content-Length (chunked
// transfer-encoding is an explicit non-goal, so there is no other way
// to know where the body ends).
func requiresContentLength(m proto.Method) bool {
	return m == proto.MethodPOST || m == proto.MethodPUT
}

// parseRequestLine parses a request line of the form
// "METHOD SP request-target" or "METHOD SP request-target SP protocol".
// Per spec §6, a bare HTTP/0.9-style two-token line (no protocol at all)
// is accepted, and whatever protocol token follows the target — if any —
// is stored as-is and never grammar-checked.
func (c *Connection) parseRequestLine(line []byte) error {
	parts := bytes.SplitN(line, []byte(" "), 3)
	if len(parts) < 2 {
		return errMalformedRequestLine
	}

	c.req.RawMethod = string(parts[0])
	c.req.Method = proto.ParseMethod(parts[0])
	c.State = StateMethodParsed

	target := string(parts[1])
	if target == "" {
		return errMalformedRequestLine
	}
	// Bound-check the target length before doing anything else with it
	// (deliberately not, e.g., after percent-decoding it) — the source
	// this is adapted from dereferences the space position before this
	// check, which this implementation avoids by rejecting on length
	// first, per spec §9's explicit warning.
	if len(target) >= MaxURLLength {
		return errURITooLong
	}
	rawPath, rawQuery := request.SplitTarget(target)
	decodedPath, err := request.PercentDecode(rawPath, false)
	if err != nil {
		return errMalformedRequestLine
	}
	c.req.RawTarget = target
	c.req.Path = decodedPath
	c.req.Query = request.ParseQuery(rawQuery)
	c.State = StateURLParsed

	if len(parts) == 3 {
		c.req.Protocol = string(parts[2])
	}
	return nil
}

// parseHeaders parses a CRLF-separated header block (no leading or
// trailing blank line — the caller already located the boundaries).
func (c *Connection) parseHeaders(block []byte) error {
	if len(block) == 0 {
		return nil
	}
	lines := bytes.Split(block, []byte("\r\n"))
	seenContentLength := false
	seenHost := false

	for _, line := range lines {
		if len(line) == 0 {
			continue
		}
		colon := bytes.IndexByte(line, ':')
		if colon <= 0 {
			return errMalformedHeader
		}
		name := string(bytes.TrimSpace(line[:colon]))
		if bytes.IndexByte(line[:colon], ' ') >= 0 || bytes.IndexByte(line[:colon], '\t') >= 0 {
			// RFC 7230 §3.2.4: no whitespace is permitted between the
			// header field-name and colon — a request-smuggling vector.
			return errMalformedHeader
		}
		value := string(bytes.TrimSpace(line[colon+1:]))
		if name == "" {
			return errMalformedHeader
		}

		if strings.EqualFold(name, "Content-Length") {
			if seenContentLength {
				return errDuplicateContentLength
			}
			seenContentLength = true
		}
		if strings.EqualFold(name, "Host") {
			if seenHost {
				return errMalformedHeader
			}
			seenHost = true
		}

		c.req.Headers.Add(name, value)
	}

	if _, hasTE := c.req.Headers.Get("Transfer-Encoding"); hasTE && seenContentLength {
		// Conflicting framing headers — classic request smuggling setup.
		return errMalformedHeader
	}

	return nil
}
