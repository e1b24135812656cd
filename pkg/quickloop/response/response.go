// Package response builds outbound HTTP/1.0 responses: status line,
// headers, and a body that is either buffered in memory, streamed from
// an open file (with sendfile-capable streaming handled by the conn
// package), or empty.
package response

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/nkaush-go/quickloop/pkg/quickloop/httpdate"
	"github.com/nkaush-go/quickloop/pkg/quickloop/proto"
)

func timeNowAdd(seconds int) time.Time {
	return time.Now().Add(time.Duration(seconds) * time.Second)
}

// BodyKind tags which source backs a Response body.
type BodyKind uint8

const (
	BodyEmpty BodyKind = iota
	BodyBytes
	BodyFile
)

// Header is a small ordered header list, mirroring request.Header but
// kept separate so the two packages don't need to import each other —
// a Response never needs to iterate a Request's headers and vice versa.
type Header struct {
	names  []string
	values []string
}

// Set replaces (or adds) the value for name. Name comparison is an exact,
// case-sensitive match — spec §4.3 calls for "Set operations overwrite
// any previous value for the same key (case-sensitive)" — so a handler
// that sets "content-type" and later "Content-Type" gets two fields, not
// one overwrite.
func (h *Header) Set(name, value string) {
	for i, n := range h.names {
		if n == name {
			h.values[i] = value
			return
		}
	}
	h.names = append(h.names, name)
	h.values = append(h.values, value)
}

// Get returns the value for name, via an exact case-sensitive match.
func (h *Header) Get(name string) (string, bool) {
	for i, n := range h.names {
		if n == name {
			return h.values[i], true
		}
	}
	return "", false
}

// Has reports whether name has been set.
func (h *Header) Has(name string) bool {
	_, ok := h.Get(name)
	return ok
}

// VisitAll calls fn for every header, in the order it was first Set.
func (h *Header) VisitAll(fn func(name, value string)) {
	for i, n := range h.names {
		fn(n, h.values[i])
	}
}

// Reset clears the header list for reuse.
func (h *Header) Reset() {
	h.names = h.names[:0]
	h.values = h.values[:0]
}

// Response is a single outbound HTTP/1.0 response under construction by
// a handler (or by the engine's own canonical error paths). Exactly one
// of Bytes/File is meaningful, selected by BodyKind.
type Response struct {
	Status  proto.Status
	Headers Header

	Kind  BodyKind
	Bytes []byte
	file  *os.File
	size  int64 // byte count for the File kind; Content-Length uses this
}

// NewResponse returns a Response with the given status and no body.
func NewResponse(status proto.Status) *Response {
	return &Response{Status: status}
}

// NoContent returns the canonical empty 204 response. A handler
// returning nil is treated by the conn package as shorthand for this —
// the handler ABI's explicit "no content" signal.
func NoContent() *Response {
	return NewResponse(proto.StatusNoContent)
}

// SetBodyBytes attaches an in-memory body and sets Content-Length.
// It does not set Content-Type; callers choose that explicitly via
// Headers.Set so the engine never guesses at a handler's intent.
func (r *Response) SetBodyBytes(body []byte) {
	r.Kind = BodyBytes
	r.Bytes = body
	r.Headers.Set("Content-Length", strconv.Itoa(len(body)))
}

// SetBodyFile attaches a file-backed body. It always sets Content-Length
// and Last-Modified (from the file's mtime), and sets Expires and
// Cache-Control only when cacheSeconds > 0. ServeFile with
// DisableFileAutoCache attaches the file without calling this, so that
// response carries Content-Length only.
func (r *Response) SetBodyFile(f *os.File, info os.FileInfo, cacheSeconds int) {
	r.Kind = BodyFile
	r.file = f
	r.size = info.Size()
	r.Headers.Set("Content-Length", strconv.FormatInt(r.size, 10))
	r.Headers.Set("Last-Modified", httpdate.Format(info.ModTime()))
	if cacheSeconds > 0 {
		r.Headers.Set("Expires", httpdate.Format(timeNowAdd(cacheSeconds)))
		r.Headers.Set("Cache-Control", fmt.Sprintf("max-age=%d", cacheSeconds))
	}
}

// File returns the backing *os.File for a BodyFile response, or nil.
func (r *Response) File() *os.File {
	if r.Kind != BodyFile {
		return nil
	}
	return r.file
}

// Close releases the response's file handle, if it has one. Per spec
// §3's Response invariant ("its destruction closes the file handle if
// body source is File"), the conn package calls this once a response
// has been fully written (or abandoned because the connection was torn
// down early) — never left for the garbage collector to find.
func (r *Response) Close() error {
	if r.Kind != BodyFile || r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}

// ContentLength returns the declared body length for either body kind.
func (r *Response) ContentLength() int64 {
	switch r.Kind {
	case BodyBytes:
		return int64(len(r.Bytes))
	case BodyFile:
		return r.size
	default:
		return 0
	}
}

// WriteHeaderLine renders the status line for this response.
func (r *Response) WriteHeaderLine() []byte {
	return proto.StatusLine(r.Status)
}
