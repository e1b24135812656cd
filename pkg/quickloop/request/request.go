package request

import (
	"errors"
	"strconv"
	"strings"

	"github.com/nkaush-go/quickloop/pkg/quickloop/proto"
)

// ErrMalformedPercentEncoding is returned by PercentDecode when a "%"
// escape is not followed by two hex digits.
var ErrMalformedPercentEncoding = errors.New("request: malformed percent-encoding")

// Request is a single parsed HTTP/1.0 request. One Request is reused
// across the lifetime of a Connection (Reset between requests) rather
// than allocated per request, mirroring the pooled-Request convention
// the engine uses for every other per-connection scratch object.
type Request struct {
	Method     proto.Method
	RawMethod  string // preserved even when Method == proto.MethodUnknown
	Path       string // percent-decoded, query string stripped
	RawTarget  string // the request-target exactly as it appeared on the wire
	Query      map[string]string
	// Protocol is the request line's third token verbatim (e.g.
	// "HTTP/1.0"), or "" for a bare HTTP/0.9-style "METHOD target" line.
	// Spec §6: "the protocol string is not validated" — it is only ever
	// echoed back into the access log, never grammar-checked.
	Protocol string
	Headers  Header
	Body       Body

	RemoteAddr string
}

// Reset clears r so it can be reused for the next request on the same
// connection (or returned to a pool for another connection entirely).
func (r *Request) Reset() {
	r.Method = proto.MethodUnknown
	r.RawMethod = ""
	r.Path = ""
	r.RawTarget = ""
	r.Query = nil
	r.Protocol = ""
	r.Headers.Reset()
	r.Body.Close()
	r.Body = Body{}
}

// ContentLength returns the parsed Content-Length header value, or -1 if
// absent or unparsable. Connection parsing rejects a malformed or
// duplicated Content-Length before a Request is ever handed to a handler
// (see conn package), so by the time a handler sees this it is trustworthy.
func (r *Request) ContentLength() int64 {
	v, ok := r.Headers.Get("Content-Length")
	if !ok {
		return -1
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n < 0 {
		return -1
	}
	return n
}

// Host returns the Host header value, or "" if absent.
func (r *Request) Host() string {
	v, _ := r.Headers.Get("Host")
	return v
}

// PercentDecode decodes "%HH" escapes and "+" (only within a query
// string — callers decoding a path component should not pre-translate
// "+") per RFC 3986 §2.1. It rejects incomplete or non-hex escapes
// rather than silently dropping them, since an HTTP/1.0 server forwarding
// a mangled path to a handler is a worse failure mode than a 400.
func PercentDecode(s string, plusAsSpace bool) (string, error) {
	needsWork := strings.IndexByte(s, '%') >= 0 || (plusAsSpace && strings.IndexByte(s, '+') >= 0)
	if !needsWork {
		return s, nil
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c == '%':
			if i+2 >= len(s) {
				return "", ErrMalformedPercentEncoding
			}
			hi, ok1 := hexVal(s[i+1])
			lo, ok2 := hexVal(s[i+2])
			if !ok1 || !ok2 {
				return "", ErrMalformedPercentEncoding
			}
			b.WriteByte(byte(hi<<4 | lo))
			i += 2
		case c == '+' && plusAsSpace:
			b.WriteByte(' ')
		default:
			b.WriteByte(c)
		}
	}
	return b.String(), nil
}

func hexVal(c byte) (int, bool) {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0'), true
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10, true
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10, true
	default:
		return 0, false
	}
}

// SplitTarget splits a request-target into its path and raw query string
// (without the leading '?'); query is "" if there was none.
func SplitTarget(target string) (path, query string) {
	if i := strings.IndexByte(target, '?'); i >= 0 {
		return target[:i], target[i+1:]
	}
	return target, ""
}
