package response

import (
	"strconv"

	"github.com/nkaush-go/quickloop/pkg/quickloop/proto"
)

// Canonical error-body constructors. Every error path the engine itself
// can produce (malformed request, no matching route, method not allowed,
// missing Content-Length, over-long URI, internal failure) renders the same
// {"message":"...","code":<n>} JSON shape so a client never has to
// special-case which layer of the server generated the error.

func jsonError(status proto.Status, message string) *Response {
	r := NewResponse(status)
	body := []byte(`{"message":"` + message + `","code":` + strconv.Itoa(int(status)) + `}`)
	r.Headers.Set("Content-Type", "application/json")
	r.SetBodyBytes(body)
	return r
}

// MalformedRequest builds the response for a request the parser could
// not make sense of at all (bad request line, header limits exceeded,
// duplicate/conflicting Content-Length, etc).
func MalformedRequest() *Response {
	return jsonError(proto.StatusBadRequest, "The client has issued a malformed or illegal request, and the server was unable to process it")
}

// BadRequest builds the response for a request the server understood
// well enough to parse but still could not act on.
func BadRequest() *Response {
	return jsonError(proto.StatusBadRequest, "The server was unable to process the request")
}

// NotFound builds the response for a path with no matching route.
func NotFound() *Response {
	return jsonError(proto.StatusNotFound, "The requested resource was not found")
}

// MethodNotAllowed builds the response for a path that exists in the
// route trie but has no handler registered for the request's method.
func MethodNotAllowed() *Response {
	return jsonError(proto.StatusMethodNotAllowed, "The request method is inappropriate for the requested resource")
}

// LengthRequired builds the response for a PUT/POST request with no
// Content-Length header at all — the server has no way to know where
// the body ends without one, since chunked transfer-encoding is an
// explicit non-goal.
func LengthRequired() *Response {
	return jsonError(proto.StatusLengthRequired, "The Content-Length header is required")
}

// URITooLong builds the response for a request-target at or beyond the
// server's maximum URL length.
func URITooLong() *Response {
	return jsonError(proto.StatusURITooLong, "The requested URI is too long")
}

// PayloadTooLarge builds a 413 response for a handler to return. The
// engine enforces no request body size limit and never sends it itself.
func PayloadTooLarge() *Response {
	return jsonError(proto.StatusPayloadTooLarge, "The request payload is larger than the server is willing to process")
}

// RequestTimeout builds a 408 response. The engine's idle sweep closes a
// stale connection without sending any response, so it does not use this.
func RequestTimeout() *Response {
	return jsonError(proto.StatusRequestTimeout, "The client did not produce a request within the time the server was prepared to wait")
}

// InternalServerError builds the response for a handler panic or other
// unexpected failure while generating a response.
func InternalServerError() *Response {
	return jsonError(proto.StatusInternalServerError, "The server encountered an unexpected condition that prevented it from fulfilling the request")
}

// NotModified builds a bodyless 304, used by the conditional-GET
// optimization in ServeFile (If-Modified-Since / file mtime).
func NotModified() *Response {
	return NewResponse(proto.StatusNotModified)
}
