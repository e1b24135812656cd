package conn

import "errors"

// Sentinel errors the state machine can produce, grouped the way
// http11/errors.go groups its parser/connection taxonomy: the ones a
// peer can trigger (malformed input) versus the ones that mean the
// server itself is out of room or the kernel op failed transiently.
var (
	errBufferFull          = errors.New("conn: read buffer exhausted before request line completed")
	errRequestLineTooLong  = errors.New("conn: request line exceeds MaxRequestLineSize")
	errHeadersTooLong      = errors.New("conn: header block exceeds MaxHeadersSize")
	errMalformedRequestLine = errors.New("conn: malformed request line")
	errMalformedHeader     = errors.New("conn: malformed header field")
	errDuplicateContentLength = errors.New("conn: duplicate Content-Length header")
	errBadContentLength    = errors.New("conn: unparsable Content-Length header")
	errURITooLong          = errors.New("conn: request-target exceeds MaxURLLength")
)
