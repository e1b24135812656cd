package conn

import (
	"time"

	"github.com/nkaush-go/quickloop/pkg/quickloop/response"
	"github.com/nkaush-go/quickloop/pkg/quickloop/route"
)

// dispatch resolves the parsed request against the router and prepares
// the response for writing. It never blocks and never does I/O itself —
// by the time this runs, the whole request (headers and any body) is
// already in memory or on disk.
func (c *Connection) dispatch() {
	start := time.Now()

	var resp *response.Response
	switch {
	case c.malformed:
		resp = response.MalformedRequest()
	case !c.req.Method.Valid():
		resp = response.MalformedRequest()
	default:
		handler, found := c.router.Lookup(c.req.Method, c.req.Path)
		switch {
		case !found:
			resp = response.NotFound()
		case handler == nil:
			resp = response.MethodNotAllowed()
		default:
			resp = c.callHandler(handler)
		}
	}

	c.resp = resp
	c.handledAt = time.Now()
	c.requestDoneAt = start
	c.prepareWrite()
}

// callHandler invokes h, converting a panic into a 500 response rather
// than letting one bad handler take the whole single-threaded event
// loop down with it. A nil return is the handler ABI's reserved "no
// content" signal (spec §6), not a failure — it becomes a 204, not a 500.
func (c *Connection) callHandler(h route.Handler) (resp *response.Response) {
	defer func() {
		if r := recover(); r != nil {
			resp = response.InternalServerError()
		}
	}()
	resp = h(&c.req)
	if resp == nil {
		resp = response.NoContent()
	}
	return resp
}
