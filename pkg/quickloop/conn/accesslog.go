package conn

import "time"

// LogRecord snapshots everything spec §4.7's access log line needs,
// once a connection has finished writing. Timings are relative: receive
// covers accept-to-request-received (headers and any body), handle covers the
// handler invocation, send covers begin-send-to-now — the engine calls
// this immediately once Done() reports the response fully written, so
// "now" here is effectively the moment the last byte went out.
func (c *Connection) LogRecord() AccessLogRecord {
	status := 0
	if c.resp != nil {
		status = int(c.resp.Status)
	}
	return AccessLogRecord{
		RemoteAddr:  c.RemoteAddr,
		Method:      c.req.RawMethod,
		Path:        c.req.Path,
		Status:      status,
		BytesIn:     c.bodyRead,
		BytesOut:    c.BytesWritten(),
		ReceiveTime: c.requestDoneAt.Sub(c.connectedAt),
		HandleTime:  c.handledAt.Sub(c.requestDoneAt),
		SendTime:    time.Since(c.handledAt),
	}
}
