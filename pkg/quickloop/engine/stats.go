package engine

import (
	"sync/atomic"
	"time"
)

// Stats are the engine's running counters, all updated with atomics
// since the event loop itself is single-threaded but Stats is read from
// whatever goroutine serves /metrics or a signal handler. Mirrors
// server.Stats's Duration()/RequestsPerSecond() convention.
type Stats struct {
	startedAt          time.Time
	connectionsAccepted atomic.Int64
	connectionsActive   atomic.Int64
	requestsHandled     atomic.Int64
	bytesIn             atomic.Int64
	bytesOut            atomic.Int64
	malformedRequests   atomic.Int64
}

// NewStats returns a zeroed Stats with its start time set to now.
func NewStats() *Stats {
	return &Stats{startedAt: time.Now()}
}

// Duration returns how long the engine has been running.
func (s *Stats) Duration() time.Duration {
	return time.Since(s.startedAt)
}

// RequestsPerSecond returns the lifetime average request rate.
func (s *Stats) RequestsPerSecond() float64 {
	secs := s.Duration().Seconds()
	if secs <= 0 {
		return 0
	}
	return float64(s.requestsHandled.Load()) / secs
}

// ConnectionsPerSecond returns the lifetime average accept rate.
func (s *Stats) ConnectionsPerSecond() float64 {
	secs := s.Duration().Seconds()
	if secs <= 0 {
		return 0
	}
	return float64(s.connectionsAccepted.Load()) / secs
}

// Snapshot is a point-in-time copy of the counters, safe to serialize.
type Snapshot struct {
	Uptime              time.Duration
	ConnectionsAccepted int64
	ConnectionsActive   int64
	RequestsHandled     int64
	BytesIn             int64
	BytesOut            int64
	MalformedRequests   int64
	RequestsPerSecond   float64
}

// Snapshot takes a consistent-enough snapshot of all counters for
// logging or a metrics endpoint.
func (s *Stats) Snapshot() Snapshot {
	return Snapshot{
		Uptime:              s.Duration(),
		ConnectionsAccepted: s.connectionsAccepted.Load(),
		ConnectionsActive:   s.connectionsActive.Load(),
		RequestsHandled:     s.requestsHandled.Load(),
		BytesIn:             s.bytesIn.Load(),
		BytesOut:            s.bytesOut.Load(),
		MalformedRequests:   s.malformedRequests.Load(),
		RequestsPerSecond:   s.RequestsPerSecond(),
	}
}
