//go:build prometheus

// Optional Prometheus instrumentation, gated the same way
// shockwave/pkg/shockwave/buffer_pool_prometheus.go gates its own
// metrics: behind a build tag so a default build carries no dependency
// on the client library at all.
package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	connectionsActiveGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "quickloop",
		Name:      "connections_active",
		Help:      "Currently open connections.",
	})
	connectionsAcceptedGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "quickloop",
		Name:      "connections_accepted",
		Help:      "Lifetime connections accepted.",
	})
	requestsHandledGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "quickloop",
		Name:      "requests_handled",
		Help:      "Lifetime requests handled.",
	})
	requestsPerSecondGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "quickloop",
		Name:      "requests_per_second",
		Help:      "Lifetime average requests handled per second.",
	})
)

// PublishMetrics copies a Stats snapshot into the package's Prometheus
// gauges. Call this periodically (e.g. from a ticker in main) when the
// binary is built with -tags prometheus.
func (s *Stats) PublishMetrics() {
	snap := s.Snapshot()
	connectionsActiveGauge.Set(float64(snap.ConnectionsActive))
	connectionsAcceptedGauge.Set(float64(snap.ConnectionsAccepted))
	requestsHandledGauge.Set(float64(snap.RequestsHandled))
	requestsPerSecondGauge.Set(snap.RequestsPerSecond)
}
