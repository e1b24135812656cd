//go:build prometheus

package bufpool

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	bufferPoolGets = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "quickloop",
		Subsystem: "buffer_pool",
		Name:      "gets_total",
		Help:      "Total number of buffer Get operations.",
	})
	bufferPoolPuts = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "quickloop",
		Subsystem: "buffer_pool",
		Name:      "puts_total",
		Help:      "Total number of buffer Put operations.",
	})
	bufferPoolMisses = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "quickloop",
		Subsystem: "buffer_pool",
		Name:      "misses",
		Help:      "Allocations made because a size class pool was empty.",
	}, []string{"class"})
)

// PublishMetrics sets the buffer pool gauges from a snapshot.
func (p *Pool) PublishMetrics() {
	m := p.Snapshot()
	bufferPoolGets.Set(float64(m.Gets))
	bufferPoolPuts.Set(float64(m.Puts))
	bufferPoolMisses.WithLabelValues("small").Set(float64(m.SmallMisses))
	bufferPoolMisses.WithLabelValues("medium").Set(float64(m.MediumMisses))
	bufferPoolMisses.WithLabelValues("large").Set(float64(m.LargeMisses))
}
