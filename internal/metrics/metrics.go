// Package metrics exposes Prometheus instrumentation for mapping runs.
//
// Metrics:
//   - figimapper_chunks_total{outcome} (Counter): finished chunks by outcome
//     (success or the failure category: network, timeout, rate_limit, server, client, decode)
//   - figimapper_request_duration_seconds (Histogram): duration of each mapping call
//   - figimapper_identifiers_total{status} (Counter): identifiers by status (matched, unmatched, failed)
//   - figimapper_checkpoints_total{result} (Counter): checkpoint writes by result (ok, error)
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "figimapper"

// Collector holds the run metrics. A nil *Collector records nothing.
type Collector struct {
	chunksTotal      *prometheus.CounterVec
	requestDuration  prometheus.Histogram
	identifiersTotal *prometheus.CounterVec
	checkpointsTotal *prometheus.CounterVec
}

// NewCollector registers the metrics on reg
func NewCollector(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)
	return &Collector{
		chunksTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chunks_total",
			Help:      "Finished chunks by outcome",
		}, []string{"outcome"}),
		requestDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "Duration of mapping calls",
			Buckets:   prometheus.DefBuckets,
		}),
		identifiersTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "identifiers_total",
			Help:      "Identifiers by mapping status",
		}, []string{"status"}),
		checkpointsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkpoints_total",
			Help:      "Checkpoint writes by result",
		}, []string{"result"}),
	}
}

// ObserveChunk records one finished chunk and the identifiers it carried
func (c *Collector) ObserveChunk(outcome string, took time.Duration, matched, unmatched, failed int) {
	if c == nil {
		return
	}
	c.chunksTotal.WithLabelValues(outcome).Inc()
	c.requestDuration.Observe(took.Seconds())
	c.identifiersTotal.WithLabelValues("matched").Add(float64(matched))
	c.identifiersTotal.WithLabelValues("unmatched").Add(float64(unmatched))
	c.identifiersTotal.WithLabelValues("failed").Add(float64(failed))
}

// ObserveCheckpoint records a checkpoint write
func (c *Collector) ObserveCheckpoint(err error) {
	if c == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	c.checkpointsTotal.WithLabelValues(result).Inc()
}
