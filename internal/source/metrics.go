package source

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics are the cache counters exported on /metrics
type Metrics struct {
	Hits        *prometheus.CounterVec
	Misses      *prometheus.CounterVec
	Failures    *prometheus.CounterVec
	StaleServes *prometheus.CounterVec
	Rows        *prometheus.GaugeVec
}

// NewMetrics creates the cache metrics and registers them on reg when it is not nil
func NewMetrics(reg prometheus.Registerer) *Metrics {
	labels := []string{"dataset"}
	m := &Metrics{
		Hits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "source_cache_hits_total",
			Help: "Fetches served from a fresh cache entry",
		}, labels),
		Misses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "source_cache_misses_total",
			Help: "Fetches that went to the remote source",
		}, labels),
		Failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "source_fetch_failures_total",
			Help: "Remote fetches that failed",
		}, labels),
		StaleServes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "source_cache_stale_serves_total",
			Help: "Failed fetches answered with previously cached rows",
		}, labels),
		Rows: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "source_cache_rows",
			Help: "Rows held in the cache",
		}, labels),
	}

	if reg != nil {
		reg.MustRegister(m.Hits, m.Misses, m.Failures, m.StaleServes, m.Rows)
	}
	return m
}
