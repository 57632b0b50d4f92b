package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// serverMetrics are the request and render counters exposed on /metrics.
// Each server instance owns its registry, so tests can run servers side by
// side without duplicate registration panics.
type serverMetrics struct {
	registry *prometheus.Registry

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	rendersTotal    prometheus.Counter
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
}

func newServerMetrics() *serverMetrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &serverMetrics{
		registry: registry,

		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wbc",
			Name:      "requests_total",
			Help:      "Total number of API requests by route and status",
		}, []string{"route", "status"}),

		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "wbc",
			Name:      "request_duration_seconds",
			Help:      "API request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),

		rendersTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "wbc",
			Name:      "renders_total",
			Help:      "Total number of block tree renders performed",
		}),

		cacheHits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "wbc",
			Name:      "cache_hits_total",
			Help:      "Responses served from the TTL cache",
		}),

		cacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "wbc",
			Name:      "cache_misses_total",
			Help:      "Responses that required a fresh computation",
		}),
	}
}
