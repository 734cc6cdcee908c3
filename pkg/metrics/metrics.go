// Package metrics provides Prometheus metrics for the CodeTrack backend.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Manager owns all Prometheus collectors for the service.
type Manager struct {
	registry *prometheus.Registry

	// Sync engine metrics
	syncsTotal    *prometheus.CounterVec
	syncFailures  *prometheus.CounterVec
	syncDuration  prometheus.Histogram
	adapterCalls  *prometheus.CounterVec

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Cache metrics
	cacheHits   prometheus.Counter
	cacheMisses prometheus.Counter
}

// New creates a Manager with its own registry.
func New(namespace string) *Manager {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Manager{
		registry: registry,
		syncsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "syncs_total",
			Help:      "Completed platform syncs by platform and outcome.",
		}, []string{"platform", "outcome"}),
		syncFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sync_failures_total",
			Help:      "Failed platform syncs by failure kind.",
		}, []string{"platform", "kind"}),
		syncDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sync_duration_seconds",
			Help:      "End-to-end duration of one platform sync.",
			Buckets:   prometheus.DefBuckets,
		}),
		adapterCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "adapter_requests_total",
			Help:      "Outbound platform API requests by platform and status.",
		}, []string{"platform", "status"}),
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"route", "code"}),
		httpRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		cacheHits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_hits_total",
			Help:      "Read-through cache hits.",
		}),
		cacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_misses_total",
			Help:      "Read-through cache misses.",
		}),
	}
}

// RecordSync records one completed sync attempt.
func (m *Manager) RecordSync(platform string, err error, duration time.Duration) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	m.syncsTotal.WithLabelValues(platform, outcome).Inc()
	m.syncDuration.Observe(duration.Seconds())
}

// RecordSyncFailure records the failure kind of an unsuccessful sync.
func (m *Manager) RecordSyncFailure(platform, kind string) {
	m.syncFailures.WithLabelValues(platform, kind).Inc()
}

// RecordAdapterCall records one outbound platform API request.
func (m *Manager) RecordAdapterCall(platform, status string) {
	m.adapterCalls.WithLabelValues(platform, status).Inc()
}

// RecordHTTPRequest records one served HTTP request.
func (m *Manager) RecordHTTPRequest(route, code string, duration time.Duration) {
	m.httpRequests.WithLabelValues(route, code).Inc()
	m.httpRequestDuration.WithLabelValues(route).Observe(duration.Seconds())
}

// RecordCacheHit increments the cache hit counter.
func (m *Manager) RecordCacheHit() { m.cacheHits.Inc() }

// RecordCacheMiss increments the cache miss counter.
func (m *Manager) RecordCacheMiss() { m.cacheMisses.Inc() }

// Handler returns the /metrics exposition handler for this registry.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
