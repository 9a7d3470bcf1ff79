// Package metrics provides centralized Prometheus metrics for the gateway.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics track HTTP request patterns and performance.
var (
	// HTTPRequestsTotal counts total HTTP requests by method, path, and status.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration measures HTTP request duration in seconds.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// HTTPResponseSize measures HTTP response body size in bytes.
	HTTPResponseSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_response_size_bytes",
			Help:    "HTTP response size in bytes",
			Buckets: prometheus.ExponentialBuckets(100, 10, 8),
		},
		[]string{"method", "path"},
	)

	// ActiveConnections tracks the number of active HTTP connections.
	ActiveConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_active_connections",
			Help: "Number of active HTTP connections",
		},
	)
)

// Pipeline/filter metrics track per-request feed transformation work.
var (
	// PipelineDuration measures how long an endpoint's full filter run
	// (source fetch through serialization) takes.
	PipelineDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pipeline_duration_seconds",
			Help:    "Time taken to run an endpoint's full filter pipeline",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		},
		[]string{"path"},
	)

	// FilterDuration measures a single filter's execution time,
	// including any filter-cache lookup.
	FilterDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "filter_duration_seconds",
			Help:    "Time taken to run a single filter",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 14),
		},
		[]string{"kind"},
	)

	// FilterCacheHitsTotal and FilterCacheMissesTotal count filter-cache
	// lookups by level (feed or post).
	FilterCacheHitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filter_cache_hits_total",
			Help: "Total number of filter cache hits",
		},
		[]string{"level"},
	)
	FilterCacheMissesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filter_cache_misses_total",
			Help: "Total number of filter cache misses",
		},
		[]string{"level"},
	)

	// SourceFetchErrorsTotal counts source-fetch failures by endpoint path.
	SourceFetchErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "source_fetch_errors_total",
			Help: "Total number of source fetch errors",
		},
		[]string{"path"},
	)

	// ImageProxyRequestsTotal counts /_image requests by outcome.
	ImageProxyRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "image_proxy_requests_total",
			Help: "Total number of image-proxy requests",
		},
		[]string{"outcome"}, // outcome: ok, missing_sig, bad_sig, upstream_error
	)
)

// RecordHTTPRequest records an HTTP request with its metadata.
func RecordHTTPRequest(method, path, status string, duration time.Duration, responseSize int) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
	if responseSize > 0 {
		HTTPResponseSize.WithLabelValues(method, path).Observe(float64(responseSize))
	}
}

// RecordFilterCacheLookup records a filter-cache hit or miss at the
// given level ("feed" or "post").
func RecordFilterCacheLookup(level string, hit bool) {
	if hit {
		FilterCacheHitsTotal.WithLabelValues(level).Inc()
		return
	}
	FilterCacheMissesTotal.WithLabelValues(level).Inc()
}
