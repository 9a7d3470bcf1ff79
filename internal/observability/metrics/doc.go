// Package metrics provides Prometheus metrics registry and recording utilities.
//
// This package centralizes all gateway metrics including:
//   - HTTP request metrics (duration, count, size)
//   - Pipeline and per-filter execution metrics
//   - Filter cache hit/miss counters
//   - Source fetch and image-proxy outcome counters
//
// All metrics are automatically registered with the Prometheus default registry
// and exposed via the /metrics endpoint.
//
// Example usage:
//
//	import "feedgate/internal/observability/metrics"
//
//	func recordRequest(method, path, status string, d time.Duration) {
//	    metrics.RecordHTTPRequest(method, path, status, d, 0)
//	}
package metrics
