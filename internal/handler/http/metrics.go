package http

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsHandler exposes the process's Prometheus registry at /metrics.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
