// Package middleware provides the HTTP middleware chain wrapping every
// request: request-id propagation (handler/http/requestid), structured
// logging, panic recovery, and basic-auth gating.
package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"feedgate/internal/handler/http/responsewriter"
	"feedgate/internal/observability/logging"
	"feedgate/internal/observability/metrics"
)

// Logging returns middleware that logs one structured line per request
// (method, path, status, duration, request ID) and records the generic
// HTTP metrics.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := responsewriter.Wrap(w)

			reqLogger := logging.WithRequestID(r.Context(), logger).With(
				"method", r.Method,
				"path", r.URL.Path,
			)
			next.ServeHTTP(rw, r.WithContext(logging.WithLogger(r.Context(), reqLogger)))

			duration := time.Since(start)
			status := rw.StatusCode()
			reqLogger.Info("request handled",
				"status", status,
				"duration_ms", duration.Milliseconds(),
				"bytes", rw.BytesWritten(),
			)
			metrics.RecordHTTPRequest(r.Method, r.URL.Path, statusText(status), duration, rw.BytesWritten())
		})
	}
}

func statusText(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
