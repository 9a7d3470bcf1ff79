// Package tracing provides OpenTelemetry tracing integration for the
// gateway's HTTP surface.
//
// Features:
//   - Automatic HTTP request tracing via Middleware
//   - W3C Trace Context propagation from incoming requests
//   - Trace ID echoed back on the response (X-Trace-Id)
//
// Example usage:
//
//	mux := http.NewServeMux()
//	mux.Handle("/", someHandler)
//	handler := tracing.Middleware(mux)
//	http.ListenAndServe(":8080", handler)
package tracing
