package http

import "net/http"

// HealthHandler answers a plain liveness probe: if the process can
// respond at all, it's up. No dependency checks — the gateway holds no
// database connection to verify.
func HealthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
