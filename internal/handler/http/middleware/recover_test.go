package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"feedgate/internal/observability/logging"
)

func TestRecoverConvertsPanicToFiveHundred(t *testing.T) {
	panicking := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})
	h := Recover(panicking)

	req := httptest.NewRequest("GET", "/feed", nil)
	req = req.WithContext(logging.WithLogger(req.Context(), logging.NewLogger()))
	rec := httptest.NewRecorder()

	require.NotPanics(t, func() { h.ServeHTTP(rec, req) })
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Type"), "text/plain")
	require.Equal(t, "internal server error", rec.Body.String())
}

func TestRecoverPassesThroughWithoutPanic(t *testing.T) {
	h := Recover(okHandler())

	req := httptest.NewRequest("GET", "/feed", nil)
	req = req.WithContext(logging.WithLogger(req.Context(), logging.NewLogger()))
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}
