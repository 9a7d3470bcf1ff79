package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"feedgate/internal/config"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestBasicAuthNilConfigDisablesAuth(t *testing.T) {
	h := BasicAuth(nil)(okHandler())
	req := httptest.NewRequest("GET", "/feed", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestBasicAuthRejectsMissingCredentials(t *testing.T) {
	cfg := &config.BasicAuthConfig{Username: "admin", Password: "secret"}
	h := BasicAuth(cfg)(okHandler())
	req := httptest.NewRequest("GET", "/feed", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Header().Get("WWW-Authenticate"), "Basic")
}

func TestBasicAuthRejectsWrongCredentials(t *testing.T) {
	cfg := &config.BasicAuthConfig{Username: "admin", Password: "secret"}
	h := BasicAuth(cfg)(okHandler())
	req := httptest.NewRequest("GET", "/feed", nil)
	req.SetBasicAuth("admin", "wrong")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestBasicAuthAcceptsValidCredentials(t *testing.T) {
	cfg := &config.BasicAuthConfig{Username: "admin", Password: "secret"}
	h := BasicAuth(cfg)(okHandler())
	req := httptest.NewRequest("GET", "/feed", nil)
	req.SetBasicAuth("admin", "secret")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}
