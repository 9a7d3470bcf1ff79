package http

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHealthHandlerReturnsOK(t *testing.T) {
	req := httptest.NewRequest("GET", "/healthz", nil)
	rec := httptest.NewRecorder()
	HealthHandler(rec, req)

	require.Equal(t, 200, rec.Code)
	require.Equal(t, "ok", rec.Body.String())
}
