package http

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"feedgate/internal/config"
	"feedgate/internal/infra/scriptengine"
	"feedgate/internal/observability/logging"
	"feedgate/internal/usecase/endpoint"
)

func fromScratchSource(t *testing.T, title string) *config.SourceConfig {
	t.Helper()
	var node yaml.Node
	raw := "title: " + title + "\nlink: https://example.com\n"
	require.NoError(t, yaml.Unmarshal([]byte(raw), &node))
	return &config.SourceConfig{Kind: "from_scratch", Raw: *node.Content[0]}
}

func buildTestEndpoint(t *testing.T, title string, filters []config.FilterConfig) *endpoint.Endpoint {
	t.Helper()
	cfg := config.EndpointConfig{Path: "/feed", Source: fromScratchSource(t, title), Filters: filters}
	ep, err := endpoint.Build(cfg, endpoint.Shared{ScriptEngine: scriptengine.NullEngine{}})
	require.NoError(t, err)
	return ep
}

func TestEndpointHandlerServesFeedXML(t *testing.T) {
	ep := buildTestEndpoint(t, "Hello", nil)
	h := &EndpointHandler{Endpoint: ep}

	req := httptest.NewRequest("GET", "/feed", nil)
	req = req.WithContext(logging.WithLogger(req.Context(), logging.NewLogger()))
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)

	require.Equal(t, 200, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Type"), "application/rss+xml")
	require.Contains(t, rec.Body.String(), "Hello")
}

func TestEndpointHandlerRejectsBadLimitPosts(t *testing.T) {
	ep := buildTestEndpoint(t, "Hello", nil)
	h := &EndpointHandler{Endpoint: ep}

	req := httptest.NewRequest("GET", "/feed?limit_posts=-1", nil)
	req = req.WithContext(logging.WithLogger(req.Context(), logging.NewLogger()))
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)

	require.Equal(t, 400, rec.Code)
	require.Contains(t, rec.Body.String(), "limit_posts")
}

func TestEndpointHandlerRejectsBadFilterSkip(t *testing.T) {
	ep := buildTestEndpoint(t, "Hello", nil)
	h := &EndpointHandler{Endpoint: ep}

	req := httptest.NewRequest("GET", "/feed?filter_skip=a,b", nil)
	req = req.WithContext(logging.WithLogger(req.Context(), logging.NewLogger()))
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)

	require.Equal(t, 400, rec.Code)
}

func TestEndpointHandlerParsesBareFilterSkipAsLimitFilters(t *testing.T) {
	req := httptest.NewRequest("GET", "/feed?pp=2", nil)
	parsed, err := parseRequest(req)
	require.NoError(t, err)
	require.NotNil(t, parsed.LimitFilters)
	require.Equal(t, 2, *parsed.LimitFilters)
}

func TestEndpointHandlerParsesCommaFilterSkip(t *testing.T) {
	req := httptest.NewRequest("GET", "/feed?filter_skip=0,2", nil)
	parsed, err := parseRequest(req)
	require.NoError(t, err)
	require.Nil(t, parsed.LimitFilters)
	_, has0 := parsed.FilterSkip[0]
	_, has2 := parsed.FilterSkip[2]
	require.True(t, has0)
	require.True(t, has2)
}

func TestEndpointHandlerWritesPlainTextErrorOnCallFailure(t *testing.T) {
	cfg := config.EndpointConfig{Path: "/dynamic"}
	ep, err := endpoint.Build(cfg, endpoint.Shared{ScriptEngine: scriptengine.NullEngine{}})
	require.NoError(t, err)
	h := &EndpointHandler{Endpoint: ep}

	req := httptest.NewRequest("GET", "/dynamic", nil)
	req = req.WithContext(logging.WithLogger(req.Context(), logging.NewLogger()))
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)

	require.Equal(t, 500, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Type"), "text/plain")
	require.NotEmpty(t, rec.Body.String())
}
