package httpclient

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"feedgate/internal/domain/feed"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalRSS = `<?xml version="1.0"?>
<rss version="2.0"><channel>
<title>Test</title><link>http://example.com</link><description>desc</description>
<item><title>Item 1</title><link>http://example.com/item1</link><description>d</description></item>
</channel></rss>`

func TestGetCachesResponses(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(minimalRSS))
	}))
	defer srv.Close()

	c := New(Config{ResponseCacheSize: 10, ResponseCacheTTL: time.Minute, DenyPrivateIPs: false})

	_, err := c.Get(t.Context(), srv.URL)
	require.NoError(t, err)
	_, err = c.Get(t.Context(), srv.URL)
	require.NoError(t, err)

	assert.Equal(t, 1, hits, "second Get should be served from cache")
}

func TestFetchFeedSniffsRSSContentType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(minimalRSS))
	}))
	defer srv.Close()

	c := New(Config{DenyPrivateIPs: false})
	f, err := c.FetchFeed(t.Context(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, feed.FormatRSS, f.Format)
	assert.Equal(t, "Test", f.Title())
}

func TestGetRejectsNonHTTPScheme(t *testing.T) {
	c := New(DefaultConfig())
	_, err := c.Get(t.Context(), "file:///etc/passwd")
	require.Error(t, err)
}

func TestGetSurfacesStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := New(Config{DenyPrivateIPs: false, ResponseCacheSize: 1, ResponseCacheTTL: time.Minute})
	c.retryConfig.MaxAttempts = 1
	_, err := c.Get(t.Context(), srv.URL)
	require.Error(t, err)
}
