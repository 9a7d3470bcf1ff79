package filter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"feedgate/internal/config"
	"feedgate/internal/domain/filterctx"
	"feedgate/internal/infra/httpclient"
)

const mergeSourceRSS = `<?xml version="1.0"?>
<rss version="2.0"><channel>
<title>Other</title><link>https://other.example</link><description>d</description>
<item><title>Other Item</title><link>https://other.example/1</link><description>body</description></item>
</channel></rss>`

func TestMergeBareStringAppendsFetchedPosts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(mergeSourceRSS))
	}))
	defer srv.Close()

	cfg := config.FilterConfig{Kind: "merge", Raw: rawNode(t, srv.URL)}
	client := httpclient.New(httpclient.Config{DenyPrivateIPs: false, ResponseCacheSize: 1})
	f, err := buildMerge(cfg, Deps{HTTPClient: client})
	require.NoError(t, err)

	in := threePostFeed()
	out, err := f.Run(context.Background(), filterctx.New(), in)
	require.NoError(t, err)
	require.Len(t, out.Posts(), 4)
	require.Equal(t, "Other Item", out.Posts()[3].Title())
}

func TestMergeRequiresSource(t *testing.T) {
	cfg := config.FilterConfig{Kind: "merge", Raw: rawNode(t, "client:\n  user_agent: x\n")}
	client := httpclient.New(httpclient.Config{})
	_, err := buildMerge(cfg, Deps{HTTPClient: client})
	require.Error(t, err)
}

func TestMergeFailsWithoutClient(t *testing.T) {
	cfg := config.FilterConfig{Kind: "merge", Raw: rawNode(t, "https://example.com/feed")}
	_, err := buildMerge(cfg, Deps{})
	require.Error(t, err)
}

func TestMergeCacheGranularityIsFeedOnly(t *testing.T) {
	cfg := config.FilterConfig{Kind: "merge", Raw: rawNode(t, "https://example.com/feed")}
	client := httpclient.New(httpclient.Config{})
	f, err := buildMerge(cfg, Deps{HTTPClient: client})
	require.NoError(t, err)
	require.Equal(t, FeedOnly, f.CacheGranularity())
}
