package filter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"feedgate/internal/config"
	"feedgate/internal/domain/filterctx"
)

func TestRemoveElementStripsMatchingNodes(t *testing.T) {
	cfg := config.FilterConfig{Kind: "remove_element", Raw: rawNode(t, "selectors: [\".ad\"]\n")}
	f, err := buildElementFilter(cfg, elementActionRemove)
	require.NoError(t, err)

	in := sanitizeFeed(`<p>keep me</p><div class="ad">buy now</div>`, "")
	out, err := f.Run(context.Background(), filterctx.New(), in)
	require.NoError(t, err)
	require.NotContains(t, out.Posts()[0].Description(), "buy now")
	require.Contains(t, out.Posts()[0].Description(), "keep me")
}

func TestKeepElementKeepsOnlyMatchingNodes(t *testing.T) {
	cfg := config.FilterConfig{Kind: "keep_element", Raw: rawNode(t, "selectors: [\".main\"]\n")}
	f, err := buildElementFilter(cfg, elementActionKeep)
	require.NoError(t, err)

	in := sanitizeFeed(`<div class="main">body text</div><div class="sidebar">nav</div>`, "")
	out, err := f.Run(context.Background(), filterctx.New(), in)
	require.NoError(t, err)
	require.Contains(t, out.Posts()[0].Description(), "body text")
	require.NotContains(t, out.Posts()[0].Description(), "nav")
}

func TestElementFilterRequiresAtLeastOneSelector(t *testing.T) {
	cfg := config.FilterConfig{Kind: "remove_element", Raw: rawNode(t, "selectors: []\n")}
	_, err := buildElementFilter(cfg, elementActionRemove)
	require.Error(t, err)
}

func TestElementFilterRejectsBadSelector(t *testing.T) {
	cfg := config.FilterConfig{Kind: "remove_element", Raw: rawNode(t, "selectors: [\"[[[\"]\n")}
	_, err := buildElementFilter(cfg, elementActionRemove)
	require.Error(t, err)
}

func TestElementFilterCacheGranularityIsFeedAndPost(t *testing.T) {
	cfg := config.FilterConfig{Kind: "remove_element", Raw: rawNode(t, "selectors: [\".ad\"]\n")}
	f, err := buildElementFilter(cfg, elementActionRemove)
	require.NoError(t, err)
	require.Equal(t, FeedAndPost, f.CacheGranularity())
}
