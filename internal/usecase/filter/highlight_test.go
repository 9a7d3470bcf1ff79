package filter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"feedgate/internal/config"
	"feedgate/internal/domain/filterctx"
)

func TestHighlightWrapsKeywordMatches(t *testing.T) {
	cfg := config.FilterConfig{Kind: "highlight", Raw: rawNode(t, "keywords: [release]\n")}
	f, err := buildHighlight(cfg)
	require.NoError(t, err)

	in := sanitizeFeed("a new release is out", "")
	out, err := f.Run(context.Background(), filterctx.New(), in)
	require.NoError(t, err)
	require.Contains(t, out.Posts()[0].Description(), `class="rss-funnel-hl"`)
	require.Contains(t, out.Posts()[0].Description(), "release")
}

func TestHighlightUsesDefaultColorWhenUnset(t *testing.T) {
	cfg := config.FilterConfig{Kind: "highlight", Raw: rawNode(t, "keywords: [release]\n")}
	f, err := buildHighlight(cfg)
	require.NoError(t, err)

	in := sanitizeFeed("release day", "")
	out, err := f.Run(context.Background(), filterctx.New(), in)
	require.NoError(t, err)
	require.Contains(t, out.Posts()[0].Description(), defaultHighlightColor)
}

func TestHighlightRejectsBothKeywordsAndPatterns(t *testing.T) {
	cfg := config.FilterConfig{Kind: "highlight", Raw: rawNode(t, "keywords: [release]\npatterns: [\"rel.*\"]\n")}
	_, err := buildHighlight(cfg)
	require.Error(t, err)
}

func TestHighlightRejectsNeitherSet(t *testing.T) {
	cfg := config.FilterConfig{Kind: "highlight", Raw: rawNode(t, "{}")}
	_, err := buildHighlight(cfg)
	require.Error(t, err)
}

func TestHighlightCacheGranularityIsFeedAndPost(t *testing.T) {
	cfg := config.FilterConfig{Kind: "highlight", Raw: rawNode(t, "keywords: [x]\n")}
	f, err := buildHighlight(cfg)
	require.NoError(t, err)
	require.Equal(t, FeedAndPost, f.CacheGranularity())
}
