package filtercache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"feedgate/internal/config"
	"feedgate/internal/domain/feed"
	"feedgate/internal/domain/filterctx"
	"feedgate/internal/usecase/filter"
)

// spyRunner counts invocations and appends a per-post marker, so tests
// can assert both how many times the wrapped filter actually ran and
// the shape of its output.
type spyRunner struct{ calls int }

func (s *spyRunner) Run(ctx context.Context, fctx *filterctx.Context, f feed.Feed) (feed.Feed, error) {
	s.calls++
	out := f.Clone()
	posts := out.Posts()
	for i := range posts {
		posts[i].RSS.Title = posts[i].RSS.Title + "*"
	}
	out.SetPosts(posts)
	return out, nil
}

func rssFeed(title string, postTitles ...string) feed.Feed {
	f := feed.NewFeed(feed.FormatRSS, title, "https://example.com", "")
	posts := make([]feed.Post, len(postTitles))
	for i, pt := range postTitles {
		posts[i] = feed.Post{Format: feed.FormatRSS, RSS: &feed.RSSItem{Title: pt, Link: pt}}
	}
	f.SetPosts(posts)
	return f
}

func TestCacheReturnsSameOutputWithoutRerunningOnSecondCall(t *testing.T) {
	c := New(config.FilterCacheConfig{})
	spy := &spyRunner{}
	input := rssFeed("feed", "p1", "p2")

	first, err := c.Run(context.Background(), filterctx.New(), input, filter.FeedOnly, spy)
	require.NoError(t, err)
	second, err := c.Run(context.Background(), filterctx.New(), input, filter.FeedOnly, spy)
	require.NoError(t, err)

	require.Equal(t, 1, spy.calls, "expected the wrapped runner to be invoked once")
	require.Equal(t, first.RSS.Title, second.RSS.Title)
}

func TestPostCacheOrderingWithPartialHits(t *testing.T) {
	c := New(config.FilterCacheConfig{})
	spy := &spyRunner{}

	feed1 := rssFeed("feed-a", "p1", "p2")
	out1, err := c.Run(context.Background(), filterctx.New(), feed1, filter.FeedAndPost, spy)
	require.NoError(t, err)
	require.Equal(t, "p1*", out1.Posts()[0].Title())
	require.Equal(t, "p2*", out1.Posts()[1].Title())

	// feed-b shares p1 with feed-a (post cache hit) but introduces p3
	// (miss); the resulting order must still be [p1, p3].
	feed2 := rssFeed("feed-b", "p1", "p3")
	out2, err := c.Run(context.Background(), filterctx.New(), feed2, filter.FeedAndPost, spy)
	require.NoError(t, err)

	posts := out2.Posts()
	require.Len(t, posts, 2)
	require.Equal(t, "p1*", posts[0].Title(), "expected cached p1* first")
	require.Equal(t, "p3*", posts[1].Title(), "expected freshly computed p3* second")
	// p1 was a post-cache hit, so the wrapped runner should only have
	// been invoked with the uncached posts (p1,p2 then p3): two calls,
	// never three.
	require.Equal(t, 2, spy.calls)
}

func TestFeedOnlyGranularitySkipsPostCache(t *testing.T) {
	c := New(config.FilterCacheConfig{})
	spy := &spyRunner{}
	input := rssFeed("feed", "p1")

	out, err := c.Run(context.Background(), filterctx.New(), input, filter.FeedOnly, spy)
	require.NoError(t, err)
	require.Zero(t, c.postCache.Len(), "post cache should be untouched for FeedOnly granularity")
	require.Equal(t, "p1*", out.Posts()[0].Title())
}
