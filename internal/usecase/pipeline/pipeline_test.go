package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"feedgate/internal/domain/feed"
	"feedgate/internal/domain/filterctx"
	"feedgate/internal/usecase/filter"
)

// appendFilter appends its tag to the feed's title, so pipeline order
// and skipping are observable in the final title string.
type appendFilter struct{ tag string }

func (a appendFilter) Run(ctx context.Context, fctx *filterctx.Context, f feed.Feed) (feed.Feed, error) {
	out := f.Clone()
	out.RSS.Title = out.RSS.Title + a.tag
	return out, nil
}

func (appendFilter) CacheGranularity() filter.Granularity { return filter.FeedOnly }

func newFeed(title string) feed.Feed {
	return feed.NewFeed(feed.FormatRSS, title, "https://example.com", "")
}

func TestPipelineRunsSequentially(t *testing.T) {
	p := New([]filter.Filter{appendFilter{"A"}, appendFilter{"B"}, appendFilter{"C"}})
	out, err := p.Run(context.Background(), filterctx.New(), newFeed(""))
	require.NoError(t, err)
	require.Equal(t, "ABC", out.RSS.Title)
}

func TestPipelineHonorsSkipSet(t *testing.T) {
	p := New([]filter.Filter{appendFilter{"A"}, appendFilter{"B"}, appendFilter{"C"}})
	fctx := filterctx.New()
	fctx.FilterSkip[1] = struct{}{}

	out, err := p.Run(context.Background(), fctx, newFeed(""))
	require.NoError(t, err)
	require.Equal(t, "AC", out.RSS.Title)
}

func TestPipelineHonorsLimitFilters(t *testing.T) {
	p := New([]filter.Filter{appendFilter{"A"}, appendFilter{"B"}, appendFilter{"C"}})
	fctx := filterctx.New()
	limit := 1
	fctx.LimitFilters = &limit

	out, err := p.Run(context.Background(), fctx, newFeed(""))
	require.NoError(t, err)
	require.Equal(t, "A", out.RSS.Title)
}
