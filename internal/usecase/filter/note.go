package filter

import (
	"context"

	"feedgate/internal/config"
	"feedgate/internal/domain/feed"
	"feedgate/internal/domain/filterctx"
)

// noteFilter is a documented no-op, grounded on original_source/src/filter/note.rs's
// IdentityFilter.
type noteFilter struct{}

func buildNote(cfg config.FilterConfig) (Filter, error) {
	return noteFilter{}, nil
}

func (noteFilter) Run(ctx context.Context, fctx *filterctx.Context, f feed.Feed) (feed.Feed, error) {
	return f, nil
}

func (noteFilter) CacheGranularity() Granularity { return FeedOnly }
