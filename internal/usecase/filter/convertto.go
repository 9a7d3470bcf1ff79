package filter

import (
	"context"
	"fmt"

	"feedgate/internal/config"
	"feedgate/internal/domain/feed"
	"feedgate/internal/domain/filterctx"
)

// convertToConfig names the target format, grounded on
// original_source/src/filter/convert.rs's ConvertToConfig.
type convertToConfig struct {
	Format string `yaml:"format"`
}

type convertToFilter struct {
	target feed.Format
}

func buildConvertTo(cfg config.FilterConfig) (Filter, error) {
	var raw string
	if err := cfg.Raw.Decode(&raw); err == nil {
		return newConvertTo(raw)
	}

	var c convertToConfig
	if err := cfg.Raw.Decode(&c); err != nil {
		return nil, fmt.Errorf("%w: convert_to: %v", ErrConfig, err)
	}
	return newConvertTo(c.Format)
}

func newConvertTo(format string) (Filter, error) {
	switch format {
	case "rss":
		return convertToFilter{target: feed.FormatRSS}, nil
	case "atom":
		return convertToFilter{target: feed.FormatAtom}, nil
	default:
		return nil, fmt.Errorf("%w: convert_to: unknown format %q", ErrConfig, format)
	}
}

func (c convertToFilter) Run(ctx context.Context, fctx *filterctx.Context, f feed.Feed) (feed.Feed, error) {
	return feed.Convert(f, c.target), nil
}

func (convertToFilter) CacheGranularity() Granularity { return FeedOnly }
