package filter

import (
	"context"
	"fmt"
	"time"

	"feedgate/internal/config"
	"feedgate/internal/domain/feed"
	"feedgate/internal/domain/filterctx"
)

// limitConfig is a tagged union over {count, duration}, grounded on
// original_source/src/filter/limit.rs's untagged LimitConfig enum,
// supplemented with an explicit mapping form so a malformed config
// (both set, or neither) can be rejected at build time instead of
// silently picking one.
type limitConfig struct {
	Count    *int    `yaml:"count,omitempty"`
	Duration *string `yaml:"duration,omitempty"`
}

type limitFilter struct {
	count    *int
	duration *time.Duration
}

func buildLimit(cfg config.FilterConfig) (Filter, error) {
	// Bare scalar forms: a plain integer means Count(n); a plain string
	// means Duration(d).
	var n int
	if err := cfg.Raw.Decode(&n); err == nil {
		return limitFilter{count: &n}, nil
	}
	var s string
	if err := cfg.Raw.Decode(&s); err == nil {
		d, err := time.ParseDuration(s)
		if err != nil {
			return nil, fmt.Errorf("%w: limit: invalid duration %q: %v", ErrConfig, s, err)
		}
		return limitFilter{duration: &d}, nil
	}

	var c limitConfig
	if err := cfg.Raw.Decode(&c); err != nil {
		return nil, fmt.Errorf("%w: limit: %v", ErrConfig, err)
	}
	if (c.Count == nil) == (c.Duration == nil) {
		return nil, fmt.Errorf("%w: limit: exactly one of count or duration must be set", ErrConfig)
	}
	if c.Count != nil {
		return limitFilter{count: c.Count}, nil
	}
	d, err := time.ParseDuration(*c.Duration)
	if err != nil {
		return nil, fmt.Errorf("%w: limit: invalid duration %q: %v", ErrConfig, *c.Duration, err)
	}
	return limitFilter{duration: &d}, nil
}

func (l limitFilter) Run(ctx context.Context, fctx *filterctx.Context, f feed.Feed) (feed.Feed, error) {
	posts := f.Posts()

	switch {
	case l.count != nil:
		if *l.count < len(posts) {
			posts = posts[:*l.count]
		}
	case l.duration != nil:
		cutoff := time.Now().Add(-*l.duration)
		kept := make([]feed.Post, 0, len(posts))
		for _, p := range posts {
			if pub := p.PubDate(); pub != nil && !pub.Before(cutoff) {
				kept = append(kept, p)
			}
		}
		posts = kept
	}

	out := f.Clone()
	out.SetPosts(posts)
	return out, nil
}

func (limitFilter) CacheGranularity() Granularity { return FeedOnly }
