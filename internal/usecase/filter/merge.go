package filter

import (
	"context"
	"fmt"

	"feedgate/internal/config"
	"feedgate/internal/domain/feed"
	"feedgate/internal/domain/filterctx"
	"feedgate/internal/infra/httpclient"
)

// mergeConfig accepts either a bare source URL, or the full form with
// its own client settings and nested filter chain, grounded on
// original_source/src/filter/merge.rs's MergeConfig/MergeFullConfig.
type mergeConfig struct {
	Source  string               `yaml:"source"`
	Client  *config.ClientConfig `yaml:"client,omitempty"`
	Filters []config.FilterConfig `yaml:"filters,omitempty"`
}

type mergeFilter struct {
	source string
	client *httpclient.Client
	nested Runner
}

func buildMerge(cfg config.FilterConfig, deps Deps) (Filter, error) {
	var source string
	if err := cfg.Raw.Decode(&source); err != nil {
		var c mergeConfig
		if err := cfg.Raw.Decode(&c); err != nil {
			return nil, fmt.Errorf("%w: merge: %v", ErrConfig, err)
		}
		return buildMergeFull(c, deps)
	}
	return buildMergeFull(mergeConfig{Source: source}, deps)
}

func buildMergeFull(c mergeConfig, deps Deps) (Filter, error) {
	if c.Source == "" {
		return nil, fmt.Errorf("%w: merge: source is required", ErrConfig)
	}

	client := deps.HTTPClient
	if c.Client != nil && deps.NewClient != nil {
		client = deps.NewClient(clientConfigFrom(*c.Client))
	}
	if client == nil {
		return nil, fmt.Errorf("%w: merge: no HTTP client available", ErrConfig)
	}

	var nested Runner
	if len(c.Filters) > 0 {
		if deps.BuildPipeline == nil {
			return nil, fmt.Errorf("%w: merge: nested filters configured but no pipeline builder is wired", ErrConfig)
		}
		built, err := deps.BuildPipeline(c.Filters)
		if err != nil {
			return nil, fmt.Errorf("%w: merge: nested pipeline: %v", ErrConfig, err)
		}
		nested = built
	}

	return mergeFilter{source: c.Source, client: client, nested: nested}, nil
}

// clientConfigFrom adapts the declarative ClientConfig into the
// httpclient package's own Config, keeping the two layers decoupled.
func clientConfigFrom(c config.ClientConfig) httpclient.Config {
	cfg := httpclient.DefaultConfig()
	if c.UserAgent != "" {
		cfg.UserAgent = c.UserAgent
	}
	if c.Accept != "" {
		cfg.Accept = c.Accept
	}
	if len(c.Headers) > 0 {
		cfg.Headers = c.Headers
	}
	if c.Timeout > 0 {
		cfg.Timeout = c.Timeout
	}
	if c.ResponseCacheSize > 0 {
		cfg.ResponseCacheSize = c.ResponseCacheSize
	}
	if c.ResponseCacheTTL > 0 {
		cfg.ResponseCacheTTL = c.ResponseCacheTTL
	}
	return cfg
}

func (m mergeFilter) Run(ctx context.Context, fctx *filterctx.Context, f feed.Feed) (feed.Feed, error) {
	fetched, err := m.client.FetchFeed(ctx, m.source)
	if err != nil {
		return feed.Feed{}, fmt.Errorf("%w: merge: fetching %q: %v", ErrFilter, m.source, err)
	}

	if m.nested != nil {
		fetched, err = m.nested.Run(ctx, fctx.Subcontext(), fetched)
		if err != nil {
			return feed.Feed{}, fmt.Errorf("%w: merge: nested pipeline: %v", ErrFilter, err)
		}
	}

	converted := feed.Convert(fetched, f.Format)
	out := f.Clone()
	out.SetPosts(append(out.Posts(), converted.Posts()...))
	return out, nil
}

func (m mergeFilter) CacheGranularity() Granularity { return FeedOnly }
