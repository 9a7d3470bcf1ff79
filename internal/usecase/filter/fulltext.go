package filter

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"feedgate/internal/config"
	"feedgate/internal/domain/feed"
	"feedgate/internal/domain/filterctx"
	"feedgate/internal/infra/httpclient"
)

const (
	defaultFullTextParallelism = 20
	defaultFullTextTimeout     = 10 * time.Second
)

// fullTextConfig configures how many posts fetch concurrently and how
// long each fetch may take, grounded on
// original_source/src/filter/full_text.rs's FullTextConfig.
type fullTextConfig struct {
	Timeout     string `yaml:"timeout,omitempty"`
	Parallelism int    `yaml:"parallelism,omitempty"`
}

type fullTextFilter struct {
	client      *httpclient.Client
	parallelism int
}

func buildFullText(cfg config.FilterConfig, deps Deps) (Filter, error) {
	var c fullTextConfig
	if err := cfg.Raw.Decode(&c); err != nil {
		return nil, fmt.Errorf("%w: full_text: %v", ErrConfig, err)
	}

	timeout := defaultFullTextTimeout
	if c.Timeout != "" {
		d, err := time.ParseDuration(c.Timeout)
		if err != nil {
			return nil, fmt.Errorf("%w: full_text: invalid timeout %q: %v", ErrConfig, c.Timeout, err)
		}
		timeout = d
	}

	parallelism := c.Parallelism
	if parallelism <= 0 {
		parallelism = defaultFullTextParallelism
	}

	clientCfg := httpclient.DefaultConfig()
	clientCfg.Timeout = timeout
	client := deps.HTTPClient
	if deps.NewClient != nil {
		client = deps.NewClient(clientCfg)
	}
	if client == nil {
		return nil, fmt.Errorf("%w: full_text: no HTTP client available", ErrConfig)
	}

	return fullTextFilter{client: client, parallelism: parallelism}, nil
}

// fetchFullPost replaces a post's description with the raw body fetched
// from its link. On failure the error is appended to the existing
// description rather than propagated, matching the original's
// "never fail the whole filter for one bad post" behavior.
func (ft fullTextFilter) fetchFullPost(ctx context.Context, p feed.Post) feed.Post {
	resp, err := ft.client.Get(ctx, p.Link())
	if err != nil {
		p.SetDescription(p.Description() + fmt.Sprintf("\n<br>\n<br>\nerror fetching full text: %v", err))
		return p
	}
	p.SetDescription(string(resp.Body))
	return p
}

func (ft fullTextFilter) Run(ctx context.Context, fctx *filterctx.Context, f feed.Feed) (feed.Feed, error) {
	posts := f.Posts()
	out := make([]feed.Post, len(posts))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(ft.parallelism)
	for i, p := range posts {
		i, p := i, p.Clone()
		g.Go(func() error {
			out[i] = ft.fetchFullPost(gctx, p)
			return nil
		})
	}
	// errors are recovered per-post above; Wait only surfaces a context
	// cancellation from the caller.
	if err := g.Wait(); err != nil {
		return feed.Feed{}, err
	}

	cloned := f.Clone()
	cloned.SetPosts(out)
	return cloned, nil
}

func (fullTextFilter) CacheGranularity() Granularity { return FeedAndPost }
