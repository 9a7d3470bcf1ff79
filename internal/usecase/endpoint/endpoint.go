// Package endpoint wires a configured EndpointConfig into a runnable
// service: it resolves the source, builds the filter list (configured
// plus any on-the-fly additions), runs each filter through the
// endpoint's filter cache, and serializes the result.
package endpoint

import (
	"context"
	"fmt"

	"feedgate/internal/config"
	"feedgate/internal/domain/feed"
	"feedgate/internal/domain/filterctx"
	"feedgate/internal/domain/source"
	"feedgate/internal/infra/httpclient"
	"feedgate/internal/infra/imageproxy"
	"feedgate/internal/infra/scriptengine"
	"feedgate/internal/usecase/filter"
	"feedgate/internal/usecase/filtercache"
	"feedgate/internal/usecase/onthefly"
	"feedgate/internal/usecase/pipeline"
)

// Shared bundles process-wide dependencies every endpoint is built
// with; one Shared instance is constructed at startup and reused
// across reloads.
type Shared struct {
	ScriptEngine     scriptengine.Engine
	ImageProxySigner *imageproxy.Signer
	ImageProxyConfig config.ImageProxyConfig
	// BaseURL is the app-wide base used to resolve RelativeUrl sources
	// when a request doesn't supply its own `base` override.
	BaseURL string
}

// Request is the parsed, endpoint-agnostic shape of an incoming HTTP
// GET, independent of net/http so this package stays testable without
// a live request.
type Request struct {
	// Source overrides the configured source (the `source` query parameter).
	Source string
	// LimitPosts truncates the result after the pipeline runs, if set.
	LimitPosts *int
	// LimitFilters caps how many configured filters run (bare `pp`).
	LimitFilters *int
	// FilterSkip is the set of filter indices to skip (`pp`/`filter_skip`
	// as a comma-separated list).
	FilterSkip map[int]struct{}
	// Base overrides relative-source resolution.
	Base string
	// RawQuery is the full incoming query string, rescanned for
	// on-the-fly filters and passed through as extra_queries.
	RawQuery string
}

// Endpoint is one built, runnable `{path -> source, filters}` binding.
type Endpoint struct {
	path            string
	note            string
	source          *source.Source
	configuredBase  string
	onTheFlyEnabled bool
	filters         []filter.Filter
	client          *httpclient.Client
	cache           *filtercache.Cache
	deps            filter.Deps
}

// Path returns the URL path this endpoint is mounted at.
func (e *Endpoint) Path() string { return e.path }

// Note returns the endpoint's configured human-readable description.
func (e *Endpoint) Note() string { return e.note }

// Build constructs an Endpoint from its configuration, building its
// HTTP client, filter cache, and filter list; it fails with a
// ConfigError-category error (never reached is treated as a build-time
// defect, per the taxonomy's rule that config errors must prevent the
// endpoint from entering service).
func Build(cfg config.EndpointConfig, shared Shared) (*Endpoint, error) {
	var src *source.Source
	if cfg.Source != nil {
		built, err := source.Build(*cfg.Source)
		if err != nil {
			return nil, fmt.Errorf("endpoint %q: %w", cfg.Path, err)
		}
		src = built
	}

	clientCfg := httpclient.DefaultConfig()
	if cfg.Client != nil {
		clientCfg = clientConfigFrom(*cfg.Client)
	}
	client := httpclient.New(clientCfg)

	cacheCfg := config.FilterCacheConfig{}
	if cfg.Cache != nil {
		cacheCfg = *cfg.Cache
	}
	cache := filtercache.New(cacheCfg)

	ep := &Endpoint{
		path:            cfg.Path,
		note:            cfg.Note,
		source:          src,
		configuredBase:  shared.BaseURL,
		onTheFlyEnabled: cfg.OnTheFlyFilters,
		client:          client,
		cache:           cache,
	}

	deps := filter.Deps{
		HTTPClient:       client,
		NewClient:        func(c httpclient.Config) *httpclient.Client { return httpclient.New(c) },
		ScriptEngine:     shared.ScriptEngine,
		ImageProxySigner: shared.ImageProxySigner,
		ImageProxyConfig: shared.ImageProxyConfig,
	}
	deps.BuildPipeline = func(filterCfgs []config.FilterConfig) (filter.Runner, error) {
		built, err := buildFilters(filterCfgs, deps)
		if err != nil {
			return nil, err
		}
		return pipeline.New(built), nil
	}
	ep.deps = deps

	built, err := buildFilters(cfg.Filters, deps)
	if err != nil {
		return nil, fmt.Errorf("endpoint %q: %w", cfg.Path, err)
	}
	ep.filters = built

	return ep, nil
}

func buildFilters(cfgs []config.FilterConfig, deps filter.Deps) ([]filter.Filter, error) {
	out := make([]filter.Filter, 0, len(cfgs))
	for i, fc := range cfgs {
		f, err := filter.Build(fc, deps)
		if err != nil {
			return nil, fmt.Errorf("filter %d (%s): %w", i, fc.Kind, err)
		}
		out = append(out, f)
	}
	return out, nil
}

// clientConfigFrom adapts the declarative ClientConfig into the
// httpclient package's own Config.
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

// Call runs the endpoint's full request algorithm: resolve source,
// fetch, optionally enrich with on-the-fly filters, run the pipeline
// through the filter cache, truncate, and return the resulting feed.
// Serialization is left to the HTTP handler, which also knows the
// response Content-Type.
func (e *Endpoint) Call(ctx context.Context, req Request) (feed.Feed, error) {
	fctx := &filterctx.Context{
		BaseURL:      req.Base,
		SourceURL:    req.Source,
		FilterSkip:   req.FilterSkip,
		ExtraQueries: map[string]string{},
		LimitFilters: req.LimitFilters,
	}
	if fctx.BaseURL == "" {
		fctx.BaseURL = e.configuredBase
	}
	if fctx.FilterSkip == nil {
		fctx.FilterSkip = map[int]struct{}{}
	}

	src := e.source
	if req.Source != "" {
		src = source.ResolveSource(req.Source)
	}
	if src == nil {
		return feed.Feed{}, source.ErrSourceUnspecified
	}

	initial, err := src.FetchFeed(ctx, fctx, e.client)
	if err != nil {
		return feed.Feed{}, err
	}

	effectiveFilters := e.filters
	scan := onthefly.Scan(req.RawQuery, e.onTheFlyEnabled)
	for k, v := range scan.ExtraQueries {
		fctx.ExtraQueries[k] = v
	}
	if len(scan.Filters) > 0 {
		extra, err := buildFilters(scan.Filters, e.deps)
		if err != nil {
			return feed.Feed{}, fmt.Errorf("on-the-fly filter: %w", err)
		}
		combined := make([]filter.Filter, 0, len(e.filters)+len(extra))
		combined = append(combined, e.filters...)
		combined = append(combined, extra...)
		effectiveFilters = combined
	}

	result, err := e.runThroughCache(ctx, fctx, effectiveFilters, initial)
	if err != nil {
		return feed.Feed{}, err
	}

	if req.LimitPosts != nil {
		posts := result.Posts()
		if *req.LimitPosts < len(posts) {
			result.SetPosts(posts[:*req.LimitPosts])
		}
	}

	return result, nil
}

// runThroughCache applies §4.5's skip/limit selection, but routes each
// surviving filter's execution through the filter cache instead of
// calling it directly, passing along the filter's declared granularity.
func (e *Endpoint) runThroughCache(ctx context.Context, fctx *filterctx.Context, filters []filter.Filter, input feed.Feed) (feed.Feed, error) {
	n := len(filters)
	if fctx.LimitFilters != nil && *fctx.LimitFilters < n {
		n = *fctx.LimitFilters
	}

	current := input
	for i := 0; i < n; i++ {
		if fctx.Skips(i) {
			continue
		}
		f := filters[i]
		next, err := e.cache.Run(ctx, fctx, current, f.CacheGranularity(), f)
		if err != nil {
			return feed.Feed{}, fmt.Errorf("filter %d: %w", i, err)
		}
		current = next
	}
	return current, nil
}
