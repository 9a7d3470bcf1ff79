// Package filter implements the feed transformations as a closed
// tagged-variant registry, grounded filter-by-filter on
// original_source/src/filter/*.rs.
package filter

import (
	"context"
	"fmt"

	"feedgate/internal/config"
	"feedgate/internal/domain/feed"
	"feedgate/internal/domain/filterctx"
	"feedgate/internal/infra/httpclient"
	"feedgate/internal/infra/imageproxy"
	"feedgate/internal/infra/scriptengine"
)

// Granularity is a filter's declared cache granularity: FeedOnly treats the whole feed as one cache unit; FeedAndPost
// lets the filter cache key and reuse individual post results.
type Granularity int

const (
	FeedOnly Granularity = iota
	FeedAndPost
)

// Runner is the minimal capability a filter (or a nested pipeline, for
// Merge) exposes to its caller — kept separate from Filter so the
// Merge filter can depend on "something that runs a pipeline" without
// this package importing internal/usecase/pipeline (which itself
// depends on Filter, and would create an import cycle).
type Runner interface {
	Run(ctx context.Context, fctx *filterctx.Context, f feed.Feed) (feed.Feed, error)
}

// Filter is the common capability every filter kind implements: a
// Runner plus its declared cache granularity.
type Filter interface {
	Runner
	CacheGranularity() Granularity
}

// Deps bundles the shared infrastructure filters are built with. Not
// every filter uses every field.
type Deps struct {
	// HTTPClient is the endpoint's configured client, used by filters
	// that fetch over HTTP with no client override of their own.
	HTTPClient *httpclient.Client
	// NewClient builds a client from an explicit ClientConfig, for
	// filters (Merge, JsonToFeed) that may declare their own.
	NewClient func(httpclient.Config) *httpclient.Client

	ScriptEngine scriptengine.Engine

	ImageProxySigner *imageproxy.Signer
	ImageProxyConfig config.ImageProxyConfig

	// BuildPipeline constructs a nested Runner from a filter list, used
	// by Merge to run its sub-pipeline. Supplied by the endpoint
	// package, which imports both this package and
	// internal/usecase/pipeline.
	BuildPipeline func(filters []config.FilterConfig) (Runner, error)
}

// Build constructs the concrete Filter for one FilterConfig entry.
func Build(cfg config.FilterConfig, deps Deps) (Filter, error) {
	switch cfg.Kind {
	case "note":
		return buildNote(cfg)
	case "convert_to":
		return buildConvertTo(cfg)
	case "limit":
		return buildLimit(cfg)
	case "keep_only":
		return buildSelect(cfg, actionInclude)
	case "discard":
		return buildSelect(cfg, actionExclude)
	case "sanitize":
		return buildSanitize(cfg)
	case "remove_element":
		return buildElementFilter(cfg, elementActionRemove)
	case "keep_element":
		return buildElementFilter(cfg, elementActionKeep)
	case "split":
		return buildSplit(cfg)
	case "highlight":
		return buildHighlight(cfg)
	case "magnet":
		return buildMagnet(cfg)
	case "merge":
		return buildMerge(cfg, deps)
	case "full_text":
		return buildFullText(cfg, deps)
	case "simplify_html":
		return buildSimplifyHTML(cfg)
	case "json_to_feed":
		return buildJSONToFeed(cfg, deps)
	case "image_proxy":
		return buildImageProxy(cfg, deps)
	case "js":
		return buildJS(cfg, deps)
	case "modify_post":
		return buildModifyPost(cfg, deps)
	case "modify_feed":
		return buildModifyFeed(cfg, deps)
	default:
		return nil, fmt.Errorf("%w: unknown filter kind %q", ErrConfig, cfg.Kind)
	}
}
