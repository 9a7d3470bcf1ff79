// Package pipeline runs an ordered list of filters against a feed,
// honoring a request's skip set and filter-count limit.
package pipeline

import (
	"context"
	"fmt"

	"feedgate/internal/domain/feed"
	"feedgate/internal/domain/filterctx"
	"feedgate/internal/usecase/filter"
)

// Pipeline runs its filters strictly in order: filter i+1 observes the
// complete output of filter i. It satisfies filter.Runner so it can
// itself be nested (via filter.Deps.BuildPipeline) inside the Merge
// filter.
type Pipeline struct {
	filters []filter.Filter
}

// New builds a Pipeline from an ordered filter list.
func New(filters []filter.Filter) *Pipeline {
	return &Pipeline{filters: filters}
}

// Filters returns the pipeline's ordered filter list, exposing each
// filter's declared cache granularity to the filter cache wrapping
// this pipeline.
func (p *Pipeline) Filters() []filter.Filter {
	return p.filters
}

// Run executes the pipeline: N = fctx.LimitFilters or len(filters);
// of the first N filters, any index in fctx.FilterSkip is skipped.
func (p *Pipeline) Run(ctx context.Context, fctx *filterctx.Context, f feed.Feed) (feed.Feed, error) {
	n := len(p.filters)
	if fctx != nil && fctx.LimitFilters != nil && *fctx.LimitFilters < n {
		n = *fctx.LimitFilters
	}

	current := f
	for i := 0; i < n; i++ {
		if fctx != nil && fctx.Skips(i) {
			continue
		}
		next, err := p.filters[i].Run(ctx, fctx, current)
		if err != nil {
			return feed.Feed{}, fmt.Errorf("pipeline: filter %d: %w", i, err)
		}
		current = next
	}
	return current, nil
}
