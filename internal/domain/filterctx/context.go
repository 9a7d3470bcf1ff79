// Package filterctx defines the per-request mutable state threaded
// through a filter pipeline run.
package filterctx

// Context is the per-request mutable record carried through a
// pipeline run. Filters read it to resolve relative URLs,
// recover request-supplied values, or honor a skip-index override; the
// Merge filter forks a Subcontext to run a nested pipeline.
type Context struct {
	// BaseURL overrides relative-source resolution (request's `base`
	// query parameter, or the endpoint's configured base).
	BaseURL string
	// SourceURL is the dynamic `?source=` override, if any.
	SourceURL string
	// FilterSkip is the set of filter indices to skip this request
	// (from `pp`/`filter_skip`).
	FilterSkip map[int]struct{}
	// ExtraQueries holds every query parameter that isn't one of the
	// endpoint-service's reserved names; used by Templated sources and
	// filters that read request-scoped values.
	ExtraQueries map[string]string
	// LimitFilters caps how many configured filters run (`pp` as a bare
	// count N); nil means "run them all".
	LimitFilters *int
}

// New returns a Context with its maps initialized.
func New() *Context {
	return &Context{
		FilterSkip:   map[int]struct{}{},
		ExtraQueries: map[string]string{},
	}
}

// Skips reports whether the pipeline should skip the filter at index i.
func (c *Context) Skips(i int) bool {
	if c.FilterSkip == nil {
		return false
	}
	_, skip := c.FilterSkip[i]
	return skip
}

// Subcontext clones BaseURL and ExtraQueries but clears SourceURL and
// FilterSkip. Used by the Merge filter to run a nested pipeline without
// inheriting the parent request's dynamic source or skip set.
func (c *Context) Subcontext() *Context {
	extra := make(map[string]string, len(c.ExtraQueries))
	for k, v := range c.ExtraQueries {
		extra[k] = v
	}
	return &Context{
		BaseURL:      c.BaseURL,
		ExtraQueries: extra,
		FilterSkip:   map[int]struct{}{},
	}
}
