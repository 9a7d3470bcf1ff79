package filter

import (
	"context"
	"net/url"
	"strings"

	"github.com/go-shiori/go-readability"

	"feedgate/internal/config"
	"feedgate/internal/domain/feed"
	"feedgate/internal/domain/filterctx"
)

// simplifyHTMLFilter runs Readability extraction over each post's
// existing description, using the post's own link as the base URL —
// grounded on original_source/src/filter/simplify_html.rs's simplify().
// It takes no configuration.
type simplifyHTMLFilter struct{}

func buildSimplifyHTML(cfg config.FilterConfig) (Filter, error) {
	return simplifyHTMLFilter{}, nil
}

func simplify(text, link string) (string, bool) {
	base, err := url.Parse(link)
	if err != nil {
		return "", false
	}
	article, err := readability.FromReader(strings.NewReader(text), base)
	if err != nil {
		return "", false
	}
	if article.Content == "" {
		return "", false
	}
	return article.Content, true
}

func (simplifyHTMLFilter) Run(ctx context.Context, fctx *filterctx.Context, f feed.Feed) (feed.Feed, error) {
	out := f.Clone()
	for _, p := range out.Posts() {
		if simplified, ok := simplify(p.Description(), p.Link()); ok {
			p.SetDescription(simplified)
		}
	}
	return out, nil
}

func (simplifyHTMLFilter) CacheGranularity() Granularity { return FeedAndPost }
