package filter

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"

	"feedgate/internal/config"
	"feedgate/internal/domain/feed"
	"feedgate/internal/domain/filterctx"
)

// elementAction distinguishes RemoveElement from KeepElement, grounded
// on original_source/src/filter/html.rs's RemoveElement (KeepElement
// is its logical inverse: drop everything that does NOT match).
type elementAction int

const (
	elementActionRemove elementAction = iota
	elementActionKeep
)

type elementConfig struct {
	Selectors []string `yaml:"selectors"`
}

type elementFilter struct {
	selectors []string
	action    elementAction
}

func buildElementFilter(cfg config.FilterConfig, action elementAction) (Filter, error) {
	var c elementConfig
	if err := cfg.Raw.Decode(&c); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	}
	if len(c.Selectors) == 0 {
		return nil, fmt.Errorf("%w: at least one selector is required", ErrConfig)
	}
	for _, s := range c.Selectors {
		if _, err := cascadia.ParseGroup(s); err != nil {
			return nil, fmt.Errorf("%w: bad selector %q: %v", ErrConfig, s, err)
		}
	}
	return elementFilter{selectors: c.Selectors, action: action}, nil
}

func (e elementFilter) filterContent(content string) (string, error) {
	if content == "" {
		return content, nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFilter, err)
	}

	switch e.action {
	case elementActionKeep:
		matched := map[*goquery.Selection]struct{}{}
		var kept []*goquery.Selection
		for _, sel := range e.selectors {
			doc.Find(sel).Each(func(_ int, s *goquery.Selection) {
				if _, ok := matched[s]; !ok {
					matched[s] = struct{}{}
					kept = append(kept, s)
				}
			})
		}
		body := doc.Find("body")
		if body.Length() == 0 {
			body = doc.Selection
		}
		var b strings.Builder
		for _, s := range kept {
			html, err := goquery.OuterHtml(s)
			if err != nil {
				return "", fmt.Errorf("%w: %v", ErrFilter, err)
			}
			b.WriteString(html)
		}
		return b.String(), nil
	default:
		for _, sel := range e.selectors {
			doc.Find(sel).Remove()
		}
		html, err := doc.Find("body").Html()
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrFilter, err)
		}
		return html, nil
	}
}

func (e elementFilter) Run(ctx context.Context, fctx *filterctx.Context, f feed.Feed) (feed.Feed, error) {
	out := f.Clone()
	for _, p := range out.Posts() {
		filtered, err := e.filterContent(p.Description())
		if err != nil {
			return feed.Feed{}, err
		}
		p.SetDescription(filtered)
	}
	return out, nil
}

func (elementFilter) CacheGranularity() Granularity { return FeedAndPost }
