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

// splitConfig names the CSS selector that carves one post's body into
// several. There is no original_source reference for this filter —
// it is built directly from its one-line description, reusing the
// selector-matching idiom already established by RemoveElement/
// KeepElement.
type splitConfig struct {
	Selector string `yaml:"selector"`
}

type splitFilter struct {
	selector string
}

func buildSplit(cfg config.FilterConfig) (Filter, error) {
	var c splitConfig
	if err := cfg.Raw.Decode(&c); err != nil {
		return nil, fmt.Errorf("%w: split: %v", ErrConfig, err)
	}
	if c.Selector == "" {
		return nil, fmt.Errorf("%w: split: selector is required", ErrConfig)
	}
	if _, err := cascadia.ParseGroup(c.Selector); err != nil {
		return nil, fmt.Errorf("%w: split: bad selector %q: %v", ErrConfig, c.Selector, err)
	}
	return splitFilter{selector: c.Selector}, nil
}

// splitPost fans a single post out into one post per selector match,
// each carrying the matched fragment as its description and a GUID
// derived from the original plus its index. A post with no matches
// passes through unchanged.
func (s splitFilter) splitPost(p feed.Post) ([]feed.Post, error) {
	body := p.Description()
	if body == "" {
		return []feed.Post{p}, nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: split: %v", ErrFilter, err)
	}

	sel := doc.Find(s.selector)
	if sel.Length() == 0 {
		return []feed.Post{p}, nil
	}

	out := make([]feed.Post, 0, sel.Length())
	sel.Each(func(i int, node *goquery.Selection) {
		fragment, err := goquery.OuterHtml(node)
		if err != nil {
			return
		}
		child := p.Clone()
		child.SetDescription(fragment)
		if child.Format == feed.FormatAtom {
			child.Atom.ID = fmt.Sprintf("%s#%d", p.GUID(), i)
		} else {
			child.RSS.GUID = fmt.Sprintf("%s#%d", p.GUID(), i)
		}
		out = append(out, child)
	})
	return out, nil
}

func (s splitFilter) Run(ctx context.Context, fctx *filterctx.Context, f feed.Feed) (feed.Feed, error) {
	posts := f.Posts()
	result := make([]feed.Post, 0, len(posts))
	for _, p := range posts {
		split, err := s.splitPost(p)
		if err != nil {
			return feed.Feed{}, err
		}
		result = append(result, split...)
	}
	out := f.Clone()
	out.SetPosts(result)
	return out, nil
}

func (splitFilter) CacheGranularity() Granularity { return FeedOnly }
