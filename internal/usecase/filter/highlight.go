package filter

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"feedgate/internal/config"
	"feedgate/internal/domain/feed"
	"feedgate/internal/domain/filterctx"
)

const defaultHighlightColor = "#ffff00"

// highlightConfig accepts either a keyword list (escaped to literal
// patterns) or a list of raw regex patterns, plus an optional
// background color — grounded on
// original_source/src/filter/highlight.rs's KeywordsOrPatterns.
type highlightConfig struct {
	Keywords []string `yaml:"keywords,omitempty"`
	Patterns []string `yaml:"patterns,omitempty"`
	BGColor  string   `yaml:"bg_color,omitempty"`
}

type highlightFilter struct {
	patterns []*regexp.Regexp
	bgColor  string
}

func buildHighlight(cfg config.FilterConfig) (Filter, error) {
	var c highlightConfig
	if err := cfg.Raw.Decode(&c); err != nil {
		return nil, fmt.Errorf("%w: highlight: %v", ErrConfig, err)
	}
	if (len(c.Keywords) == 0) == (len(c.Patterns) == 0) {
		return nil, fmt.Errorf("%w: highlight: exactly one of keywords or patterns must be specified", ErrConfig)
	}

	var raw []string
	if len(c.Keywords) > 0 {
		for _, k := range c.Keywords {
			raw = append(raw, regexp.QuoteMeta(k))
		}
	} else {
		raw = c.Patterns
	}

	patterns := make([]*regexp.Regexp, 0, len(raw))
	for _, p := range raw {
		re, err := regexp.Compile("(?i)" + p)
		if err != nil {
			return nil, fmt.Errorf("%w: highlight: invalid pattern %q: %v", ErrConfig, p, err)
		}
		patterns = append(patterns, re)
	}

	bgColor := c.BGColor
	if bgColor == "" {
		bgColor = defaultHighlightColor
	}

	return highlightFilter{patterns: patterns, bgColor: bgColor}, nil
}

// textSpan is one offset range a single matching pattern claims within
// a text node, used to find the earliest-starting match across every
// configured pattern, mirroring segmentize_text's cursor loop.
type textSpan struct {
	start, end int
}

func (h highlightFilter) earliestMatch(text string, from int) (textSpan, bool) {
	best := textSpan{-1, -1}
	for _, re := range h.patterns {
		loc := re.FindStringIndex(text[from:])
		if loc == nil {
			continue
		}
		start, end := loc[0]+from, loc[1]+from
		if best.start == -1 || start < best.start {
			best = textSpan{start, end}
		}
	}
	return best, best.start != -1
}

// segmentize splits text into alternating plain/highlighted runs,
// choosing at each cursor position the match that starts earliest
// among all configured patterns.
func (h highlightFilter) segmentize(text string) []string {
	type segment struct {
		text        string
		highlighted bool
	}
	var segments []segment
	cursor := 0
	for cursor < len(text) {
		m, ok := h.earliestMatch(text, cursor)
		if !ok {
			break
		}
		if m.start > cursor {
			segments = append(segments, segment{text: text[cursor:m.start]})
		}
		segments = append(segments, segment{text: text[m.start:m.end], highlighted: true})
		cursor = m.end
	}
	if cursor < len(text) {
		segments = append(segments, segment{text: text[cursor:]})
	}

	out := make([]string, 0, len(segments))
	for _, s := range segments {
		if s.highlighted {
			out = append(out, fmt.Sprintf(`<span class="rss-funnel-hl" style="background-color: %s">%s</span>`, h.bgColor, html.EscapeString(s.text)))
		} else {
			out = append(out, html.EscapeString(s.text))
		}
	}
	return out
}

func (h highlightFilter) hasMatch(text string) bool {
	for _, re := range h.patterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

func (h highlightFilter) highlightHTML(description string) (string, error) {
	nodes, err := html.ParseFragment(strings.NewReader(description), &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body})
	if err != nil {
		return "", fmt.Errorf("%w: highlight: %v", ErrFilter, err)
	}

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode && h.hasMatch(n.Data) {
			h.replaceTextNode(n)
			return
		}
		for c := n.FirstChild; c != nil; {
			next := c.NextSibling
			walk(c)
			c = next
		}
	}
	root := &html.Node{Type: html.ElementNode, Data: "body"}
	for _, n := range nodes {
		root.AppendChild(n)
	}
	walk(root)

	var b strings.Builder
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&b, c); err != nil {
			return "", fmt.Errorf("%w: highlight: %v", ErrFilter, err)
		}
	}
	return b.String(), nil
}

// replaceTextNode replaces a matched text node in place with the
// segmentized text/highlight runs, reparsed as sibling nodes.
func (h highlightFilter) replaceTextNode(n *html.Node) {
	rendered := strings.Join(h.segmentize(n.Data), "")
	frags, err := html.ParseFragment(strings.NewReader(rendered), &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body})
	if err != nil {
		return
	}
	parent := n.Parent
	if parent == nil {
		return
	}
	for _, f := range frags {
		parent.InsertBefore(f, n)
	}
	parent.RemoveChild(n)
}

func (h highlightFilter) Run(ctx context.Context, fctx *filterctx.Context, f feed.Feed) (feed.Feed, error) {
	out := f.Clone()
	for _, p := range out.Posts() {
		desc := p.Description()
		if desc == "" {
			continue
		}
		highlighted, err := h.highlightHTML(desc)
		if err != nil {
			return feed.Feed{}, err
		}
		p.SetDescription(highlighted)
	}
	return out, nil
}

func (highlightFilter) CacheGranularity() Granularity { return FeedAndPost }
