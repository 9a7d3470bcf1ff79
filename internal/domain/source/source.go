package source

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"feedgate/internal/domain/feed"
	"feedgate/internal/domain/filterctx"
)

// Kind discriminates the four Source variants.
type Kind int

const (
	KindAbsoluteURL Kind = iota
	KindRelativeURL
	KindTemplated
	KindFromScratch
)

// reservedNames are request parameter names a placeholder must not
// collide with.
var reservedNames = map[string]struct{}{
	"source":      {},
	"limit_posts": {},
	"filter_skip": {},
	"base":        {},
	"pp":          {},
}

// Placeholder is one `${name}` substitution site in a Templated source.
type Placeholder struct {
	Default           *string
	ValidationPattern string
	validation        *regexp.Regexp
}

// Source is the tagged variant over {AbsoluteUrl, RelativeUrl,
// Templated, FromScratch}.
type Source struct {
	Kind Kind

	// AbsoluteUrl / RelativeUrl
	URL string

	// Templated
	Template     string
	Placeholders map[string]*Placeholder

	// FromScratch
	Format      feed.Format
	Title       string
	Link        string
	Description string
}

var placeholderRE = regexp.MustCompile(`\$\{(\w+)\}`)

// NewTemplated builds and validates a Templated source. Invariants
//: every `${name}` in template
// has a placeholder definition and vice versa; no placeholder name
// collides with a reserved request parameter; every validation_regex
// compiles. Grounded on original_source/src/source.rs's
// `validate_placeholders`.
func NewTemplated(template string, placeholders map[string]*Placeholder) (*Source, error) {
	found := map[string]struct{}{}
	for _, m := range placeholderRE.FindAllStringSubmatch(template, -1) {
		found[m[1]] = struct{}{}
	}
	for name := range found {
		if _, ok := placeholders[name]; !ok {
			return nil, fmt.Errorf("%w: %q used in template but has no placeholder definition", ErrInvalidTemplate, name)
		}
	}
	for name, p := range placeholders {
		if _, ok := found[name]; !ok {
			return nil, fmt.Errorf("%w: placeholder %q defined but not used in template", ErrInvalidTemplate, name)
		}
		if _, reserved := reservedNames[name]; reserved {
			return nil, fmt.Errorf("%w: placeholder name %q collides with a reserved request parameter", ErrInvalidTemplate, name)
		}
		if p.ValidationPattern != "" {
			re, err := regexp.Compile(p.ValidationPattern)
			if err != nil {
				return nil, fmt.Errorf("%w: placeholder %q validation_regex: %v", ErrInvalidTemplate, name, err)
			}
			p.validation = re
		}
	}
	return &Source{Kind: KindTemplated, Template: template, Placeholders: placeholders}, nil
}

// Fetcher is the minimal capability Source needs from the HTTP client
// wrapper; kept as an interface here to avoid a
// dependency from domain/source onto infra/httpclient.
type Fetcher interface {
	FetchFeed(ctx context.Context, url string) (feed.Feed, error)
}

// FetchFeed resolves and fetches the concrete feed for this source by
// dispatching on its Kind.
func (s *Source) FetchFeed(ctx context.Context, fctx *filterctx.Context, client Fetcher) (feed.Feed, error) {
	switch s.Kind {
	case KindFromScratch:
		return feed.NewFeed(s.Format, s.Title, s.Link, s.Description), nil

	case KindTemplated:
		resolved, err := s.resolveTemplate(fctx)
		if err != nil {
			return feed.Feed{}, err
		}
		return client.FetchFeed(ctx, resolved)

	case KindAbsoluteURL:
		return client.FetchFeed(ctx, s.URL)

	case KindRelativeURL:
		if fctx.BaseURL == "" {
			return feed.Feed{}, ErrBaseURLNotInferred
		}
		joined, err := joinURL(fctx.BaseURL, s.URL)
		if err != nil {
			return feed.Feed{}, fmt.Errorf("%w: %v", ErrBaseURLNotInferred, err)
		}
		return client.FetchFeed(ctx, joined)

	default:
		return feed.Feed{}, fmt.Errorf("source: unknown kind %d", s.Kind)
	}
}

// resolveTemplate substitutes every `${name}` with the request value,
// the placeholder's default, or fails; each substituted value is
// validated (if a regex is configured) and URL-encoded before splicing.
func (s *Source) resolveTemplate(fctx *filterctx.Context) (string, error) {
	out := s.Template
	for name, p := range s.Placeholders {
		value, ok := fctx.ExtraQueries[name]
		if !ok {
			if p.Default == nil {
				return "", fmt.Errorf("%w: %q", ErrMissingPlaceholder, name)
			}
			value = *p.Default
		}
		if p.validation != nil && !p.validation.MatchString(value) {
			return "", fmt.Errorf("%w: %q value %q does not match %q", ErrTemplateValidation, name, value, p.ValidationPattern)
		}
		out = strings.ReplaceAll(out, "${"+name+"}", url.QueryEscape(value))
	}
	return out, nil
}

func joinURL(base, ref string) (string, error) {
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	refURL, err := url.Parse(ref)
	if err != nil {
		return "", err
	}
	return baseURL.ResolveReference(refURL).String(), nil
}

// ResolveSource is a convenience used by an endpoint service when the
// request overrides the configured source entirely (request's
// `?source=` parameter): it wraps a raw URL as an AbsoluteUrl source.
func ResolveSource(rawURL string) *Source {
	return &Source{Kind: KindAbsoluteURL, URL: rawURL}
}
