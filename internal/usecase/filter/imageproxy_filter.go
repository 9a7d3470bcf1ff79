package filter

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/gobwas/glob"

	"feedgate/internal/config"
	"feedgate/internal/domain/feed"
	"feedgate/internal/domain/filterctx"
	"feedgate/internal/infra/imageproxy"
)

// imageProxyMode distinguishes rewriting to an external image-proxy
// base URL from rewriting through this gateway's own signed /_image
// endpoint, grounded on original_source/src/filter/image_proxy.rs's
// untagged ProxySettings enum.
type imageProxyMode string

const (
	imageProxyModeExternal imageProxyMode = "external"
	imageProxyModeInternal imageProxyMode = "internal"
)

// imageProxyFilterConfig names which <img> tags to rewrite and how.
type imageProxyFilterConfig struct {
	Domains   []string `yaml:"domains,omitempty"`
	Selector  string   `yaml:"selector,omitempty"`
	Base      string   `yaml:"base,omitempty"`
	URLEncode *bool    `yaml:"urlencode,omitempty"`
	Referer   string   `yaml:"referer,omitempty"`
	UserAgent string   `yaml:"user_agent,omitempty"`
	Proxy     string   `yaml:"proxy,omitempty"`
}

type imageProxyFilter struct {
	domains   []glob.Glob
	selector  string
	mode      imageProxyMode
	base      string
	urlencode bool
	internal  imageproxy.Config
	signer    *imageproxy.Signer
	baseURL   string
}

func buildImageProxy(cfg config.FilterConfig, deps Deps) (Filter, error) {
	var c imageProxyFilterConfig
	if err := cfg.Raw.Decode(&c); err != nil {
		return nil, fmt.Errorf("%w: image_proxy: %v", ErrConfig, err)
	}

	selector := c.Selector
	if selector == "" {
		selector = "img"
	}

	domains := make([]glob.Glob, 0, len(c.Domains))
	for _, d := range c.Domains {
		g, err := glob.Compile(d)
		if err != nil {
			return nil, fmt.Errorf("%w: image_proxy: bad domain glob %q: %v", ErrConfig, d, err)
		}
		domains = append(domains, g)
	}

	f := imageProxyFilter{domains: domains, selector: selector}

	if c.Base != "" {
		f.mode = imageProxyModeExternal
		f.base = c.Base
		if c.URLEncode != nil {
			f.urlencode = *c.URLEncode
		} else {
			f.urlencode = strings.HasSuffix(c.Base, "=")
		}
		return f, nil
	}

	f.mode = imageProxyModeInternal
	f.internal = imageproxy.Config{
		Referer:   imageproxy.Referer(c.Referer),
		UserAgent: imageproxy.UserAgent(c.UserAgent),
		Proxy:     c.Proxy,
	}
	f.signer = deps.ImageProxySigner
	f.baseURL = deps.ImageProxyConfig.BaseURL
	if f.signer == nil {
		return nil, fmt.Errorf("%w: image_proxy: internal mode requires an image proxy signer", ErrConfig)
	}
	return f, nil
}

func (f imageProxyFilter) matchesDomain(imageURL string) bool {
	if len(f.domains) == 0 {
		return true
	}
	u, err := url.Parse(imageURL)
	if err != nil || u.Hostname() == "" {
		return false
	}
	for _, g := range f.domains {
		if g.Match(u.Hostname()) {
			return true
		}
	}
	return false
}

func (f imageProxyFilter) rewriteURL(imageURL string) string {
	if f.mode == imageProxyModeExternal {
		encoded := imageURL
		if f.urlencode {
			encoded = url.QueryEscape(imageURL)
		}
		return f.base + encoded
	}

	query := f.internal.ToQuery(f.signer, imageURL)
	joined, err := url.JoinPath(f.baseURL, imageproxy.Route)
	if err != nil {
		return imageURL
	}
	return joined + "?" + query
}

func (f imageProxyFilter) rewriteHTML(body string) (string, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return body, false
	}

	changed := false
	doc.Find(f.selector).Each(func(_ int, s *goquery.Selection) {
		src, ok := s.Attr("src")
		if !ok || src == "" {
			return
		}
		if !f.matchesDomain(src) {
			return
		}
		s.SetAttr("src", f.rewriteURL(src))
		changed = true
	})
	if !changed {
		return body, false
	}

	html, err := doc.Find("body").Html()
	if err != nil {
		return body, false
	}
	return html, true
}

func (f imageProxyFilter) Run(ctx context.Context, fctx *filterctx.Context, in feed.Feed) (feed.Feed, error) {
	out := in.Clone()
	for _, p := range out.Posts() {
		for _, body := range p.Bodies() {
			if rewritten, changed := f.rewriteHTML(body); changed {
				if body == p.Description() {
					p.SetDescription(rewritten)
				} else {
					p.SetContent(rewritten)
				}
			}
		}
	}
	return out, nil
}

func (imageProxyFilter) CacheGranularity() Granularity { return FeedAndPost }
