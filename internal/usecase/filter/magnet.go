package filter

import (
	"context"
	"fmt"
	"regexp"

	"feedgate/internal/config"
	"feedgate/internal/domain/feed"
	"feedgate/internal/domain/filterctx"
)

// magnetLinkRegex matches a full magnet URI carrying either a v1
// (40-hex btih) or v2 (68-hex btmh) info hash.
var (
	magnetLinkRegex = regexp.MustCompile(`(?i)\bmagnet:\?xt=urn:bt(ih|mh):[a-fA-F0-9]{40,68}(&\w+=[^\s]+)*\b`)
	infoHashRegex   = regexp.MustCompile(`(?i)\b[a-fA-F0-9]{40}([a-fA-F0-9]{28})?\b`)
)

type magnetConfig struct {
	InfoHash         bool `yaml:"info_hash,omitempty"`
	OverrideExisting bool `yaml:"override_existing,omitempty"`
}

type magnetFilter struct {
	infoHash         bool
	overrideExisting bool
}

func buildMagnet(cfg config.FilterConfig) (Filter, error) {
	var c magnetConfig
	if err := cfg.Raw.Decode(&c); err != nil {
		return nil, fmt.Errorf("%w: magnet: %v", ErrConfig, err)
	}
	return magnetFilter{infoHash: c.InfoHash, overrideExisting: c.OverrideExisting}, nil
}

// findMagnetLinks scans text for magnet URIs, or for bare 40-char info
// hashes when InfoHash mode is enabled.
func (m magnetFilter) findMagnetLinks(text string) []string {
	if m.infoHash {
		matches := infoHashRegex.FindAllString(text, -1)
		out := make([]string, len(matches))
		for i, h := range matches {
			out[i] = "magnet:?xt=urn:btih:" + h
		}
		return out
	}
	return magnetLinkRegex.FindAllString(text, -1)
}

func existingMagnetLink(p feed.Post) string {
	if p.Format == feed.FormatAtom {
		for _, l := range p.Atom.Links {
			if len(l.Href) >= len("magnet:") && l.Href[:len("magnet:")] == "magnet:" {
				return l.Href
			}
		}
		return ""
	}
	if p.RSS.Enclosure != nil && p.RSS.Enclosure.Type == "application/x-bittorrent" {
		return p.RSS.Enclosure.URL
	}
	return ""
}

// setMagnetLink attaches a discovered magnet link when the post has
// none yet, and replaces an existing one only when overrideExisting is
// set — always attach when absent, replace only when asked to.
func (m magnetFilter) setMagnetLink(p feed.Post, link string) {
	has := existingMagnetLink(p) != ""
	if has && !m.overrideExisting {
		return
	}

	if p.Format == feed.FormatAtom {
		p.Atom.Links = append(p.Atom.Links, feed.Link{Href: link, Type: "application/x-bittorrent"})
		return
	}
	p.RSS.Enclosure = &feed.Enclosure{URL: link, Type: "application/x-bittorrent"}
}

func (m magnetFilter) Run(ctx context.Context, fctx *filterctx.Context, f feed.Feed) (feed.Feed, error) {
	out := f.Clone()
	for _, p := range out.Posts() {
		var found string
		for _, body := range p.Bodies() {
			links := m.findMagnetLinks(body)
			if len(links) > 0 {
				found = links[0]
				break
			}
		}
		if found != "" {
			m.setMagnetLink(p, found)
		}
	}
	return out, nil
}

func (magnetFilter) CacheGranularity() Granularity { return FeedAndPost }
