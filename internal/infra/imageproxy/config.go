// Package imageproxy implements the signed /_image proxy used by the
// ImageProxy filter's "internal" mode, grounded on
// original_source/src/server/image_proxy.rs.
package imageproxy

import (
	"fmt"
	"net/url"
	"strings"
)

// Referer names what the proxy sends as the Referer header when
// fetching the upstream image, mirroring the original's Referer enum
// (a bare string is treated as a fixed value).
type Referer string

const (
	RefererNone            Referer = "none"
	RefererImageURL        Referer = "image_url"
	RefererImageURLDomain  Referer = "image_url_domain"
	RefererDefault                 = RefererImageURL
)

// Value resolves the Referer header to send for the given image URL.
func (r Referer) Value(imageURL string) (string, error) {
	switch r {
	case "", RefererImageURL:
		return imageURL, nil
	case RefererNone:
		return "", nil
	case RefererImageURLDomain:
		u, err := url.Parse(imageURL)
		if err != nil || u.Hostname() == "" {
			return "", fmt.Errorf("imageproxy: cannot derive referer domain from %q", imageURL)
		}
		return u.Scheme + "://" + u.Hostname(), nil
	default:
		return string(r), nil
	}
}

// UserAgent names what the proxy sends as the User-Agent header,
// mirroring the original's UserAgent enum.
type UserAgent string

const (
	UserAgentNone        UserAgent = "none"
	UserAgentTransparent UserAgent = "transparent"
	UserAgentFeedgate    UserAgent = "feedgate"
	UserAgentDefault               = UserAgentTransparent
)

// Value resolves the User-Agent header to send, given the incoming
// client request's own User-Agent for "transparent" passthrough.
func (u UserAgent) Value(clientUserAgent string) string {
	switch u {
	case "", UserAgentTransparent:
		return clientUserAgent
	case UserAgentNone:
		return ""
	case UserAgentFeedgate:
		return "feedgate/1.0"
	default:
		return string(u)
	}
}

// Config is the per-rewrite proxy policy, serialized into the /_image
// query string and re-validated against its signature on each request.
type Config struct {
	Referer   Referer   `json:"referer,omitempty"`
	UserAgent UserAgent `json:"user_agent,omitempty"`
	Proxy     string    `json:"proxy,omitempty"`
}

// ToQuery builds the signed query string for an internal-mode image
// URL rewrite: "?referer=...&user_agent=...&url=...&sig=...".
func (c Config) ToQuery(signer *Signer, imageURL string) string {
	sig := signer.Sign(c, imageURL)

	var params []string
	if c.Referer != "" {
		params = append(params, "referer="+url.QueryEscape(string(c.Referer)))
	}
	if c.UserAgent != "" {
		params = append(params, "user_agent="+url.QueryEscape(string(c.UserAgent)))
	}
	if c.Proxy != "" {
		params = append(params, "proxy="+url.QueryEscape(c.Proxy))
	}
	params = append(params, "url="+url.QueryEscape(imageURL))
	params = append(params, "sig="+sig)

	return strings.Join(params, "&")
}
