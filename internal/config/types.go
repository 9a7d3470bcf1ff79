// Package config holds the declarative gateway configuration: the
// YAML-loaded shape of endpoints, sources, filters, and client
// policies, as distinct from the env-var bootstrap
// config in env.go.
package config

import (
	"time"

	"gopkg.in/yaml.v3"
)

// AppConfig is the top-level YAML document: `{auth?, http?, base_url?, endpoints}`.
type AppConfig struct {
	Auth      *BasicAuthConfig `yaml:"auth,omitempty"`
	HTTP      *HTTPConfig      `yaml:"http,omitempty"`
	// BaseURL is the app-wide base used to resolve RelativeUrl sources
	// when a request doesn't supply its own `base` override.
	BaseURL   string           `yaml:"base_url,omitempty"`
	Endpoints []EndpointConfig `yaml:"endpoints"`
}

// BasicAuthConfig gates every endpoint behind a single HTTP Basic
// credential pair.
type BasicAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// HTTPConfig carries the server listen address and timeouts.
type HTTPConfig struct {
	Addr         string        `yaml:"addr,omitempty"`
	ReadTimeout  time.Duration `yaml:"read_timeout,omitempty"`
	WriteTimeout time.Duration `yaml:"write_timeout,omitempty"`
}

// EndpointConfig binds one URL path to a source and filter pipeline.
type EndpointConfig struct {
	Path            string         `yaml:"path"`
	Note            string         `yaml:"note,omitempty"`
	Source          *SourceConfig  `yaml:"source,omitempty"`
	Filters         []FilterConfig `yaml:"filters"`
	OnTheFlyFilters bool           `yaml:"on_the_fly_filters,omitempty"`
	Client          *ClientConfig  `yaml:"client,omitempty"`
	Cache           *FilterCacheConfig `yaml:"cache,omitempty"`
}

// ClientConfig configures the per-endpoint HTTP client wrapper: user
// agent, extra headers, timeout, plus response-cache sizing.
type ClientConfig struct {
	UserAgent         string            `yaml:"user_agent,omitempty"`
	Headers           map[string]string `yaml:"headers,omitempty"`
	Accept            string            `yaml:"accept,omitempty"`
	Timeout           time.Duration     `yaml:"timeout,omitempty"`
	ResponseCacheSize int               `yaml:"response_cache_size,omitempty"`
	ResponseCacheTTL  time.Duration     `yaml:"response_cache_ttl,omitempty"`
}

// FilterCacheConfig exposes the two-level filter cache's capacities
// and TTLs; a zero value for any field falls back to the built-in
// default (5/12h feed, 40/1h post).
type FilterCacheConfig struct {
	FeedCacheSize int           `yaml:"feed_cache_size,omitempty"`
	FeedCacheTTL  time.Duration `yaml:"feed_cache_ttl,omitempty"`
	PostCacheSize int           `yaml:"post_cache_size,omitempty"`
	PostCacheTTL  time.Duration `yaml:"post_cache_ttl,omitempty"`
}

// SourceConfig is the tagged union over {absolute_url, relative_url,
// templated, from_scratch}. It unmarshals
// from a single-key YAML mapping, e.g. `{absolute_url: "https://..."}`.
type SourceConfig struct {
	Kind string
	Raw  yaml.Node
}

// UnmarshalYAML captures the tag (the sole mapping key) and the raw
// node for later decoding by internal/domain/source's config builder,
// mirroring FilterConfig's tagged-mapping handling below.
func (s *SourceConfig) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode || len(node.Content) != 2 {
		return &ValidationError{Field: "source", Msg: "expected a single-key mapping {kind: config}"}
	}
	s.Kind = node.Content[0].Value
	s.Raw = *node.Content[1]
	return nil
}

// FilterConfig is a tagged mapping `{<filter-kind>: <config>}`. The kind selects one of the 17 filter constructors in
// internal/usecase/filter; Raw is decoded into that filter's own
// config struct by filter.Build.
type FilterConfig struct {
	Kind string
	Raw  yaml.Node
}

func (f *FilterConfig) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.MappingNode:
		if len(node.Content) != 2 {
			return &ValidationError{Field: "filters", Msg: "expected a single-key mapping {kind: config}"}
		}
		f.Kind = node.Content[0].Value
		f.Raw = *node.Content[1]
		return nil
	case yaml.ScalarNode:
		// Bare scalar form, e.g. `- note` with no config, matching a
		// filter kind with an empty mapping config.
		f.Kind = node.Value
		f.Raw = yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		return nil
	default:
		return &ValidationError{Field: "filters", Msg: "expected a mapping or bare scalar"}
	}
}

// ImageProxyConfig resolves Open Question (c): an explicit mode field
// rather than a loosely defined environment flag.
type ImageProxyConfig struct {
	Mode    string `yaml:"mode"` // "external" | "internal"
	BaseURL string `yaml:"base_url,omitempty"`
}
