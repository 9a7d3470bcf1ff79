package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadAppConfig parses the gateway's YAML configuration file once. It
// deliberately does not watch the file for changes — hot-reload is out
// of scope; Registry.Reload exists for a caller that wants to
// re-invoke this at a later time of its own choosing.
func LoadAppConfig(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks invariants that a hand-authored config file commonly
// violates: duplicate endpoint paths, and a path missing its leading
// slash. Per-source and per-filter build-time validation (placeholder
// consistency, regex compilation) happens later when each endpoint's
// Source and filter pipeline are actually constructed, so that a
// single config-build-time error can name exactly which endpoint and
// filter index failed.
func (c *AppConfig) Validate() error {
	seen := make(map[string]struct{}, len(c.Endpoints))
	for _, ep := range c.Endpoints {
		if ep.Path == "" {
			return &ValidationError{Field: "endpoints", Msg: "path must not be empty"}
		}
		if ep.Path[0] != '/' {
			return &ValidationError{Field: fmt.Sprintf("endpoints[%s]", ep.Path), Msg: "path must start with '/'"}
		}
		if _, dup := seen[ep.Path]; dup {
			return &ValidationError{Field: fmt.Sprintf("endpoints[%s]", ep.Path), Msg: "duplicate endpoint path"}
		}
		seen[ep.Path] = struct{}{}
	}
	return nil
}
