package source

import (
	"fmt"

	"feedgate/internal/config"
	"feedgate/internal/domain/feed"
)

// absoluteURLConfig and relativeURLConfig are both bare-string YAML
// shapes: `{absolute_url: "https://..."}` / `{relative_url: "/feed"}`.

// placeholderConfig is one entry in a Templated source's `placeholders` map.
type placeholderConfig struct {
	Default    *string `yaml:"default,omitempty"`
	Validation string  `yaml:"validation,omitempty"`
}

// templatedConfig is the `templated` source's YAML shape.
type templatedConfig struct {
	Template     string                       `yaml:"template"`
	Placeholders map[string]placeholderConfig `yaml:"placeholders,omitempty"`
}

// fromScratchConfig is the `from_scratch` source's YAML shape.
type fromScratchConfig struct {
	Format      string `yaml:"format,omitempty"`
	Title       string `yaml:"title,omitempty"`
	Link        string `yaml:"link,omitempty"`
	Description string `yaml:"description,omitempty"`
}

// Build constructs a Source from its configured tagged-mapping form,
// dispatching on cfg.Kind.
func Build(cfg config.SourceConfig) (*Source, error) {
	switch cfg.Kind {
	case "absolute_url":
		var url string
		if err := cfg.Raw.Decode(&url); err != nil {
			return nil, fmt.Errorf("%w: absolute_url: %v", config.ErrInvalidSource, err)
		}
		return &Source{Kind: KindAbsoluteURL, URL: url}, nil

	case "relative_url":
		var url string
		if err := cfg.Raw.Decode(&url); err != nil {
			return nil, fmt.Errorf("%w: relative_url: %v", config.ErrInvalidSource, err)
		}
		return &Source{Kind: KindRelativeURL, URL: url}, nil

	case "templated":
		var tc templatedConfig
		if err := cfg.Raw.Decode(&tc); err != nil {
			return nil, fmt.Errorf("%w: templated: %v", config.ErrInvalidSource, err)
		}
		placeholders := make(map[string]*Placeholder, len(tc.Placeholders))
		for name, p := range tc.Placeholders {
			placeholders[name] = &Placeholder{Default: p.Default, ValidationPattern: p.Validation}
		}
		src, err := NewTemplated(tc.Template, placeholders)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", config.ErrInvalidSource, err)
		}
		return src, nil

	case "from_scratch":
		var fc fromScratchConfig
		if err := cfg.Raw.Decode(&fc); err != nil {
			return nil, fmt.Errorf("%w: from_scratch: %v", config.ErrInvalidSource, err)
		}
		format := feed.FormatRSS
		if fc.Format == "atom" {
			format = feed.FormatAtom
		}
		return &Source{
			Kind:        KindFromScratch,
			Format:      format,
			Title:       fc.Title,
			Link:        fc.Link,
			Description: fc.Description,
		}, nil

	default:
		return nil, fmt.Errorf("%w: unknown source kind %q", config.ErrInvalidSource, cfg.Kind)
	}
}
