package filter

import (
	"context"
	"fmt"
	"regexp"

	"feedgate/internal/config"
	"feedgate/internal/domain/feed"
	"feedgate/internal/domain/filterctx"
)

// sanitizeReplaceConfig names a literal or regex pattern and its
// replacement, grounded on original_source/src/filter/sanitize.rs's
// ReplaceConfig.
type sanitizeReplaceConfig struct {
	From          string `yaml:"from"`
	To            string `yaml:"to"`
	CaseSensitive *bool  `yaml:"case_sensitive,omitempty"`
}

// sanitizeOpConfig is a single operation; exactly one field must be set.
type sanitizeOpConfig struct {
	Remove       *string                `yaml:"remove,omitempty"`
	RemoveRegex  *string                `yaml:"remove_regex,omitempty"`
	Replace      *sanitizeReplaceConfig `yaml:"replace,omitempty"`
	ReplaceRegex *sanitizeReplaceConfig `yaml:"replace_regex,omitempty"`
}

type sanitizeOp struct {
	needle *regexp.Regexp
	repl   string
}

func compileCaseAware(pattern string, caseSensitive *bool) (*regexp.Regexp, error) {
	if caseSensitive != nil && *caseSensitive {
		return regexp.Compile(pattern)
	}
	return regexp.Compile("(?i)" + pattern)
}

func (c sanitizeOpConfig) toOp() (sanitizeOp, error) {
	selected := 0
	for _, set := range []bool{c.Remove != nil, c.RemoveRegex != nil, c.Replace != nil, c.ReplaceRegex != nil} {
		if set {
			selected++
		}
	}
	if selected != 1 {
		return sanitizeOp{}, fmt.Errorf("%w: sanitize: exactly one of remove, remove_regex, replace, replace_regex must be specified", ErrConfig)
	}

	switch {
	case c.Remove != nil:
		re, err := compileCaseAware(regexp.QuoteMeta(*c.Remove), nil)
		if err != nil {
			return sanitizeOp{}, fmt.Errorf("%w: sanitize: %v", ErrConfig, err)
		}
		return sanitizeOp{needle: re, repl: ""}, nil
	case c.RemoveRegex != nil:
		re, err := compileCaseAware(*c.RemoveRegex, nil)
		if err != nil {
			return sanitizeOp{}, fmt.Errorf("%w: sanitize: invalid remove_regex %q: %v", ErrConfig, *c.RemoveRegex, err)
		}
		return sanitizeOp{needle: re, repl: ""}, nil
	case c.Replace != nil:
		re, err := compileCaseAware(regexp.QuoteMeta(c.Replace.From), c.Replace.CaseSensitive)
		if err != nil {
			return sanitizeOp{}, fmt.Errorf("%w: sanitize: %v", ErrConfig, err)
		}
		return sanitizeOp{needle: re, repl: c.Replace.To}, nil
	default:
		re, err := compileCaseAware(c.ReplaceRegex.From, c.ReplaceRegex.CaseSensitive)
		if err != nil {
			return sanitizeOp{}, fmt.Errorf("%w: sanitize: invalid replace_regex %q: %v", ErrConfig, c.ReplaceRegex.From, err)
		}
		return sanitizeOp{needle: re, repl: c.ReplaceRegex.To}, nil
	}
}

type sanitizeFilter struct {
	ops []sanitizeOp
}

func buildSanitize(cfg config.FilterConfig) (Filter, error) {
	var opConfigs []sanitizeOpConfig
	if err := cfg.Raw.Decode(&opConfigs); err != nil {
		return nil, fmt.Errorf("%w: sanitize: %v", ErrConfig, err)
	}

	ops := make([]sanitizeOp, 0, len(opConfigs))
	for _, oc := range opConfigs {
		op, err := oc.toOp()
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
	}
	return sanitizeFilter{ops: ops}, nil
}

func (s sanitizeFilter) filterBody(body string) string {
	for _, op := range s.ops {
		body = op.needle.ReplaceAllString(body, op.repl)
	}
	return body
}

func (s sanitizeFilter) Run(ctx context.Context, fctx *filterctx.Context, f feed.Feed) (feed.Feed, error) {
	out := f.Clone()
	for _, p := range out.Posts() {
		p.SetDescription(s.filterBody(p.Description()))
		if p.Content() != "" {
			p.SetContent(s.filterBody(p.Content()))
		}
	}
	return out, nil
}

func (sanitizeFilter) CacheGranularity() Granularity { return FeedAndPost }
