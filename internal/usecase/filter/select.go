package filter

import (
	"context"
	"fmt"
	"regexp"

	"feedgate/internal/config"
	"feedgate/internal/domain/feed"
	"feedgate/internal/domain/filterctx"
)

// selectAction distinguishes KeepOnly from Discard, the only two
// differences between the two filter kinds.
type selectAction int

const (
	actionInclude selectAction = iota
	actionExclude
)

// selectField names which post text a Select filter scans, grounded
// on original_source/src/filter/select.rs's Field enum.
type selectField string

const (
	fieldTitle   selectField = "title"
	fieldContent selectField = "content"
	fieldAny     selectField = "any"
)

// matchConfig is the flexible match spec: a bare string, a list of
// strings (both shorthand for "contains"), or the full mapping with
// regex matches, contains substrings, a target field and case
// sensitivity.
type matchConfig struct {
	Matches       []string `yaml:"matches,omitempty"`
	Contains      []string `yaml:"contains,omitempty"`
	Field         string   `yaml:"field,omitempty"`
	CaseSensitive bool     `yaml:"case_sensitive,omitempty"`
}

func decodeMatchConfig(cfg config.FilterConfig) (matchConfig, error) {
	var s string
	if err := cfg.Raw.Decode(&s); err == nil {
		return matchConfig{Contains: []string{s}}, nil
	}
	var ss []string
	if err := cfg.Raw.Decode(&ss); err == nil {
		return matchConfig{Contains: ss}, nil
	}
	var m matchConfig
	if err := cfg.Raw.Decode(&m); err != nil {
		return matchConfig{}, fmt.Errorf("%w: %v", ErrConfig, err)
	}
	return m, nil
}

type selectFilter struct {
	patterns []*regexp.Regexp
	field    selectField
	action   selectAction
}

func buildSelect(cfg config.FilterConfig, action selectAction) (Filter, error) {
	m, err := decodeMatchConfig(cfg)
	if err != nil {
		return nil, err
	}

	field := fieldAny
	switch selectField(m.Field) {
	case fieldTitle, fieldContent, fieldAny:
		if m.Field != "" {
			field = selectField(m.Field)
		}
	case "":
	default:
		return nil, fmt.Errorf("%w: select: unknown field %q", ErrConfig, m.Field)
	}

	prefix := "(?i)"
	if m.CaseSensitive {
		prefix = ""
	}

	var patterns []*regexp.Regexp
	for _, expr := range m.Matches {
		re, err := regexp.Compile(prefix + expr)
		if err != nil {
			return nil, fmt.Errorf("%w: select: invalid regex %q: %v", ErrConfig, expr, err)
		}
		patterns = append(patterns, re)
	}
	for _, lit := range m.Contains {
		re, err := regexp.Compile(prefix + regexp.QuoteMeta(lit))
		if err != nil {
			return nil, fmt.Errorf("%w: select: invalid contains literal %q: %v", ErrConfig, lit, err)
		}
		patterns = append(patterns, re)
	}

	return selectFilter{patterns: patterns, field: field, action: action}, nil
}

func (s selectFilter) haystack(p feed.Post) []string {
	switch s.field {
	case fieldTitle:
		return []string{p.Title()}
	case fieldContent:
		return []string{p.Description()}
	default:
		return []string{p.Title(), p.Description()}
	}
}

func (s selectFilter) matches(p feed.Post) bool {
	for _, text := range s.haystack(p) {
		if text == "" {
			continue
		}
		for _, re := range s.patterns {
			if re.MatchString(text) {
				return true
			}
		}
	}
	return false
}

func (s selectFilter) shouldKeep(p feed.Post) bool {
	matched := s.matches(p)
	if s.action == actionExclude {
		return !matched
	}
	return matched
}

func (s selectFilter) Run(ctx context.Context, fctx *filterctx.Context, f feed.Feed) (feed.Feed, error) {
	posts := f.Posts()
	kept := make([]feed.Post, 0, len(posts))
	for _, p := range posts {
		if s.shouldKeep(p) {
			kept = append(kept, p)
		}
	}
	out := f.Clone()
	out.SetPosts(kept)
	return out, nil
}

func (selectFilter) CacheGranularity() Granularity { return FeedOnly }
