package filter

import (
	"context"
	"encoding/json"
	"fmt"

	"feedgate/internal/config"
	"feedgate/internal/domain/feed"
	"feedgate/internal/domain/filterctx"
	"feedgate/internal/infra/scriptengine"
)

// jsConfig carries the script source for Js/ModifyPost/ModifyFeed —
// all three share the same config shape and differ only in how their
// result is applied, per the script-runtime coupling design note: the
// engine is an opaque capability behind scriptengine.Engine.
type jsConfig struct {
	Code string `yaml:"code"`
}

func decodeJSConfig(cfg config.FilterConfig, kind string) (jsConfig, error) {
	var code string
	if err := cfg.Raw.Decode(&code); err == nil {
		return jsConfig{Code: code}, nil
	}
	var c jsConfig
	if err := cfg.Raw.Decode(&c); err != nil {
		return jsConfig{}, fmt.Errorf("%w: %s: %v", ErrConfig, kind, err)
	}
	if c.Code == "" {
		return jsConfig{}, fmt.Errorf("%w: %s: code is required", ErrConfig, kind)
	}
	return c, nil
}

// feedToValue/valueToFeed round-trip a Feed through its JSON-ish
// representation so a script sees and returns plain objects/arrays,
// rather than exposing Go struct internals to the engine.
func feedToValue(f feed.Feed) (scriptengine.Value, error) {
	var v interface{}
	raw, err := json.Marshal(f)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return v, nil
}

func valueToFeed(v scriptengine.Value, shape feed.Feed) (feed.Feed, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return feed.Feed{}, err
	}
	out := shape
	if err := json.Unmarshal(raw, &out); err != nil {
		return feed.Feed{}, err
	}
	return out, nil
}

func postToValue(p feed.Post) (scriptengine.Value, error) {
	var v interface{}
	raw, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return v, nil
}

func valueToPost(v scriptengine.Value, shape feed.Post) (feed.Post, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return feed.Post{}, err
	}
	out := shape
	if err := json.Unmarshal(raw, &out); err != nil {
		return feed.Post{}, err
	}
	return out, nil
}

// jsFilter evaluates a script with `feed` bound and replaces the feed
// with the script's return value.
type jsFilter struct {
	code   string
	engine scriptengine.Engine
}

func buildJS(cfg config.FilterConfig, deps Deps) (Filter, error) {
	c, err := decodeJSConfig(cfg, "js")
	if err != nil {
		return nil, err
	}
	if deps.ScriptEngine == nil {
		return nil, fmt.Errorf("%w: js: no script engine configured", ErrConfig)
	}
	return jsFilter{code: c.Code, engine: deps.ScriptEngine}, nil
}

func (j jsFilter) Run(ctx context.Context, fctx *filterctx.Context, f feed.Feed) (feed.Feed, error) {
	in, err := feedToValue(f)
	if err != nil {
		return feed.Feed{}, fmt.Errorf("%w: js: %v", ErrFilter, err)
	}
	out, err := j.engine.Eval(ctx, j.code, map[string]scriptengine.Value{"feed": in})
	if err != nil {
		return feed.Feed{}, fmt.Errorf("%w: js: %v", ErrFilter, err)
	}
	result, err := valueToFeed(out, f)
	if err != nil {
		return feed.Feed{}, fmt.Errorf("%w: js: %v", ErrFilter, err)
	}
	return result, nil
}

func (jsFilter) CacheGranularity() Granularity { return FeedOnly }

// modifyPostFilter runs a script per post with `post` bound, mutating
// each post in place with the script's return value.
type modifyPostFilter struct {
	code   string
	engine scriptengine.Engine
}

func buildModifyPost(cfg config.FilterConfig, deps Deps) (Filter, error) {
	c, err := decodeJSConfig(cfg, "modify_post")
	if err != nil {
		return nil, err
	}
	if deps.ScriptEngine == nil {
		return nil, fmt.Errorf("%w: modify_post: no script engine configured", ErrConfig)
	}
	return modifyPostFilter{code: c.Code, engine: deps.ScriptEngine}, nil
}

func (m modifyPostFilter) Run(ctx context.Context, fctx *filterctx.Context, f feed.Feed) (feed.Feed, error) {
	out := f.Clone()
	posts := out.Posts()
	result := make([]feed.Post, len(posts))
	for i, p := range posts {
		in, err := postToValue(p)
		if err != nil {
			return feed.Feed{}, fmt.Errorf("%w: modify_post: %v", ErrFilter, err)
		}
		v, err := m.engine.Eval(ctx, m.code, map[string]scriptengine.Value{"post": in})
		if err != nil {
			return feed.Feed{}, fmt.Errorf("%w: modify_post: %v", ErrFilter, err)
		}
		modified, err := valueToPost(v, p)
		if err != nil {
			return feed.Feed{}, fmt.Errorf("%w: modify_post: %v", ErrFilter, err)
		}
		result[i] = modified
	}
	out.SetPosts(result)
	return out, nil
}

func (modifyPostFilter) CacheGranularity() Granularity { return FeedAndPost }

// modifyFeedFilter runs a script once per feed with `feed` bound,
// mutating the feed in place with the script's return value.
type modifyFeedFilter struct {
	code   string
	engine scriptengine.Engine
}

func buildModifyFeed(cfg config.FilterConfig, deps Deps) (Filter, error) {
	c, err := decodeJSConfig(cfg, "modify_feed")
	if err != nil {
		return nil, err
	}
	if deps.ScriptEngine == nil {
		return nil, fmt.Errorf("%w: modify_feed: no script engine configured", ErrConfig)
	}
	return modifyFeedFilter{code: c.Code, engine: deps.ScriptEngine}, nil
}

func (m modifyFeedFilter) Run(ctx context.Context, fctx *filterctx.Context, f feed.Feed) (feed.Feed, error) {
	in, err := feedToValue(f)
	if err != nil {
		return feed.Feed{}, fmt.Errorf("%w: modify_feed: %v", ErrFilter, err)
	}
	out, err := m.engine.Eval(ctx, m.code, map[string]scriptengine.Value{"feed": in})
	if err != nil {
		return feed.Feed{}, fmt.Errorf("%w: modify_feed: %v", ErrFilter, err)
	}
	result, err := valueToFeed(out, f)
	if err != nil {
		return feed.Feed{}, fmt.Errorf("%w: modify_feed: %v", ErrFilter, err)
	}
	return result, nil
}

func (modifyFeedFilter) CacheGranularity() Granularity { return FeedOnly }
