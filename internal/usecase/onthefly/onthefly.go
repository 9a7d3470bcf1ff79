// Package onthefly turns an endpoint's incoming request query string
// into additional filter declarations, appended to the configured
// pipeline when the endpoint opts in.
package onthefly

import (
	"net/url"
	"strconv"

	"gopkg.in/yaml.v3"

	"feedgate/internal/config"
)

// reserved holds the endpoint-service query parameters that are never
// treated as on-the-fly filter names, even if a filter of that kind
// exists.
var reserved = map[string]struct{}{
	"source":      {},
	"limit_posts": {},
	"pp":          {},
	"filter_skip": {},
	"base":        {},
}

// knownFilterKinds is the set of tagged-mapping keys filter.Build
// recognizes; kept independent of the filter package so this package
// has no import-time dependency on it.
var knownFilterKinds = map[string]struct{}{
	"note": {}, "convert_to": {}, "limit": {}, "keep_only": {}, "discard": {},
	"sanitize": {}, "remove_element": {}, "keep_element": {}, "split": {},
	"highlight": {}, "magnet": {}, "merge": {}, "full_text": {},
	"simplify_html": {}, "json_to_feed": {}, "image_proxy": {}, "js": {},
	"modify_post": {}, "modify_feed": {},
}

// Result is the outcome of scanning a request's query string.
type Result struct {
	// Filters are the on-the-fly filter declarations, in encountered order.
	Filters []config.FilterConfig
	// ExtraQueries holds every non-reserved, non-filter parameter.
	ExtraQueries map[string]string
}

// Scan walks rawQuery left to right. When enabled is true, each
// parameter whose name is a known filter kind becomes a filter
// declaration (bare/empty value → empty mapping config; `name=value`
// → single-key mapping, the value parsed as a number if possible,
// else kept as a string), appended in encountered order. Every other
// non-reserved parameter is forwarded via ExtraQueries. When enabled
// is false, no filters are ever extracted — every non-reserved
// parameter (filter-kind-named or not) goes to ExtraQueries.
func Scan(rawQuery string, enabled bool) Result {
	// net/url.Values loses encounter order (it's a map), so the query
	// string is walked directly here rather than through
	// url.ParseQuery, to preserve the order repeated/interleaved filter
	// params were written in.
	order := parseOrder(rawQuery)

	result := Result{ExtraQueries: map[string]string{}}
	for _, kv := range order {
		name, value := kv[0], kv[1]
		if _, ok := reserved[name]; ok {
			continue
		}
		if _, ok := knownFilterKinds[name]; !enabled || !ok {
			result.ExtraQueries[name] = value
			continue
		}
		result.Filters = append(result.Filters, declareFilter(name, value))
	}
	return result
}

func declareFilter(name, value string) config.FilterConfig {
	if value == "" {
		return config.FilterConfig{Kind: name, Raw: yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}}
	}
	return config.FilterConfig{Kind: name, Raw: valueNode(value)}
}

// valueNode builds a scalar YAML node for an on-the-fly filter value,
// trying a number first (so e.g. `limit=1` decodes as an int) and
// falling back to a plain string.
func valueNode(value string) yaml.Node {
	if _, err := strconv.ParseInt(value, 10, 64); err == nil {
		return yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: value}
	}
	if _, err := strconv.ParseFloat(value, 64); err == nil {
		return yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: value}
	}
	return yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value}
}

// parseOrder re-walks rawQuery preserving encounter order and decoding
// percent-escapes, since net/url.Values is an unordered map.
func parseOrder(rawQuery string) [][2]string {
	var out [][2]string
	for _, pair := range splitAmp(rawQuery) {
		if pair == "" {
			continue
		}
		name, value := pair, ""
		for i := 0; i < len(pair); i++ {
			if pair[i] == '=' {
				name, value = pair[:i], pair[i+1:]
				break
			}
		}
		decodedName, err := url.QueryUnescape(name)
		if err != nil {
			decodedName = name
		}
		decodedValue, err := url.QueryUnescape(value)
		if err != nil {
			decodedValue = value
		}
		out = append(out, [2]string{decodedName, decodedValue})
	}
	return out
}

func splitAmp(s string) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '&' || s[i] == ';' {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	out = append(out, s[start:])
	return out
}
