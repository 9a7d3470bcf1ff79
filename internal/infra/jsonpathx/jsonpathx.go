// Package jsonpathx is a thin adapter over github.com/PaesslerAG/jsonpath,
// used by the JsonToFeed filter's field-selection algorithm. No JSONPath library exists in this module's grounding
// corpus; PaesslerAG/jsonpath is adopted directly from the wider Go
// ecosystem for this single concern (see DESIGN.md).
package jsonpathx

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/PaesslerAG/jsonpath"
)

// ErrNoMatch indicates a JSONPath expression matched nothing.
var ErrNoMatch = errors.New("jsonpathx: no match")

// Decode parses raw JSON into the generic interface{} shape jsonpath
// operates over.
func Decode(raw []byte) (interface{}, error) {
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("jsonpathx: decode: %w", err)
	}
	return v, nil
}

// Query evaluates a JSONPath expression (must start with "$") against
// doc, returning every matched value. A selector like `$.items[*]`
// returns one entry per item; a scalar selector returns a single-entry
// slice.
func Query(doc interface{}, expr string) ([]interface{}, error) {
	result, err := jsonpath.Get(expr, doc)
	if err != nil {
		return nil, fmt.Errorf("jsonpathx: query %q: %w", expr, err)
	}
	if values, ok := result.([]interface{}); ok {
		return values, nil
	}
	return []interface{}{result}, nil
}

// QueryString evaluates expr and coerces the single resulting value to
// a string, failing if the selector produced zero or multiple values.
func QueryString(doc interface{}, expr string) (string, error) {
	values, err := Query(doc, expr)
	if err != nil {
		return "", err
	}
	if len(values) == 0 {
		return "", ErrNoMatch
	}
	if len(values) > 1 {
		return "", fmt.Errorf("jsonpathx: %q matched %d values, expected exactly one", expr, len(values))
	}
	return stringify(values[0]), nil
}

// QueryStrings evaluates expr and coerces every resulting value to a
// string, for multi-valued fields like categories.
func QueryStrings(doc interface{}, expr string) ([]string, error) {
	values, err := Query(doc, expr)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, stringify(v))
	}
	return out, nil
}

func stringify(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case fmt.Stringer:
		return t.String()
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprintf("%v", t)
		}
		s := string(b)
		if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
			var unquoted string
			if json.Unmarshal(b, &unquoted) == nil {
				return unquoted
			}
		}
		return s
	}
}
