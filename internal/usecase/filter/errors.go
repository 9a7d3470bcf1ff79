package filter

import "errors"

// Sentinel errors backing the ConfigError/FilterError/ScriptError
// categories as they apply inside this package.
var (
	// ErrConfig indicates a filter's YAML config failed to decode or
	// validate at build time (e.g. bad selector, bad regex).
	ErrConfig = errors.New("filter: invalid configuration")

	// ErrFilter indicates a filter-internal failure at run time (e.g.
	// JSONPath evaluation, field-type mismatch).
	ErrFilter = errors.New("filter: execution failed")

	// ErrMissingField indicates a required JsonToFeed field mapping was
	// absent.
	ErrMissingField = errors.New("filter: missing required field")
)
