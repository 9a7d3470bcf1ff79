// Package source implements the Source tagged variant and the feed
// resolution algorithm.
package source

import "errors"

// Sentinel errors. ConfigError-category errors are returned from Build
// (config-build-time); SourceError-category errors are returned from
// FetchFeed (request-time), mapped to HTTP 400 by the endpoint handler.
var (
	// ErrInvalidTemplate indicates a Templated source definition failed
	// build-time validation (unbalanced placeholders, reserved-name
	// collision, or an uncompilable validation regex).
	ErrInvalidTemplate = errors.New("source: invalid template definition")

	// ErrMissingPlaceholder indicates a Templated source's placeholder
	// has neither a request-supplied value nor a default.
	ErrMissingPlaceholder = errors.New("source: missing template placeholder value")

	// ErrTemplateValidation indicates a placeholder value failed its
	// validation_regex.
	ErrTemplateValidation = errors.New("source: template placeholder failed validation")

	// ErrSourceUnspecified indicates a dynamic endpoint (no configured
	// source) received a request without `?source=`.
	ErrSourceUnspecified = errors.New("source: dynamic endpoint requires ?source=")

	// ErrBaseURLNotInferred indicates a RelativeUrl source was resolved
	// without a base URL available in the request/endpoint context.
	ErrBaseURLNotInferred = errors.New("source: base url could not be inferred")
)
