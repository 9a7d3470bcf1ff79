package feed

import "errors"

// Sentinel errors for feed parsing/serialization. These back the
// ParseError category of the error taxonomy.
var (
	// ErrParse indicates that a document could not be parsed as either
	// RSS or Atom.
	ErrParse = errors.New("feed: could not parse document as rss or atom")

	// ErrUnsupportedFormat indicates a request to serialize/convert a
	// feed tagged with an unrecognized format.
	ErrUnsupportedFormat = errors.New("feed: unsupported format")
)
