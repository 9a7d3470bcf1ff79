package httpclient

import (
	"errors"
	"fmt"
)

// Sentinel errors backing the FetchError category.
var (
	ErrInvalidURL = errors.New("httpclient: invalid url")
	ErrPrivateIP  = errors.New("httpclient: url resolves to a private or loopback address")
	ErrFetch      = errors.New("httpclient: fetch failed")
	ErrParse      = errors.New("httpclient: could not parse response as rss or atom")
)

// StatusError pairs a non-2xx response status with the URL that
// produced it.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("httpclient: %s returned status %d", e.URL, e.StatusCode)
}

func (e *StatusError) Is(target error) bool {
	return target == ErrFetch
}
