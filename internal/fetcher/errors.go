package fetcher

import (
	"errors"
	"fmt"
)

var (
	// ErrTooManyRedirects is returned when a fetch exceeds the redirect limit
	ErrTooManyRedirects = errors.New("too many redirects")
	// ErrEmptyBody is returned when the target responds successfully with no content
	ErrEmptyBody = errors.New("empty response body")
	// ErrReadBody is returned when the response body cannot be read
	ErrReadBody = errors.New("unable to read response body")
)

// StatusError is returned when the target responds with a non-2xx status
type StatusError struct {
	// StatusCode is the HTTP status code of the final response
	StatusCode int
	// Status is the full status line text, e.g. "404 Not Found"
	Status string
}

// Error implements the error interface
func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status: %s", e.Status)
}
