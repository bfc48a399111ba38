package domain

import "errors"

var (
	// ErrInvalidURLFormat is returned when the input is not an absolute http or https URL
	ErrInvalidURLFormat = errors.New("invalid URL format")
	// ErrMissingHost is returned when the URL has no host component
	ErrMissingHost = errors.New("URL has no host")
	// ErrUnsupportedScheme is returned when the URL scheme is not http or https
	ErrUnsupportedScheme = errors.New("unsupported URL scheme")
)
