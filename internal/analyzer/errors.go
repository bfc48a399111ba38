package analyzer

import "errors"

var (
	// ErrMissingFetcher is returned by New when no page fetcher is supplied
	ErrMissingFetcher = errors.New("page fetcher is required")
	// ErrMissingInspector is returned by New when no TLS inspector is supplied
	ErrMissingInspector = errors.New("tls inspector is required")
	// ErrMissingSummarizer is returned by New when no summarizer is supplied
	ErrMissingSummarizer = errors.New("summarizer is required")
	// ErrMissingAdvisor is returned by New when no advisor is supplied
	ErrMissingAdvisor = errors.New("advisor is required")
	// ErrMissingStore is returned by New when no store is supplied
	ErrMissingStore = errors.New("store is required")
)
