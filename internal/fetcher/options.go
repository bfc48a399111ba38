package fetcher

import (
	"net/http"
	"time"
)

const (
	// DefaultTimeout bounds a single page fetch including redirects
	DefaultTimeout = 8 * time.Second
	// DefaultMaxContentLength is the number of characters kept from a fetched body
	DefaultMaxContentLength = 250000
	// DefaultMaxRedirects is the number of redirects followed before giving up
	DefaultMaxRedirects = 10
	// DefaultUserAgent mimics a desktop Chrome browser
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
)

// Options configures fetch behavior
type Options struct {
	Timeout          time.Duration
	MaxContentLength int
	MaxRedirects     int
	UserAgent        string
	Transport        http.RoundTripper
}

// Option is a functional option for configuring the fetcher
type Option func(*Options)

// DefaultOptions returns the default fetch options
func DefaultOptions() *Options {
	return &Options{
		Timeout:          DefaultTimeout,
		MaxContentLength: DefaultMaxContentLength,
		MaxRedirects:     DefaultMaxRedirects,
		UserAgent:        DefaultUserAgent,
	}
}

// WithTimeout sets the per-fetch timeout
func WithTimeout(timeout time.Duration) Option {
	return func(o *Options) {
		if timeout > 0 {
			o.Timeout = timeout
		}
	}
}

// WithMaxContentLength sets the number of characters kept from the body
func WithMaxContentLength(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.MaxContentLength = n
		}
	}
}

// WithMaxRedirects sets the redirect limit
func WithMaxRedirects(n int) Option {
	return func(o *Options) {
		if n >= 0 {
			o.MaxRedirects = n
		}
	}
}

// WithUserAgent overrides the User-Agent header
func WithUserAgent(ua string) Option {
	return func(o *Options) {
		if ua != "" {
			o.UserAgent = ua
		}
	}
}

// WithTransport sets a custom round tripper, mainly for tests
func WithTransport(rt http.RoundTripper) Option {
	return func(o *Options) {
		if rt != nil {
			o.Transport = rt
		}
	}
}
