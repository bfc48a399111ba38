package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"unicode/utf8"
)

// Page is the retrieved content of a target URL
type Page struct {
	// URL is the requested URL
	URL string
	// FinalURL is the URL after following redirects
	FinalURL string
	// StatusCode is the status of the final response
	StatusCode int
	// ContentType is the Content-Type header of the final response
	ContentType string
	// Body holds at most MaxContentLength characters of the response body
	Body string
	// Truncated reports whether Body was cut to MaxContentLength
	Truncated bool
}

// Fetcher retrieves page HTML with a browser-like request signature
type Fetcher struct {
	client  *http.Client
	options *Options
}

// New creates a fetcher with the given options
func New(opts ...Option) *Fetcher {
	options := DefaultOptions()
	for _, opt := range opts {
		opt(options)
	}

	transport := options.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}

	maxRedirects := options.MaxRedirects

	return &Fetcher{
		options: options,
		client: &http.Client{
			Transport: transport,
			CheckRedirect: func(_ *http.Request, via []*http.Request) error {
				if len(via) > maxRedirects {
					return ErrTooManyRedirects
				}

				return nil
			},
		},
	}
}

// Fetch retrieves target, enforcing the configured timeout on the whole exchange.
// Non-2xx responses return a *StatusError and empty bodies return ErrEmptyBody
func (f *Fetcher) Fetch(ctx context.Context, target string) (*Page, error) {
	ctx, cancel := context.WithTimeout(ctx, f.options.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", f.options.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,image/apng,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close() //nolint:errcheck // response body close error is non-critical

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &StatusError{StatusCode: resp.StatusCode, Status: resp.Status}
	}

	limit := int64(f.options.MaxContentLength) * utf8.UTFMax

	raw, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReadBody, err)
	}

	if len(raw) == 0 {
		return nil, ErrEmptyBody
	}

	body, truncated := truncate(string(raw), f.options.MaxContentLength)

	return &Page{
		URL:         target,
		FinalURL:    resp.Request.URL.String(),
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
		Truncated:   truncated || int64(len(raw)) > limit,
	}, nil
}

// truncate keeps the first max characters of s without splitting a UTF-8 sequence
func truncate(s string, max int) (string, bool) {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s, false
	}

	count := 0
	for i := range s {
		if count == max {
			return s[:i], true
		}
		count++
	}

	return s, false
}

// Failure classifies a fetch error for user-facing reporting
type Failure string

const (
	// FailureNone means no error occurred
	FailureNone Failure = "none"
	// FailureTimeout means the fetch exceeded its deadline
	FailureTimeout Failure = "timeout"
	// FailureHostNotFound means DNS resolution found no such host
	FailureHostNotFound Failure = "host_not_found"
	// FailureStatus means the target returned a non-2xx status
	FailureStatus Failure = "fetch_status"
	// FailureEmptyBody means the target returned no content
	FailureEmptyBody Failure = "empty_content"
	// FailureNetwork covers refused connections, TLS errors and other transport failures
	FailureNetwork Failure = "network"
)

// Classify determines the failure class of an error returned by Fetch
func Classify(err error) Failure {
	if err == nil {
		return FailureNone
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return FailureStatus
	}

	if errors.Is(err, ErrEmptyBody) {
		return FailureEmptyBody
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return FailureTimeout
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		switch {
		case dnsErr.IsTimeout:
			return FailureTimeout
		case dnsErr.IsNotFound:
			return FailureHostNotFound
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return FailureTimeout
	}

	return FailureNetwork
}
