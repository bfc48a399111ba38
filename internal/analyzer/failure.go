package analyzer

import (
	"errors"
	"fmt"

	"github.com/theopenlane/shieldphish/internal/fetcher"
)

// Kind classifies why an analysis failed
type Kind string

const (
	// KindValidation means the submitted URL was not an absolute http(s) URL
	KindValidation Kind = "validation"
	// KindTimeout means the page fetch exceeded its deadline
	KindTimeout Kind = "timeout"
	// KindHostNotFound means the target host does not resolve
	KindHostNotFound Kind = "host_not_found"
	// KindFetchStatus means the target answered with a non-2xx status
	KindFetchStatus Kind = "fetch_status"
	// KindNetwork covers other failures to retrieve the page
	KindNetwork Kind = "network"
	// KindEmptyContent means the target returned no content
	KindEmptyContent Kind = "empty_content"
	// KindUpstream means an AI call failed
	KindUpstream Kind = "upstream"
	// KindUnexpected is any other internal failure
	KindUnexpected Kind = "unexpected"
)

const (
	msgValidation   = "Please enter a valid URL."
	msgTimeout      = "The request timed out. The website may be slow, offline, or blocking requests."
	msgHostNotFound = "Could not find the website. Please check the URL for typos."
	msgFetchStatus  = "Failed to access URL. Status: %s"
	msgNetwork      = "Failed to access URL. The website may be unreachable or refusing connections."
	msgEmptyContent = "Unable to retrieve website content. The page might be empty or protected."
	msgUpstream     = "The AI analysis service is currently unavailable. Please try again."
	msgUnexpected   = "An unexpected error occurred during analysis."
)

// Error is a failed analysis. Message is safe to show to end users; Err carries the cause for logs
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err == nil {
		return e.Message
	}

	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

// Unwrap returns the underlying cause
func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the failure kind of err, KindUnexpected when it is not an *Error
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}

	return KindUnexpected
}

// UserMessage returns the message to show for err without leaking internal detail
func UserMessage(err error) string {
	var ae *Error
	if errors.As(err, &ae) && ae.Message != "" {
		return ae.Message
	}

	return msgUnexpected
}

func validationError(err error) *Error {
	return &Error{Kind: KindValidation, Message: msgValidation, Err: err}
}

func upstreamError(err error) *Error {
	return &Error{Kind: KindUpstream, Message: msgUpstream, Err: err}
}

func unexpectedError(err error) *Error {
	return &Error{Kind: KindUnexpected, Message: msgUnexpected, Err: err}
}

// fetchError maps a fetcher failure to its user-facing analysis error
func fetchError(err error) *Error {
	switch fetcher.Classify(err) {
	case fetcher.FailureTimeout:
		return &Error{Kind: KindTimeout, Message: msgTimeout, Err: err}
	case fetcher.FailureHostNotFound:
		return &Error{Kind: KindHostNotFound, Message: msgHostNotFound, Err: err}
	case fetcher.FailureStatus:
		var statusErr *fetcher.StatusError
		errors.As(err, &statusErr)

		return &Error{Kind: KindFetchStatus, Message: fmt.Sprintf(msgFetchStatus, statusErr.Status), Err: err}
	case fetcher.FailureEmptyBody:
		return &Error{Kind: KindEmptyContent, Message: msgEmptyContent, Err: err}
	default:
		return &Error{Kind: KindNetwork, Message: msgNetwork, Err: err}
	}
}
