package cloudflare

import "errors"

var (
	// ErrMissingAccountID is returned when the Cloudflare account ID is not configured
	ErrMissingAccountID = errors.New("cloudflare account ID is required")
	// ErrMissingAPIToken is returned when the Cloudflare API token is not configured
	ErrMissingAPIToken = errors.New("cloudflare API token is required")
	// ErrRequestFailed is returned when a Cloudflare API request fails
	ErrRequestFailed = errors.New("cloudflare API request failed")
	// ErrUnexpectedStatus is returned when the Cloudflare API returns an unexpected HTTP status
	ErrUnexpectedStatus = errors.New("unexpected cloudflare API response status")
	// ErrInferenceFailed is returned when the Workers AI result indicates failure
	ErrInferenceFailed = errors.New("cloudflare workers AI inference failed")
	// ErrEmptyResponse is returned when the model produced no text
	ErrEmptyResponse = errors.New("cloudflare workers AI returned an empty response")
	// ErrMalformedVerdict is returned when a classification reply contains no usable JSON verdict
	ErrMalformedVerdict = errors.New("malformed classification verdict")
)
