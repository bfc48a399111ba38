package api

import "errors"

var (
	// ErrMultipleJSONObjects is returned when the request body contains more than one JSON object
	ErrMultipleJSONObjects = errors.New("request body must contain a single JSON object")
	// ErrInvalidLimit is returned when the history limit is not a positive integer
	ErrInvalidLimit = errors.New("limit must be a positive integer")
)

// user facing messages
const (
	msgInvalidBody        = "Invalid request body."
	msgURLRequired        = "URL is required."
	msgInvalidURL         = "Please enter a valid URL."
	msgAnalyzerOff        = "URL analysis is not available."
	msgClassifierOff      = "URL classification is not available."
	msgIdentityRequired   = "Sign in to view your analysis history."
	msgInvalidLimit       = "The limit must be a positive integer."
	msgUpstreamFailure    = "The AI analysis service is currently unavailable. Please try again."
	msgHistoryUnavailable = "Unable to load analysis history. Please try again."
)
