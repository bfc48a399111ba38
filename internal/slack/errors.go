package slack

import "errors"

var (
	// ErrMissingWebhookURL is returned when a client is built without a webhook URL
	ErrMissingWebhookURL = errors.New("slack webhook URL is required")
	// ErrNotificationFailed is returned when the webhook request cannot be sent
	ErrNotificationFailed = errors.New("slack notification failed")
	// ErrUnexpectedStatus is returned when the webhook answers with a non-200 status
	ErrUnexpectedStatus = errors.New("unexpected slack webhook response status")
)
