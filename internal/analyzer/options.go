package analyzer

import "time"

const (
	// DefaultFreshnessWindow is how long a cached result is served before recomputing
	DefaultFreshnessWindow = 7 * 24 * time.Hour
	// DefaultAITimeout bounds each AI call
	DefaultAITimeout = 8 * time.Second
	// DefaultPersistTimeout bounds each detached cache or history write
	DefaultPersistTimeout = 10 * time.Second
)

// Option configures an Analyzer
type Option func(*Analyzer)

// WithClock sets the time source used for freshness checks and timestamps
func WithClock(now func() time.Time) Option {
	return func(a *Analyzer) {
		if now != nil {
			a.now = now
		}
	}
}

// WithFreshnessWindow sets how long cached results stay valid
func WithFreshnessWindow(window time.Duration) Option {
	return func(a *Analyzer) {
		if window > 0 {
			a.freshness = window
		}
	}
}

// WithAITimeout sets the per-call timeout for the summarizer and advisor
func WithAITimeout(timeout time.Duration) Option {
	return func(a *Analyzer) {
		if timeout > 0 {
			a.aiTimeout = timeout
		}
	}
}

// WithPersistTimeout sets the timeout for each background write
func WithPersistTimeout(timeout time.Duration) Option {
	return func(a *Analyzer) {
		if timeout > 0 {
			a.persistTimeout = timeout
		}
	}
}
