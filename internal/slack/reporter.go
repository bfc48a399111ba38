package slack

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/theopenlane/shieldphish/internal/types"
)

const (
	// defaultHighRiskThreshold is the score at or above which results are announced
	defaultHighRiskThreshold = 90
	// defaultReportTimeout bounds a single background webhook post
	defaultReportTimeout = 10 * time.Second
)

// Reporter is the out-of-band sink for background failures and high-risk findings.
// Every event is logged; when a webhook client is configured it is also posted to Slack
// asynchronously so callers never wait on or observe delivery
type Reporter struct {
	client    *Client
	service   string
	threshold int
	timeout   time.Duration
	wg        sync.WaitGroup
}

// ReporterOption configures a Reporter
type ReporterOption func(*Reporter)

// WithService sets the service name shown in posted messages
func WithService(name string) ReporterOption {
	return func(r *Reporter) {
		if name != "" {
			r.service = name
		}
	}
}

// WithHighRiskThreshold sets the score at or above which NotifyHighRisk posts
func WithHighRiskThreshold(score int) ReporterOption {
	return func(r *Reporter) {
		if score > 0 {
			r.threshold = score
		}
	}
}

// WithReportTimeout sets the timeout for each webhook post
func WithReportTimeout(timeout time.Duration) ReporterOption {
	return func(r *Reporter) {
		if timeout > 0 {
			r.timeout = timeout
		}
	}
}

// NewReporter creates a Reporter. A nil client makes it log-only
func NewReporter(client *Client, opts ...ReporterOption) *Reporter {
	r := &Reporter{
		client:    client,
		service:   "shieldphish",
		threshold: defaultHighRiskThreshold,
		timeout:   defaultReportTimeout,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// ReportError records a failure of a background operation such as a cache write
func (r *Reporter) ReportError(ctx context.Context, op string, err error) {
	if err == nil {
		return
	}

	log.Error().Err(err).Str("operation", op).Msg("background operation failed")

	r.post(ctx, Message{
		Text: fmt.Sprintf("%s: %s failed: %v", r.service, op, err),
		Blocks: []Block{
			Header(r.service + " background failure"),
			Fields([2]string{"Operation", op}, [2]string{"Error", err.Error()}),
		},
	})
}

// NotifyHighRisk announces a result whose score meets the configured threshold
func (r *Reporter) NotifyHighRisk(ctx context.Context, result *types.AnalysisResult) {
	if result == nil || result.RiskScore < r.threshold {
		return
	}

	log.Warn().Str("url", result.URL).Int("risk_score", result.RiskScore).Msg("high risk url analyzed")

	r.post(ctx, Message{
		Text: fmt.Sprintf("%s: high risk URL %s scored %d", r.service, result.URL, result.RiskScore),
		Blocks: []Block{
			Header("High risk URL detected"),
			Fields([2]string{"URL", result.URL}, [2]string{"Risk score", strconv.Itoa(result.RiskScore)}),
			Divider(),
			Markdown("*SSL:* " + sslLine(result.SSL)),
		},
	})
}

// Wait blocks until every in-flight webhook post has finished
func (r *Reporter) Wait() {
	r.wg.Wait()
}

func (r *Reporter) post(ctx context.Context, msg Message) {
	if r.client == nil {
		return
	}

	r.wg.Add(1)

	go func() {
		defer r.wg.Done()

		sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
		defer cancel()

		if err := r.client.Send(sendCtx, msg); err != nil {
			log.Warn().Err(err).Msg("failed to deliver slack notification")
		}
	}()
}

func sslLine(ssl types.SSLAssessment) string {
	if ssl.Valid {
		return "valid"
	}

	if ssl.Error == "" {
		return "invalid"
	}

	return "invalid (" + ssl.Error + ")"
}
