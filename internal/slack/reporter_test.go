package slack

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/theopenlane/shieldphish/internal/types"
)

type capture struct {
	mu       sync.Mutex
	messages []Message
}

func (c *capture) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var msg Message
		if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
			t.Errorf("failed to decode message: %v", err)
		}

		c.mu.Lock()
		c.messages = append(c.messages, msg)
		c.mu.Unlock()

		w.WriteHeader(http.StatusOK)
	}
}

func newCapturingReporter(t *testing.T, opts ...ReporterOption) (*Reporter, *capture) {
	t.Helper()

	c := &capture{}

	server := httptest.NewServer(c.handler(t))
	t.Cleanup(server.Close)

	client, err := New(server.URL, WithHTTPClient(server.Client()))
	if err != nil {
		t.Fatalf("unexpected error creating client: %v", err)
	}

	return NewReporter(client, opts...), c
}

func TestReportError_Posts(t *testing.T) {
	reporter, c := newCapturingReporter(t, WithService("shieldphish-test"))

	reporter.ReportError(context.Background(), "cache write", errors.New("redis: connection refused"))
	reporter.Wait()

	if len(c.messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(c.messages))
	}

	msg := c.messages[0]
	if !strings.Contains(msg.Text, "cache write") || !strings.Contains(msg.Text, "connection refused") {
		t.Errorf("unexpected text %q", msg.Text)
	}

	if !strings.HasPrefix(msg.Text, "shieldphish-test") {
		t.Errorf("expected service prefix, got %q", msg.Text)
	}
}

func TestReportError_NilErrorIgnored(t *testing.T) {
	reporter, c := newCapturingReporter(t)

	reporter.ReportError(context.Background(), "cache write", nil)
	reporter.Wait()

	if len(c.messages) != 0 {
		t.Errorf("expected no messages, got %d", len(c.messages))
	}
}

func TestReportError_CanceledContextStillDelivers(t *testing.T) {
	reporter, c := newCapturingReporter(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	reporter.ReportError(ctx, "history append", errors.New("boom"))
	reporter.Wait()

	if len(c.messages) != 1 {
		t.Errorf("expected delivery despite canceled request context, got %d messages", len(c.messages))
	}
}

func TestReporter_LogOnly(t *testing.T) {
	reporter := NewReporter(nil)

	reporter.ReportError(context.Background(), "cache write", errors.New("boom"))
	reporter.NotifyHighRisk(context.Background(), &types.AnalysisResult{URL: "https://x.example/", RiskScore: 100})
	reporter.Wait()
}

func TestNotifyHighRisk_Threshold(t *testing.T) {
	reporter, c := newCapturingReporter(t, WithHighRiskThreshold(70))

	reporter.NotifyHighRisk(context.Background(), &types.AnalysisResult{URL: "https://low.example/", RiskScore: 69})
	reporter.NotifyHighRisk(context.Background(), &types.AnalysisResult{
		URL:       "https://evil.example/",
		RiskScore: 90,
		SSL:       types.SSLAssessment{Valid: false, Error: "Certificate has expired."},
	})
	reporter.NotifyHighRisk(context.Background(), nil)
	reporter.Wait()

	if len(c.messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(c.messages))
	}

	if !strings.Contains(c.messages[0].Text, "https://evil.example/") {
		t.Errorf("unexpected text %q", c.messages[0].Text)
	}

	if len(c.messages[0].Blocks) != 4 {
		t.Errorf("expected 4 blocks, got %d", len(c.messages[0].Blocks))
	}
}

func TestSSLLine(t *testing.T) {
	if got := sslLine(types.SSLAssessment{Valid: true}); got != "valid" {
		t.Errorf("expected valid, got %s", got)
	}

	if got := sslLine(types.SSLAssessment{}); got != "invalid" {
		t.Errorf("expected invalid, got %s", got)
	}

	if got := sslLine(types.SSLAssessment{Error: "expired"}); got != "invalid (expired)" {
		t.Errorf("unexpected line %s", got)
	}
}
