// Package api provides HTTP handlers for the shieldphish URL analysis service
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/theopenlane/shieldphish/internal/cloudflare"
	"github.com/theopenlane/shieldphish/internal/types"
)

// serviceName is reported by the health endpoint
const serviceName = "shieldphish"

// Analyzer runs URL analyses and serves a user's history
type Analyzer interface {
	Analyze(ctx context.Context, rawURL, userID string) (*types.AnalysisResult, error)
	History(ctx context.Context, userID string, limit int) ([]types.HistoryRecord, error)
}

// Classifier returns a quick AI verdict for a URL
type Classifier interface {
	Classify(ctx context.Context, pageURL string) (cloudflare.Verdict, error)
}

// Handler manages API endpoints
type Handler struct {
	analyzer    Analyzer
	classifier  Classifier
	maxBodySize int64
	userHeader  string
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status" example:"healthy"`
	Service   string `json:"service" example:"shieldphish"`
	Timestamp string `json:"timestamp" example:"2024-01-15T10:30:00Z"`
}

// handleHealth returns service health status
func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "healthy",
		Service:   serviceName,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// userID returns the caller identity set by the upstream auth proxy, empty for anonymous callers
func (h *Handler) userID(r *http.Request) string {
	if h.userHeader == "" {
		return ""
	}

	return r.Header.Get(h.userHeader)
}

// limitBody caps the request body at the configured size
func (h *Handler) limitBody(w http.ResponseWriter, r *http.Request) {
	if h.maxBodySize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)
	}
}
