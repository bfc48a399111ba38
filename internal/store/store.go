package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/google/uuid"

	"github.com/theopenlane/shieldphish/internal/types"
)

const (
	// DefaultHistoryLimit is used when ListHistory is called with a non-positive limit
	DefaultHistoryLimit = 50
)

// Store persists analysis results keyed by URL hash and per-user history
type Store interface {
	// GetCached returns the result stored under key or ErrNotFound
	GetCached(ctx context.Context, key string) (*types.AnalysisResult, error)
	// PutCached stores result under key, replacing any previous entry
	PutCached(ctx context.Context, key string, result *types.AnalysisResult) error
	// AppendHistory adds rec to the user's history
	AppendHistory(ctx context.Context, userID string, rec types.HistoryRecord) error
	// ListHistory returns up to limit records for the user, newest first
	ListHistory(ctx context.Context, userID string, limit int) ([]types.HistoryRecord, error)
	// Close releases backend resources
	Close() error
}

// CacheKey is the hex SHA-256 digest of a normalized URL
func CacheKey(normalizedURL string) string {
	sum := sha256.Sum256([]byte(normalizedURL))

	return hex.EncodeToString(sum[:])
}

// prepareHistory validates the user and fills defaults on a record before it is written
func prepareHistory(userID string, rec types.HistoryRecord) (types.HistoryRecord, error) {
	if userID == "" {
		return rec, ErrMissingUserID
	}

	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}

	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	rec.CreatedAt = rec.CreatedAt.UTC()

	return rec, nil
}

func historyLimit(limit int) int {
	if limit <= 0 {
		return DefaultHistoryLimit
	}

	return limit
}
