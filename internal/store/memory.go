package store

import (
	"context"
	"slices"
	"sync"

	"github.com/theopenlane/shieldphish/internal/types"
)

// Memory is an in-process Store
type Memory struct {
	mu      sync.RWMutex
	cache   map[string]types.AnalysisResult
	history map[string][]types.HistoryRecord
}

// NewMemory creates an empty in-memory store
func NewMemory() *Memory {
	return &Memory{
		cache:   make(map[string]types.AnalysisResult),
		history: make(map[string][]types.HistoryRecord),
	}
}

// GetCached implements Store
func (m *Memory) GetCached(_ context.Context, key string) (*types.AnalysisResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result, ok := m.cache[key]
	if !ok {
		return nil, ErrNotFound
	}

	return &result, nil
}

// PutCached implements Store
func (m *Memory) PutCached(_ context.Context, key string, result *types.AnalysisResult) error {
	if result == nil {
		return ErrNilResult
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.cache[key] = *result

	return nil
}

// AppendHistory implements Store
func (m *Memory) AppendHistory(_ context.Context, userID string, rec types.HistoryRecord) error {
	rec, err := prepareHistory(userID, rec)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.history[userID] = append(m.history[userID], rec)

	return nil
}

// ListHistory implements Store
func (m *Memory) ListHistory(_ context.Context, userID string, limit int) ([]types.HistoryRecord, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}

	m.mu.RLock()
	records := slices.Clone(m.history[userID])
	m.mu.RUnlock()

	// reversed first so entries with equal timestamps keep newest-appended first
	slices.Reverse(records)
	slices.SortStableFunc(records, func(a, b types.HistoryRecord) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	if n := historyLimit(limit); len(records) > n {
		records = records[:n]
	}

	if records == nil {
		records = []types.HistoryRecord{}
	}

	return records, nil
}

// Close implements Store
func (m *Memory) Close() error {
	return nil
}
