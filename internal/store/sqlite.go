package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/theopenlane/shieldphish/internal/types"
)

var createSQLiteSchema = []string{
	`CREATE TABLE IF NOT EXISTS analysis_cache (
		key        TEXT PRIMARY KEY,
		url        TEXT NOT NULL,
		payload    TEXT NOT NULL,
		created_at INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS analysis_history (
		id         TEXT PRIMARY KEY,
		user_id    TEXT NOT NULL,
		url        TEXT NOT NULL,
		risk_score INTEGER NOT NULL,
		created_at INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_analysis_history_user ON analysis_history (user_id, created_at DESC)`,
}

const upsertSQLiteCache = `
INSERT INTO analysis_cache (key, url, payload, created_at) VALUES (?, ?, ?, ?)
ON CONFLICT(key) DO UPDATE SET url = excluded.url, payload = excluded.payload, created_at = excluded.created_at`

const insertSQLiteHistory = `
INSERT INTO analysis_history (id, user_id, url, risk_score, created_at) VALUES (?, ?, ?, ?, ?)`

const selectSQLiteHistory = `
SELECT id, url, risk_score, created_at FROM analysis_history
WHERE user_id = ? ORDER BY created_at DESC, rowid DESC LIMIT ?`

// SQLite is a single-file Store built on the pure Go SQLite driver
type SQLite struct {
	conn *sql.DB
}

// NewSQLite opens (creating if needed) the database at path and initializes the schema
func NewSQLite(path string) (*SQLite, error) {
	if path == "" {
		return nil, ErrMissingDSN
	}

	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// writes come from detached goroutines; a single connection serializes them
	conn.SetMaxOpenConns(1)

	for _, stmt := range createSQLiteSchema {
		if _, err := conn.Exec(stmt); err != nil {
			conn.Close() //nolint:errcheck

			return nil, fmt.Errorf("failed to create schema: %w", err)
		}
	}

	return &SQLite{conn: conn}, nil
}

// GetCached implements Store
func (s *SQLite) GetCached(ctx context.Context, key string) (*types.AnalysisResult, error) {
	var payload string

	err := s.conn.QueryRowContext(ctx, `SELECT payload FROM analysis_cache WHERE key = ?`, key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("query cached result: %w", err)
	}

	var result types.AnalysisResult
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		return nil, fmt.Errorf("decode cached result: %w", err)
	}

	return &result, nil
}

// PutCached implements Store
func (s *SQLite) PutCached(ctx context.Context, key string, result *types.AnalysisResult) error {
	if result == nil {
		return ErrNilResult
	}

	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode cached result: %w", err)
	}

	if _, err := s.conn.ExecContext(ctx, upsertSQLiteCache, key, result.URL, string(payload), result.CreatedAt.UnixNano()); err != nil {
		return fmt.Errorf("store cached result: %w", err)
	}

	return nil
}

// AppendHistory implements Store
func (s *SQLite) AppendHistory(ctx context.Context, userID string, rec types.HistoryRecord) error {
	rec, err := prepareHistory(userID, rec)
	if err != nil {
		return err
	}

	if _, err := s.conn.ExecContext(ctx, insertSQLiteHistory, rec.ID, userID, rec.URL, rec.RiskScore, rec.CreatedAt.UnixNano()); err != nil {
		return fmt.Errorf("insert history record: %w", err)
	}

	return nil
}

// ListHistory implements Store
func (s *SQLite) ListHistory(ctx context.Context, userID string, limit int) ([]types.HistoryRecord, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}

	rows, err := s.conn.QueryContext(ctx, selectSQLiteHistory, userID, historyLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	records := []types.HistoryRecord{}

	for rows.Next() {
		var (
			rec       types.HistoryRecord
			createdAt int64
		)

		if err := rows.Scan(&rec.ID, &rec.URL, &rec.RiskScore, &createdAt); err != nil {
			return nil, fmt.Errorf("scan history record: %w", err)
		}

		rec.CreatedAt = time.Unix(0, createdAt).UTC()
		records = append(records, rec)
	}

	return records, rows.Err()
}

// Close implements Store
func (s *SQLite) Close() error {
	return s.conn.Close()
}
