package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/theopenlane/shieldphish/internal/types"
)

const (
	defaultPostgresMaxConns = 10
	postgresHealthCheck     = 30 * time.Second
)

const createPostgresSchema = `
CREATE TABLE IF NOT EXISTS analysis_cache (
	key        TEXT PRIMARY KEY,
	url        TEXT NOT NULL,
	payload    JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS analysis_history (
	id         TEXT PRIMARY KEY,
	seq        BIGSERIAL,
	user_id    TEXT NOT NULL,
	url        TEXT NOT NULL,
	risk_score INTEGER NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_analysis_history_user ON analysis_history (user_id, created_at DESC);
`

// Postgres is a Store backed by a pgx connection pool
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres connects to the database at url, verifies connectivity and creates the schema
func NewPostgres(ctx context.Context, url string, maxConns int32) (*Postgres, error) {
	if url == "" {
		return nil, ErrMissingDSN
	}

	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse postgres url: %w", err)
	}

	cfg.MaxConns = defaultPostgresMaxConns
	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}

	cfg.HealthCheckPeriod = postgresHealthCheck

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()

		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if _, err := pool.Exec(ctx, createPostgresSchema); err != nil {
		pool.Close()

		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Postgres{pool: pool}, nil
}

// GetCached implements Store
func (p *Postgres) GetCached(ctx context.Context, key string) (*types.AnalysisResult, error) {
	var payload []byte

	err := p.pool.QueryRow(ctx, `SELECT payload FROM analysis_cache WHERE key = $1`, key).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("query cached result: %w", err)
	}

	var result types.AnalysisResult
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, fmt.Errorf("decode cached result: %w", err)
	}

	return &result, nil
}

// PutCached implements Store
func (p *Postgres) PutCached(ctx context.Context, key string, result *types.AnalysisResult) error {
	if result == nil {
		return ErrNilResult
	}

	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode cached result: %w", err)
	}

	_, err = p.pool.Exec(ctx, `
		INSERT INTO analysis_cache (key, url, payload, created_at) VALUES ($1, $2, $3, $4)
		ON CONFLICT (key) DO UPDATE SET url = EXCLUDED.url, payload = EXCLUDED.payload, created_at = EXCLUDED.created_at
	`, key, result.URL, payload, result.CreatedAt)
	if err != nil {
		return fmt.Errorf("store cached result: %w", err)
	}

	return nil
}

// AppendHistory implements Store
func (p *Postgres) AppendHistory(ctx context.Context, userID string, rec types.HistoryRecord) error {
	rec, err := prepareHistory(userID, rec)
	if err != nil {
		return err
	}

	_, err = p.pool.Exec(ctx, `
		INSERT INTO analysis_history (id, user_id, url, risk_score, created_at) VALUES ($1, $2, $3, $4, $5)
	`, rec.ID, userID, rec.URL, rec.RiskScore, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert history record: %w", err)
	}

	return nil
}

// ListHistory implements Store
func (p *Postgres) ListHistory(ctx context.Context, userID string, limit int) ([]types.HistoryRecord, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}

	rows, err := p.pool.Query(ctx, `
		SELECT id, url, risk_score, created_at FROM analysis_history
		WHERE user_id = $1 ORDER BY created_at DESC, seq DESC LIMIT $2
	`, userID, historyLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	records := []types.HistoryRecord{}

	for rows.Next() {
		var rec types.HistoryRecord
		if err := rows.Scan(&rec.ID, &rec.URL, &rec.RiskScore, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan history record: %w", err)
		}

		rec.CreatedAt = rec.CreatedAt.UTC()
		records = append(records, rec)
	}

	return records, rows.Err()
}

// Close implements Store
func (p *Postgres) Close() error {
	p.pool.Close()

	return nil
}
