package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/theopenlane/shieldphish/internal/types"
)

const (
	// defaultRedisPrefix namespaces every key written by the store
	defaultRedisPrefix = "shieldphish:"
	// defaultRedisDialTimeout bounds connection setup
	defaultRedisDialTimeout = 5 * time.Second
)

// RedisOptions configures a Redis-backed store
type RedisOptions struct {
	// Addr is the host:port of the Redis server
	Addr string
	// Username for Redis ACL authentication
	Username string
	// Password for Redis authentication
	Password string
	// DB is the logical database number
	DB int
	// Prefix namespaces all keys
	Prefix string
	// CacheTTL expires cached results after the given duration, zero keeps them indefinitely
	CacheTTL time.Duration
	// DialTimeout bounds connection setup
	DialTimeout time.Duration
}

// Redis stores cached results as JSON strings and history as per-user sorted sets scored by creation time
type Redis struct {
	client   *redis.Client
	prefix   string
	cacheTTL time.Duration
}

// NewRedis connects to Redis and verifies the connection
func NewRedis(ctx context.Context, opts RedisOptions) (*Redis, error) {
	if opts.Addr == "" {
		return nil, ErrMissingDSN
	}

	if opts.DialTimeout <= 0 {
		opts.DialTimeout = defaultRedisDialTimeout
	}

	client := redis.NewClient(&redis.Options{
		Addr:        opts.Addr,
		Username:    opts.Username,
		Password:    opts.Password,
		DB:          opts.DB,
		DialTimeout: opts.DialTimeout,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close() //nolint:errcheck

		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	prefix := opts.Prefix
	if prefix == "" {
		prefix = defaultRedisPrefix
	}

	return &Redis{client: client, prefix: prefix, cacheTTL: opts.CacheTTL}, nil
}

func (r *Redis) cacheKey(key string) string {
	return r.prefix + "cache:" + key
}

func (r *Redis) historyKey(userID string) string {
	return r.prefix + "history:" + userID
}

// GetCached implements Store
func (r *Redis) GetCached(ctx context.Context, key string) (*types.AnalysisResult, error) {
	payload, err := r.client.Get(ctx, r.cacheKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var result types.AnalysisResult
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, fmt.Errorf("decode cached result: %w", err)
	}

	return &result, nil
}

// PutCached implements Store
func (r *Redis) PutCached(ctx context.Context, key string, result *types.AnalysisResult) error {
	if result == nil {
		return ErrNilResult
	}

	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode cached result: %w", err)
	}

	if err := r.client.Set(ctx, r.cacheKey(key), payload, r.cacheTTL).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}

	return nil
}

// AppendHistory implements Store
func (r *Redis) AppendHistory(ctx context.Context, userID string, rec types.HistoryRecord) error {
	rec, err := prepareHistory(userID, rec)
	if err != nil {
		return err
	}

	member, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode history record: %w", err)
	}

	err = r.client.ZAdd(ctx, r.historyKey(userID), &redis.Z{
		Score:  float64(rec.CreatedAt.UnixNano()),
		Member: member,
	}).Err()
	if err != nil {
		return fmt.Errorf("redis zadd: %w", err)
	}

	return nil
}

// ListHistory implements Store
func (r *Redis) ListHistory(ctx context.Context, userID string, limit int) ([]types.HistoryRecord, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}

	members, err := r.client.ZRevRange(ctx, r.historyKey(userID), 0, int64(historyLimit(limit)-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis zrevrange: %w", err)
	}

	records := make([]types.HistoryRecord, 0, len(members))

	for _, member := range members {
		var rec types.HistoryRecord
		if err := json.Unmarshal([]byte(member), &rec); err != nil {
			return nil, fmt.Errorf("decode history record: %w", err)
		}

		records = append(records, rec)
	}

	return records, nil
}

// Close implements Store
func (r *Redis) Close() error {
	return r.client.Close()
}
