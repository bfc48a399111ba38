package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theopenlane/shieldphish/internal/types"
)

func TestCacheKey(t *testing.T) {
	key := CacheKey("https://example.com/")

	assert.Len(t, key, 64)
	assert.Equal(t, key, CacheKey("https://example.com/"))
	assert.NotEqual(t, key, CacheKey("https://example.com/login"))
	// sha256("abc")
	assert.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", CacheKey("abc"))
}

func sampleResult(at time.Time) *types.AnalysisResult {
	validFrom := at.Add(-24 * time.Hour)
	validTo := at.Add(90 * 24 * time.Hour)

	return &types.AnalysisResult{
		URL: "https://example.com/",
		SSL: types.SSLAssessment{
			Valid:     true,
			Subject:   "CN=example.com",
			Issuer:    "CN=Test CA",
			ValidFrom: &validFrom,
			ValidTo:   &validTo,
		},
		HTMLSummary:   "A plain landing page.",
		Suggestions:   "None.",
		RiskScore:     5,
		HiddenIframes: 1,
		CreatedAt:     at,
	}
}

// runStoreSuite exercises the behavior every backend must share
func runStoreSuite(t *testing.T, s Store) {
	t.Helper()

	ctx := context.Background()
	base := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)

	t.Run("cache miss", func(t *testing.T) {
		_, err := s.GetCached(ctx, CacheKey("https://missing.example/"))
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("cache round trip", func(t *testing.T) {
		key := CacheKey("https://example.com/")
		want := sampleResult(base)

		require.NoError(t, s.PutCached(ctx, key, want))

		got, err := s.GetCached(ctx, key)
		require.NoError(t, err)

		assert.Equal(t, want.URL, got.URL)
		assert.Equal(t, want.RiskScore, got.RiskScore)
		assert.Equal(t, want.HTMLSummary, got.HTMLSummary)
		assert.Equal(t, want.HiddenIframes, got.HiddenIframes)
		assert.True(t, want.CreatedAt.Equal(got.CreatedAt))
		assert.Equal(t, want.SSL.Issuer, got.SSL.Issuer)
		require.NotNil(t, got.SSL.ValidTo)
		assert.True(t, want.SSL.ValidTo.Equal(*got.SSL.ValidTo))
	})

	t.Run("cache overwrite", func(t *testing.T) {
		key := CacheKey("https://overwrite.example/")

		first := sampleResult(base)
		first.RiskScore = 10
		require.NoError(t, s.PutCached(ctx, key, first))

		second := sampleResult(base.Add(time.Hour))
		second.RiskScore = 70
		require.NoError(t, s.PutCached(ctx, key, second))

		got, err := s.GetCached(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, 70, got.RiskScore)
		assert.True(t, second.CreatedAt.Equal(got.CreatedAt))
	})

	t.Run("nil result rejected", func(t *testing.T) {
		assert.ErrorIs(t, s.PutCached(ctx, "k", nil), ErrNilResult)
	})

	t.Run("history newest first", func(t *testing.T) {
		for i := range 3 {
			require.NoError(t, s.AppendHistory(ctx, "user-1", types.HistoryRecord{
				URL:       fmt.Sprintf("https://site%d.example/", i),
				RiskScore: i * 10,
				CreatedAt: base.Add(time.Duration(i) * time.Minute),
			}))
		}

		require.NoError(t, s.AppendHistory(ctx, "user-2", types.HistoryRecord{URL: "https://other.example/", CreatedAt: base}))

		records, err := s.ListHistory(ctx, "user-1", 10)
		require.NoError(t, err)
		require.Len(t, records, 3)

		assert.Equal(t, "https://site2.example/", records[0].URL)
		assert.Equal(t, 20, records[0].RiskScore)
		assert.Equal(t, "https://site0.example/", records[2].URL)
		assert.NotEmpty(t, records[0].ID)
		assert.NotEqual(t, records[0].ID, records[1].ID)
		assert.True(t, base.Add(2*time.Minute).Equal(records[0].CreatedAt))

		limited, err := s.ListHistory(ctx, "user-1", 2)
		require.NoError(t, err)
		assert.Len(t, limited, 2)
	})

	t.Run("history for unknown user is empty", func(t *testing.T) {
		records, err := s.ListHistory(ctx, "nobody", 10)
		require.NoError(t, err)
		assert.Empty(t, records)
	})

	t.Run("history requires user", func(t *testing.T) {
		assert.ErrorIs(t, s.AppendHistory(ctx, "", types.HistoryRecord{URL: "https://x.example/"}), ErrMissingUserID)

		_, err := s.ListHistory(ctx, "", 10)
		assert.ErrorIs(t, err, ErrMissingUserID)
	})
}

func TestPrepareHistory(t *testing.T) {
	rec, err := prepareHistory("u", types.HistoryRecord{URL: "https://x.example/"})
	require.NoError(t, err)

	assert.NotEmpty(t, rec.ID)
	assert.False(t, rec.CreatedAt.IsZero())
	assert.Equal(t, time.UTC, rec.CreatedAt.Location())

	rec, err = prepareHistory("u", types.HistoryRecord{ID: "fixed"})
	require.NoError(t, err)
	assert.Equal(t, "fixed", rec.ID)
}

func TestHistoryLimit(t *testing.T) {
	assert.Equal(t, DefaultHistoryLimit, historyLimit(0))
	assert.Equal(t, DefaultHistoryLimit, historyLimit(-3))
	assert.Equal(t, 7, historyLimit(7))
}
