// Package analyzer runs the URL risk analysis pipeline: cache lookup, page fetch,
// concurrent TLS and AI analysis, structural scoring and detached persistence
package analyzer

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/theopenlane/shieldphish/internal/domain"
	"github.com/theopenlane/shieldphish/internal/extractor"
	"github.com/theopenlane/shieldphish/internal/fetcher"
	"github.com/theopenlane/shieldphish/internal/scoring"
	"github.com/theopenlane/shieldphish/internal/store"
	"github.com/theopenlane/shieldphish/internal/tlsinspect"
	"github.com/theopenlane/shieldphish/internal/types"
)

// PageFetcher retrieves the HTML of a target URL
type PageFetcher interface {
	Fetch(ctx context.Context, target string) (*fetcher.Page, error)
}

// CertInspector judges the TLS certificate of a host. It never fails
type CertInspector interface {
	Inspect(ctx context.Context, hostname string) types.SSLAssessment
}

// Summarizer produces a security summary of page HTML
type Summarizer interface {
	Summarize(ctx context.Context, html string) (string, error)
}

// Advisor produces phishing detection suggestions for a page
type Advisor interface {
	Suggest(ctx context.Context, pageURL, html string) (string, error)
}

// Reporter receives failures of background operations
type Reporter interface {
	ReportError(ctx context.Context, op string, err error)
}

// Notifier is told about every freshly computed result
type Notifier interface {
	NotifyHighRisk(ctx context.Context, result *types.AnalysisResult)
}

// Services are the collaborators of an Analyzer, built once at startup
type Services struct {
	Fetcher    PageFetcher
	Inspector  CertInspector
	Summarizer Summarizer
	Advisor    Advisor
	Store      store.Store
	// Reporter is optional; failures are only logged without it
	Reporter Reporter
	// Notifier is optional
	Notifier Notifier
}

// Analyzer orchestrates a single URL analysis
type Analyzer struct {
	svc            Services
	now            func() time.Time
	freshness      time.Duration
	aiTimeout      time.Duration
	persistTimeout time.Duration
	background     sync.WaitGroup
}

// New validates svc and creates an Analyzer
func New(svc Services, opts ...Option) (*Analyzer, error) {
	switch {
	case svc.Fetcher == nil:
		return nil, ErrMissingFetcher
	case svc.Inspector == nil:
		return nil, ErrMissingInspector
	case svc.Summarizer == nil:
		return nil, ErrMissingSummarizer
	case svc.Advisor == nil:
		return nil, ErrMissingAdvisor
	case svc.Store == nil:
		return nil, ErrMissingStore
	}

	a := &Analyzer{
		svc:            svc,
		now:            time.Now,
		freshness:      DefaultFreshnessWindow,
		aiTimeout:      DefaultAITimeout,
		persistTimeout: DefaultPersistTimeout,
	}

	for _, opt := range opts {
		opt(a)
	}

	return a, nil
}

// Analyze computes or recalls the risk assessment of rawURL. History is recorded for userID when it is
// non-empty. Returned errors are *Error values carrying a user-safe message
func (a *Analyzer) Analyze(ctx context.Context, rawURL, userID string) (*types.AnalysisResult, error) {
	start := time.Now()

	target, err := domain.ParseTarget(rawURL)
	if err != nil {
		return nil, validationError(err)
	}

	normalized := domain.Normalize(target)
	key := store.CacheKey(normalized)

	logger := log.With().Str("url", normalized).Logger()

	if cached := a.lookup(ctx, key); cached != nil {
		logger.Debug().Time("created_at", cached.CreatedAt).Msg("serving cached analysis")

		a.recordHistory(ctx, userID, cached.URL, cached.RiskScore)

		return cached, nil
	}

	page, err := a.svc.Fetcher.Fetch(ctx, normalized)
	if err != nil {
		logger.Info().Err(err).Msg("page fetch failed")

		return nil, fetchError(err)
	}

	if page.Truncated {
		logger.Debug().Int("length", len(page.Body)).Msg("page content truncated")
	}

	sslCh := lo.Async(func() types.SSLAssessment {
		if target.Scheme != "https" {
			return tlsinspect.NotSecure()
		}

		return a.svc.Inspector.Inspect(ctx, strings.ToLower(target.Hostname()))
	})

	var summary, suggestions string

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		callCtx, cancel := context.WithTimeout(gctx, a.aiTimeout)
		defer cancel()

		var err error
		summary, err = a.svc.Summarizer.Summarize(callCtx, page.Body)

		return err
	})

	g.Go(func() error {
		callCtx, cancel := context.WithTimeout(gctx, a.aiTimeout)
		defer cancel()

		var err error
		suggestions, err = a.svc.Advisor.Suggest(callCtx, normalized, page.Body)

		return err
	})

	signals := extractor.Extract(page.Body, target)

	if err := g.Wait(); err != nil {
		if cerr := canceled(ctx); cerr != nil {
			logger.Warn().Err(err).Msg("analysis abandoned during ai calls")

			return nil, cerr
		}

		logger.Error().Err(err).Msg("ai analysis failed")

		return nil, upstreamError(err)
	}

	ssl := <-sslCh

	if cerr := canceled(ctx); cerr != nil {
		return nil, cerr
	}

	score := scoring.Score(ssl, signals)

	logger.Debug().
		Int("risk_score", score).
		Interface("breakdown", scoring.Breakdown(ssl, signals)).
		Bool("override", scoring.Override(ssl, signals)).
		Msg("scored analysis")

	result := &types.AnalysisResult{
		URL:           normalized,
		SSL:           ssl,
		HTMLSummary:   summary,
		Suggestions:   suggestions,
		RiskScore:     score,
		HiddenIframes: signals.HiddenIframes,
		CreatedAt:     a.now().UTC(),
	}

	a.persist(ctx, key, result)
	a.recordHistory(ctx, userID, result.URL, result.RiskScore)

	if a.svc.Notifier != nil {
		a.svc.Notifier.NotifyHighRisk(ctx, result)
	}

	logger.Info().Int("risk_score", score).Dur("duration", time.Since(start)).Msg("analysis complete")

	return result, nil
}

// canceled classifies the end of the caller's context: an expired deadline is a timeout, anything else unexpected
func canceled(ctx context.Context) *Error {
	err := ctx.Err()

	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.DeadlineExceeded):
		return &Error{Kind: KindTimeout, Message: msgTimeout, Err: err}
	default:
		return unexpectedError(err)
	}
}

// History lists the user's past analyses, newest first
func (a *Analyzer) History(ctx context.Context, userID string, limit int) ([]types.HistoryRecord, error) {
	return a.svc.Store.ListHistory(ctx, userID, limit)
}

// Wait blocks until all detached writes have finished
func (a *Analyzer) Wait() {
	a.background.Wait()
}

// lookup returns a fresh cached result, or nil on a miss, a stale entry or a storage failure
func (a *Analyzer) lookup(ctx context.Context, key string) *types.AnalysisResult {
	cached, err := a.svc.Store.GetCached(ctx, key)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			a.report(ctx, "cache read", err)
		}

		return nil
	}

	if a.now().Sub(cached.CreatedAt) >= a.freshness {
		return nil
	}

	return cached
}

func (a *Analyzer) persist(ctx context.Context, key string, result *types.AnalysisResult) {
	snapshot := *result

	a.detach(ctx, "cache write", func(ctx context.Context) error {
		return a.svc.Store.PutCached(ctx, key, &snapshot)
	})
}

func (a *Analyzer) recordHistory(ctx context.Context, userID, url string, score int) {
	if userID == "" {
		return
	}

	rec := types.HistoryRecord{
		URL:       url,
		RiskScore: score,
		CreatedAt: a.now().UTC(),
	}

	a.detach(ctx, "history append", func(ctx context.Context) error {
		return a.svc.Store.AppendHistory(ctx, userID, rec)
	})
}

// detach runs fn outside the request lifetime so a canceled or finished request does not abort the write
func (a *Analyzer) detach(ctx context.Context, op string, fn func(context.Context) error) {
	a.background.Add(1)

	go func() {
		defer a.background.Done()

		writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.persistTimeout)
		defer cancel()

		if err := fn(writeCtx); err != nil {
			a.report(writeCtx, op, err)
		}
	}()
}

func (a *Analyzer) report(ctx context.Context, op string, err error) {
	if a.svc.Reporter != nil {
		a.svc.Reporter.ReportError(ctx, op, err)

		return
	}

	log.Error().Err(err).Str("operation", op).Msg("background operation failed")
}
