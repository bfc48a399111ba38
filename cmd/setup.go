package cmd

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/theopenlane/shieldphish/config"
	"github.com/theopenlane/shieldphish/internal/analyzer"
	"github.com/theopenlane/shieldphish/internal/cloudflare"
	"github.com/theopenlane/shieldphish/internal/fetcher"
	"github.com/theopenlane/shieldphish/internal/slack"
	"github.com/theopenlane/shieldphish/internal/store"
	"github.com/theopenlane/shieldphish/internal/tlsinspect"
)

// loadConfig reads the config file named by the --config flag and applies the logging flags
func loadConfig() (*config.Config, error) {
	cfgPath := k.String("config")

	cfg, err := config.Load(&cfgPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	cfg.Server.Debug = k.Bool("debug")
	cfg.Server.Pretty = k.Bool("pretty")

	return cfg, nil
}

// setupStore opens the configured cache and history backend
func setupStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	log.Info().Str("backend", cfg.Store.Backend).Msg("opening store")

	switch cfg.Store.Backend {
	case config.StoreRedis:
		return store.NewRedis(ctx, store.RedisOptions{
			Addr:     cfg.Store.Redis.Addr,
			Username: cfg.Store.Redis.Username,
			Password: cfg.Store.Redis.Password,
			DB:       cfg.Store.Redis.DB,
			Prefix:   cfg.Store.Redis.Prefix,
			CacheTTL: cfg.Store.Redis.CacheTTL,
		})
	case config.StoreSQLite:
		return store.NewSQLite(cfg.Store.SQLite.Path)
	case config.StorePostgres:
		return store.NewPostgres(ctx, cfg.Store.Postgres.URL, cfg.Store.Postgres.MaxConns)
	default:
		return store.NewMemory(), nil
	}
}

// setupCloudflare initializes the Cloudflare client from config, returning nil when unconfigured
func setupCloudflare(cfg *config.Config) *cloudflare.Client {
	if !cfg.AIConfigured() {
		log.Info().Msg("cloudflare workers ai not configured, skipping")
		return nil
	}

	opts := []cloudflare.Option{
		cloudflare.WithHTTPClient(&http.Client{Timeout: cfg.Cloudflare.RequestTimeout}),
		cloudflare.WithModel(cfg.Cloudflare.Model),
	}

	if cfg.Cloudflare.BaseURL != "" {
		opts = append(opts, cloudflare.WithBaseURL(cfg.Cloudflare.BaseURL))
	}

	client, err := cloudflare.New(cfg.Cloudflare.AccountID, cfg.Cloudflare.APIToken, opts...)
	if err != nil {
		log.Warn().Err(err).Msg("failed to initialize cloudflare client")
		return nil
	}

	log.Info().Str("model", cfg.Cloudflare.Model).Msg("cloudflare workers ai configured")

	return client
}

// setupSlack builds the failure and high risk reporter. It only logs when no webhook is configured
func setupSlack(cfg *config.Config) *slack.Reporter {
	opts := []slack.ReporterOption{
		slack.WithService(appName),
		slack.WithHighRiskThreshold(cfg.Slack.HighRiskThreshold),
		slack.WithReportTimeout(cfg.Slack.RequestTimeout),
	}

	if cfg.Slack.WebhookURL == "" {
		log.Info().Msg("slack notifications not configured, skipping")
		return slack.NewReporter(nil, opts...)
	}

	client, err := slack.New(cfg.Slack.WebhookURL, slack.WithTimeout(cfg.Slack.RequestTimeout))
	if err != nil {
		log.Warn().Err(err).Msg("failed to initialize slack client")
		return slack.NewReporter(nil, opts...)
	}

	log.Info().Msg("slack notifications configured")

	return slack.NewReporter(client, opts...)
}

// setupAnalyzer wires the analysis pipeline around the given AI client and store
func setupAnalyzer(cfg *config.Config, ai *cloudflare.Client, st store.Store, reporter *slack.Reporter) (*analyzer.Analyzer, error) {
	if ai == nil {
		return nil, analyzer.ErrMissingSummarizer
	}

	f := fetcher.New(
		fetcher.WithTimeout(cfg.Analyzer.FetchTimeout),
		fetcher.WithMaxContentLength(cfg.Analyzer.MaxContentLength),
		fetcher.WithMaxRedirects(cfg.Analyzer.MaxRedirects),
		fetcher.WithUserAgent(cfg.Analyzer.UserAgent),
	)

	inspector := tlsinspect.New(tlsinspect.WithTimeout(cfg.Analyzer.TLSTimeout))

	return analyzer.New(analyzer.Services{
		Fetcher:    f,
		Inspector:  inspector,
		Summarizer: ai,
		Advisor:    ai,
		Store:      st,
		Reporter:   reporter,
		Notifier:   reporter,
	},
		analyzer.WithFreshnessWindow(cfg.Analyzer.FreshnessWindow),
		analyzer.WithAITimeout(cfg.Analyzer.AITimeout),
		analyzer.WithPersistTimeout(cfg.Analyzer.PersistTimeout),
	)
}
