package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/theopenlane/shieldphish/internal/api"
)

// serveCmd is the cobra command that starts the shieldphish API server
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "start the shieldphish api server",
	Run: func(cmd *cobra.Command, _ []string) {
		err := serve(cmd.Context())
		cobra.CheckErr(err)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

// serve initializes dependencies and starts the shieldphish API server
func serve(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	st, err := setupStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("setting up store: %w", err)
	}

	defer func() {
		if err := st.Close(); err != nil {
			log.Error().Err(err).Msg("store close error")
		}
	}()

	reporter := setupSlack(cfg)
	defer reporter.Wait()

	cfClient := setupCloudflare(cfg)

	routerCfg := api.RouterConfig{
		MaxBodySize:    cfg.Server.MaxBodySize,
		RequestTimeout: cfg.Server.RequestTimeout,
		UserHeader:     cfg.Server.UserHeader,
	}

	if cfClient != nil {
		a, err := setupAnalyzer(cfg, cfClient, st, reporter)
		if err != nil {
			return fmt.Errorf("setting up analyzer: %w", err)
		}

		defer a.Wait()

		if budget := cfg.AnalysisBudget(); cfg.Server.RequestTimeout > 0 && cfg.Server.RequestTimeout < budget {
			log.Warn().Dur("request_timeout", cfg.Server.RequestTimeout).Dur("analysis_budget", budget).
				Msg("request timeout is shorter than the analysis step timeouts allow")
		}

		routerCfg.Analyzer = a
		routerCfg.Classifier = cfClient
	} else {
		log.Warn().Msg("analysis disabled until cloudflare credentials are configured")
	}

	srv := &http.Server{
		Addr:         cfg.Server.Listen,
		Handler:      api.NewRouter(routerCfg),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownGracePeriod)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("server shutdown error")
		}
	}()

	log.Info().Str("listen", cfg.Server.Listen).Str("store", cfg.Store.Backend).Msg("starting shieldphish service")

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen: %w", err)
	}

	return nil
}
