package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/theopenlane/shieldphish/internal/analyzer"
	"github.com/theopenlane/shieldphish/internal/api"
)

// analyzeCmd runs a single analysis from the command line and prints the result as JSON
var analyzeCmd = &cobra.Command{
	Use:   "analyze <url>",
	Short: "analyze a single url and print the risk assessment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		st, err := setupStore(cmd.Context(), cfg)
		if err != nil {
			return fmt.Errorf("setting up store: %w", err)
		}

		defer st.Close() //nolint:errcheck // closing on exit

		reporter := setupSlack(cfg)
		defer reporter.Wait()

		a, err := setupAnalyzer(cfg, setupCloudflare(cfg), st, reporter)
		if err != nil {
			return fmt.Errorf("setting up analyzer: %w", err)
		}

		defer a.Wait()

		result, err := a.Analyze(cmd.Context(), args[0], k.String("user"))
		if err != nil {
			return errors.New(analyzer.UserMessage(err))
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")

		return enc.Encode(api.NewAnalysisView(result))
	},
}

// init registers the analyze command and its flags on the root command
func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().String("user", "", "record the analysis in this user's history")
}
