package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/iho/ledgerviews/internal/adapter/file"
	"github.com/iho/ledgerviews/internal/infrastructure/config"
	"github.com/iho/ledgerviews/internal/infrastructure/postgres"
	"github.com/iho/ledgerviews/internal/usecase"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledgerviews",
		Short: "Ledgerviews CLI",
		Long:  `Run ledger aggregation jobs from files and manage the service schema.`,
	}

	cmd.AddCommand(runCmd(), migrateCmd(), healthCmd())
	return cmd
}

func runCmd() *cobra.Command {
	var (
		entriesPath  string
		registryPath string
		taxonomyPath string
		taxpayerID   string
		period       int
		fiscalYear   int
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one aggregation job from files, writing rows as NDJSON to stdout",
		RunE: func(cmd *cobra.Command, args []string) error {
			taxonomy, err := file.LoadTaxonomy(taxonomyPath)
			if err != nil {
				return err
			}
			registry, err := file.LoadRegistry(registryPath)
			if err != nil {
				return err
			}
			stream, err := file.OpenEntries(entriesPath)
			if err != nil {
				return err
			}
			defer stream.Close(cmd.Context())

			pipeline := usecase.NewPipeline(usecase.PipelineConfig{
				Sink:     file.NewSink(cmd.OutOrStdout()),
				Warner:   stderrWarner{out: cmd.ErrOrStderr()},
				Accounts: registry,
				Parties:  registry,
				Opening:  registry,
				Taxonomy: taxonomy,
				Locker:   file.NewMemoryLock(),
				IDs:      runID{},
				Logger:   zerolog.New(cmd.ErrOrStderr()),
			})

			result, err := pipeline.Run(cmd.Context(), usecase.JobParams{
				TaxpayerID: taxpayerID,
				Period:     period,
				FiscalYear: fiscalYear,
			}, stream)
			if err != nil {
				return err
			}

			summary, err := json.Marshal(result)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.ErrOrStderr(), string(summary))
			return nil
		},
	}

	cmd.Flags().StringVar(&entriesPath, "entries", "", "NDJSON ledger entries file, sorted by (date, id)")
	cmd.Flags().StringVar(&registryPath, "registry", "", "JSON file with accounts, counterparties and opening balances")
	cmd.Flags().StringVar(&taxonomyPath, "taxonomy", "taxonomy.json", "JSON statement taxonomy file")
	cmd.Flags().StringVar(&taxpayerID, "taxpayer", "", "taxpayer identifier")
	cmd.Flags().IntVar(&period, "period", 0, "accounting period")
	cmd.Flags().IntVar(&fiscalYear, "fiscal-year", 0, "declared fiscal year for the statement of income")
	cmd.MarkFlagRequired("entries")
	cmd.MarkFlagRequired("taxpayer")
	cmd.MarkFlagRequired("period")

	return cmd
}

func migrateCmd() *cobra.Command {
	var down bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations (or roll back one with --down)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			if down {
				return postgres.RunMigrationsDown(cfg.DatabaseURL, cfg.MigrationsPath)
			}
			return postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath)
		},
	}

	cmd.Flags().BoolVar(&down, "down", false, "roll back the last migration")
	return cmd
}

func healthCmd() *cobra.Command {
	var (
		baseURL string
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check the readiness of a running service",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := &http.Client{Timeout: timeout}
			resp, err := client.Get(baseURL + "/ready")
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			body, _ := io.ReadAll(resp.Body)
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("service not ready (status %d): %s", resp.StatusCode, body)
			}

			fmt.Fprintln(cmd.OutOrStdout(), string(body))
			return nil
		},
	}

	cmd.Flags().StringVar(&baseURL, "url", "http://localhost:8080", "base URL of the service")
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "request timeout")
	return cmd
}

// stderrWarner prints advisories as single lines for one-shot runs.
type stderrWarner struct {
	out io.Writer
}

func (w stderrWarner) Warn(msg string, fields map[string]any) {
	payload, err := json.Marshal(fields)
	if err != nil {
		payload = []byte("{}")
	}
	fmt.Fprintf(w.out, "warning: %s %s\n", msg, payload)
}

// runID labels one-shot runs by start time.
type runID struct{}

func (runID) Generate() string {
	return fmt.Sprintf("cli-%d", time.Now().UnixNano())
}
