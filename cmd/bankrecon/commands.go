package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/JonMunkholm/bankrecon/internal/config"
	"github.com/JonMunkholm/bankrecon/internal/core"
	"github.com/JonMunkholm/bankrecon/internal/ingest"
	"github.com/JonMunkholm/bankrecon/internal/logging"
	"github.com/JonMunkholm/bankrecon/internal/metrics"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

type globalFlags struct {
	cfg *config.Config

	encoding  string
	maxRows   int
	logLevel  string
	logFormat string
	tolerance float64
	workers   int
}

// loadConfig reads .env and the environment, then lets explicitly set
// flags override the configured values.
func (g *globalFlags) loadConfig(cmd *cobra.Command) error {
	// A missing .env is fine; existing env vars win over the file.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	g.cfg = cfg

	flags := cmd.Flags()
	if !flags.Changed("encoding") {
		g.encoding = cfg.Upload.Encoding
	}
	if !flags.Changed("max-rows") {
		g.maxRows = cfg.Upload.MaxRows
	}
	if !flags.Changed("log-level") {
		g.logLevel = cfg.Logging.Level
	}
	if !flags.Changed("log-format") {
		g.logFormat = cfg.Logging.Format
	}
	if !flags.Changed("tolerance") {
		g.tolerance = cfg.Pipeline.ReconcileTolerance
	} else if g.tolerance <= 0 {
		return fmt.Errorf("--tolerance must be positive, got %g", g.tolerance)
	}
	if !flags.Changed("workers") {
		g.workers = cfg.Pipeline.ReconcileWorkers
	}
	return nil
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}

	root := &cobra.Command{
		Use:           "bankrecon",
		Short:         "Validate, clean and reconcile banking transaction exports",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := g.loadConfig(cmd); err != nil {
				return err
			}
			// Logs go to stderr; stdout carries the JSON result.
			logging.SetupWriter(cmd.ErrOrStderr(), g.logLevel, g.logFormat)
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&g.encoding, "encoding", ingest.EncodingUTF8, "Source encoding: utf-8, windows-1252 or iso-8859-1")
	pf.IntVar(&g.maxRows, "max-rows", 0, "Reject files with more data rows (0 = unlimited; default UPLOAD_MAX_ROWS)")
	pf.StringVar(&g.logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	pf.StringVar(&g.logFormat, "log-format", "text", "Log format: text or json")
	pf.Float64Var(&g.tolerance, "tolerance", core.DefaultReconcileTolerance, "Allowed balance drift per transaction")
	pf.IntVar(&g.workers, "workers", 0, "Parallel reconciliation workers (0 = GOMAXPROCS)")

	root.AddCommand(newProcessCmd(g), newMetricsCmd(g), newValidateCmd(g))
	return root
}

func newProcessCmd(g *globalFlags) *cobra.Command {
	var withCleaned bool

	cmd := &cobra.Command{
		Use:   "process <file.csv>",
		Short: "Run the full pipeline and print processing statistics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := runPipeline(cmd.Context(), g, args[0])
			if err != nil {
				return err
			}
			if withCleaned {
				return printJSON(cmd.OutOrStdout(), result)
			}
			return printJSON(cmd.OutOrStdout(), struct {
				Stats        core.ProcessingStats `json:"stats"`
				Errors       []core.ErrorSummary  `json:"errors"`
				DuplicateIDs []string             `json:"duplicateIds"`
				Dataset      core.DatasetSummary  `json:"dataset"`
			}{
				result.Stats,
				core.SummarizeValidationErrors(result.Stats.ValidationErrors),
				result.DuplicateIDs,
				result.Dataset,
			})
		},
	}
	cmd.Flags().BoolVar(&withCleaned, "cleaned", false, "Include the cleaned transactions in the output")
	return cmd
}

func newMetricsCmd(g *globalFlags) *cobra.Command {
	var (
		f         metrics.Filter
		threshold float64
		topCities int
	)

	cmd := &cobra.Command{
		Use:   "metrics <file.csv>",
		Short: "Run the pipeline and print the business metrics report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := runPipeline(cmd.Context(), g, args[0])
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("anomaly-threshold") {
				threshold = g.cfg.Pipeline.AnomalyThreshold
			}
			if !cmd.Flags().Changed("top-cities") {
				topCities = g.cfg.Pipeline.TopCities
			}
			report, err := metrics.Compute(cmd.Context(), result.Cleaned, metrics.Options{
				Filter:           f,
				AnomalyThreshold: threshold,
				TopCities:        topCities,
			})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), report)
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.Branch, "branch", "", "Only transactions of this branch")
	fl.StringVar(&f.AccountType, "account-type", "", "Only transactions of this account type")
	fl.StringVar(&f.TransactionType, "type", "", "Only this transaction type (deposit, withdrawal, ...)")
	fl.StringVar(&f.Month, "month", "", "Only this month (YYYY-MM)")
	fl.Float64Var(&threshold, "anomaly-threshold", metrics.DefaultAnomalyThreshold, "Z-score at which an amount is flagged")
	fl.IntVar(&topCities, "top-cities", metrics.DefaultTopCities, "Number of cities to rank")
	return cmd
}

func newValidateCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file.csv>",
		Short: "Validate rows without cleaning and print a dataset summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raws, err := readRecords(cmd.Context(), g, args[0])
			if err != nil {
				return err
			}
			counts := make(map[core.ErrorKind]int)
			for _, raw := range raws {
				for _, kind := range core.ValidateTransaction(raw).Errors {
					counts[kind]++
				}
			}
			return printJSON(cmd.OutOrStdout(), struct {
				Dataset core.DatasetSummary `json:"dataset"`
				Errors  []core.ErrorSummary `json:"errors"`
			}{core.ValidateDataset(raws), core.SummarizeValidationErrors(counts)})
		},
	}
}

func readFile(ctx context.Context, g *globalFlags, path string) ([]map[string]any, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := ingest.ReadCSV(ctx, f, ingest.Options{Encoding: g.encoding, MaxRows: g.maxRows})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rows, nil
}

func readRecords(ctx context.Context, g *globalFlags, path string) ([]core.RawRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	raws, err := ingest.ReadRecords(ctx, f, ingest.Options{Encoding: g.encoding, MaxRows: g.maxRows})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return raws, nil
}

func runPipeline(ctx context.Context, g *globalFlags, path string) (*core.ProcessResult, error) {
	rows, err := readFile(ctx, g, path)
	if err != nil {
		return nil, err
	}
	proc := core.NewProcessor(
		core.WithLogger(logging.WithFields(ctx, "file", path)),
		core.WithReconcileOptions(core.ReconcileOptions{Tolerance: g.tolerance, Workers: g.workers}),
	)
	return proc.Process(ctx, rows)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
