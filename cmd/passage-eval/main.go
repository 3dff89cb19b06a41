// Package main provides the passage-eval binary: an offline BM25 ranking
// evaluation over judged query/passage rows.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/guillametlucia/relevant-document-retrieval/internal/bm25"
	"github.com/guillametlucia/relevant-document-retrieval/internal/bus"
	"github.com/guillametlucia/relevant-document-retrieval/internal/config"
	"github.com/guillametlucia/relevant-document-retrieval/internal/dataset"
	"github.com/guillametlucia/relevant-document-retrieval/internal/evaluation"
	evalctx "github.com/guillametlucia/relevant-document-retrieval/internal/pkg/context"
	"github.com/guillametlucia/relevant-document-retrieval/internal/pkg/hash"
	"github.com/guillametlucia/relevant-document-retrieval/internal/pkg/logger"
	"github.com/guillametlucia/relevant-document-retrieval/internal/textnorm"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "passage-eval",
		Short: "BM25 passage ranking evaluation",
		Long: `passage-eval scores judged candidate passages with Okapi BM25,
ranks them per query, and reports mean precision and mean NDCG at a
rank cutoff.

Run 'passage-eval evaluate' for the full pipeline, or 'passage-eval clean'
to only normalize the input and write the cleaned artifacts.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringP("config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose logging")

	rootCmd.AddCommand(
		cleanCmd(),
		evaluateCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func cleanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Normalize the validation table and write cleaned artifacts",
		Long: `Read the judged validation rows, optionally subsample them, run the
text normalization pipeline, and write the cleaned rows plus the
normalized token sequences to the output directory.`,
		RunE: runClean,
	}

	cmd.Flags().StringP("input", "i", "", "validation table path (overrides config)")
	cmd.Flags().StringP("output", "o", "", "output directory (overrides config)")
	cmd.Flags().Int("sample", -1, "subsample size, 0 = all rows (overrides config)")

	return cmd
}

func evaluateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Run the full BM25 ranking evaluation",
		Long: `Read the judged validation rows, normalize them, rank each query's
candidate passages with BM25, and report mean precision and mean NDCG.
The two metric lines are printed to stdout and written to the results
file in the output directory.`,
		RunE: runEvaluate,
	}

	cmd.Flags().StringP("input", "i", "", "validation table path (overrides config)")
	cmd.Flags().StringP("output", "o", "", "output directory (overrides config)")
	cmd.Flags().Int("sample", -1, "subsample size, 0 = all rows (overrides config)")
	cmd.Flags().Float64("k1", 0, "BM25 k1 parameter (overrides config)")
	cmd.Flags().Float64("b", 0, "BM25 b parameter (overrides config)")

	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("passage-eval %s\n", version)
			fmt.Printf("  commit: %s\n", commit)
			fmt.Printf("  built:  %s\n", date)
		},
	}
}

// setup loads the configuration, applies flag overrides, and builds the
// logger.
func setup(cmd *cobra.Command) (*config.Config, *logger.Logger, error) {
	configPath, _ := cmd.Flags().GetString("config")
	verbose, _ := cmd.Flags().GetBool("verbose")

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	if input, _ := cmd.Flags().GetString("input"); input != "" {
		cfg.Data.ValidationPath = input
	}
	if output, _ := cmd.Flags().GetString("output"); output != "" {
		cfg.Data.OutputDir = output
	}
	if cmd.Flags().Changed("sample") {
		size, _ := cmd.Flags().GetInt("sample")
		cfg.Sample.Size = size
	}
	if cmd.Flags().Changed("k1") {
		cfg.BM25.K1, _ = cmd.Flags().GetFloat64("k1")
	}
	if cmd.Flags().Changed("b") {
		cfg.BM25.B, _ = cmd.Flags().GetFloat64("b")
	}

	level := cfg.Log.Level
	if verbose {
		level = "debug"
	}
	log := logger.New(level, cfg.Log.Format)

	return cfg, log, nil
}

// loadCleanedRows reads the validation table, subsamples it, and runs the
// normalization pipeline over queries and passages.
func loadCleanedRows(ctx context.Context, cfg *config.Config, log *logger.Logger) ([]dataset.Row, error) {
	rows, err := dataset.ReadValidation(cfg.Data.ValidationPath)
	if err != nil {
		return nil, err
	}
	log.Info("Loaded validation rows", "rows", len(rows), "path", cfg.Data.ValidationPath)

	if cfg.Sample.Size > 0 && cfg.Sample.Size < len(rows) {
		rows = dataset.Sample(rows, cfg.Sample.Size, cfg.Sample.Seed)
		log.Info("Subsampled rows", "rows", len(rows), "seed", cfg.Sample.Seed)
	}

	norm, err := textnorm.New()
	if err != nil {
		return nil, fmt.Errorf("failed to build normalizer: %w", err)
	}

	cache, err := textnorm.NewCache(cfg.Cache, log)
	if err != nil {
		return nil, fmt.Errorf("failed to build token cache: %w", err)
	}
	if rc, ok := cache.(*textnorm.RedisCache); ok {
		defer func() { _ = rc.Close() }()
	}

	pipeline := textnorm.NewPipeline(norm, cache, cfg.Normalize, log)

	queries := make([]string, len(rows))
	passages := make([]string, len(rows))
	for i := range rows {
		queries[i] = rows[i].QueryText
		passages[i] = rows[i].PassageText
	}

	queryTokens, err := pipeline.NormalizeBatch(ctx, queries)
	if err != nil {
		return nil, fmt.Errorf("failed to normalize queries: %w", err)
	}
	passageTokens, err := pipeline.NormalizeBatch(ctx, passages)
	if err != nil {
		return nil, fmt.Errorf("failed to normalize passages: %w", err)
	}

	for i := range rows {
		rows[i].QueryTokens = queryTokens[i]
		rows[i].PassageTokens = passageTokens[i]
	}

	return rows, nil
}

func runClean(cmd *cobra.Command, _ []string) error {
	cfg, log, err := setup(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rows, err := loadCleanedRows(ctx, cfg, log)
	if err != nil {
		return err
	}

	cleanedPath := filepath.Join(cfg.Data.OutputDir, "validation_data_cleaned.csv")
	if err := dataset.WriteCleanedRows(cleanedPath, rows); err != nil {
		return err
	}

	queryTokens := make([][]string, len(rows))
	passageTokens := make([][]string, len(rows))
	for i := range rows {
		queryTokens[i] = rows[i].QueryTokens
		passageTokens[i] = rows[i].PassageTokens
	}

	if err := dataset.WriteTokensJSON(filepath.Join(cfg.Data.OutputDir, "query_tokens.json"), queryTokens); err != nil {
		return err
	}
	if err := dataset.WriteTokensJSON(filepath.Join(cfg.Data.OutputDir, "passage_tokens.json"), passageTokens); err != nil {
		return err
	}

	log.Info("Wrote cleaned artifacts",
		"rows", len(rows),
		"output_dir", cfg.Data.OutputDir,
	)
	return nil
}

func runEvaluate(cmd *cobra.Command, _ []string) error {
	cfg, log, err := setup(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rows, err := loadCleanedRows(ctx, cfg, log)
	if err != nil {
		return err
	}

	sets := dataset.GroupByQuery(rows)
	log.Info("Grouped candidate sets", "queries", len(sets))

	eventBus, err := buildBus(cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = eventBus.Close() }()

	runID := hash.SHA256Short([]byte(fmt.Sprintf("%s-%d", cfg.Data.ValidationPath, time.Now().UnixNano())), 12)
	ctx = evalctx.WithRunID(ctx, runID)

	params := bm25.Params{K1: cfg.BM25.K1, B: cfg.BM25.B}
	evaluator := evaluation.New(params, cfg.Eval.PrecisionCutoff, eventBus, log.WithContext(ctx))

	summary, err := evaluator.Run(ctx, runID, sets)
	if err != nil {
		return err
	}

	if err := evaluation.WriteReport(os.Stdout, summary); err != nil {
		return err
	}

	resultsPath := filepath.Join(cfg.Data.OutputDir, cfg.Eval.ResultsFile)
	if err := evaluation.SaveReport(resultsPath, summary); err != nil {
		return err
	}
	log.Info("Wrote results file", "path", resultsPath)

	return nil
}

// buildBus constructs the run event bus, optionally wrapped with the
// on-disk event log.
func buildBus(cfg *config.Config, log *logger.Logger) (bus.Bus, error) {
	inner, err := bus.NewBus(cfg.Bus)
	if err != nil {
		return nil, fmt.Errorf("failed to create event bus: %w", err)
	}

	if !cfg.Bus.EventLogEnabled {
		return inner, nil
	}

	logPath := cfg.Bus.EventLogPath
	if logPath == "" {
		logPath = filepath.Join(cfg.Data.OutputDir, "events.jsonl")
	}

	eventLogger, err := bus.NewEventLogger(logPath, true)
	if err != nil {
		return nil, fmt.Errorf("failed to create event logger: %w", err)
	}
	log.Info("Event logging enabled", "path", logPath)

	return bus.NewLoggedBus(inner, eventLogger, log), nil
}
