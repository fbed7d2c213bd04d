package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/crimlab/coforest/internal/config"
	"github.com/crimlab/coforest/internal/database"
	"github.com/crimlab/coforest/internal/dataset"
	"github.com/crimlab/coforest/internal/log"
	"github.com/crimlab/coforest/internal/model"
	"github.com/crimlab/coforest/internal/pipeline"
	"github.com/crimlab/coforest/internal/report"
)

// NewFitCmd creates the fit command.
func NewFitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fit <data-file>",
		Short: "Fit hierarchical co-offending models to a spreadsheet of study counts",
		Long: `Fit reads a spreadsheet (xlsx) or CSV file of per-study offense counts,
prepares the analysis datasets, fits each configured model variant by
MCMC, and renders forest plots of the partially pooled proportion
estimates.

Model variants, priors, and record exclusions come from a .coforest.yaml
analysis file; without one, the built-in exclusions and the four model
variants of the published analysis are used. Every completed fit is archived so runs can be
listed and compared later with 'coforest runs'.

Examples:
  # Fit the default model variants
  coforest fit data.xlsx

  # Fit only one variant with more draws
  coforest fit --models author_type --iter 5000 data.xlsx

  # Read a specific sheet and write a Markdown report
  coforest fit --sheet Counts --markdown -o report.md data.xlsx

  # Write per-parameter trace plots for convergence inspection
  coforest fit --traces data.xlsx`,
		Args: cobra.ExactArgs(1),
		RunE: runFitCmd,
	}

	// Input flags
	cmd.Flags().StringP("sheet", "s", config.DefaultSheet,
		"Sheet name to read from an xlsx file")
	cmd.Flags().StringP("config", "c", "",
		"Analysis file path (default: .coforest.yaml in current or home directory)")
	cmd.Flags().StringSliceP("models", "M", nil,
		"Fit only the named model variants")

	// Sampler flags
	cmd.Flags().Int("chains", config.DefaultChains,
		"Number of MCMC chains per model")
	cmd.Flags().Int("iter", config.DefaultIterations,
		"Post-warmup iterations per chain")
	cmd.Flags().Int("warmup", config.DefaultWarmup,
		"Warmup iterations discarded per chain")
	cmd.Flags().Uint64("seed", config.DefaultSeed,
		"Base random seed")
	cmd.Flags().Float64("target-accept", config.DefaultTargetAccept,
		"Target acceptance rate for warmup adaptation")
	cmd.Flags().Int("max-depth", config.DefaultMaxTreeDepth,
		"Maximum trajectory depth (accepted for compatibility; unused by the random-walk kernel)")
	cmd.Flags().IntP("workers", "w", config.DefaultWorkers,
		"Number of model variants fitted concurrently")

	// Output flags
	cmd.Flags().String("plot-dir", config.DefaultPlotDir,
		"Directory for plot images")
	cmd.Flags().Bool("traces", false,
		"Write per-parameter trace plots")
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")
	cmd.Flags().Bool("no-archive", false,
		"Skip archiving run summaries to the database")

	return cmd
}

// runFitCmd executes the fit command.
func runFitCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Set up structured logging
	logger := setupLogger(getVerboseFlag(cmd))
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runFit(ctx, cfg, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from cobra command flags.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.DataFile = args[0]

	var err error

	cfg.Sheet, err = cmd.Flags().GetString("sheet")
	if err != nil {
		return nil, err
	}

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	cfg.Models, err = cmd.Flags().GetStringSlice("models")
	if err != nil {
		return nil, err
	}

	cfg.Chains, err = cmd.Flags().GetInt("chains")
	if err != nil {
		return nil, err
	}

	cfg.Iterations, err = cmd.Flags().GetInt("iter")
	if err != nil {
		return nil, err
	}

	cfg.Warmup, err = cmd.Flags().GetInt("warmup")
	if err != nil {
		return nil, err
	}

	cfg.Seed, err = cmd.Flags().GetUint64("seed")
	if err != nil {
		return nil, err
	}

	cfg.TargetAccept, err = cmd.Flags().GetFloat64("target-accept")
	if err != nil {
		return nil, err
	}

	cfg.MaxTreeDepth, err = cmd.Flags().GetInt("max-depth")
	if err != nil {
		return nil, err
	}

	cfg.Workers, err = cmd.Flags().GetInt("workers")
	if err != nil {
		return nil, err
	}

	cfg.PlotDir, err = cmd.Flags().GetString("plot-dir")
	if err != nil {
		return nil, err
	}

	cfg.Traces, err = cmd.Flags().GetBool("traces")
	if err != nil {
		return nil, err
	}

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	noArchive, err := cmd.Flags().GetBool("no-archive")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noArchive
	cfg.DBDir = config.XDGDataDir()
	cfg.Verbose = getVerboseFlag(cmd)

	// Load the analysis file.
	// If user explicitly specified a path, error if not found.
	// If no path specified, silently use the built-in defaults.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		cfg.Analysis, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load analysis file %s: %w", configPath, err)
		}
	} else if explicitConfigPath {
		return nil, fmt.Errorf("analysis file not found: %s", cfg.ConfigFilePath)
	} else {
		cfg.Analysis = config.DefaultFile()
	}

	// Sheet from the analysis file wins over the flag default, but an
	// explicit --sheet flag wins over the file.
	if cfg.Analysis.Sheet != "" && !cmd.Flags().Changed("sheet") {
		cfg.Sheet = cfg.Analysis.Sheet
	}

	return cfg, nil
}

// setupLogger creates a structured logger based on verbosity setting.
// The text handler is wrapped in a CompactHandler so draw vectors logged
// during sampling stay readable.
func setupLogger(verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	handler := log.NewCompactHandler(slog.NewTextHandler(os.Stderr, opts))
	return slog.New(handler)
}

// runFit executes the analysis.
func runFit(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	raw, err := dataset.ReadStudies(cfg.DataFile, cfg.Sheet)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", cfg.DataFile, err)
	}

	variants, err := selectVariants(cfg)
	if err != nil {
		return err
	}

	logger.Info("starting analysis",
		"data_file", cfg.DataFile,
		"records", len(raw),
		"models", len(variants),
		"workers", cfg.Workers,
		"archive", cfg.SaveToDB,
	)

	// Open the run archive if enabled
	var db *database.RunDB
	if cfg.SaveToDB {
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open run archive: %w", err)
		}
		defer db.Close()
		logger.Info("run archive opened", "dir", cfg.DBDir)
	}

	bp := pipeline.NewBatchProcessor(
		func(variant config.ModelConfig) *pipeline.Pipeline {
			return createPipelineForVariant(variant, cfg, db, logger)
		},
		pipeline.WithConcurrency(cfg.Workers),
		pipeline.WithBatchLogger(logger),
	)

	startTime := time.Now()
	reports, err := bp.ProcessBatch(ctx, cfg.DataFile, raw, variants)
	if err != nil {
		return err
	}
	fmt.Printf("Fitted %d model(s) in %s\n", len(variants), time.Since(startTime).Round(time.Millisecond))

	var failed int
	for _, r := range reports {
		if r == nil {
			continue
		}
		if r.Error != nil {
			failed++
			fmt.Fprintf(os.Stderr, "Model %s failed: %v\n", r.ModelName, r.Error)
			continue
		}
		if err := outputReport(cfg, r.Run); err != nil {
			logger.Error("report failed", "model", r.ModelName, "error", err)
		}
	}

	if failed == len(variants) {
		return errors.New("all model fits failed")
	}
	return nil
}

// selectVariants resolves the model variants to fit, honoring --models.
func selectVariants(cfg *config.Config) ([]config.ModelConfig, error) {
	variants := cfg.Analysis.ResolvedModels(cfg)
	if len(cfg.Models) == 0 {
		return variants, nil
	}

	byName := make(map[string]config.ModelConfig, len(variants))
	for _, v := range variants {
		byName[v.Name] = v
	}

	selected := make([]config.ModelConfig, 0, len(cfg.Models))
	for _, name := range cfg.Models {
		v, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("unknown model %q (configured: %d variants)", name, len(variants))
		}
		selected = append(selected, v)
	}
	return selected, nil
}

// createPipelineForVariant assembles the step sequence of one model fit.
func createPipelineForVariant(variant config.ModelConfig, cfg *config.Config, db *database.RunDB, logger *slog.Logger) *pipeline.Pipeline {
	p := pipeline.New(
		pipeline.WithLogger(logger),
	)

	prepOpts := dataset.PrepareOptions{
		ExcludeDOIs:       cfg.Analysis.Exclude.DOIs,
		ExcludeCategories: cfg.Analysis.Exclude.Categories,
	}

	p.AddSteps(
		pipeline.NewPrepareStep(variant.Dataset, prepOpts, pipeline.WithPrepareLogger(logger)),
		pipeline.NewFitStep(variant, pipeline.WithFitLogger(logger)),
		pipeline.NewExtractStep(variant, pipeline.WithExtractLogger(logger)),
		pipeline.NewPlotStep(variant, cfg.PlotDir,
			pipeline.WithPlotLogger(logger),
			pipeline.WithTraces(cfg.Traces),
		),
	)

	if db != nil {
		p.AddStep(pipeline.NewArchiveStep(db, pipeline.WithArchiveLogger(logger)))
	}

	return p
}

// outputReport writes one run summary in the requested format.
func outputReport(cfg *config.Config, run *model.RunSummary) error {
	if run == nil {
		return errors.New("no run summary produced")
	}

	var output *os.File
	if cfg.ReportFile != "" {
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		// Append so multi-model runs collect in one file.
		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	} else {
		output = os.Stdout
	}

	w := newReportWriter(cfg, output)
	if _, err := w.Write(run); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// newReportWriter selects the report writer matching the configured format.
func newReportWriter(cfg *config.Config, output *os.File) report.Writer {
	switch {
	case cfg.JSONReport:
		return report.NewJSONWriter(output, report.WithPrettyPrint())
	case cfg.MarkdownReport:
		return report.NewMarkdownWriter(output)
	default:
		return report.NewSimpleWriter(output, report.WithVerbose(cfg.Verbose))
	}
}
