package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/crimlab/coforest/internal/bayes"
	"github.com/crimlab/coforest/internal/config"
	"github.com/crimlab/coforest/internal/database"
	"github.com/crimlab/coforest/internal/dataset"
	"github.com/crimlab/coforest/internal/model"
	"github.com/crimlab/coforest/internal/plot"
	"github.com/crimlab/coforest/internal/posterior"
)

// PrepareStep builds the model's prepared dataset from the raw study
// records, applying the configured exclusions.
//
// Design decision: Preparation is a pipeline step rather than something
// done once up front because model variants fit different dataset
// variants (per-study table vs. crime-type breakdown) of the same raw
// records.
type PrepareStep struct {
	// variant selects the preparation variant ("by_study" or "by_type").
	variant string

	// opts carry the DOI and category exclusions.
	opts dataset.PrepareOptions

	// logger for structured logging.
	logger *slog.Logger
}

// PrepareStepOption configures a PrepareStep.
type PrepareStepOption func(*PrepareStep)

// WithPrepareLogger sets a custom logger for the prepare step.
func WithPrepareLogger(logger *slog.Logger) PrepareStepOption {
	return func(s *PrepareStep) {
		s.logger = logger
	}
}

// NewPrepareStep creates a dataset preparation step.
func NewPrepareStep(variant string, opts dataset.PrepareOptions, stepOpts ...PrepareStepOption) *PrepareStep {
	s := &PrepareStep{
		variant: variant,
		opts:    opts,
		logger:  slog.Default(),
	}

	for _, opt := range stepOpts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *PrepareStep) Name() string {
	return "prepare"
}

// Do executes the dataset preparation step.
func (s *PrepareStep) Do(_ context.Context, report *model.AnalysisReport) error {
	ds, err := dataset.Prepare(s.variant, report.Raw, s.opts)
	if err != nil {
		return fmt.Errorf("prepare %s: %w", s.variant, err)
	}

	report.Data = ds

	s.logger.Debug("dataset prepared",
		"model", report.ModelName,
		"variant", s.variant,
		"groups", len(ds.Groups),
		"total_offenses", ds.TotalOffenses(),
	)
	return nil
}

// FitStep runs the MCMC sampler for the model variant.
type FitStep struct {
	// cfg is the resolved model configuration.
	cfg config.ModelConfig

	// workers bounds chain-level concurrency inside the fit.
	workers int

	// logger for structured logging.
	logger *slog.Logger
}

// FitStepOption configures a FitStep.
type FitStepOption func(*FitStep)

// WithFitLogger sets a custom logger for the fit step.
func WithFitLogger(logger *slog.Logger) FitStepOption {
	return func(s *FitStep) {
		s.logger = logger
	}
}

// WithFitWorkers bounds how many chains sample concurrently.
func WithFitWorkers(n int) FitStepOption {
	return func(s *FitStep) {
		if n > 0 {
			s.workers = n
		}
	}
}

// NewFitStep creates a model fitting step.
func NewFitStep(cfg config.ModelConfig, opts ...FitStepOption) *FitStep {
	s := &FitStep{
		cfg:    cfg,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *FitStep) Name() string {
	return "fit"
}

// Do executes the model fitting step.
func (s *FitStep) Do(ctx context.Context, report *model.AnalysisReport) error {
	if report.Data == nil {
		return fmt.Errorf("model %s: no prepared dataset", s.cfg.Name)
	}

	spec, err := newSpec(s.cfg)
	if err != nil {
		return err
	}

	controls := bayes.Controls{
		Seed:         s.cfg.Seed,
		Chains:       s.cfg.Chains,
		Iterations:   s.cfg.Iterations,
		Warmup:       s.cfg.Warmup,
		TargetAccept: s.cfg.TargetAccept,
		MaxTreeDepth: s.cfg.MaxTreeDepth,
	}

	samplerOpts := []bayes.Option{bayes.WithLogger(s.logger)}
	if s.workers > 0 {
		samplerOpts = append(samplerOpts, bayes.WithChainWorkers(s.workers))
	}

	fit, err := bayes.NewSampler(spec, controls, samplerOpts...).Fit(ctx, report.Data)
	if err != nil {
		return fmt.Errorf("fit %s: %w", s.cfg.Name, err)
	}

	report.Fit = fit
	return nil
}

// ExtractStep back-transforms the posterior draws into group summaries
// and assembles the run summary that reports and the archive consume.
type ExtractStep struct {
	// cfg is the resolved model configuration.
	cfg config.ModelConfig

	// logger for structured logging.
	logger *slog.Logger
}

// ExtractStepOption configures an ExtractStep.
type ExtractStepOption func(*ExtractStep)

// WithExtractLogger sets a custom logger for the extract step.
func WithExtractLogger(logger *slog.Logger) ExtractStepOption {
	return func(s *ExtractStep) {
		s.logger = logger
	}
}

// NewExtractStep creates a posterior extraction step.
func NewExtractStep(cfg config.ModelConfig, opts ...ExtractStepOption) *ExtractStep {
	s := &ExtractStep{
		cfg:    cfg,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *ExtractStep) Name() string {
	return "extract"
}

// Do executes the posterior extraction step. The summaries of all grouping
// factors are concatenated, with a single grand-average row leading.
func (s *ExtractStep) Do(_ context.Context, report *model.AnalysisReport) error {
	if report.Fit == nil || report.Data == nil {
		return fmt.Errorf("model %s: nothing to extract", s.cfg.Name)
	}

	factors, err := bayes.ParseTerms(s.cfg.Terms)
	if err != nil {
		return err
	}

	var summaries []model.GroupSummary
	for i, factor := range factors {
		draws, err := posterior.Extract(report.Fit, report.Data, factor)
		if err != nil {
			return fmt.Errorf("extract %s: %w", factor, err)
		}

		// Every factor's extraction leads with the same grand-average row;
		// keep only the first one.
		if i > 0 {
			draws = draws[1:]
		}

		factorSummaries, err := posterior.Summaries(draws, report.Fit)
		if err != nil {
			return fmt.Errorf("summarize %s: %w", factor, err)
		}
		summaries = append(summaries, factorSummaries...)
	}

	report.Summaries = summaries
	report.Run = &model.RunSummary{
		CreatedAt:  time.Now().UTC(),
		ModelName:  s.cfg.Name,
		DataFile:   report.DataFile,
		Chains:     s.cfg.Chains,
		Iterations: s.cfg.Iterations,
		Warmup:     s.cfg.Warmup,
		Seed:       s.cfg.Seed,
		Status:     report.Fit.Status,
		WorstRHat:  report.Fit.WorstRHat(),
		MinESS:     report.Fit.MinESS(),
		Groups:     summaries,
	}

	s.logger.Debug("posterior extracted",
		"model", s.cfg.Name,
		"groups", len(summaries),
		"status", report.Fit.Status.String(),
	)
	return nil
}

// PlotStep renders the figures of the run: one forest plot per grouping
// factor, a posterior predictive check, and optionally per-parameter
// trace plots.
type PlotStep struct {
	// cfg is the resolved model configuration.
	cfg config.ModelConfig

	// dir is the directory plot files are written to.
	dir string

	// traces enables per-parameter trace plots.
	traces bool

	// logger for structured logging.
	logger *slog.Logger
}

// PlotStepOption configures a PlotStep.
type PlotStepOption func(*PlotStep)

// WithPlotLogger sets a custom logger for the plot step.
func WithPlotLogger(logger *slog.Logger) PlotStepOption {
	return func(s *PlotStep) {
		s.logger = logger
	}
}

// WithTraces enables per-parameter trace plots.
func WithTraces(traces bool) PlotStepOption {
	return func(s *PlotStep) {
		s.traces = traces
	}
}

// NewPlotStep creates a figure rendering step writing into dir.
func NewPlotStep(cfg config.ModelConfig, dir string, opts ...PlotStepOption) *PlotStep {
	s := &PlotStep{
		cfg:    cfg,
		dir:    dir,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *PlotStep) Name() string {
	return "plot"
}

// Do executes the figure rendering step.
func (s *PlotStep) Do(_ context.Context, report *model.AnalysisReport) error {
	if report.Fit == nil || report.Data == nil {
		return fmt.Errorf("model %s: nothing to plot", s.cfg.Name)
	}

	factors, err := bayes.ParseTerms(s.cfg.Terms)
	if err != nil {
		return err
	}

	for i, factor := range factors {
		draws, err := posterior.Extract(report.Fit, report.Data, factor)
		if err != nil {
			return fmt.Errorf("extract %s: %w", factor, err)
		}

		summaries, err := posterior.Summaries(draws, report.Fit)
		if err != nil {
			return fmt.Errorf("summarize %s: %w", factor, err)
		}

		forestPath := filepath.Join(s.dir, fmt.Sprintf("forest_%s_%s.png", s.cfg.Name, factor))
		forest := plot.NewForest(
			plot.WithForestTitle(fmt.Sprintf("Co-offending by %s (%s)", factor, s.cfg.Name)),
		)
		if err := forest.Save(forestPath, summaries); err != nil {
			return err
		}
		report.PlotFiles = append(report.PlotFiles, forestPath)

		// One predictive check per run is enough; it simulates at the
		// first factor's grouping.
		if i == 0 {
			ppcPath := filepath.Join(s.dir, fmt.Sprintf("ppc_%s.png", s.cfg.Name))
			if err := plot.PPCheck(ppcPath, draws, s.cfg.Seed); err != nil {
				return err
			}
			report.PlotFiles = append(report.PlotFiles, ppcPath)
		}
	}

	if s.traces {
		for _, param := range plot.TraceParams(report.Fit) {
			tracePath := filepath.Join(s.dir, plot.TraceFileName(s.cfg.Name, param))
			if err := plot.Trace(tracePath, report.Fit, param); err != nil {
				return err
			}
			report.PlotFiles = append(report.PlotFiles, tracePath)
		}
	}

	s.logger.Debug("plots written",
		"model", s.cfg.Name,
		"files", len(report.PlotFiles),
	)
	return nil
}

// ArchiveStep persists the run summary to the SQLite run archive.
type ArchiveStep struct {
	// db is the open run archive.
	db *database.RunDB

	// logger for structured logging.
	logger *slog.Logger
}

// ArchiveStepOption configures an ArchiveStep.
type ArchiveStepOption func(*ArchiveStep)

// WithArchiveLogger sets a custom logger for the archive step.
func WithArchiveLogger(logger *slog.Logger) ArchiveStepOption {
	return func(s *ArchiveStep) {
		s.logger = logger
	}
}

// NewArchiveStep creates an archiving step writing to the given archive.
func NewArchiveStep(db *database.RunDB, opts ...ArchiveStepOption) *ArchiveStep {
	s := &ArchiveStep{
		db:     db,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *ArchiveStep) Name() string {
	return "archive"
}

// Do executes the archiving step.
func (s *ArchiveStep) Do(ctx context.Context, report *model.AnalysisReport) error {
	if report.Run == nil {
		return fmt.Errorf("model %s: no run summary to archive", report.ModelName)
	}

	if err := s.db.SaveRun(ctx, report.Run); err != nil {
		return fmt.Errorf("archive %s: %w", report.ModelName, err)
	}

	s.logger.Info("run archived",
		"model", report.ModelName,
		"run_id", report.Run.RunID,
		"archive", s.db.Path(),
	)
	return nil
}

// newSpec converts a resolved model configuration into a sampler spec.
func newSpec(cfg config.ModelConfig) (bayes.Spec, error) {
	factors, err := bayes.ParseTerms(cfg.Terms)
	if err != nil {
		return bayes.Spec{}, fmt.Errorf("model %s: %w", cfg.Name, err)
	}

	priors, err := bayes.ForRegime(cfg.Priors)
	if err != nil {
		return bayes.Spec{}, fmt.Errorf("model %s: %w", cfg.Name, err)
	}

	return bayes.Spec{
		Name:   cfg.Name,
		Terms:  factors,
		Priors: priors,
	}, nil
}
