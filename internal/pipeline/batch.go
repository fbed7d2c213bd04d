package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/crimlab/coforest/internal/config"
	"github.com/crimlab/coforest/internal/model"
)

// BatchProcessor handles concurrent fitting of multiple model variants.
// It uses errgroup to manage goroutines and respect concurrency limits.
//
// Design decision: We use a separate BatchProcessor rather than adding
// batch functionality to Pipeline because:
// 1. It keeps the Pipeline focused on single-model execution
// 2. It allows different batch strategies (e.g., rate limiting, retries)
// 3. It provides cleaner separation of concerns
type BatchProcessor struct {
	// pipelineFactory creates a new pipeline for each model variant.
	// We use a factory to ensure each fit gets a fresh pipeline instance.
	pipelineFactory func(cfg config.ModelConfig) *Pipeline

	// concurrency is the maximum number of variants fitted at once.
	concurrency int

	// logger is used for batch-level logging.
	logger *slog.Logger

	// results stores completed analysis reports.
	// Access is synchronized via mutex.
	results []*model.AnalysisReport
	mu      sync.Mutex
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent fits.
// Default is 2 if not specified; each fit already parallelizes its chains.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a new BatchProcessor.
//
// The pipelineFactory function is called for each model variant to create
// a fresh pipeline instance. This ensures that pipeline state doesn't leak
// between fits and lets the factory tailor steps to the variant.
func NewBatchProcessor(pipelineFactory func(cfg config.ModelConfig) *Pipeline, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		pipelineFactory: pipelineFactory,
		concurrency:     config.DefaultWorkers,
		results:         make([]*model.AnalysisReport, 0),
	}

	for _, opt := range opts {
		opt(bp)
	}

	if bp.logger == nil {
		bp.logger = slog.Default()
	}

	return bp
}

// ProcessBatch fits multiple model variants concurrently.
// It respects the configured concurrency limit and context cancellation.
//
// Design decision: We use errgroup.SetLimit rather than a worker pool
// because it's simpler and errgroup handles the concurrency correctly.
// Each variant gets its own goroutine, but only 'concurrency' goroutines
// run simultaneously.
//
// Returns all reports in the order of the given variants, even for fits
// that failed. The error return indicates if the batch was cancelled.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, dataFile string, raw []model.StudyRecord, variants []config.ModelConfig) ([]*model.AnalysisReport, error) {
	bp.logger.Info("starting batch processing",
		"total_models", len(variants),
		"concurrency", bp.concurrency,
	)

	startTime := time.Now()

	// Pre-allocate results slice to maintain order
	bp.results = make([]*model.AnalysisReport, len(variants))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, variant := range variants {
		g.Go(func() error {
			// Check for cancellation before starting
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			bp.logger.Info("fitting model",
				"model", variant.Name,
				"index", i+1,
				"total", len(variants),
			)

			report := model.NewAnalysisReport(variant.Name, dataFile, raw)

			pipeline := bp.pipelineFactory(variant)
			err := pipeline.Execute(ctx, report)

			// Store result regardless of error
			// The report contains error information if the fit failed
			bp.mu.Lock()
			bp.results[i] = report
			bp.mu.Unlock()

			if err != nil {
				bp.logger.Warn("model fit failed",
					"model", variant.Name,
					"error", err,
				)
				// Don't return error to errgroup - we want to continue the
				// other variants. The error is recorded in the report.
				return nil
			}

			bp.logger.Info("model fit completed",
				"model", variant.Name,
			)

			return nil
		})
	}

	err := g.Wait()

	elapsed := time.Since(startTime)
	bp.logger.Info("batch processing complete",
		"total_models", len(variants),
		"elapsed", elapsed.Round(time.Millisecond),
	)

	return bp.results, err
}
