package pipeline

import (
	"context"
	"log/slog"

	"github.com/crimlab/coforest/internal/model"
)

// Step is one stage of a model fit: prepare the dataset, run the sampler,
// extract summaries, render plots, archive the run. Stages execute in
// sequence over a shared AnalysisReport, each reading what earlier stages
// attached.
//
// Design decision: An interface rather than a function type, because a
// stage carries its own configuration (the model variant, a plot
// directory, an archive handle) and needs a stable name for logging.
type Step interface {
	// Do executes the stage against the accumulated report. An error
	// means later stages cannot proceed for this model.
	Do(ctx context.Context, report *model.AnalysisReport) error

	// Name identifies the stage in logs and in PerformedSteps.
	Name() string
}

// Pipeline runs the stages of one model fit in order.
type Pipeline struct {
	// steps are the stages, in execution order.
	steps []Step

	// logger receives per-stage progress.
	logger *slog.Logger

	// continueOnError keeps later stages running after a failure.
	continueOnError bool
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the pipeline logger. Defaults to slog.Default.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithContinueOnError keeps later stages running after one fails; the
// failure is logged and recorded in the report.
//
// Design decision: Some failures (an unwritable plot directory, say)
// shouldn't discard a finished fit. The default is still to stop,
// because an early failure leaves nothing for later stages to work on:
// no dataset, no draws.
func WithContinueOnError(continueOnError bool) Option {
	return func(p *Pipeline) {
		p.continueOnError = continueOnError
	}
}

// New creates an empty Pipeline; add stages with AddStep or AddSteps.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		steps:           make([]Step, 0),
		continueOnError: false,
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.logger == nil {
		p.logger = slog.Default()
	}

	return p
}

// AddStep appends one stage; stages run in insertion order.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends several stages at once.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs the stages of the fit in sequence, recording progress and
// the first failure in the report.
//
// Design decision: Cancellation is checked between stages, not during. A
// running sampler watches the context itself; the check here keeps a
// cancelled run from starting plots or archive writes for a fit that
// never finished.
func (p *Pipeline) Execute(ctx context.Context, report *model.AnalysisReport) error {
	for _, step := range p.steps {
		select {
		case <-ctx.Done():
			p.logger.Warn("model fit cancelled",
				"step", step.Name(),
				"model", report.ModelName,
				"reason", ctx.Err(),
			)
			report.TimedOut = true
			return ctx.Err()
		default:
		}

		p.logger.Info("running stage",
			"step", step.Name(),
			"model", report.ModelName,
		)

		if err := step.Do(ctx, report); err != nil {
			p.logger.Error("stage failed",
				"step", step.Name(),
				"model", report.ModelName,
				"error", err,
			)

			report.Error = err
			report.ErrorMessage = err.Error()

			if !p.continueOnError {
				return err
			}
		} else {
			p.logger.Debug("stage completed",
				"step", step.Name(),
				"model", report.ModelName,
			)
		}

		report.PerformedSteps = append(report.PerformedSteps, step.Name())
	}

	return nil
}

// StepCount returns the number of stages.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames returns the stage names in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}
