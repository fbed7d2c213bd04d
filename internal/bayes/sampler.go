package bayes

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"runtime"
	"time"

	"golang.org/x/exp/rand"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
	"gonum.org/v1/gonum/stat/samplemv"

	"github.com/crimlab/coforest/internal/model"
)

// Controls are the sampler settings of one fit.
type Controls struct {
	// Seed is the base random seed; chain c derives its own source from it
	// so chains are independent but the whole fit is reproducible.
	Seed uint64

	// Chains is the number of independent MCMC chains.
	Chains int

	// Iterations is the number of post-warmup draws per chain.
	Iterations int

	// Warmup is the number of adaptation iterations discarded per chain.
	Warmup int

	// TargetAccept is the acceptance rate the proposal-scale adaptation
	// aims for during warmup.
	TargetAccept float64

	// MaxTreeDepth is accepted for compatibility with trajectory samplers
	// (NUTS). The Metropolis-Hastings kernel used here has no trajectory,
	// so a non-default value is logged and otherwise ignored.
	MaxTreeDepth int
}

// Adaptation constants for the warmup phase.
const (
	// adaptWindow is the number of iterations per proposal-scale
	// adaptation window.
	adaptWindow = 50

	// initialScale is the starting proposal standard deviation.
	initialScale = 0.25

	// minScale and maxScale bound the adapted proposal scale so a run of
	// unlucky windows cannot freeze or explode the proposal.
	minScale = 1e-3
	maxScale = 5.0

	// adaptGain controls how strongly each window's acceptance deviation
	// moves the proposal scale.
	adaptGain = 1.5

	// chainSeedStride separates per-chain seeds. A large odd stride keeps
	// derived seeds distinct even for adjacent base seeds.
	chainSeedStride = 1_000_003
)

// Sampler fits one model specification by delegating to gonum's
// Metropolis-Hastings kernel. It owns warmup adaptation, chain
// concurrency, and diagnostics; the Markov transition itself is the
// library's.
type Sampler struct {
	spec     Spec
	controls Controls

	// workers bounds how many chains sample concurrently.
	workers int

	// logger for structured logging.
	logger *slog.Logger
}

// Option configures a Sampler.
type Option func(*Sampler)

// WithLogger sets a custom logger for the sampler.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Sampler) {
		s.logger = logger
	}
}

// WithChainWorkers bounds how many chains run concurrently. The default
// is one worker per CPU, capped at the chain count.
func WithChainWorkers(n int) Option {
	return func(s *Sampler) {
		if n > 0 {
			s.workers = n
		}
	}
}

// NewSampler creates a sampler for one model specification.
func NewSampler(spec Spec, controls Controls, opts ...Option) *Sampler {
	s := &Sampler{
		spec:     spec,
		controls: controls,
		workers:  runtime.GOMAXPROCS(0),
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Fit runs all chains against the prepared dataset and returns the fit
// with diagnostics attached. Non-convergence is not an error: the fit is
// returned with a Poor status for the caller to report.
func (s *Sampler) Fit(ctx context.Context, ds *model.Dataset) (*model.FitResult, error) {
	d, err := buildDesign(ds, s.spec.Terms)
	if err != nil {
		return nil, fmt.Errorf("model %s: %w", s.spec.Name, err)
	}

	if s.controls.MaxTreeDepth != 0 && s.controls.MaxTreeDepth != 10 {
		s.logger.Info("max_tree_depth has no effect on the Metropolis-Hastings kernel",
			"model", s.spec.Name,
			"max_tree_depth", s.controls.MaxTreeDepth,
		)
	}

	target := newLogPosterior(d, s.spec.Priors)
	result := &model.FitResult{
		ModelName: s.spec.Name,
		Params:    d.paramNames(),
		Chains:    make([]model.ChainDraws, s.controls.Chains),
		Seed:      s.controls.Seed,
		Warmup:    s.controls.Warmup,
	}

	s.logger.Info("sampling started",
		"model", s.spec.Name,
		"params", len(result.Params),
		"chains", s.controls.Chains,
		"iterations", s.controls.Iterations,
		"warmup", s.controls.Warmup,
	)
	start := time.Now()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for c := 0; c < s.controls.Chains; c++ {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			draws, err := s.runChain(c, d.dim(), target)
			if err != nil {
				return fmt.Errorf("chain %d: %w", c, err)
			}

			// Chains write disjoint slots, so no mutex is needed.
			result.Chains[c] = draws

			s.logger.Debug("chain finished",
				"model", s.spec.Name,
				"chain", c,
				"acceptance", draws.Acceptance,
			)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	result.Diagnostics = ComputeDiagnostics(result)
	result.Status = model.StatusFromDiagnostics(result.WorstRHat(), result.MinESS())

	s.logger.Info("sampling finished",
		"model", s.spec.Name,
		"elapsed", time.Since(start).Round(time.Millisecond),
		"status", result.Status.String(),
		"worst_rhat", result.WorstRHat(),
		"min_ess", result.MinESS(),
	)

	return result, nil
}

// runChain executes warmup adaptation followed by the sampling phase for
// a single chain.
func (s *Sampler) runChain(chain, dim int, target *logPosterior) (model.ChainDraws, error) {
	src := rand.NewSource(s.controls.Seed + uint64(chain)*chainSeedStride)

	// Overdispersed starting points help split R-hat detect
	// non-convergence; a jittered origin start is sufficient because all
	// parameters live on the real line.
	jitter := distuv.Normal{Mu: 0, Sigma: 0.5, Src: src}
	state := make([]float64, dim)
	for i := range state {
		state[i] = jitter.Rand()
	}

	scale := initialScale

	// Warmup: sample in short windows, nudging the proposal scale toward
	// the target acceptance after each window. Warmup draws are discarded.
	remaining := s.controls.Warmup
	for remaining > 0 {
		window := adaptWindow
		if remaining < window {
			window = remaining
		}

		batch, err := s.sampleBatch(src, state, scale, window, target)
		if err != nil {
			return model.ChainDraws{}, err
		}
		state = mat.Row(nil, window-1, batch)

		acc := moveFraction(batch)
		scale *= math.Exp(adaptGain * (acc - s.controls.TargetAccept))
		scale = math.Min(math.Max(scale, minScale), maxScale)

		remaining -= window
	}

	// Sampling phase: the proposal scale is frozen so the chain is a
	// proper Markov chain over the retained draws.
	batch, err := s.sampleBatch(src, state, scale, s.controls.Iterations, target)
	if err != nil {
		return model.ChainDraws{}, err
	}

	values := make([][]float64, s.controls.Iterations)
	for i := range values {
		values[i] = mat.Row(nil, i, batch)
	}

	return model.ChainDraws{
		Chain:      chain,
		Values:     values,
		Acceptance: moveFraction(batch),
	}, nil
}

// sampleBatch draws n samples from the target using gonum's
// Metropolis-Hastings kernel with a spherical Gaussian proposal.
func (s *Sampler) sampleBatch(src rand.Source, initial []float64, scale float64, n int, target *logPosterior) (*mat.Dense, error) {
	dim := len(initial)

	sigma := mat.NewSymDense(dim, nil)
	for i := 0; i < dim; i++ {
		sigma.SetSym(i, i, scale*scale)
	}

	proposal, ok := samplemv.NewProposalNormal(sigma, src)
	if !ok {
		return nil, fmt.Errorf("proposal covariance not positive-definite (scale %g)", scale)
	}

	batch := mat.NewDense(n, dim, nil)
	mh := samplemv.MetropolisHastingser{
		Initial:  initial,
		Target:   target,
		Proposal: proposal,
		Src:      src,
	}
	mh.Sample(batch)

	return batch, nil
}

// moveFraction estimates the acceptance rate of a Metropolis batch as the
// fraction of iterations on which the chain moved: a rejected proposal
// repeats the previous state exactly.
func moveFraction(batch *mat.Dense) float64 {
	rows, cols := batch.Dims()
	if rows < 2 {
		return 0
	}

	moved := 0
	for i := 1; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if batch.At(i, j) != batch.At(i-1, j) {
				moved++
				break
			}
		}
	}
	return float64(moved) / float64(rows-1)
}
