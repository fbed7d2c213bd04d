package bayes

import (
	"context"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/crimlab/coforest/internal/model"
)

// smokeControls are deliberately tiny; these tests check plumbing, not
// convergence.
func smokeControls() Controls {
	return Controls{
		Seed:         42,
		Chains:       2,
		Iterations:   60,
		Warmup:       60,
		TargetAccept: 0.5,
		MaxTreeDepth: 10,
	}
}

// smokeSpec builds a single-factor model spec for the test dataset.
func smokeSpec(t *testing.T) Spec {
	t.Helper()

	priors, err := ForRegime(RegimeWeak)
	if err != nil {
		t.Fatalf("failed to look up priors: %v", err)
	}
	return Spec{
		Name:   "smoke",
		Terms:  []model.Factor{model.FactorAuthor},
		Priors: priors,
	}
}

// TestSamplerFit tests a small end-to-end fit.
func TestSamplerFit(t *testing.T) {
	t.Parallel()

	t.Run("produces draws for every chain and parameter", func(t *testing.T) {
		t.Parallel()

		s := NewSampler(smokeSpec(t), smokeControls())
		fit, err := s.Fit(context.Background(), testDataset())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if fit.ModelName != "smoke" {
			t.Errorf("expected model name smoke, got %q", fit.ModelName)
		}
		// 1 intercept + 1 scale + 2 authors.
		if len(fit.Params) != 4 {
			t.Fatalf("expected 4 parameters, got %d", len(fit.Params))
		}
		if len(fit.Chains) != 2 {
			t.Fatalf("expected 2 chains, got %d", len(fit.Chains))
		}

		for _, c := range fit.Chains {
			if len(c.Values) != 60 {
				t.Errorf("chain %d: expected 60 draws, got %d", c.Chain, len(c.Values))
			}
			for _, v := range c.Values {
				if len(v) != len(fit.Params) {
					t.Fatalf("chain %d: draw width %d, want %d", c.Chain, len(v), len(fit.Params))
				}
			}
			if c.Acceptance < 0 || c.Acceptance > 1 {
				t.Errorf("chain %d: acceptance %v outside [0,1]", c.Chain, c.Acceptance)
			}
		}

		if len(fit.Diagnostics) != len(fit.Params) {
			t.Errorf("expected diagnostics for every parameter, got %d", len(fit.Diagnostics))
		}
	})

	t.Run("same seed reproduces identical draws", func(t *testing.T) {
		t.Parallel()

		first, err := NewSampler(smokeSpec(t), smokeControls(), WithChainWorkers(1)).
			Fit(context.Background(), testDataset())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		second, err := NewSampler(smokeSpec(t), smokeControls(), WithChainWorkers(1)).
			Fit(context.Background(), testDataset())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		for c := range first.Chains {
			for i := range first.Chains[c].Values {
				for j := range first.Chains[c].Values[i] {
					if first.Chains[c].Values[i][j] != second.Chains[c].Values[i][j] {
						t.Fatalf("chain %d draw %d param %d differs between identical runs", c, i, j)
					}
				}
			}
		}
	})

	t.Run("cancelled context aborts the fit", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		controls := smokeControls()
		controls.Iterations = 5000
		controls.Warmup = 5000

		if _, err := NewSampler(smokeSpec(t), controls).Fit(ctx, testDataset()); err == nil {
			t.Fatal("expected error from cancelled context")
		}
	})

	t.Run("rejects empty dataset", func(t *testing.T) {
		t.Parallel()

		s := NewSampler(smokeSpec(t), smokeControls())
		if _, err := s.Fit(context.Background(), &model.Dataset{Name: "empty"}); err == nil {
			t.Fatal("expected error for empty dataset")
		}
	})
}

// TestMoveFraction tests the acceptance estimate.
func TestMoveFraction(t *testing.T) {
	t.Parallel()

	t.Run("counts changed rows", func(t *testing.T) {
		t.Parallel()

		// Rows: a, a, b, b -> one move out of three transitions.
		batch := mat.NewDense(4, 2, []float64{
			1, 1,
			1, 1,
			2, 2,
			2, 2,
		})
		if got := moveFraction(batch); got != 1.0/3.0 {
			t.Errorf("expected 1/3, got %v", got)
		}
	})

	t.Run("single row has no transitions", func(t *testing.T) {
		t.Parallel()

		batch := mat.NewDense(1, 2, []float64{1, 1})
		if got := moveFraction(batch); got != 0 {
			t.Errorf("expected 0, got %v", got)
		}
	})
}
