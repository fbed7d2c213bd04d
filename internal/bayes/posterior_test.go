package bayes

import (
	"math"
	"testing"

	"github.com/crimlab/coforest/internal/model"
)

// TestLogPosterior tests the sampling target density.
func TestLogPosterior(t *testing.T) {
	t.Parallel()

	newTarget := func(t *testing.T) *logPosterior {
		t.Helper()
		d, err := buildDesign(testDataset(), []model.Factor{model.FactorAuthor})
		if err != nil {
			t.Fatalf("failed to build design: %v", err)
		}
		priors, err := ForRegime(RegimeWeak)
		if err != nil {
			t.Fatalf("failed to look up priors: %v", err)
		}
		return newLogPosterior(d, priors)
	}

	t.Run("finite at the origin", func(t *testing.T) {
		t.Parallel()

		lp := newTarget(t)
		x := make([]float64, lp.design.dim())
		if v := lp.LogProb(x); math.IsInf(v, 0) || math.IsNaN(v) {
			t.Errorf("expected finite log density at origin, got %v", v)
		}
	})

	t.Run("finite for moderate parameter values", func(t *testing.T) {
		t.Parallel()

		lp := newTarget(t)
		x := []float64{-1.2, 0.3, 0.5, -0.7}
		if v := lp.LogProb(x); math.IsInf(v, 0) || math.IsNaN(v) {
			t.Errorf("expected finite log density, got %v", v)
		}
	})

	t.Run("returns -inf rather than NaN for extreme scales", func(t *testing.T) {
		t.Parallel()

		lp := newTarget(t)
		x := make([]float64, lp.design.dim())
		x[lp.design.scaleIndex(0)] = 1e6 // tau overflows to +inf
		if v := lp.LogProb(x); !math.IsInf(v, -1) {
			t.Errorf("expected -inf for overflowing scale, got %v", v)
		}
	})

	t.Run("prefers the observed proportion over a distant one", func(t *testing.T) {
		t.Parallel()

		lp := newTarget(t)

		// Pooled observed proportion is about 1/3, logit ~ -0.7.
		near := make([]float64, lp.design.dim())
		near[0] = -0.7
		far := make([]float64, lp.design.dim())
		far[0] = 4.0

		if lp.LogProb(near) <= lp.LogProb(far) {
			t.Error("expected higher density near the observed proportion")
		}
	})
}

// TestLogSigmoid tests the stable log-sigmoid used by the likelihood.
func TestLogSigmoid(t *testing.T) {
	t.Parallel()

	t.Run("matches naive formula in the stable range", func(t *testing.T) {
		t.Parallel()

		for _, x := range []float64{-5, -1, 0, 1, 5} {
			want := math.Log(1 / (1 + math.Exp(-x)))
			if got := logSigmoid(x); math.Abs(got-want) > 1e-12 {
				t.Errorf("logSigmoid(%v) = %v, want %v", x, got, want)
			}
		}
	})

	t.Run("stays finite for extreme inputs", func(t *testing.T) {
		t.Parallel()

		if v := logSigmoid(800); v != 0 && math.IsInf(v, 0) {
			t.Errorf("expected ~0 for large positive input, got %v", v)
		}
		if v := logSigmoid(-800); math.IsInf(v, 0) || math.IsNaN(v) {
			t.Errorf("expected finite value for large negative input, got %v", v)
		}
	})
}

// TestLogistic tests the inverse-logit map.
func TestLogistic(t *testing.T) {
	t.Parallel()

	if got := Logistic(0); got != 0.5 {
		t.Errorf("Logistic(0) = %v, want 0.5", got)
	}
	for _, x := range []float64{-30, -2, 0, 2, 30} {
		p := Logistic(x)
		if p < 0 || p > 1 {
			t.Errorf("Logistic(%v) = %v outside [0,1]", x, p)
		}
	}
	if Logistic(3) <= Logistic(-3) {
		t.Error("expected Logistic to be increasing")
	}
}
