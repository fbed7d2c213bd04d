package plot

import (
	"errors"
	"math"
	"path/filepath"
	"testing"

	"golang.org/x/exp/rand"

	"github.com/crimlab/coforest/internal/posterior"
)

// testDraws builds group draws with a known probability spread.
func testDraws() []posterior.GroupDraws {
	probs := make([]float64, 200)
	for i := range probs {
		probs[i] = 0.25 + 0.2*float64(i)/float64(len(probs))
	}
	return []posterior.GroupDraws{
		{Factor: "average", Label: "Average", Probs: probs, Trials: 450, Observed: 0.35},
		{Factor: "author", Label: "Reiss 1988", Probs: probs, Trials: 150, Observed: 0.40},
	}
}

// TestPPCheck tests posterior predictive plot rendering.
func TestPPCheck(t *testing.T) {
	t.Parallel()

	t.Run("writes a PNG file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "ppc.png")
		if err := PPCheck(path, testDraws(), 42); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		requirePNG(t, path)
	})

	t.Run("tolerates a group without trials", func(t *testing.T) {
		t.Parallel()

		groups := append(testDraws(), posterior.GroupDraws{
			Factor:   "author",
			Label:    "No Data",
			Probs:    []float64{0.3, 0.4},
			Trials:   0,
			Observed: math.NaN(),
		})

		path := filepath.Join(t.TempDir(), "ppc.png")
		if err := PPCheck(path, groups, 42); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		requirePNG(t, path)
	})

	t.Run("rejects empty groups", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "ppc.png")
		if err := PPCheck(path, nil, 42); !errors.Is(err, ErrNoGroups) {
			t.Fatalf("expected ErrNoGroups, got %v", err)
		}
	})
}

// TestPredictiveBand tests band simulation over posterior draws.
func TestPredictiveBand(t *testing.T) {
	t.Parallel()

	t.Run("band brackets the draw probabilities", func(t *testing.T) {
		t.Parallel()

		g := testDraws()[0]
		lo, hi, mean := predictiveBand(g, rand.NewSource(1))

		if !(lo <= mean && mean <= hi) {
			t.Errorf("band ordering violated: lo=%v mean=%v hi=%v", lo, mean, hi)
		}
		if mean < 0.2 || mean > 0.5 {
			t.Errorf("expected predictive mean near the draw range, got %v", mean)
		}
		if lo < 0 || hi > 1 {
			t.Errorf("band escapes [0,1]: lo=%v hi=%v", lo, hi)
		}
	})

	t.Run("zero trials yield NaN", func(t *testing.T) {
		t.Parallel()

		g := posterior.GroupDraws{Probs: []float64{0.5}, Trials: 0}
		lo, hi, mean := predictiveBand(g, rand.NewSource(1))
		if !math.IsNaN(lo) || !math.IsNaN(hi) || !math.IsNaN(mean) {
			t.Errorf("expected NaN band, got lo=%v hi=%v mean=%v", lo, hi, mean)
		}
	})
}
