package posterior

import (
	"errors"
	"math"
	"testing"

	"github.com/crimlab/coforest/internal/bayes"
	"github.com/crimlab/coforest/internal/model"
)

// testFit builds a fit with known draws: intercept at logit levels and one
// author factor with two levels.
func testFit() *model.FitResult {
	return &model.FitResult{
		ModelName: "test",
		Params: []string{
			"b_Intercept",
			"log_sd_author",
			"r_author[Reiss 1988]",
			"r_author[Carrington 2002]",
		},
		Chains: []model.ChainDraws{
			{
				Chain: 0,
				Values: [][]float64{
					{-0.5, 0.0, 0.2, -0.3},
					{-0.7, 0.1, 0.4, -0.1},
				},
			},
			{
				Chain: 1,
				Values: [][]float64{
					{-0.6, -0.1, 0.3, -0.2},
					{-0.4, 0.0, 0.1, -0.4},
				},
			},
		},
		Diagnostics: []model.ParamDiagnostic{
			{Name: "b_Intercept", RHat: 1.001, ESS: 900},
			{Name: "log_sd_author", RHat: 1.002, ESS: 800},
			{Name: "r_author[Reiss 1988]", RHat: 1.003, ESS: 700},
			{Name: "r_author[Carrington 2002]", RHat: 1.004, ESS: 600},
		},
	}
}

// testDataset matches the fit's author levels.
func testDataset() *model.Dataset {
	return &model.Dataset{
		Name: "by_study",
		Groups: []model.Group{
			{StudyN: 1, Author: "Reiss 1988", Type: model.CrimeViolent, Offenses: 150, Cooffenses: 60},
			{StudyN: 2, Author: "Carrington 2002", Type: model.CrimeProperty, Offenses: 300, Cooffenses: 100},
		},
	}
}

// TestExtract tests probability-scale extraction.
func TestExtract(t *testing.T) {
	t.Parallel()

	t.Run("grand average row is pinned first", func(t *testing.T) {
		t.Parallel()

		groups, err := Extract(testFit(), testDataset(), model.FactorAuthor)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(groups) != 3 {
			t.Fatalf("expected average + 2 groups, got %d", len(groups))
		}
		if groups[0].Label != AverageLabel {
			t.Errorf("expected %q first, got %q", AverageLabel, groups[0].Label)
		}
		if groups[0].Param != "" {
			t.Errorf("expected no parameter behind the average, got %q", groups[0].Param)
		}
	})

	t.Run("average draws are the logistic intercept", func(t *testing.T) {
		t.Parallel()

		groups, err := Extract(testFit(), testDataset(), model.FactorAuthor)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := bayes.Logistic(-0.5)
		if got := groups[0].Probs[0]; math.Abs(got-want) > 1e-12 {
			t.Errorf("expected first average draw %v, got %v", want, got)
		}
	})

	t.Run("group draws add the intercept draw by draw", func(t *testing.T) {
		t.Parallel()

		groups, err := Extract(testFit(), testDataset(), model.FactorAuthor)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		reiss := groups[1]
		want := bayes.Logistic(-0.5 + 0.2)
		if got := reiss.Probs[0]; math.Abs(got-want) > 1e-12 {
			t.Errorf("expected first Reiss draw %v, got %v", want, got)
		}
	})

	t.Run("all draws are proportions", func(t *testing.T) {
		t.Parallel()

		groups, err := Extract(testFit(), testDataset(), model.FactorAuthor)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		for _, g := range groups {
			for _, p := range g.Probs {
				if p <= 0 || p >= 1 {
					t.Fatalf("group %q: draw %v outside (0,1)", g.Label, p)
				}
			}
		}
	})

	t.Run("observed proportions join by raw level", func(t *testing.T) {
		t.Parallel()

		groups, err := Extract(testFit(), testDataset(), model.FactorAuthor)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if got := groups[1].Observed; math.Abs(got-0.4) > 1e-12 {
			t.Errorf("expected Reiss observed 0.4, got %v", got)
		}
		// Average row compares against the whole dataset: 160/450.
		if got := groups[0].Observed; math.Abs(got-160.0/450.0) > 1e-12 {
			t.Errorf("expected dataset-wide observed, got %v", got)
		}
	})

	t.Run("trial counts follow the level sums", func(t *testing.T) {
		t.Parallel()

		groups, err := Extract(testFit(), testDataset(), model.FactorAuthor)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if groups[0].Trials != 450 {
			t.Errorf("expected 450 total trials, got %d", groups[0].Trials)
		}
		if groups[2].Trials != 300 {
			t.Errorf("expected 300 Carrington trials, got %d", groups[2].Trials)
		}
	})

	t.Run("missing intercept is an error", func(t *testing.T) {
		t.Parallel()

		fit := &model.FitResult{Params: []string{"log_sd_author"}}
		if _, err := Extract(fit, testDataset(), model.FactorAuthor); !errors.Is(err, ErrNoIntercept) {
			t.Fatalf("expected ErrNoIntercept, got %v", err)
		}
	})

	t.Run("factor without effects is an error", func(t *testing.T) {
		t.Parallel()

		if _, err := Extract(testFit(), testDataset(), model.FactorType); !errors.Is(err, ErrNoGroupEffects) {
			t.Fatalf("expected ErrNoGroupEffects, got %v", err)
		}
	})
}

// TestSummaries tests summary assembly with diagnostics.
func TestSummaries(t *testing.T) {
	t.Parallel()

	groups, err := Extract(testFit(), testDataset(), model.FactorAuthor)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	summaries, err := Summaries(groups, testFit())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(summaries) != 3 {
		t.Fatalf("expected 3 summaries, got %d", len(summaries))
	}

	// The average row carries no parameter diagnostics.
	if summaries[0].RHat != 0 || summaries[0].ESS != 0 {
		t.Errorf("expected zero diagnostics for the average row, got %+v", summaries[0])
	}

	// Group rows carry the diagnostics of their underlying parameter.
	if summaries[1].RHat != 1.003 || summaries[1].ESS != 700 {
		t.Errorf("expected Reiss diagnostics attached, got %+v", summaries[1])
	}

	for _, s := range summaries {
		if !(s.Lo95 <= s.Lo80 && s.Lo80 <= s.Mean && s.Mean <= s.Hi80 && s.Hi80 <= s.Hi95) {
			t.Errorf("group %q: interval ordering violated: %+v", s.Label, s)
		}
	}
}
