package bayes

import (
	"errors"
	"testing"

	"github.com/crimlab/coforest/internal/model"
)

// testDataset returns a small prepared dataset with two authors and two
// crime types.
func testDataset() *model.Dataset {
	return &model.Dataset{
		Name: "by_study",
		Groups: []model.Group{
			{StudyN: 1, Author: "Reiss 1988", Type: model.CrimeViolent, Offenses: 150, Cooffenses: 60},
			{StudyN: 1, Author: "Reiss 1988", Type: model.CrimeOther, Offenses: 50, Cooffenses: 5},
			{StudyN: 2, Author: "Carrington 2002", Type: model.CrimeProperty, Offenses: 300, Cooffenses: 100},
		},
	}
}

// TestBuildDesign tests construction of the parameter layout.
func TestBuildDesign(t *testing.T) {
	t.Parallel()

	t.Run("dimension counts intercept, scales, and effects", func(t *testing.T) {
		t.Parallel()

		d, err := buildDesign(testDataset(), []model.Factor{model.FactorAuthor, model.FactorType})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		// 1 intercept + (1 scale + 2 authors) + (1 scale + 3 types).
		if got := d.dim(); got != 8 {
			t.Errorf("expected dim 8, got %d", got)
		}
	})

	t.Run("parameter names carry level labels", func(t *testing.T) {
		t.Parallel()

		d, err := buildDesign(testDataset(), []model.Factor{model.FactorAuthor})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		names := d.paramNames()
		want := []string{
			"b_Intercept",
			"log_sd_author",
			"r_author[Reiss 1988]",
			"r_author[Carrington 2002]",
		}
		if len(names) != len(want) {
			t.Fatalf("expected %d names, got %d", len(want), len(names))
		}
		for i, w := range want {
			if names[i] != w {
				t.Errorf("name %d: expected %q, got %q", i, w, names[i])
			}
		}
	})

	t.Run("scale and effect indices are consistent with names", func(t *testing.T) {
		t.Parallel()

		d, err := buildDesign(testDataset(), []model.Factor{model.FactorAuthor, model.FactorType})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		names := d.paramNames()
		if names[d.scaleIndex(0)] != "log_sd_author" {
			t.Errorf("scaleIndex(0) points at %q", names[d.scaleIndex(0)])
		}
		if names[d.scaleIndex(1)] != "log_sd_type" {
			t.Errorf("scaleIndex(1) points at %q", names[d.scaleIndex(1)])
		}
		if names[d.effectIndex(1)] != "r_type[Violent]" {
			t.Errorf("effectIndex(1) points at %q", names[d.effectIndex(1)])
		}
	})

	t.Run("rejects empty dataset", func(t *testing.T) {
		t.Parallel()

		_, err := buildDesign(&model.Dataset{Name: "empty"}, []model.Factor{model.FactorAuthor})
		if err == nil {
			t.Fatal("expected error for empty dataset")
		}
	})

	t.Run("rejects no terms", func(t *testing.T) {
		t.Parallel()

		_, err := buildDesign(testDataset(), nil)
		if !errors.Is(err, ErrNoTerms) {
			t.Fatalf("expected ErrNoTerms, got %v", err)
		}
	})
}

// TestParseTerms tests term name parsing.
func TestParseTerms(t *testing.T) {
	t.Parallel()

	t.Run("parses known terms in order", func(t *testing.T) {
		t.Parallel()

		factors, err := ParseTerms([]string{"type", "author"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if factors[0] != model.FactorType || factors[1] != model.FactorAuthor {
			t.Errorf("expected [type author], got %v", factors)
		}
	})

	t.Run("rejects unknown term", func(t *testing.T) {
		t.Parallel()

		if _, err := ParseTerms([]string{"decade"}); !errors.Is(err, ErrUnknownTerm) {
			t.Fatalf("expected ErrUnknownTerm, got %v", err)
		}
	})

	t.Run("rejects duplicate term", func(t *testing.T) {
		t.Parallel()

		if _, err := ParseTerms([]string{"author", "author"}); err == nil {
			t.Fatal("expected error for duplicate term")
		}
	})

	t.Run("rejects empty terms", func(t *testing.T) {
		t.Parallel()

		if _, err := ParseTerms(nil); !errors.Is(err, ErrNoTerms) {
			t.Fatalf("expected ErrNoTerms, got %v", err)
		}
	})
}

// TestForRegime tests prior regime lookup.
func TestForRegime(t *testing.T) {
	t.Parallel()

	t.Run("empty name defaults to weak", func(t *testing.T) {
		t.Parallel()

		p, err := ForRegime("")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.InterceptSD != 2.5 || p.GroupScaleSD != 1 {
			t.Errorf("unexpected weak priors: %+v", p)
		}
	})

	t.Run("diffuse regime widens both priors", func(t *testing.T) {
		t.Parallel()

		weak, err := ForRegime(RegimeWeak)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		diffuse, err := ForRegime(RegimeDiffuse)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if diffuse.InterceptSD <= weak.InterceptSD || diffuse.GroupScaleSD <= weak.GroupScaleSD {
			t.Errorf("expected diffuse priors wider than weak: %+v vs %+v", diffuse, weak)
		}
	})

	t.Run("rejects unknown regime", func(t *testing.T) {
		t.Parallel()

		if _, err := ForRegime("flat"); !errors.Is(err, ErrUnknownRegime) {
			t.Fatalf("expected ErrUnknownRegime, got %v", err)
		}
	})
}
