package posterior

import (
	"errors"
	"fmt"
	"math"

	"github.com/crimlab/coforest/internal/bayes"
	"github.com/crimlab/coforest/internal/model"
)

// Extraction errors.
var (
	// ErrNoIntercept is returned when a fit has no intercept parameter.
	ErrNoIntercept = errors.New("fit has no intercept parameter")

	// ErrNoGroupEffects is returned when a fit carries no group effects
	// for the requested factor.
	ErrNoGroupEffects = errors.New("fit has no group effects for factor")
)

// GroupDraws are the probability-scale posterior draws for one display
// group, already back-transformed from log-odds.
type GroupDraws struct {
	// Factor is the grouping factor, or "average" for the grand-average row.
	Factor string

	// Label is the cleaned display label.
	Label string

	// Param is the underlying parameter name, empty for the grand average.
	Param string

	// Probs are the pooled per-draw proportions.
	Probs []float64

	// Trials is the summed offense count behind the label, used by the
	// posterior predictive check.
	Trials int

	// Observed is the raw pooled proportion for the label, NaN when the
	// label has no offenses.
	Observed float64
}

// averageFactor tags the grand-average row, which belongs to no grouping
// factor.
const averageFactor = "average"

// Extract back-transforms the draws of one grouping factor into
// probability-scale group draws. The grand average (the intercept alone,
// pushed through the logistic map) comes first; group rows follow in the
// dataset's level order with the intercept added to each group effect
// draw by draw, so the interval captures the correlation between them.
func Extract(fit *model.FitResult, ds *model.Dataset, factor model.Factor) ([]GroupDraws, error) {
	intercept := fit.Pooled("b_Intercept")
	if intercept == nil {
		return nil, ErrNoIntercept
	}

	levels := ds.Levels(factor)
	groups := make([]GroupDraws, 0, len(levels)+1)

	// The grand average is compared against the whole dataset, not one level.
	average := GroupDraws{
		Factor:   averageFactor,
		Label:    AverageLabel,
		Probs:    make([]float64, len(intercept)),
		Trials:   ds.TotalOffenses(),
		Observed: observedTotal(ds),
	}
	for i, b0 := range intercept {
		average.Probs[i] = bayes.Logistic(b0)
	}
	groups = append(groups, average)

	found := false
	for _, level := range levels {
		param := fmt.Sprintf("r_%s[%s]", factor, level)
		effects := fit.Pooled(param)
		if effects == nil {
			continue
		}
		found = true

		probs := make([]float64, len(intercept))
		for i := range probs {
			probs[i] = bayes.Logistic(intercept[i] + effects[i])
		}

		groups = append(groups, GroupDraws{
			Factor:   string(factor),
			Label:    Clean(level),
			Param:    param,
			Probs:    probs,
			Trials:   levelTrials(ds, factor, level),
			Observed: ds.ObservedProportion(factor, level),
		})
	}
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrNoGroupEffects, factor)
	}

	return groups, nil
}

// levelTrials sums the offense counts of all groups carrying the label.
func levelTrials(ds *model.Dataset, f model.Factor, label string) int {
	var n int
	for _, g := range ds.Groups {
		if g.Label(f) == label {
			n += g.Offenses
		}
	}
	return n
}

// observedTotal is the dataset-wide pooled proportion shown against the
// grand-average row.
func observedTotal(ds *model.Dataset) float64 {
	var offenses, cooffenses int
	for _, g := range ds.Groups {
		offenses += g.Offenses
		cooffenses += g.Cooffenses
	}
	if offenses == 0 {
		return math.NaN()
	}
	return float64(cooffenses) / float64(offenses)
}
