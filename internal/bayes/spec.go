package bayes

import (
	"errors"
	"fmt"

	"github.com/crimlab/coforest/internal/model"
)

// ErrUnknownTerm is returned when a model configuration names a grouping
// factor that does not exist.
var ErrUnknownTerm = errors.New("unknown grouping term")

// ErrNoTerms is returned when a model has no grouping factors; a model
// with only a fixed intercept has nothing to partially pool.
var ErrNoTerms = errors.New("model has no grouping terms")

// Spec describes one model variant: its name, the grouping factors that
// receive random intercepts, and the prior regime.
type Spec struct {
	// Name identifies the model in reports and the run archive.
	Name string

	// Terms are the grouping factors, in parameter order.
	Terms []model.Factor

	// Priors are the hyperparameters of the selected prior regime.
	Priors Priors
}

// ParseTerms converts configured term names into grouping factors,
// preserving order and rejecting unknown or duplicate names.
func ParseTerms(names []string) ([]model.Factor, error) {
	if len(names) == 0 {
		return nil, ErrNoTerms
	}

	seen := make(map[model.Factor]bool, len(names))
	factors := make([]model.Factor, 0, len(names))
	for _, name := range names {
		var f model.Factor
		switch name {
		case string(model.FactorAuthor):
			f = model.FactorAuthor
		case string(model.FactorType):
			f = model.FactorType
		default:
			return nil, fmt.Errorf("%w: %q", ErrUnknownTerm, name)
		}
		if seen[f] {
			return nil, fmt.Errorf("duplicate grouping term %q", name)
		}
		seen[f] = true
		factors = append(factors, f)
	}
	return factors, nil
}
