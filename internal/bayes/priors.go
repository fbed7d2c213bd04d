package bayes

import (
	"errors"
	"fmt"
)

// Prior regime names accepted in model configuration.
const (
	// RegimeWeak is the weakly-informative default: Normal(0, 2.5) on the
	// intercept and HalfNormal(1) on group scales. On the log-odds scale
	// this keeps proportions away from the degenerate 0/1 boundaries
	// without constraining plausible co-offending rates.
	RegimeWeak = "weak"

	// RegimeDiffuse is the effectively non-informative sensitivity regime:
	// Normal(0, 10) on the intercept and HalfNormal(5) on group scales.
	RegimeDiffuse = "diffuse"
)

// ErrUnknownRegime is returned when a model names a prior regime that
// does not exist.
var ErrUnknownRegime = errors.New("unknown prior regime")

// Priors holds the hyperparameters of one prior regime. Intercept priors
// are centered at zero (even odds) in both regimes.
type Priors struct {
	// InterceptSD is the standard deviation of the Normal prior on the
	// fixed intercept (log-odds scale).
	InterceptSD float64

	// GroupScaleSD is the scale of the half-Normal prior on each grouping
	// factor's standard deviation.
	GroupScaleSD float64
}

// ForRegime returns the priors of a named regime.
func ForRegime(name string) (Priors, error) {
	switch name {
	case RegimeWeak, "":
		return Priors{InterceptSD: 2.5, GroupScaleSD: 1}, nil
	case RegimeDiffuse:
		return Priors{InterceptSD: 10, GroupScaleSD: 5}, nil
	default:
		return Priors{}, fmt.Errorf("%w: %q", ErrUnknownRegime, name)
	}
}
