package posterior

import (
	"errors"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// ErrNoDraws is returned when a summary is requested over an empty draw
// vector.
var ErrNoDraws = errors.New("no posterior draws")

// Interval is the posterior summary of one quantity: the mean plus the
// central 80% and 95% empirical credible intervals.
type Interval struct {
	Mean float64
	Lo95 float64
	Lo80 float64
	Hi80 float64
	Hi95 float64
}

// Quantile probabilities of the central 80% and 95% intervals.
const (
	p025 = 0.025
	p10  = 0.10
	p90  = 0.90
	p975 = 0.975
)

// Summarize computes the posterior mean and credible intervals of a draw
// vector. Quantiles are empirical, over the pooled chain mixture.
func Summarize(draws []float64) (Interval, error) {
	if len(draws) == 0 {
		return Interval{}, ErrNoDraws
	}

	// stat.Quantile requires sorted input; sort a copy so the caller's
	// draw ordering (iteration order) is preserved for trace plots.
	sorted := make([]float64, len(draws))
	copy(sorted, draws)
	sort.Float64s(sorted)

	return Interval{
		Mean: stat.Mean(sorted, nil),
		Lo95: stat.Quantile(p025, stat.Empirical, sorted, nil),
		Lo80: stat.Quantile(p10, stat.Empirical, sorted, nil),
		Hi80: stat.Quantile(p90, stat.Empirical, sorted, nil),
		Hi95: stat.Quantile(p975, stat.Empirical, sorted, nil),
	}, nil
}
