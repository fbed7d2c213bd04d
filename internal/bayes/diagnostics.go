package bayes

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/crimlab/coforest/internal/model"
)

// ComputeDiagnostics calculates split R-hat and effective sample size for
// every parameter of a fit. Results are in parameter order.
func ComputeDiagnostics(fit *model.FitResult) []model.ParamDiagnostic {
	diags := make([]model.ParamDiagnostic, 0, len(fit.Params))
	for _, name := range fit.Params {
		series := fit.ChainSeries(name)
		diags = append(diags, model.ParamDiagnostic{
			Name: name,
			RHat: splitRHat(series),
			ESS:  effectiveSampleSize(series),
		})
	}
	return diags
}

// splitRHat computes the split potential scale reduction factor: each
// chain is halved so the statistic also detects trends within chains, not
// only disagreement between them.
func splitRHat(series [][]float64) float64 {
	halves := splitChains(series)
	if len(halves) < 2 {
		return math.NaN()
	}

	n := len(halves[0])
	if n < 2 {
		return math.NaN()
	}

	means := make([]float64, len(halves))
	variances := make([]float64, len(halves))
	for i, h := range halves {
		means[i] = stat.Mean(h, nil)
		variances[i] = stat.Variance(h, nil)
	}

	within := stat.Mean(variances, nil)
	between := float64(n) * stat.Variance(means, nil)

	if within == 0 {
		// Degenerate chains (all draws identical). Treat agreement as
		// convergence and disagreement as failure.
		if between == 0 {
			return 1
		}
		return math.Inf(1)
	}

	varPlus := float64(n-1)/float64(n)*within + between/float64(n)
	return math.Sqrt(varPlus / within)
}

// effectiveSampleSize estimates the number of independent draws the
// autocorrelated chains are worth, using the initial-positive-sequence
// truncation of the pooled autocorrelation function.
func effectiveSampleSize(series [][]float64) float64 {
	m := len(series)
	if m == 0 {
		return 0
	}
	n := len(series[0])
	total := float64(m * n)
	if n < 2 {
		return total
	}

	// Average the per-chain autocorrelations at each lag.
	var sum float64
	for lag := 1; lag < n; lag += 2 {
		pair := meanAutocorr(series, lag)
		if lag+1 < n {
			pair += meanAutocorr(series, lag+1)
		}
		// Geyer: sums of adjacent autocorrelation pairs of a reversible
		// chain are positive; the first non-positive pair truncates.
		if pair <= 0 {
			break
		}
		sum += pair
	}

	ess := total / (1 + 2*sum)
	if ess > total || math.IsNaN(ess) {
		return total
	}
	return ess
}

// meanAutocorr returns the lag-k autocorrelation averaged across chains.
func meanAutocorr(series [][]float64, lag int) float64 {
	var sum float64
	var counted int
	for _, s := range series {
		r, ok := autocorr(s, lag)
		if ok {
			sum += r
			counted++
		}
	}
	if counted == 0 {
		return 0
	}
	return sum / float64(counted)
}

// autocorr computes the lag-k sample autocorrelation of one series.
// Returns ok=false for constant series, whose autocorrelation is undefined.
func autocorr(s []float64, lag int) (float64, bool) {
	n := len(s)
	if lag >= n {
		return 0, false
	}

	mean := stat.Mean(s, nil)
	variance := stat.Variance(s, nil)
	if variance == 0 {
		return 0, false
	}

	var cov float64
	for i := 0; i < n-lag; i++ {
		cov += (s[i] - mean) * (s[i+lag] - mean)
	}
	cov /= float64(n - 1)

	return cov / variance, true
}

// splitChains halves every chain, dropping the middle draw of odd-length
// chains so all halves have equal length.
func splitChains(series [][]float64) [][]float64 {
	halves := make([][]float64, 0, 2*len(series))
	for _, s := range series {
		half := len(s) / 2
		if half == 0 {
			continue
		}
		halves = append(halves, s[:half], s[len(s)-half:])
	}
	return halves
}
