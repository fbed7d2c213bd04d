package model

// ChainDraws holds the posterior draws produced by one MCMC chain.
// Values is iteration-major: Values[i][p] is the value of parameter p at
// post-warmup iteration i. All chains of a fit share the same parameter
// ordering.
type ChainDraws struct {
	// Chain is the zero-based chain index.
	Chain int `json:"chain"`

	// Values are the raw sampled parameter vectors, one per iteration.
	Values [][]float64 `json:"values"`

	// Acceptance is the fraction of iterations on which the chain moved.
	// For a Metropolis-type kernel this estimates the acceptance rate.
	Acceptance float64 `json:"acceptance"`
}

// ParamDiagnostic holds convergence diagnostics for a single parameter.
type ParamDiagnostic struct {
	// Name is the parameter name (e.g. "b_Intercept", "r_author[Reiss 1988]").
	Name string `json:"name"`

	// RHat is the split potential scale reduction factor. Values near 1.0
	// indicate the chains agree; above ~1.05 the fit should not be trusted.
	RHat float64 `json:"rhat"`

	// ESS is the effective sample size pooled across chains.
	ESS float64 `json:"ess"`
}

// FitResult holds everything produced by fitting one model: draws per
// chain, the parameter naming, sampler settings, and diagnostics.
//
// The fit object is treated as immutable after sampling; downstream stages
// (extraction, plotting, archiving) only read from it.
type FitResult struct {
	// ModelName identifies the fitted model variant.
	ModelName string `json:"model_name"`

	// Params names each column of the draw matrices.
	Params []string `json:"params"`

	// Chains holds the draws of each chain.
	Chains []ChainDraws `json:"chains"`

	// Seed is the base random seed used for sampling.
	Seed uint64 `json:"seed"`

	// Warmup is the number of discarded adaptation iterations per chain.
	Warmup int `json:"warmup"`

	// Diagnostics holds per-parameter convergence diagnostics.
	Diagnostics []ParamDiagnostic `json:"diagnostics,omitempty"`

	// Status is the overall convergence assessment derived from Diagnostics.
	Status Status `json:"status"`
}

// ParamIndex returns the column index of the named parameter, or -1 if the
// fit has no such parameter.
func (f *FitResult) ParamIndex(name string) int {
	for i, p := range f.Params {
		if p == name {
			return i
		}
	}
	return -1
}

// Pooled returns the draws of the named parameter concatenated across all
// chains. Returns nil if the parameter does not exist.
func (f *FitResult) Pooled(name string) []float64 {
	idx := f.ParamIndex(name)
	if idx < 0 {
		return nil
	}
	var n int
	for _, c := range f.Chains {
		n += len(c.Values)
	}
	pooled := make([]float64, 0, n)
	for _, c := range f.Chains {
		for _, v := range c.Values {
			pooled = append(pooled, v[idx])
		}
	}
	return pooled
}

// ChainSeries returns the per-chain draw series for the named parameter,
// one slice per chain. Returns nil if the parameter does not exist.
func (f *FitResult) ChainSeries(name string) [][]float64 {
	idx := f.ParamIndex(name)
	if idx < 0 {
		return nil
	}
	series := make([][]float64, len(f.Chains))
	for i, c := range f.Chains {
		s := make([]float64, len(c.Values))
		for j, v := range c.Values {
			s[j] = v[idx]
		}
		series[i] = s
	}
	return series
}

// Draws returns the total number of post-warmup draws across all chains.
func (f *FitResult) Draws() int {
	var n int
	for _, c := range f.Chains {
		n += len(c.Values)
	}
	return n
}

// WorstRHat returns the largest R-hat across all diagnostics, or 0 when no
// diagnostics were computed.
func (f *FitResult) WorstRHat() float64 {
	var worst float64
	for _, d := range f.Diagnostics {
		if d.RHat > worst {
			worst = d.RHat
		}
	}
	return worst
}

// MinESS returns the smallest effective sample size across all diagnostics,
// or 0 when no diagnostics were computed.
func (f *FitResult) MinESS() float64 {
	if len(f.Diagnostics) == 0 {
		return 0
	}
	min := f.Diagnostics[0].ESS
	for _, d := range f.Diagnostics[1:] {
		if d.ESS < min {
			min = d.ESS
		}
	}
	return min
}
