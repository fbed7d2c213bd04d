package posterior

import (
	"github.com/crimlab/coforest/internal/model"
)

// Summaries converts extracted group draws into archivable group summaries,
// attaching the convergence diagnostics of the underlying parameter. The
// grand-average row carries no parameter of its own, so its diagnostics
// stay zero.
func Summaries(groups []GroupDraws, fit *model.FitResult) ([]model.GroupSummary, error) {
	diags := make(map[string]model.ParamDiagnostic, len(fit.Diagnostics))
	for _, d := range fit.Diagnostics {
		diags[d.Name] = d
	}

	summaries := make([]model.GroupSummary, 0, len(groups))
	for _, g := range groups {
		iv, err := Summarize(g.Probs)
		if err != nil {
			return nil, err
		}

		s := model.GroupSummary{
			Factor:   g.Factor,
			Label:    g.Label,
			Mean:     iv.Mean,
			Lo95:     iv.Lo95,
			Hi95:     iv.Hi95,
			Lo80:     iv.Lo80,
			Hi80:     iv.Hi80,
			Observed: g.Observed,
		}
		if d, ok := diags[g.Param]; ok {
			s.ESS = d.ESS
			s.RHat = d.RHat
		}
		summaries = append(summaries, s)
	}

	return summaries, nil
}
