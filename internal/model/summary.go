package model

import (
	"encoding/json"
	"math"
	"time"
)

// GroupSummary is the posterior summary for one display group of a forest
// plot: a factor level (or the grand average) with its point estimate,
// credible intervals, and the raw observed proportion it is compared to.
type GroupSummary struct {
	// Factor is the grouping factor this summary belongs to ("author",
	// "type"), or "average" for the grand-average row.
	Factor string `json:"factor"`

	// Label is the cleaned display label. "Average" is pinned first in
	// display order.
	Label string `json:"label"`

	// Mean is the posterior mean proportion.
	Mean float64 `json:"mean"`

	// Lo95 and Hi95 bound the central 95% credible interval.
	Lo95 float64 `json:"lo95"`
	Hi95 float64 `json:"hi95"`

	// Lo80 and Hi80 bound the central 80% credible interval.
	Lo80 float64 `json:"lo80"`
	Hi80 float64 `json:"hi80"`

	// Observed is the raw pooled proportion for this label, NaN when the
	// label has no offenses (serialized as null).
	Observed float64 `json:"observed"`

	// ESS and RHat carry the diagnostics of the underlying group parameter,
	// zero for the grand average pseudo-parameter.
	ESS  float64 `json:"ess,omitempty"`
	RHat float64 `json:"rhat,omitempty"`
}

// MarshalJSON renders a NaN observed proportion as null. encoding/json
// rejects NaN, and a group without offenses legitimately has no observed
// proportion.
func (g GroupSummary) MarshalJSON() ([]byte, error) {
	type alias GroupSummary
	a := struct {
		alias
		Observed *float64 `json:"observed"`
	}{alias: alias(g)}
	if !math.IsNaN(g.Observed) {
		a.Observed = &a.alias.Observed
	}
	return json.Marshal(a)
}

// UnmarshalJSON restores a null observed proportion to NaN.
func (g *GroupSummary) UnmarshalJSON(data []byte) error {
	type alias GroupSummary
	a := struct {
		*alias
		Observed *float64 `json:"observed"`
	}{alias: (*alias)(g)}
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	if a.Observed == nil {
		g.Observed = math.NaN()
	} else {
		g.Observed = *a.Observed
	}
	return nil
}

// RunSummary is the archived record of one complete model fit: metadata,
// sampler settings, convergence status, and all group summaries. This is
// the unit stored in the run archive and rendered by report writers.
type RunSummary struct {
	// RunID is the unique identifier assigned when the run is archived.
	RunID string `json:"run_id"`

	// CreatedAt is when the fit completed.
	CreatedAt time.Time `json:"created_at"`

	// ModelName identifies the model variant.
	ModelName string `json:"model_name"`

	// DataFile is the source spreadsheet path.
	DataFile string `json:"data_file"`

	// Chains, Iterations, Warmup, and Seed record the sampler settings.
	Chains     int    `json:"chains"`
	Iterations int    `json:"iterations"`
	Warmup     int    `json:"warmup"`
	Seed       uint64 `json:"seed"`

	// Status is the convergence assessment of the fit.
	Status Status `json:"status"`

	// WorstRHat and MinESS summarize the diagnostics behind Status.
	WorstRHat float64 `json:"worst_rhat"`
	MinESS    float64 `json:"min_ess"`

	// Groups are the posterior group summaries in display order.
	Groups []GroupSummary `json:"groups"`
}

// GroupByLabel returns the group summary with the given label, or nil.
func (r *RunSummary) GroupByLabel(label string) *GroupSummary {
	for i := range r.Groups {
		if r.Groups[i].Label == label {
			return &r.Groups[i]
		}
	}
	return nil
}
