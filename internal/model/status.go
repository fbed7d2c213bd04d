package model

// Status represents the convergence quality of a fitted model.
// It lets reports flag fits whose posterior summaries should not be trusted.
//
// Design decision: We use iota-based constants rather than string constants
// for efficiency in comparisons and sorting. The String() method provides
// human-readable output when needed.
type Status int

const (
	// StatusGood indicates all chains mixed well: every R-hat is at most
	// 1.01 and every effective sample size is at least 400.
	StatusGood Status = iota

	// StatusAcceptable indicates usable but imperfect sampling: R-hat at
	// most 1.05 and effective sample size at least 100. Estimates are
	// reported with a caution.
	StatusAcceptable

	// StatusPoor indicates the chains did not converge. Summaries are still
	// produced and archived for inspection, but must not be interpreted.
	StatusPoor
)

// Thresholds separating convergence statuses. The R-hat cutoffs follow the
// usual 1.01 strict / 1.05 loose convention; the ESS cutoffs correspond to
// roughly 100 draws per chain at four chains.
const (
	goodRHat       = 1.01
	acceptableRHat = 1.05
	goodESS        = 400.0
	acceptableESS  = 100.0
)

// String returns a human-readable representation of the status.
func (s Status) String() string {
	switch s {
	case StatusGood:
		return "GOOD"
	case StatusAcceptable:
		return "ACCEPTABLE"
	case StatusPoor:
		return "POOR"
	default:
		return "UNKNOWN"
	}
}

// StatusFromDiagnostics derives the overall convergence status from the
// worst R-hat and smallest effective sample size across all parameters.
// A fit with no diagnostics (worstRHat == 0) is conservatively Poor.
func StatusFromDiagnostics(worstRHat, minESS float64) Status {
	switch {
	case worstRHat == 0:
		return StatusPoor
	case worstRHat <= goodRHat && minESS >= goodESS:
		return StatusGood
	case worstRHat <= acceptableRHat && minESS >= acceptableESS:
		return StatusAcceptable
	default:
		return StatusPoor
	}
}
