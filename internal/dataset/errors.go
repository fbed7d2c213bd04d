package dataset

import "errors"

// Loading and preparation errors.
//
// Design decision: Sentinel errors cover the structural problems callers
// may want to branch on (errors.Is); row-level problems wrap these with
// the offending row number via fmt.Errorf.
var (
	// ErrMissingColumn is returned when the input header lacks one of the
	// required columns.
	ErrMissingColumn = errors.New("missing required column")

	// ErrCountInvariant is returned when a row has more co-offenses than
	// offenses after rounding. Such a row indicates a coding error in the
	// source data and must be fixed, not silently clamped.
	ErrCountInvariant = errors.New("co-offense count exceeds offense count")

	// ErrNoRecords is returned when the input contains a header but no
	// data rows, or when preparation filters out every record.
	ErrNoRecords = errors.New("no study records")

	// ErrUnknownDataset is returned when a model references a preparation
	// variant that does not exist.
	ErrUnknownDataset = errors.New("unknown dataset variant")
)
