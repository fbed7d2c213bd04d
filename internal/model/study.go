package model

import "math"

// CrimeType is the offense category assigned to a study record.
//
// Design decision: We use a string type rather than an iota enum because the
// categories come straight from the spreadsheet and must round-trip through
// YAML config, JSON reports, and the SQLite archive without a mapping layer.
type CrimeType string

// Crime type categories found in the source data.
const (
	// CrimeViolent covers offenses against persons (assault, robbery, homicide).
	CrimeViolent CrimeType = "Violent"

	// CrimeProperty covers offenses against property (burglary, theft, arson).
	CrimeProperty CrimeType = "Property"

	// CrimeOther covers offenses outside the violent/property split
	// (drug offenses, public order, status offenses).
	CrimeOther CrimeType = "Other"

	// CrimeAll marks records where a study reported only a combined count
	// across all offense types rather than a per-type breakdown.
	CrimeAll CrimeType = "All"

	// CrimeTotal labels the aggregate pseudo-group appended by the by-type
	// preparation. It never appears in raw input data.
	CrimeTotal CrimeType = "Total"
)

// BreakdownTypes are the categories retained by the by-type preparation,
// in display order.
var BreakdownTypes = []CrimeType{CrimeViolent, CrimeProperty, CrimeOther}

// StudyRecord is one row of the source spreadsheet: aggregated offense
// counts for one study and crime type.
//
// Counts are rounded to the nearest integer on ingest because the binomial
// likelihood requires integer trials and successes. The invariant
// Cooffenses <= Offenses must hold for every retained record; the reader
// rejects rows that violate it after rounding.
type StudyRecord struct {
	// StudyN is the sequential study number assigned during coding.
	StudyN int `json:"study_n"`

	// Author is the study citation label (e.g. "Carrington 2002").
	// Author labels are the join key between posterior draws and raw
	// observed proportions, so they must be stable across preparation
	// and plotting.
	Author string `json:"author"`

	// DOI identifies the publication. Used to exclude known duplicate
	// records from the meta-analysis.
	DOI string `json:"doi"`

	// Type is the crime type category of this count.
	Type CrimeType `json:"type"`

	// Offenses is the total number of offenses reported (binomial trials).
	Offenses int `json:"total_number_offenses"`

	// Cooffenses is the number of offenses committed by more than one
	// offender jointly (binomial successes).
	Cooffenses int `json:"total_number_cooffenses"`
}

// Proportion returns the observed co-offending proportion for this record.
// Returns NaN when the record has no offenses; a zero denominator is not
// guarded elsewhere, matching the source analysis.
func (r StudyRecord) Proportion() float64 {
	if r.Offenses == 0 {
		return math.NaN()
	}
	return float64(r.Cooffenses) / float64(r.Offenses)
}
