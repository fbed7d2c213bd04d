// Package dataset loads and prepares study-level co-offending counts.
//
// Loading reads a named sheet of an xlsx spreadsheet (or a CSV file with
// the same header) into study records, rounding counts to integers because
// the binomial likelihood requires integer trials and successes.
//
// Preparation implements the two table variants of the analysis:
//   - ByStudy: exclude duplicate DOIs and sentinel categories, then group
//     by (study, author, type) and sum counts
//   - ByType: restrict to the Violent/Property/Other breakdown, aggregate
//     per type, and append a Total pseudo-group
//
// Grouping keys are kept stable so posterior draws can be re-joined to raw
// observed proportions by label in the plotting stage.
package dataset
