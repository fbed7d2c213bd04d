// Package model defines the core data structures used throughout coforest.
//
// This package contains the following main types:
//   - StudyRecord: One spreadsheet row of study-level offense counts
//   - Dataset: A prepared (filtered, grouped, summed) table ready for fitting
//   - FitResult: Posterior draws and diagnostics for one fitted model
//   - GroupSummary / RunSummary: Summarized posterior estimates for reporting
//   - AnalysisReport: The accumulating result passed through the pipeline
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. Multiple packages (dataset, bayes, posterior, plot, report,
// database) need these types, so centralizing them prevents import cycles.
//
// The models are designed to be serializable to JSON for report output and
// database storage.
package model
