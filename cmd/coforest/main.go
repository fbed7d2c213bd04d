// Package main provides the entry point for the coforest CLI.
//
// coforest is a Bayesian meta-analysis tool for co-offending proportions.
// It reads a spreadsheet of per-study offense counts, fits hierarchical
// logistic-binomial models by MCMC, and renders forest plots of the
// partially pooled estimates.
//
// Usage:
//
//	coforest fit data.xlsx
//	coforest runs --list
//
// See --help for all available options.
package main

// main is the entry point for coforest.
func main() {
	Execute()
}
