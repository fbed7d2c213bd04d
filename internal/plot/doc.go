// Package plot renders the figures of an analysis run as PNG files.
//
// Three figure kinds are produced: forest plots of the posterior group
// estimates against their raw observed proportions, per-parameter trace
// plots for visual convergence checks, and a posterior predictive check
// comparing simulated co-offending counts with the observed data. All
// rendering is delegated to gonum/plot; this package only arranges the
// data and styles.
package plot
