// Package bayes specifies and fits the hierarchical logistic-binomial
// models of the co-offending meta-analysis.
//
// The model is logit(p_s) = b0 + u_author(s) + v_type(s), with random
// intercepts for each configured grouping factor and the group scales
// sampled on the log scale under half-Normal priors.
//
// MCMC sampling itself is delegated to gonum's Metropolis-Hastings kernel
// (gonum.org/v1/gonum/stat/samplemv); this package only builds the
// log-posterior target, configures a Gaussian proposal whose scale is
// adapted toward the target acceptance rate during warmup, and runs the
// chains concurrently. Convergence is never retried: diagnostics (split
// R-hat, effective sample size) are attached to the fit for reporting and
// manual inspection.
package bayes
