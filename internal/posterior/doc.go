// Package posterior turns raw MCMC draws into the quantities the forest
// plots and reports display.
//
// For each grouping factor it extracts the group-level draws, adds the
// fixed intercept, and back-transforms from log-odds to probabilities via
// the logistic map. A grand "Average" row (the intercept alone) is always
// pinned first in display order. Credible intervals are empirical 80% and
// 95% quantiles over the pooled chain mixture, paired with posterior means
// and the raw observed proportion of each label.
package posterior
