package bayes

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// logPosterior is the sampling target handed to the MCMC kernel. It
// implements distmv.LogProber over the unconstrained parameter vector
// described by the design: group scales are sampled as log(tau) so the
// whole vector lives on the real line, with the Jacobian term included.
type logPosterior struct {
	design *design
	priors Priors

	// interceptPrior and scalePrior are the zero-mean building blocks of
	// the prior density; half-Normal densities are the folded scalePrior.
	interceptPrior distuv.Normal
	scalePrior     distuv.Normal
}

// newLogPosterior builds the target density for a design and prior regime.
func newLogPosterior(d *design, priors Priors) *logPosterior {
	return &logPosterior{
		design:         d,
		priors:         priors,
		interceptPrior: distuv.Normal{Mu: 0, Sigma: priors.InterceptSD},
		scalePrior:     distuv.Normal{Mu: 0, Sigma: priors.GroupScaleSD},
	}
}

// ln2 folds the Normal density into a half-Normal one.
var ln2 = math.Log(2)

// LogProb returns the unnormalized log posterior density at x.
// The binomial coefficient is constant in the parameters and omitted.
func (lp *logPosterior) LogProb(x []float64) float64 {
	d := lp.design

	// Prior on the fixed intercept.
	logp := lp.interceptPrior.LogProb(x[0])

	// Priors on group scales and effects. tau = exp(logTau) has a
	// half-Normal prior; the +logTau term is the Jacobian of the log
	// transform.
	for k, f := range d.factors {
		logTau := x[d.scaleIndex(k)]
		tau := math.Exp(logTau)
		if math.IsInf(tau, 1) {
			return math.Inf(-1)
		}
		logp += lp.scalePrior.LogProb(tau) + ln2 + logTau

		effects := distuv.Normal{Mu: 0, Sigma: tau}
		base := d.effectIndex(k)
		for j := range f.levels {
			logp += effects.LogProb(x[base+j])
		}
	}

	// Binomial likelihood on the logit scale.
	for i := range d.offenses {
		eta := x[0]
		for k := range d.factors {
			eta += x[d.effectIndex(k)+d.factors[k].index[i]]
		}
		logp += lp.cooffenses(i)*logSigmoid(eta) + (d.offenses[i]-lp.cooffenses(i))*logSigmoid(-eta)
	}

	if math.IsNaN(logp) {
		return math.Inf(-1)
	}
	return logp
}

// cooffenses returns the success count of observation i.
func (lp *logPosterior) cooffenses(i int) float64 {
	return lp.design.cooffenses[i]
}

// logSigmoid computes log(1/(1+exp(-x))) without overflow for large |x|.
func logSigmoid(x float64) float64 {
	if x >= 0 {
		return -math.Log1p(math.Exp(-x))
	}
	return x - math.Log1p(math.Exp(x))
}

// Logistic is the inverse-logit map p = exp(x)/(1+exp(x)). Exported here
// because extraction and posterior-predictive simulation share it.
func Logistic(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}
