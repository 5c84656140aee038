package cacheopt

import (
	"gonum.org/v1/gonum/stat/distuv"
)

// Acquisition selects the acquisition function used to pick the next
// candidate to evaluate.
type Acquisition int

const (
	// EI is Expected Improvement, the default acquisition function.
	EI Acquisition = iota
	// LCB is Lower Confidence Bound (mu - kappa*sigma); lower is better, so
	// the optimizer negates it before maximizing alongside EI/PI.
	LCB
	// PI is Probability of Improvement.
	PI
)

// String renders the acquisition function name, matching the persisted
// configuration surface's {EI, LCB, PI} vocabulary.
func (a Acquisition) String() string {
	switch a {
	case EI:
		return "EI"
	case LCB:
		return "LCB"
	case PI:
		return "PI"
	default:
		return "unknown"
	}
}

// lcbKappa is the default exploration coefficient for Lower Confidence
// Bound, per the configuration surface in SPEC_FULL.md.
const lcbKappa = 1.96

var standardNormal = distuv.Normal{Mu: 0, Sigma: 1}

// acquisitionValue computes the value of acq at a candidate point given
// the GP's predictive mean/std and the best objective value observed so
// far (fBest). Higher is always better — LCB is negated so all three
// acquisition functions share a "maximize" convention.
func acquisitionValue(acq Acquisition, mean, std, fBest float64) float64 {
	switch acq {
	case LCB:
		return -(mean - lcbKappa*std)
	case PI:
		if std == 0 {
			return 0
		}
		z := (fBest - mean) / std
		return standardNormal.CDF(z)
	default: // EI
		if std == 0 {
			return 0
		}
		z := (fBest - mean) / std
		return (fBest-mean)*standardNormal.CDF(z) + std*standardNormal.Prob(z)
	}
}
