// Package cacheopt implements the objective evaluator, Gaussian-process
// Bayesian optimizer, and generic Pareto extractor used to discover
// workload-specific cache geometries.
package cacheopt

import (
	"github.com/tiledse/tiledse/internal/cachesim"
	"github.com/tiledse/tiledse/internal/cachesim/tracegen"
)

// EvaluateCache runs cfg against trace and returns the miss rate. The
// caller gets a real error for structurally invalid geometry; this is the
// strict evaluator named in spec.md's external interfaces.
func EvaluateCache(cfg cachesim.CacheConfig, trace tracegen.Trace) (float64, error) {
	sim, err := cachesim.NewSimulator(cfg)
	if err != nil {
		return 0, err
	}
	stats := sim.Run(trace)
	return stats.MissRate(), nil
}

// worstCaseMissRate is returned by the optimizer's wrapped evaluator for
// any structurally invalid geometry, so the search loop always receives a
// scalar and never an error.
const worstCaseMissRate = 1.0

// evaluateForOptimizer wraps EvaluateCache for use inside the optimizer's
// suggest/evaluate loop: invalid configurations degrade to the worst-case
// sentinel instead of propagating an error, preserving optimizer progress.
func evaluateForOptimizer(cfg cachesim.CacheConfig, trace tracegen.Trace) float64 {
	missRate, err := EvaluateCache(cfg, trace)
	if err != nil {
		return worstCaseMissRate
	}
	return missRate
}
