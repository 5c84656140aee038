// Package orchestrator runs the top-level cache and tiling experiments:
// sweeping baseline configurations and the Bayesian optimizer across a
// named workload suite, and sweeping uniform-vs-per-GEMM tiling across a
// transformer layer, then persisting the combined results as JSON.
package orchestrator

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tiledse/tiledse/internal/cacheopt"
	"github.com/tiledse/tiledse/internal/cachesim"
	"github.com/tiledse/tiledse/internal/cachesim/tracegen"
)

// baselineConfigs builds the fixed cache geometries every workload is
// compared against, alongside the optimizer's discovered configuration:
// a small direct-mapped cache, a balanced set-associative cache, a
// large-associative cache, and a cache sized at the configured capacity
// cap, mirroring define_baselines()'s max_capacity baseline.
func baselineConfigs(maxCacheBytes int) map[string]cachesim.CacheConfig {
	return map[string]cachesim.CacheConfig{
		"direct_mapped_4k": {CacheSize: 4096, BlockSize: 64, Associativity: 1},
		"4way_16k":         {CacheSize: 16384, BlockSize: 64, Associativity: 4},
		"8way_32k":         {CacheSize: 32768, BlockSize: 64, Associativity: 8},
		"max_capacity":     maxCapacityBaseline(maxCacheBytes),
	}
}

// maxCapacityBaseline is a cache sized at the search space's capacity
// cap, so it tracks --max-cache-bytes instead of being a fixed geometry.
func maxCapacityBaseline(maxCacheBytes int) cachesim.CacheConfig {
	return cachesim.CacheConfig{CacheSize: maxCacheBytes, BlockSize: 128, Associativity: 16}
}

// WorkloadStat summarizes a single workload's trace.
type WorkloadStat struct {
	NumAccesses     int `json:"num_accesses"`
	UniqueAddresses int `json:"unique_addresses"`
}

// OptimizedEntry is the optimizer's outcome for one workload.
type OptimizedEntry struct {
	Status            string               `json:"status"`
	BestConfig         cachesim.CacheConfig `json:"best_config"`
	BestMissRate        float64              `json:"best_miss_rate"`
	ParetoFrontier      []cacheopt.HistoryEntry `json:"pareto_frontier"`
	OptimizationSeconds float64              `json:"optimization_time"`
	// AbsoluteImprovement and RelativeImprovement compare best_miss_rate
	// against the best baseline's miss rate on the same workload.
	AbsoluteImprovement float64 `json:"absolute_improvement"`
	RelativeImprovement float64 `json:"relative_improvement"`
}

// CacheExperimentResult is the full cache-exploration experiment output,
// matching the persisted JSON schema.
type CacheExperimentResult struct {
	Baselines      map[string]map[string]float64 `json:"baselines"`
	Optimized      map[string]OptimizedEntry      `json:"optimized"`
	WorkloadStats  map[string]WorkloadStat        `json:"workload_stats"`
}

// CacheExperimentOptions configures one cache experiment run.
type CacheExperimentOptions struct {
	Seed          int64
	MaxCacheBytes int
	NCalls        int
	NInitial      int
	Acquisition   cacheopt.Acquisition
}

// DefaultCacheExperimentOptions mirrors the configuration surface defaults
// named in spec.md §6.
func DefaultCacheExperimentOptions(seed int64) CacheExperimentOptions {
	opts := cacheopt.DefaultOptions(65536, seed)
	return CacheExperimentOptions{
		Seed:          seed,
		MaxCacheBytes: opts.MaxCacheBytes,
		NCalls:        opts.NCalls,
		NInitial:      opts.NInitial,
		Acquisition:   opts.Acquisition,
	}
}

// RunCacheExperiment evaluates every baseline configuration and runs the
// Bayesian optimizer against every named workload in the suite, logging
// progress via logrus the way the teacher's cluster evaluation does.
func RunCacheExperiment(log *logrus.Logger, opts CacheExperimentOptions, workloads map[string]tracegen.Trace) CacheExperimentResult {
	result := CacheExperimentResult{
		Baselines:     make(map[string]map[string]float64),
		Optimized:     make(map[string]OptimizedEntry),
		WorkloadStats: make(map[string]WorkloadStat),
	}

	for baselineName, cfg := range baselineConfigs(opts.MaxCacheBytes) {
		perWorkload := make(map[string]float64, len(workloads))
		for name, trace := range workloads {
			missRate, err := cacheopt.EvaluateCache(cfg, trace)
			if err != nil {
				log.WithError(err).WithFields(logrus.Fields{
					"baseline": baselineName, "workload": name,
				}).Warn("baseline configuration invalid, skipping")
				continue
			}
			perWorkload[name] = missRate
		}
		result.Baselines[baselineName] = perWorkload
	}

	for name, trace := range workloads {
		result.WorkloadStats[name] = workloadStat(trace)

		cacheOpts := cacheopt.Options{
			MaxCacheBytes: opts.MaxCacheBytes,
			MinCacheBytes: 1024,
			NCalls:        opts.NCalls,
			NInitial:      opts.NInitial,
			Acquisition:   opts.Acquisition,
			Seed:          opts.Seed,
		}

		start := time.Now()
		optResult := cacheopt.OptimizeCache(cacheOpts, trace)
		elapsed := time.Since(start)

		log.WithFields(logrus.Fields{
			"workload": name, "best_miss_rate": optResult.BestMiss, "elapsed": elapsed,
		}).Info("optimizer converged")

		bestBaseline := bestBaselineMissRate(result.Baselines, name)
		entry := OptimizedEntry{
			Status:              "ok",
			BestConfig:          optResult.BestConfig,
			BestMissRate:        optResult.BestMiss,
			ParetoFrontier:      optResult.Pareto,
			OptimizationSeconds: elapsed.Seconds(),
		}
		if bestBaseline > 0 {
			entry.AbsoluteImprovement = bestBaseline - optResult.BestMiss
			entry.RelativeImprovement = entry.AbsoluteImprovement / bestBaseline
		}
		result.Optimized[name] = entry
	}

	return result
}

func workloadStat(trace tracegen.Trace) WorkloadStat {
	unique := make(map[uint64]bool, len(trace))
	for _, addr := range trace {
		unique[addr] = true
	}
	return WorkloadStat{NumAccesses: len(trace), UniqueAddresses: len(unique)}
}

func bestBaselineMissRate(baselines map[string]map[string]float64, workload string) float64 {
	best := -1.0
	for _, perWorkload := range baselines {
		missRate, ok := perWorkload[workload]
		if !ok {
			continue
		}
		if best < 0 || missRate < best {
			best = missRate
		}
	}
	if best < 0 {
		return 0
	}
	return best
}
