package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/tiledse/tiledse/internal/cachesim/tracegen"
	"github.com/tiledse/tiledse/internal/orchestrator"
)

var (
	cacheSeed          int64
	cacheMaxBytes      int
	cacheNCalls        int
	cacheNInitial      int
	cacheOutputPath    string
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Explore set-associative cache geometries",
}

var cacheOptimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Run Bayesian optimization over the cache configuration space for every workload",
	Run: func(cmd *cobra.Command, args []string) {
		log := newLogger()
		workloads := tracegen.Suite(cacheSeed)

		opts := orchestrator.DefaultCacheExperimentOptions(cacheSeed)
		if cacheMaxBytes > 0 {
			opts.MaxCacheBytes = cacheMaxBytes
		}
		if cacheNCalls > 0 {
			opts.NCalls = cacheNCalls
		}
		if cacheNInitial > 0 {
			opts.NInitial = cacheNInitial
		}

		log.WithField("workloads", len(workloads)).Info("running cache optimization experiment")
		result := orchestrator.RunCacheExperiment(log, opts, workloads)
		writeJSON(log, cacheOutputPath, result)
	},
}

var cacheBaselinesCmd = &cobra.Command{
	Use:   "baselines",
	Short: "Evaluate the fixed baseline cache configurations against every workload",
	Run: func(cmd *cobra.Command, args []string) {
		log := newLogger()
		workloads := tracegen.Suite(cacheSeed)
		opts := orchestrator.DefaultCacheExperimentOptions(cacheSeed)
		opts.NCalls = opts.NInitial // skip the model-fit loop, baselines only need the seed phase

		log.Info("evaluating baseline cache configurations")
		result := orchestrator.RunCacheExperiment(log, opts, workloads)
		writeJSON(log, cacheOutputPath, result.Baselines)
	},
}

func writeJSON(log *logrus.Logger, path string, v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Fatalf("marshaling results: %v", err)
	}
	if path == "" || path == "-" {
		fmt.Println(string(data))
		return
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		log.Fatalf("writing results to %s: %v", path, err)
	}
}

func init() {
	cacheCmd.PersistentFlags().Int64Var(&cacheSeed, "seed", 42, "Master seed for trace generation and the optimizer")
	cacheCmd.PersistentFlags().StringVar(&cacheOutputPath, "output", "-", "Output path for the results JSON (- for stdout)")

	cacheOptimizeCmd.Flags().IntVar(&cacheMaxBytes, "max-cache-bytes", 65536, "Capacity cap for the search space")
	cacheOptimizeCmd.Flags().IntVar(&cacheNCalls, "n-calls", 50, "Total evaluations per workload")
	cacheOptimizeCmd.Flags().IntVar(&cacheNInitial, "n-initial", 10, "Seed-phase sample count")
}
