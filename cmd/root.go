// cmd/root.go
package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var logLevel string

var rootCmd = &cobra.Command{
	Use:   "tiledse",
	Short: "Design-space exploration for tiled cache hierarchies and GEMM accelerators",
}

// Execute runs the root command, exiting non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger() *logrus.Logger {
	log := logrus.New()
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		log.Fatalf("invalid log level: %s", logLevel)
	}
	log.SetLevel(level)
	return log
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "info", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(tilingCmd)

	cacheCmd.AddCommand(cacheOptimizeCmd)
	cacheCmd.AddCommand(cacheBaselinesCmd)

	tilingCmd.AddCommand(tilingSweepCmd)
	tilingCmd.AddCommand(tilingCompareCmd)
}
