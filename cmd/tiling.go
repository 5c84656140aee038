package cmd

import (
	"github.com/spf13/cobra"

	"github.com/tiledse/tiledse/internal/orchestrator"
	"github.com/tiledse/tiledse/internal/tiling/sweep"
)

var (
	tilingHWConfigPath    string
	tilingModelConfigPath string
	tilingSeqLen          int
	tilingOutputPath      string
	tilingMode            string
)

var tilingCmd = &cobra.Command{
	Use:   "tiling",
	Short: "Analyze tiled-GEMM accelerator cost and overlap tradeoffs",
}

var tilingSweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Sweep tiling configurations for one transformer layer and report the Pareto frontier",
	Run: func(cmd *cobra.Command, args []string) {
		log := newLogger()
		hw, err := loadHWConfig(tilingHWConfigPath)
		if err != nil {
			log.Fatalf("loading hardware config: %v", err)
		}
		model, err := loadModelConfig(tilingModelConfigPath)
		if err != nil {
			log.Fatalf("loading model config: %v", err)
		}

		var mode sweep.Mode
		switch tilingMode {
		case "prefill":
			mode = sweep.Prefill
		case "decode":
			mode = sweep.Decode
		default:
			log.Fatalf("invalid mode %q: must be \"prefill\" or \"decode\"", tilingMode)
		}

		log.WithFields(map[string]any{"model": model.Name, "mode": tilingMode, "seq_len": tilingSeqLen}).
			Info("sweeping layer tiling configurations")

		layer := sweep.SweepLayer(model, hw, mode, tilingSeqLen)
		writeJSON(log, tilingOutputPath, layer.GEMMs)
	},
}

var tilingCompareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare uniform vs per-GEMM tiling across decode and prefill for one model",
	Run: func(cmd *cobra.Command, args []string) {
		log := newLogger()
		hw, err := loadHWConfig(tilingHWConfigPath)
		if err != nil {
			log.Fatalf("loading hardware config: %v", err)
		}
		model, err := loadModelConfig(tilingModelConfigPath)
		if err != nil {
			log.Fatalf("loading model config: %v", err)
		}

		log.WithField("model", model.Name).Info("running tiling experiment")
		result := orchestrator.RunTilingExperiment(log, model, hw, tilingSeqLen)
		writeJSON(log, tilingOutputPath, result)
	},
}

func init() {
	tilingCmd.PersistentFlags().StringVar(&tilingHWConfigPath, "hw-config", "", "YAML file with hardware configuration overrides")
	tilingCmd.PersistentFlags().StringVar(&tilingModelConfigPath, "model-config", "", "YAML file with transformer model configuration")
	tilingCmd.PersistentFlags().IntVar(&tilingSeqLen, "seq-len", 256, "Prefill sequence length")
	tilingCmd.PersistentFlags().StringVar(&tilingOutputPath, "output", "-", "Output path for the results JSON (- for stdout)")

	tilingSweepCmd.Flags().StringVar(&tilingMode, "mode", "prefill", "Inference mode: decode or prefill")
}
