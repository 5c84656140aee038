package orchestrator

import (
	"github.com/sirupsen/logrus"

	"github.com/tiledse/tiledse/internal/tiling"
	"github.com/tiledse/tiledse/internal/tiling/sweep"
)

// GEMMSummary is the persisted per-GEMM sweep outcome.
type GEMMSummary struct {
	Shape              tiling.GEMMShape `json:"shape"`
	BaselineDRAM       int64            `json:"baseline_dram"`
	BaselineCycles     float64          `json:"baseline_cycles"`
	BestDRAM           int64            `json:"best_dram"`
	BestCycles         float64          `json:"best_cycles"`
	BestUtilization    float64          `json:"best_utilization"`
	ConfigsExplored    int              `json:"configs_explored"`
}

// LayerSummary is one mode's (decode or prefill) full-layer sweep result.
type LayerSummary struct {
	Mode              string                 `json:"mode"`
	SeqLen            int                    `json:"seq_len"`
	GEMMs             map[string]GEMMSummary `json:"gemms"`
	DRAMReductionPct  float64                `json:"dram_reduction_pct"`
	UtilImprovementPP float64                `json:"util_improvement_pp"`
	TotalDRAMBytes    int64                  `json:"total_dram_bytes_per_layer"`
	TotalCycles       float64                `json:"total_cycles_per_layer"`
	ModelLatencyMs    float64                `json:"model_latency_ms"`
}

// TilingExperimentResult bundles the decode and prefill layer summaries.
type TilingExperimentResult struct {
	Decode  LayerSummary `json:"decode"`
	Prefill LayerSummary `json:"prefill"`
}

// RunTilingExperiment sweeps decode (seq_len=1) and prefill (seq_len)
// tiling configurations across one transformer layer, scaling the
// per-layer cost by model.NumLayers to estimate full-model latency.
func RunTilingExperiment(log *logrus.Logger, model sweep.ModelConfig, hw tiling.HWConfig, seqLen int) TilingExperimentResult {
	decode := summarizeLayer(log, model, hw, sweep.Decode, 1)
	prefill := summarizeLayer(log, model, hw, sweep.Prefill, seqLen)
	return TilingExperimentResult{Decode: decode, Prefill: prefill}
}

func summarizeLayer(log *logrus.Logger, model sweep.ModelConfig, hw tiling.HWConfig, mode sweep.Mode, seqLen int) LayerSummary {
	layer := sweep.SweepLayer(model, hw, mode, seqLen)
	comparison := sweep.CompareUniformVsPerGEMM(hw, layer.GEMMs)

	gemms := make(map[string]GEMMSummary, len(layer.GEMMs))
	var totalDRAM int64
	var totalCycles float64
	for name, r := range layer.GEMMs {
		best := r.BestUtilization()
		if best == nil || r.Baseline == nil {
			log.WithField("gemm", name).Warn("no feasible tiling found for GEMM")
			continue
		}
		gemms[name] = GEMMSummary{
			Shape:           r.Shape,
			BaselineDRAM:    r.Baseline.DRAMTotal,
			BaselineCycles:  r.Baseline.TotalCycles,
			BestDRAM:        best.DRAMTotal,
			BestCycles:      best.TotalCycles,
			BestUtilization: best.ComputeUtilization,
			ConfigsExplored: len(r.All),
		}
		totalDRAM += best.DRAMTotal
		totalCycles += best.TotalCycles
	}

	modeName := "prefill"
	if mode == sweep.Decode {
		modeName = "decode"
	}

	modelCycles := totalCycles * float64(model.NumLayers)
	modelLatencyMs := modelCycles * hw.CycleNs() / 1e6

	return LayerSummary{
		Mode:              modeName,
		SeqLen:            sweep.SeqLenForMode(mode, seqLen),
		GEMMs:             gemms,
		DRAMReductionPct:  comparison.DRAMReductionPct(),
		UtilImprovementPP: comparison.UtilImprovementPP(),
		TotalDRAMBytes:    totalDRAM,
		TotalCycles:       totalCycles,
		ModelLatencyMs:    modelLatencyMs,
	}
}
