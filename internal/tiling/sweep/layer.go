package sweep

import (
	"sort"

	"github.com/tiledse/tiledse/internal/tiling"
)

// Mode selects which inference phase's GEMM shapes to generate: Prefill
// processes the full prompt (M = seq_len), Decode processes one token at
// a time (M = 1).
type Mode int

const (
	Prefill Mode = iota
	Decode
)

// ModelConfig is a transformer architecture's shape parameters, carrying
// the tiling-domain dimensions needed to derive a layer's GEMM shapes.
type ModelConfig struct {
	Name             string
	NumLayers        int
	HiddenSize       int
	NumQHeads        int
	NumKVHeads       int
	IntermediateSize int
	HeadDim          int
}

// KVDim is the total KV projection dimension (num_kv_heads * head_dim).
func (m ModelConfig) KVDim() int { return m.NumKVHeads * m.HeadDim }

// GQARatio is the number of query heads sharing one KV head.
func (m ModelConfig) GQARatio() int {
	if m.NumKVHeads == 0 {
		return 0
	}
	return m.NumQHeads / m.NumKVHeads
}

// LayerGEMMs returns the seven GEMM shapes of one transformer layer
// (attention Q/K/V/O projections and SwiGLU FFN gate/up/down projections)
// for the given sequence length. seqLen=1 models decode (matrix-vector
// products); seqLen>1 models prefill.
func LayerGEMMs(model ModelConfig, seqLen int) []tiling.GEMMShape {
	h := model.HiddenSize
	kv := model.KVDim()
	i := model.IntermediateSize

	return []tiling.GEMMShape{
		{Name: "attn_q_proj", M: seqLen, N: h, K: h},
		{Name: "attn_k_proj", M: seqLen, N: kv, K: h},
		{Name: "attn_v_proj", M: seqLen, N: kv, K: h},
		{Name: "attn_o_proj", M: seqLen, N: h, K: h},
		{Name: "ffn_gate_proj", M: seqLen, N: i, K: h},
		{Name: "ffn_up_proj", M: seqLen, N: i, K: h},
		{Name: "ffn_down_proj", M: seqLen, N: h, K: i},
	}
}

// SeqLenForMode returns the M dimension implied by mode: 1 for decode,
// seqLen for prefill.
func SeqLenForMode(mode Mode, seqLen int) int {
	if mode == Decode {
		return 1
	}
	return seqLen
}

// LayerResult aggregates one transformer layer's per-GEMM sweep results.
type LayerResult struct {
	GEMMs map[string]Result
}

// SweepLayer sweeps every GEMM shape of one transformer layer under mode.
func SweepLayer(model ModelConfig, hw tiling.HWConfig, mode Mode, seqLen int) LayerResult {
	gemms := LayerGEMMs(model, SeqLenForMode(mode, seqLen))
	return LayerResult{GEMMs: SweepAllLayerGEMMs(gemms, hw, CandidateGrid{})}
}

// Comparison compares the best single uniform tiling (one config shared
// by every GEMM in the layer) against per-GEMM-optimal tiling.
type Comparison struct {
	UniformDRAM   int64
	UniformCycles float64
	UniformUtil   float64
	PerGEMMDRAM   int64
	PerGEMMCycles float64
	PerGEMMUtil   float64
}

// DRAMReductionPct is the percentage DRAM traffic reduction of per-GEMM
// tiling over the best uniform tiling.
func (c Comparison) DRAMReductionPct() float64 {
	if c.UniformDRAM == 0 {
		return 0
	}
	return (1 - float64(c.PerGEMMDRAM)/float64(c.UniformDRAM)) * 100
}

// UtilImprovementPP is the compute-utilization improvement, in percentage
// points, of per-GEMM tiling over the best uniform tiling.
func (c Comparison) UtilImprovementPP() float64 {
	return (c.PerGEMMUtil - c.UniformUtil) * 100
}

// CompareUniformVsPerGEMM brute-forces the single tiling config (drawn
// from the union of all GEMMs' evaluated candidates) that minimizes total
// layer cycles, and compares it against each GEMM using its own
// best-utilization Pareto point.
func CompareUniformVsPerGEMM(hw tiling.HWConfig, results map[string]Result) Comparison {
	gemmNames := make([]string, 0, len(results))
	for name := range results {
		gemmNames = append(gemmNames, name)
	}
	sort.Strings(gemmNames)

	var perGEMMDRAM int64
	var perGEMMCycles, perGEMMIdeal float64
	for _, name := range gemmNames {
		best := results[name].BestUtilization()
		if best == nil {
			continue
		}
		perGEMMDRAM += best.DRAMTotal
		perGEMMCycles += best.TotalCycles
		perGEMMIdeal += best.IdealComputeCycles
	}
	perGEMMUtil := 0.0
	if perGEMMCycles > 0 {
		perGEMMUtil = perGEMMIdeal / perGEMMCycles
	}

	// Dedup candidate tilings into a stable, first-seen order (by sorted
	// GEMM name, then by each result's own candidate order) instead of a
	// bare map, so ties in totalCyc below break the same way every run.
	var orderedTilings []tiling.TilingConfig
	seen := make(map[tiling.TilingConfig]bool)
	for _, name := range gemmNames {
		for _, c := range results[name].All {
			if !seen[c.Tiling] {
				seen[c.Tiling] = true
				orderedTilings = append(orderedTilings, c.Tiling)
			}
		}
	}

	bestUniformCycles := -1.0
	var bestUniformDRAM int64
	var bestUniformIdeal float64
	found := false

	for _, cfg := range orderedTilings {
		var totalCyc float64
		var totalDRAM int64
		var totalIdeal float64
		valid := true
		for _, name := range gemmNames {
			r := results[name]
			cost, err := tiling.CostGEMM(r.Shape, cfg, hw)
			if err != nil {
				valid = false
				break
			}
			totalCyc += cost.TotalCycles
			totalDRAM += cost.DRAMTotal
			totalIdeal += cost.IdealComputeCycles
		}
		if !valid {
			continue
		}
		if !found || totalCyc < bestUniformCycles {
			bestUniformCycles = totalCyc
			bestUniformDRAM = totalDRAM
			bestUniformIdeal = totalIdeal
			found = true
		}
	}

	uniformUtil := 0.0
	if found && bestUniformCycles > 0 {
		uniformUtil = bestUniformIdeal / bestUniformCycles
	}
	if !found {
		bestUniformCycles = 0
	}

	return Comparison{
		UniformDRAM:   bestUniformDRAM,
		UniformCycles: bestUniformCycles,
		UniformUtil:   uniformUtil,
		PerGEMMDRAM:   perGEMMDRAM,
		PerGEMMCycles: perGEMMCycles,
		PerGEMMUtil:   perGEMMUtil,
	}
}
