// Package sweep implements the tiling parameter sweep engine: candidate
// grid generation, Pareto frontier extraction on (DRAM traffic, compute
// utilization), per-GEMM best picks, and uniform-vs-per-GEMM comparison
// across a full transformer layer.
package sweep

import (
	"math"
	"strconv"

	"github.com/tiledse/tiledse/internal/cacheopt"
	"github.com/tiledse/tiledse/internal/tiling"
)

// TileMCandidates, TileNCandidates, and TileKCandidates are the default
// tile-dimension grids swept by SweepGEMM.
var (
	TileMCandidates = []int{1, 2, 4, 8, 16, 32, 64, 128, 256}
	TileNCandidates = []int{32, 64, 128, 256, 512, 1024, 2048, 4096}
	TileKCandidates = []int{32, 64, 128, 256, 512, 1024, 2048, 4096}
)

// BufferSchemes is the full set of buffering strategies swept by default.
var BufferSchemes = []tiling.BufferScheme{tiling.Single, tiling.DoubleB, tiling.DoubleA, tiling.DoubleAB}

// CandidateGrid overrides the default tile/scheme grids used by SweepGEMM.
// A nil slice falls back to the corresponding package-level default.
type CandidateGrid struct {
	TileM   []int
	TileN   []int
	TileK   []int
	Schemes []tiling.BufferScheme
}

func (g CandidateGrid) tileM() []int {
	if g.TileM != nil {
		return g.TileM
	}
	return TileMCandidates
}

func (g CandidateGrid) tileN() []int {
	if g.TileN != nil {
		return g.TileN
	}
	return TileNCandidates
}

func (g CandidateGrid) tileK() []int {
	if g.TileK != nil {
		return g.TileK
	}
	return TileKCandidates
}

func (g CandidateGrid) schemes() []tiling.BufferScheme {
	if g.Schemes != nil {
		return g.Schemes
	}
	return BufferSchemes
}

// GenerateTilingCandidates enumerates tiling configs for shape, dropping
// any whose rough SRAM estimate (ignoring double-buffering's SRAM-for-C
// reduction) already exceeds hw's scratchpad, and deduplicating configs
// that clamp to the same effective tile shape.
func GenerateTilingCandidates(shape tiling.GEMMShape, hw tiling.HWConfig, grid CandidateGrid) []tiling.TilingConfig {
	seen := make(map[tiling.TilingConfig]bool)
	var out []tiling.TilingConfig

	for _, tm := range grid.tileM() {
		tmEff := tm
		if tmEff > shape.M {
			tmEff = shape.M
		}
		for _, tn := range grid.tileN() {
			tnEff := tn
			if tnEff > shape.N {
				tnEff = shape.N
			}
			for _, tk := range grid.tileK() {
				tkEff := tk
				if tkEff > shape.K {
					tkEff = shape.K
				}
				for _, scheme := range grid.schemes() {
					if roughSRAM(tmEff, tnEff, tkEff, scheme, hw) > hw.SRAMTotalBytes {
						continue
					}
					cfg := tiling.TilingConfig{TileM: tmEff, TileN: tnEff, TileK: tkEff, BufferScheme: scheme}
					if seen[cfg] {
						continue
					}
					seen[cfg] = true
					out = append(out, cfg)
				}
			}
		}
	}
	return out
}

func roughSRAM(tm, tn, tk int, scheme tiling.BufferScheme, hw tiling.HWConfig) int {
	aMult, bMult := 1, 1
	if scheme == tiling.DoubleA || scheme == tiling.DoubleAB {
		aMult = 2
	}
	if scheme == tiling.DoubleB || scheme == tiling.DoubleAB {
		bMult = 2
	}
	aBytes := int(math.Ceil(float64(tm) * float64(tk) * hw.ActBytes))
	bBytes := int(math.Ceil(float64(tk) * float64(tn) * hw.WeightBytes))
	cBytes := tm * tn * hw.AccBytes
	return aBytes*aMult + bBytes*bMult + cBytes
}

// Result holds the full sweep of one GEMM shape across a candidate grid.
type Result struct {
	Shape    tiling.GEMMShape
	All      []*tiling.GEMMCost
	Pareto   []*tiling.GEMMCost // frontier on (dram_total minimize, compute_utilization maximize)
	Baseline *tiling.GEMMCost
}

// BestUtilization returns the Pareto point with the highest compute
// utilization.
func (r Result) BestUtilization() *tiling.GEMMCost {
	return maxBy(r.Pareto, func(c *tiling.GEMMCost) float64 { return c.ComputeUtilization })
}

// BestDRAM returns the Pareto point with the lowest DRAM traffic.
func (r Result) BestDRAM() *tiling.GEMMCost {
	return minBy(r.Pareto, func(c *tiling.GEMMCost) int64 { return c.DRAMTotal })
}

func maxBy(costs []*tiling.GEMMCost, key func(*tiling.GEMMCost) float64) *tiling.GEMMCost {
	if len(costs) == 0 {
		return nil
	}
	best := costs[0]
	for _, c := range costs[1:] {
		if key(c) > key(best) {
			best = c
		}
	}
	return best
}

func minBy(costs []*tiling.GEMMCost, key func(*tiling.GEMMCost) int64) *tiling.GEMMCost {
	if len(costs) == 0 {
		return nil
	}
	best := costs[0]
	for _, c := range costs[1:] {
		if key(c) < key(best) {
			best = c
		}
	}
	return best
}

// SweepGEMM evaluates every candidate tiling config for shape and returns
// the full result set plus the Pareto frontier and the conservative
// baseline.
func SweepGEMM(shape tiling.GEMMShape, hw tiling.HWConfig, grid CandidateGrid) Result {
	candidates := GenerateTilingCandidates(shape, hw, grid)
	var costs []*tiling.GEMMCost
	for _, cfg := range candidates {
		cost, err := tiling.CostGEMM(shape, cfg, hw)
		if err != nil {
			continue
		}
		costs = append(costs, cost)
	}

	baselineTiling := tiling.BaselineTiling(shape, hw)
	baselineCost, _ := tiling.CostGEMM(shape, baselineTiling, hw)

	return Result{
		Shape:    shape,
		All:      costs,
		Pareto:   extractPareto(costs),
		Baseline: baselineCost,
	}
}

// extractPareto finds the non-dominated subset on (dram_total minimize,
// compute_utilization maximize), reusing cacheopt's generic Point2D
// extractor with each GEMMCost carried through as the point's payload.
func extractPareto(costs []*tiling.GEMMCost) []*tiling.GEMMCost {
	if len(costs) == 0 {
		return nil
	}
	points := make([]cacheopt.Point2D, len(costs))
	for i, c := range costs {
		points[i] = cacheopt.Point2D{X: float64(c.DRAMTotal), Y: c.ComputeUtilization, Data: c}
	}
	frontierPoints := cacheopt.ExtractParetoMaxY(points)
	frontier := make([]*tiling.GEMMCost, len(frontierPoints))
	for i, p := range frontierPoints {
		frontier[i] = p.Data.(*tiling.GEMMCost)
	}
	return frontier
}

// SweepAllLayerGEMMs sweeps each shape in gemms independently.
func SweepAllLayerGEMMs(gemms []tiling.GEMMShape, hw tiling.HWConfig, grid CandidateGrid) map[string]Result {
	results := make(map[string]Result, len(gemms))
	for _, g := range gemms {
		results[g.Name] = SweepGEMM(g, hw, grid)
	}
	return results
}

// GroupGEMMsByShape groups GEMMs that share an (N,K) shape, since they
// share an optimal tiling. Supplements the spec's component list with the
// original implementation's get_unique_gemm_groups.
func GroupGEMMsByShape(gemms []tiling.GEMMShape) map[string][]tiling.GEMMShape {
	groups := make(map[string][]tiling.GEMMShape)
	for _, g := range gemms {
		key := shapeKey(g)
		groups[key] = append(groups[key], g)
	}
	return groups
}

func shapeKey(g tiling.GEMMShape) string {
	return strconv.Itoa(g.N) + "x" + strconv.Itoa(g.K)
}
