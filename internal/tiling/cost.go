package tiling

import (
	"fmt"
	"math"
)

// GEMMCost is the result of evaluating one (GEMMShape, TilingConfig,
// HWConfig) combination: SRAM footprint, DRAM traffic, compute cycles,
// and the overlap-aware wall-clock cycle count.
type GEMMCost struct {
	Shape  GEMMShape
	Tiling TilingConfig

	NTilesM, NTilesN, NTilesK int
	NJGroups                  int // number of output-column groups
	JC                        int // output column tiles resident in SRAM at once

	SRAMA, SRAMB, SRAMC, SRAMTotal int

	DRAMReadA, DRAMReadB, DRAMWriteC, DRAMTotal int64

	ComputeCycles      float64
	IdealComputeCycles float64
	MemoryCycles       float64
	TotalCycles        float64

	MACArrayEfficiency  float64
	ComputeUtilization  float64
	ArithmeticIntensity float64
}

// DRAMReadTotal is the combined A+B DRAM read traffic.
func (c GEMMCost) DRAMReadTotal() int64 { return c.DRAMReadA + c.DRAMReadB }

// IsComputeBound reports whether the MAC array, not DRAM, is the wall-
// clock bottleneck.
func (c GEMMCost) IsComputeBound() bool { return c.ComputeCycles >= c.MemoryCycles }

// CostGEMM evaluates shape tiled by tiling on hw, returning DRAM traffic,
// cycle counts, and utilization. Returns ErrCapacityExceeded if the
// minimum SRAM footprint (one A tile + one B tile + one C tile, with
// double-buffer multipliers applied) does not fit in hw's scratchpad.
//
// Loop nest assumed (A-reuse with output-column grouping):
//
//	for i in tiles_m:
//	  for jg in j_groups:
//	    init C tiles in SRAM (j_c tiles)
//	    for k in tiles_k:
//	      load A[i,k]                  // reused across j_c columns
//	      for j in j_c:
//	        load B[k, jg*j_c+j]
//	        C[i, jg*j_c+j] += A * B
//	    store j_c output tiles
func CostGEMM(shape GEMMShape, tiling TilingConfig, hw HWConfig) (*GEMMCost, error) {
	tm, tn, tk := tiling.TileM, tiling.TileN, tiling.TileK
	if tm > shape.M {
		tm = shape.M
	}
	if tn > shape.N {
		tn = shape.N
	}
	if tk > shape.K {
		tk = shape.K
	}

	// 1. SRAM footprint.
	aTileBytes := int(math.Ceil(float64(tm) * float64(tk) * hw.ActBytes))
	bTileBytes := int(math.Ceil(float64(tk) * float64(tn) * hw.WeightBytes))
	cTileBytes := tm * tn * hw.AccBytes

	aBufMult, bBufMult := 1, 1
	if tiling.BufferScheme.doublesA() {
		aBufMult = 2
	}
	if tiling.BufferScheme.doublesB() {
		bBufMult = 2
	}

	sramA := aTileBytes * aBufMult
	sramB := bTileBytes * bBufMult

	minSRAM := sramA + sramB + cTileBytes
	if minSRAM > hw.SRAMTotalBytes {
		return nil, fmt.Errorf("%w: minimum footprint %d bytes exceeds %d bytes for %q at tile(%d,%d,%d)/%s",
			ErrCapacityExceeded, minSRAM, hw.SRAMTotalBytes, shape.Name, tm, tn, tk, tiling.BufferScheme)
	}

	sramForC := hw.SRAMTotalBytes - sramA - sramB
	jc := sramForC / cTileBytes
	if jc < 1 {
		jc = 1
	}

	// 2. Tile iteration counts.
	nM := ceilDiv(shape.M, tm)
	nN := ceilDiv(shape.N, tn)
	nK := ceilDiv(shape.K, tk)
	nJG := ceilDiv(nN, jc)

	jcEff := jc
	if jcEff > nN {
		jcEff = nN
	}

	sramC := jcEff * cTileBytes
	sramTotal := sramA + sramB + sramC

	// 3. DRAM traffic.
	nALoads := int64(nM) * int64(nJG) * int64(nK)
	dramReadA := nALoads * int64(aTileBytes)

	nBLoads := int64(nM) * int64(nN) * int64(nK)
	dramReadB := nBLoads * int64(bTileBytes)

	cOutBytesPerTile := int64(math.Ceil(float64(tm) * float64(tn) * hw.OutputBytes))
	dramWriteC := int64(nM) * int64(nN) * cOutBytesPerTile
	dramTotal := dramReadA + dramReadB + dramWriteC

	// 4. Compute cycles.
	subTilesM := ceilDiv(tm, hw.MACArrayM)
	subTilesN := ceilDiv(tn, hw.MACArrayN)
	computePerTile := float64(subTilesM * subTilesN * tk)

	totalTileOps := int64(nM) * int64(nN) * int64(nK)
	computeCycles := float64(totalTileOps) * computePerTile

	idealComputeCycles := float64(shape.TotalMACs()) / float64(hw.MacsPerCycle())

	usefulMacsPerTile := float64(tm * tn * tk)
	arrayMacsPerTile := float64(subTilesM*subTilesN*hw.MacsPerCycle()) * float64(tk)
	macEfficiency := 0.0
	if arrayMacsPerTile > 0 {
		macEfficiency = usefulMacsPerTile / arrayMacsPerTile
	}

	// 5. Memory transfer cycles.
	aXferCycles := hw.DRAMTransferCycles(int(dramReadA), int(nALoads))
	bXferCycles := hw.DRAMTransferCycles(int(dramReadB), int(nBLoads))
	cXferCycles := hw.DRAMTransferCycles(int(dramWriteC), nM*nN)
	memoryCycles := aXferCycles + bXferCycles + cXferCycles

	// 6. Overlap-aware wall-clock cycles.
	totalCycles := overlapCycles(overlapInputs{
		scheme:         tiling.BufferScheme,
		nM:             nM,
		nJG:            nJG,
		nK:             nK,
		jcEff:          jcEff,
		aTileBytes:     aTileBytes,
		bTileBytes:     bTileBytes,
		cTileBytes:     cTileBytes,
		computePerTile: computePerTile,
		hw:             hw,
	})

	// 7. Derived metrics.
	computeUtil := 0.0
	if totalCycles > 0 {
		computeUtil = idealComputeCycles / totalCycles
	}
	arithIntensity := math.Inf(1)
	if dramTotal > 0 {
		arithIntensity = float64(shape.TotalMACs()) / float64(dramTotal)
	}

	return &GEMMCost{
		Shape:               shape,
		Tiling:              tiling,
		NTilesM:             nM,
		NTilesN:             nN,
		NTilesK:             nK,
		NJGroups:            nJG,
		JC:                  jcEff,
		SRAMA:               sramA,
		SRAMB:               sramB,
		SRAMC:               sramC,
		SRAMTotal:           sramTotal,
		DRAMReadA:           dramReadA,
		DRAMReadB:           dramReadB,
		DRAMWriteC:          dramWriteC,
		DRAMTotal:           dramTotal,
		ComputeCycles:       computeCycles,
		IdealComputeCycles:  idealComputeCycles,
		MemoryCycles:        memoryCycles,
		TotalCycles:         totalCycles,
		MACArrayEfficiency:  macEfficiency,
		ComputeUtilization:  computeUtil,
		ArithmeticIntensity: arithIntensity,
	}, nil
}

func ceilDiv(a, b int) int {
	if b <= 0 {
		return 0
	}
	return int(math.Ceil(float64(a) / float64(b)))
}

type overlapInputs struct {
	scheme                             BufferScheme
	nM, nJG, nK, jcEff                 int
	aTileBytes, bTileBytes, cTileBytes int
	computePerTile                     float64
	hw                                 HWConfig
}

// overlapCycles computes wall-clock cycles accounting for compute/memory
// overlap, per the buffer scheme's pipelining strategy:
//
//	Single:    fully sequential within the loop nest.
//	DoubleB:   overlap B-tile loads with compute across the inner column loop.
//	DoubleA:   overlap the next A-tile prefetch with the whole inner loop.
//	DoubleAB:  both overlaps combined.
func overlapCycles(in overlapInputs) float64 {
	hw := in.hw
	tLoadA := hw.DRAMTransferCycles(in.aTileBytes, 1)
	tLoadB := hw.DRAMTransferCycles(in.bTileBytes, 1)
	tCompute := in.computePerTile

	cOutBytesPerTile := int(math.Ceil(float64(in.cTileBytes) / float64(hw.AccBytes) * hw.OutputBytes))
	tStoreGroup := hw.DRAMTransferCycles(cOutBytesPerTile*in.jcEff, in.jcEff)

	var tKIter float64
	switch in.scheme {
	case Single:
		tKIter = tLoadA + float64(in.jcEff)*(tLoadB+tCompute)

	case DoubleB:
		if in.jcEff <= 1 {
			tKIter = tLoadA + tLoadB + tCompute
		} else {
			tKIter = tLoadA + tLoadB + float64(in.jcEff-1)*math.Max(tLoadB, tCompute) + tCompute
		}

	case DoubleA:
		innerTime := float64(in.jcEff) * (tLoadB + tCompute)
		tKIter = math.Max(tLoadA, innerTime)

	case DoubleAB:
		var innerTime float64
		if in.jcEff <= 1 {
			innerTime = math.Max(tLoadB, tCompute)
		} else {
			innerTime = tLoadB + float64(in.jcEff-1)*math.Max(tLoadB, tCompute) + tCompute
		}
		tKIter = math.Max(tLoadA, innerTime)
	}

	tPerGroup := float64(in.nK)*tKIter + tStoreGroup
	total := float64(in.nM) * float64(in.nJG) * tPerGroup

	if in.scheme.doublesA() {
		total += tLoadA // first A tile cannot be overlapped
	}
	return total
}
