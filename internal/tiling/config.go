// Package tiling implements the analytical cost model for a tiled GEMM
// accelerator: on-chip SRAM scratchpad, off-chip DRAM, a fixed-size MAC
// array, and an overlap-aware wall-cycle model parameterized by buffer
// scheme.
package tiling

import "errors"

// ErrCapacityExceeded is returned when a tiling configuration's SRAM
// footprint does not fit within the hardware's scratchpad.
var ErrCapacityExceeded = errors.New("tiling: sram capacity exceeded")

// BufferScheme selects the SRAM double-buffering strategy, which
// determines how DRAM transfer time overlaps with MAC array compute time.
type BufferScheme int

const (
	// Single buffering: load then compute sequentially, no overlap.
	Single BufferScheme = iota
	// DoubleB double-buffers the weight (B) tile, overlapping B loads with
	// compute across the inner column loop.
	DoubleB
	// DoubleA double-buffers the activation (A) tile, overlapping the next
	// A prefetch with the entire inner B-load/compute loop.
	DoubleA
	// DoubleAB double-buffers both A and B tiles.
	DoubleAB
)

// String renders the buffer scheme name used in the persisted results
// document.
func (b BufferScheme) String() string {
	switch b {
	case Single:
		return "single"
	case DoubleB:
		return "double_b"
	case DoubleA:
		return "double_a"
	case DoubleAB:
		return "double_ab"
	default:
		return "unknown"
	}
}

// doublesA reports whether scheme double-buffers the A (activation) tile.
func (b BufferScheme) doublesA() bool {
	return b == DoubleA || b == DoubleAB
}

// doublesB reports whether scheme double-buffers the B (weight) tile.
func (b BufferScheme) doublesB() bool {
	return b == DoubleB || b == DoubleAB
}

// HWConfig is the target accelerator's hardware parameters: on-chip SRAM,
// off-chip DRAM, and the MAC array geometry. Field defaults (via
// DefaultHWConfig) describe a representative edge SoC: 2MB SRAM, 50GB/s
// LPDDR5, and a 32x32 INT8 MAC array at 500MHz.
type HWConfig struct {
	SRAMTotalBytes int

	DRAMPeakBWGbps       float64
	DRAMPageHitLatencyNs float64
	DRAMPageMissLatencyNs float64
	DRAMBurstEfficiency  float64
	DRAMPageHitRate      float64

	MACArrayM  int
	MACArrayN  int
	MACFreqMHz int

	ActBytes    float64 // activation element size, e.g. 1.0 for INT8
	WeightBytes float64 // weight element size, e.g. 0.5 for INT4
	AccBytes    int     // accumulator element size, e.g. 4 for INT32
	OutputBytes float64 // requantized output element size
}

// DefaultHWConfig returns the reference edge-SoC configuration used as the
// baseline for all sweep and experiment commands.
func DefaultHWConfig() HWConfig {
	return HWConfig{
		SRAMTotalBytes: 2 * 1024 * 1024,

		DRAMPeakBWGbps:        50.0,
		DRAMPageHitLatencyNs:  17.0,
		DRAMPageMissLatencyNs: 52.0,
		DRAMBurstEfficiency:   0.90,
		DRAMPageHitRate:       0.70,

		MACArrayM:  32,
		MACArrayN:  32,
		MACFreqMHz: 500,

		ActBytes:    1.0,
		WeightBytes: 0.5,
		AccBytes:    4,
		OutputBytes: 1.0,
	}
}

// MacsPerCycle is the peak MAC operations per clock cycle.
func (h HWConfig) MacsPerCycle() int {
	return h.MACArrayM * h.MACArrayN
}

// CycleNs is the clock period in nanoseconds.
func (h HWConfig) CycleNs() float64 {
	return 1000.0 / float64(h.MACFreqMHz)
}

// BWBytesPerCycle is the peak DRAM bandwidth expressed in bytes per
// compute clock cycle.
func (h HWConfig) BWBytesPerCycle() float64 {
	return h.DRAMPeakBWGbps * h.CycleNs()
}

// DRAMTransferCycles estimates DRAM transfer time, in compute-clock
// cycles, for numBytes spread across numTransactions DMA requests. Each
// transaction costs an average page-hit/page-miss latency plus its
// payload at the sustained (burst-efficiency-derated) bandwidth; this
// penalizes many small transfers and rewards large sequential bursts.
func (h HWConfig) DRAMTransferCycles(numBytes int, numTransactions int) float64 {
	if numBytes <= 0 || numTransactions <= 0 {
		return 0
	}
	bytesPerTxn := float64(numBytes) / float64(numTransactions)
	avgLatencyNs := h.DRAMPageHitRate*h.DRAMPageHitLatencyNs + (1-h.DRAMPageHitRate)*h.DRAMPageMissLatencyNs
	sustainedBW := h.DRAMPeakBWGbps * h.DRAMBurstEfficiency
	timePerTxnNs := avgLatencyNs + bytesPerTxn/sustainedBW
	totalNs := float64(numTransactions) * timePerTxnNs
	return totalNs / h.CycleNs()
}

// GEMMShape describes one GEMM: C[M,N] = A[M,K] x B[K,N].
type GEMMShape struct {
	Name string
	M    int // output rows (seq_len for prefill, 1 for decode)
	N    int // output columns (projection output dim)
	K    int // inner/reduction dim (projection input dim)
}

// TotalMACs is the multiply-accumulate operation count of the GEMM.
func (g GEMMShape) TotalMACs() int64 {
	return int64(g.M) * int64(g.N) * int64(g.K)
}

// WeightElements is the element count of the B operand (weight matrix).
func (g GEMMShape) WeightElements() int64 {
	return int64(g.K) * int64(g.N)
}

// TilingConfig is one candidate tile geometry plus buffering strategy.
type TilingConfig struct {
	TileM, TileN, TileK int
	BufferScheme        BufferScheme
}

// BaselineTiling constructs a conservative single-buffered baseline: one
// MAC-array row strip for tile_m, one MAC-array column strip for tile_n
// and tile_k. Grounded on original_source's baseline_tiling.
func BaselineTiling(shape GEMMShape, hw HWConfig) TilingConfig {
	tm := hw.MACArrayM
	if shape.M < tm {
		tm = shape.M
	}
	return TilingConfig{
		TileM:        tm,
		TileN:        hw.MACArrayN,
		TileK:        hw.MACArrayN,
		BufferScheme: Single,
	}
}
