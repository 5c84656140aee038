package tiling

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCostGEMM_RejectsWhenMinimumFootprintExceedsSRAM(t *testing.T) {
	hw := DefaultHWConfig()
	hw.SRAMTotalBytes = 64 // absurdly small
	shape := GEMMShape{Name: "attn_q_proj", M: 128, N: 4096, K: 4096}
	tiling := TilingConfig{TileM: 128, TileN: 4096, TileK: 4096, BufferScheme: Single}

	_, err := CostGEMM(shape, tiling, hw)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCapacityExceeded)
}

func TestCostGEMM_DRAMTrafficMatchesLoopNestFormula(t *testing.T) {
	hw := DefaultHWConfig()
	shape := GEMMShape{Name: "toy", M: 64, N: 64, K: 64}
	tiling := TilingConfig{TileM: 32, TileN: 32, TileK: 32, BufferScheme: Single}

	cost, err := CostGEMM(shape, tiling, hw)
	require.NoError(t, err)

	nM, nN, nK := 2, 2, 2
	assert.Equal(t, nM, cost.NTilesM)
	assert.Equal(t, nN, cost.NTilesN)
	assert.Equal(t, nK, cost.NTilesK)

	aTileBytes := int64(32 * 32 * 1) // ActBytes=1.0
	bTileBytes := int64(32 * 32 / 2) // WeightBytes=0.5
	cOutBytes := int64(32 * 32 * 1)  // OutputBytes=1.0

	wantWriteC := int64(nM*nN) * cOutBytes
	assert.Equal(t, wantWriteC, cost.DRAMWriteC)
	assert.Greater(t, cost.DRAMReadA, int64(0))
	assert.Equal(t, int64(nM*cost.NJGroups*nK)*aTileBytes, cost.DRAMReadA)
	assert.Equal(t, int64(nM*nN*nK)*bTileBytes, cost.DRAMReadB)
}

func TestCostGEMM_ComputeUtilizationBoundedByOne(t *testing.T) {
	hw := DefaultHWConfig()
	shape := GEMMShape{Name: "attn_q_proj", M: 512, N: 4096, K: 4096}
	for _, scheme := range []BufferScheme{Single, DoubleB, DoubleA, DoubleAB} {
		tiling := TilingConfig{TileM: 32, TileN: 256, TileK: 256, BufferScheme: scheme}
		cost, err := CostGEMM(shape, tiling, hw)
		require.NoError(t, err)
		assert.LessOrEqual(t, cost.ComputeUtilization, 1.0+1e-9, "scheme=%s", scheme)
		assert.Greater(t, cost.ComputeUtilization, 0.0, "scheme=%s", scheme)
	}
}

func TestCostGEMM_DoubleBufferingNeverSlowerThanSingle(t *testing.T) {
	hw := DefaultHWConfig()
	shape := GEMMShape{Name: "ffn_gate_proj", M: 256, N: 2048, K: 1024}
	tilingFor := func(scheme BufferScheme) TilingConfig {
		return TilingConfig{TileM: 32, TileN: 128, TileK: 128, BufferScheme: scheme}
	}

	single, err := CostGEMM(shape, tilingFor(Single), hw)
	require.NoError(t, err)
	doubleAB, err := CostGEMM(shape, tilingFor(DoubleAB), hw)
	require.NoError(t, err)

	assert.LessOrEqual(t, doubleAB.TotalCycles, single.TotalCycles)
}

func TestCostGEMM_ClampsTilesLargerThanShape(t *testing.T) {
	hw := DefaultHWConfig()
	shape := GEMMShape{Name: "decode_q_proj", M: 1, N: 4096, K: 4096}
	tiling := TilingConfig{TileM: 128, TileN: 256, TileK: 256, BufferScheme: Single}

	cost, err := CostGEMM(shape, tiling, hw)
	require.NoError(t, err)
	assert.Equal(t, 1, cost.NTilesM)
}

func TestBaselineTiling_FitsUnderDefaultHW(t *testing.T) {
	hw := DefaultHWConfig()
	shape := GEMMShape{Name: "attn_o_proj", M: 256, N: 4096, K: 4096}
	baseline := BaselineTiling(shape, hw)

	_, err := CostGEMM(shape, baseline, hw)
	assert.NoError(t, err)
}

func TestHWConfig_DRAMTransferCycles_ZeroBytesIsFree(t *testing.T) {
	hw := DefaultHWConfig()
	assert.Equal(t, 0.0, hw.DRAMTransferCycles(0, 1))
}

func TestHWConfig_DRAMTransferCycles_PenalizesManySmallTransfers(t *testing.T) {
	hw := DefaultHWConfig()
	oneTxn := hw.DRAMTransferCycles(4096, 1)
	manyTxn := hw.DRAMTransferCycles(4096, 64)
	assert.Greater(t, manyTxn, oneTxn)
}

func TestBufferScheme_String(t *testing.T) {
	assert.Equal(t, "single", Single.String())
	assert.Equal(t, "double_b", DoubleB.String())
	assert.Equal(t, "double_a", DoubleA.String())
	assert.Equal(t, "double_ab", DoubleAB.String())
}
