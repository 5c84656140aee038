package orchestrator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tiledse/tiledse/internal/tiling"
	"github.com/tiledse/tiledse/internal/tiling/sweep"
)

func smallModel() sweep.ModelConfig {
	return sweep.ModelConfig{
		Name:             "test-model",
		NumLayers:        8,
		HiddenSize:       512,
		NumQHeads:        8,
		NumKVHeads:       2,
		IntermediateSize: 1536,
		HeadDim:          64,
	}
}

func TestRunTilingExperiment_ProducesDecodeAndPrefillSummaries(t *testing.T) {
	hw := tiling.DefaultHWConfig()
	model := smallModel()

	result := RunTilingExperiment(silentLogger(), model, hw, 64)

	require.NotEmpty(t, result.Decode.GEMMs)
	require.NotEmpty(t, result.Prefill.GEMMs)
	assert.Equal(t, "decode", result.Decode.Mode)
	assert.Equal(t, "prefill", result.Prefill.Mode)
	assert.Equal(t, 1, result.Decode.SeqLen)
	assert.Equal(t, 64, result.Prefill.SeqLen)
}

func TestRunTilingExperiment_ModelLatencyScalesWithNumLayers(t *testing.T) {
	hw := tiling.DefaultHWConfig()
	model := smallModel()

	fewLayers := model
	fewLayers.NumLayers = 1
	manyLayers := model
	manyLayers.NumLayers = 10

	r1 := RunTilingExperiment(silentLogger(), fewLayers, hw, 32)
	r2 := RunTilingExperiment(silentLogger(), manyLayers, hw, 32)

	assert.Less(t, r1.Prefill.ModelLatencyMs, r2.Prefill.ModelLatencyMs)
}
