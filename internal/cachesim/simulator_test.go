package cachesim

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheConfig_Validate_RejectsNonPowerOfTwoBlock(t *testing.T) {
	cfg := CacheConfig{CacheSize: 1024, BlockSize: 48, Associativity: 1}
	err := cfg.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidConfig))
}

func TestCacheConfig_Validate_RejectsNonMultipleCacheSize(t *testing.T) {
	cfg := CacheConfig{CacheSize: 100, BlockSize: 64, Associativity: 2}
	assert.Error(t, cfg.Validate())
}

func TestCacheConfig_DerivedGeometry(t *testing.T) {
	cfg := CacheConfig{CacheSize: 1024, BlockSize: 64, Associativity: 2}
	assert.Equal(t, 8, cfg.NumSets())
	assert.Equal(t, 6, cfg.OffsetBits())
	assert.Equal(t, 3, cfg.IndexBits())
}

// E1 — direct-mapped conflict.
func TestSimulator_E1_DirectMappedConflict(t *testing.T) {
	sim, err := NewSimulator(CacheConfig{CacheSize: 1024, BlockSize: 64, Associativity: 1})
	require.NoError(t, err)

	trace := []uint64{0, 1024, 0, 1024, 0, 1024}
	stats := sim.Run(trace)

	assert.Equal(t, 6, stats.Misses)
	assert.Equal(t, 0, stats.Hits)
	assert.Equal(t, 1.0, stats.MissRate())
}

// E2 — LRU reuse.
func TestSimulator_E2_LRUReuse(t *testing.T) {
	sim, err := NewSimulator(CacheConfig{CacheSize: 256, BlockSize: 64, Associativity: 4})
	require.NoError(t, err)

	trace := []uint64{0, 64, 128, 192, 0, 64, 128, 192}
	stats := sim.Run(trace)

	assert.Equal(t, 4, stats.Misses)
	assert.Equal(t, 4, stats.Hits)
	assert.InDelta(t, 0.5, stats.MissRate(), 1e-9)
}

// E3 — stride-1 spatial locality.
func TestSimulator_E3_Stride1Spatial(t *testing.T) {
	sim, err := NewSimulator(CacheConfig{CacheSize: 1024, BlockSize: 64, Associativity: 2})
	require.NoError(t, err)

	var trace []uint64
	for i := uint64(0); i < 64; i++ {
		trace = append(trace, i*4)
	}
	stats := sim.Run(trace)

	assert.Equal(t, 4, stats.Misses)
	assert.Equal(t, 60, stats.Hits)
}

func TestSimulator_AccessesEqualHitsPlusMisses(t *testing.T) {
	sim, err := NewSimulator(CacheConfig{CacheSize: 4096, BlockSize: 32, Associativity: 4})
	require.NoError(t, err)

	trace := make([]uint64, 500)
	for i := range trace {
		trace[i] = uint64(i*4) % 8192
	}
	stats := sim.Run(trace)
	assert.Equal(t, stats.Accesses, stats.Hits+stats.Misses)
}

func TestSimulator_FullyAssociative_MatchesBeladyWhenNoEvictions(t *testing.T) {
	// With capacity covering every distinct line, a fully-associative cache
	// never evicts, so misses == number of distinct lines (zero evictions).
	sim, err := NewSimulator(CacheConfig{CacheSize: 1024, BlockSize: 64, Associativity: 16})
	require.NoError(t, err)

	trace := []uint64{0, 64, 128, 0, 64, 128, 0, 64, 128}
	stats := sim.Run(trace)
	assert.Equal(t, 3, stats.Misses)
	assert.Equal(t, 6, stats.Hits)
}

func TestSimulator_Reset_IsDeterministic(t *testing.T) {
	cfg := CacheConfig{CacheSize: 512, BlockSize: 64, Associativity: 2}
	sim, err := NewSimulator(cfg)
	require.NoError(t, err)

	trace := []uint64{0, 64, 128, 192, 256, 0, 320}
	first := sim.Run(trace)

	sim.Reset()
	second := sim.Run(trace)

	assert.Equal(t, first, second)
}

func TestSimulator_EmptyTrace_ZeroMissRate(t *testing.T) {
	sim, err := NewSimulator(CacheConfig{CacheSize: 1024, BlockSize: 64, Associativity: 2})
	require.NoError(t, err)
	stats := sim.Run(nil)
	assert.Equal(t, 0.0, stats.MissRate())
}
