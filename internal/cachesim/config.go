// Package cachesim implements a trace-driven, set-associative LRU cache
// simulator. The simulator is pure and deterministic: replaying the same
// trace against a freshly reset cache always yields the same statistics.
package cachesim

import (
	"errors"
	"fmt"
	"math/bits"
)

// ErrInvalidConfig is returned when a CacheConfig violates the structural
// constraints in its Validate method (non-power-of-two block size, cache
// size not a multiple of block_size*associativity, zero resulting sets).
var ErrInvalidConfig = errors.New("cachesim: invalid cache configuration")

// CacheConfig describes a set-associative cache geometry.
type CacheConfig struct {
	CacheSize     int `json:"cache_size"`    // total cache size in bytes
	BlockSize     int `json:"block_size"`    // block/line size in bytes, must be a power of two
	Associativity int `json:"associativity"` // ways per set
}

// NumSets returns the derived number of sets for this configuration.
func (c CacheConfig) NumSets() int {
	return c.CacheSize / (c.BlockSize * c.Associativity)
}

// OffsetBits returns the number of address bits consumed by the block offset.
func (c CacheConfig) OffsetBits() int {
	return bits.Len(uint(c.BlockSize)) - 1
}

// IndexBits returns the number of address bits consumed by the set index.
func (c CacheConfig) IndexBits() int {
	numSets := c.NumSets()
	if numSets <= 0 {
		return 0
	}
	return bits.Len(uint(numSets)) - 1
}

// Validate checks the structural constraints from the data model:
// all fields positive, block size a power of two, cache size a positive
// multiple of block_size*associativity, and at least one resulting set.
func (c CacheConfig) Validate() error {
	if c.CacheSize <= 0 || c.BlockSize <= 0 || c.Associativity <= 0 {
		return fmt.Errorf("%w: cache_size, block_size, and associativity must be positive (got %d, %d, %d)",
			ErrInvalidConfig, c.CacheSize, c.BlockSize, c.Associativity)
	}
	if c.BlockSize&(c.BlockSize-1) != 0 {
		return fmt.Errorf("%w: block_size %d is not a power of two", ErrInvalidConfig, c.BlockSize)
	}
	unit := c.BlockSize * c.Associativity
	if c.CacheSize%unit != 0 {
		return fmt.Errorf("%w: cache_size %d is not a multiple of block_size*associativity (%d)",
			ErrInvalidConfig, c.CacheSize, unit)
	}
	if c.NumSets() < 1 {
		return fmt.Errorf("%w: configuration yields zero sets", ErrInvalidConfig)
	}
	return nil
}

// String renders a human-readable summary of the cache geometry, in the
// style of the original simulator's configuration printout.
func (c CacheConfig) String() string {
	return fmt.Sprintf("Cache{size=%dB block=%dB assoc=%d-way sets=%d offset_bits=%d index_bits=%d}",
		c.CacheSize, c.BlockSize, c.Associativity, c.NumSets(), c.OffsetBits(), c.IndexBits())
}
