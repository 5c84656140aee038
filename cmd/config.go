package cmd

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/tiledse/tiledse/internal/tiling"
	"github.com/tiledse/tiledse/internal/tiling/sweep"
)

// hwOverrides mirrors HWConfig's SRAM, DRAM, and MAC-array fields for
// partial YAML overrides of the default hardware configuration. The element
// widths (ActBytes, WeightBytes, AccBytes, OutputBytes) are not overridable.
type hwOverrides struct {
	SRAMTotalBytes        *int     `yaml:"sram_total_bytes"`
	DRAMPeakBWGbps        *float64 `yaml:"dram_peak_bw_gbps"`
	DRAMPageHitLatencyNs  *float64 `yaml:"dram_page_hit_latency_ns"`
	DRAMPageMissLatencyNs *float64 `yaml:"dram_page_miss_latency_ns"`
	DRAMBurstEfficiency   *float64 `yaml:"dram_burst_efficiency"`
	DRAMPageHitRate       *float64 `yaml:"dram_page_hit_rate"`
	MACArrayM             *int     `yaml:"mac_array_m"`
	MACArrayN             *int     `yaml:"mac_array_n"`
	MACFreqMHz            *int     `yaml:"mac_freq_mhz"`
}

// loadHWConfig reads a YAML file of partial hardware overrides and applies
// them on top of tiling.DefaultHWConfig. An empty path returns the default
// unmodified.
func loadHWConfig(path string) (tiling.HWConfig, error) {
	hw := tiling.DefaultHWConfig()
	if path == "" {
		return hw, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return hw, err
	}
	var overrides hwOverrides
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return hw, err
	}
	applyHWOverrides(&hw, overrides)
	return hw, nil
}

func applyHWOverrides(hw *tiling.HWConfig, o hwOverrides) {
	if o.SRAMTotalBytes != nil {
		hw.SRAMTotalBytes = *o.SRAMTotalBytes
	}
	if o.DRAMPeakBWGbps != nil {
		hw.DRAMPeakBWGbps = *o.DRAMPeakBWGbps
	}
	if o.DRAMPageHitLatencyNs != nil {
		hw.DRAMPageHitLatencyNs = *o.DRAMPageHitLatencyNs
	}
	if o.DRAMPageMissLatencyNs != nil {
		hw.DRAMPageMissLatencyNs = *o.DRAMPageMissLatencyNs
	}
	if o.DRAMBurstEfficiency != nil {
		hw.DRAMBurstEfficiency = *o.DRAMBurstEfficiency
	}
	if o.DRAMPageHitRate != nil {
		hw.DRAMPageHitRate = *o.DRAMPageHitRate
	}
	if o.MACArrayM != nil {
		hw.MACArrayM = *o.MACArrayM
	}
	if o.MACArrayN != nil {
		hw.MACArrayN = *o.MACArrayN
	}
	if o.MACFreqMHz != nil {
		hw.MACFreqMHz = *o.MACFreqMHz
	}
}

// modelOverrides is the YAML shape for partial overrides of a transformer
// ModelConfig, named the way the teacher's HuggingFace config loader names
// its fields but carrying the tiling-domain dimensions this repo needs.
type modelOverrides struct {
	Name             *string `yaml:"name"`
	NumLayers        *int    `yaml:"num_layers"`
	HiddenSize       *int    `yaml:"hidden_size"`
	NumQHeads        *int    `yaml:"num_q_heads"`
	NumKVHeads       *int    `yaml:"num_kv_heads"`
	IntermediateSize *int    `yaml:"intermediate_size"`
	HeadDim          *int    `yaml:"head_dim"`
}

// defaultModelConfig is a representative 8B-class transformer used when no
// model YAML is supplied.
func defaultModelConfig() sweep.ModelConfig {
	return sweep.ModelConfig{
		Name:             "reference-8b",
		NumLayers:        36,
		HiddenSize:       4096,
		NumQHeads:        32,
		NumKVHeads:       8,
		IntermediateSize: 12288,
		HeadDim:          128,
	}
}

// loadModelConfig reads a YAML file of partial transformer config overrides
// and applies them on top of defaultModelConfig. An empty path returns the
// default unmodified.
func loadModelConfig(path string) (sweep.ModelConfig, error) {
	model := defaultModelConfig()
	if path == "" {
		return model, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return model, err
	}
	var o modelOverrides
	if err := yaml.Unmarshal(data, &o); err != nil {
		return model, err
	}
	applyModelOverrides(&model, o)
	return model, nil
}

func applyModelOverrides(model *sweep.ModelConfig, o modelOverrides) {
	if o.Name != nil {
		model.Name = *o.Name
	}
	if o.NumLayers != nil {
		model.NumLayers = *o.NumLayers
	}
	if o.HiddenSize != nil {
		model.HiddenSize = *o.HiddenSize
	}
	if o.NumQHeads != nil {
		model.NumQHeads = *o.NumQHeads
	}
	if o.NumKVHeads != nil {
		model.NumKVHeads = *o.NumKVHeads
	}
	if o.IntermediateSize != nil {
		model.IntermediateSize = *o.IntermediateSize
	}
	if o.HeadDim != nil {
		model.HeadDim = *o.HeadDim
	}
}
