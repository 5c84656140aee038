package tracegen

// Suite builds the named workload suite used by the experiment
// orchestrator to compare baseline cache configurations against the
// optimizer, matching the original generator's default workload set.
func Suite(seed int64) map[string]Trace {
	r := NewFromSeed(seed)
	return map[string]Trace{
		"matmul_32":  MatrixMultiply(32, 0x10000),
		"matmul_64":  MatrixMultiply(64, 0x10000),
		"sort_1k":    Quicksort(1000, 0x20000, seed),
		"sort_5k":    Quicksort(5000, 0x20000, seed),
		"sequential": SequentialScan(5000, 1, 0x30000),
		"random":     Random(r, 5000, 5000, 0x40000),
		"stride_8":   Strided(5000, 8, 1, 0x50000),
		"mixed":      Mixed(r, 5000),
	}
}
