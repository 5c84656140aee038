package cachesim

// Stats aggregates hit/miss counters for a simulation run.
// Invariant: Hits + Misses == Accesses.
type Stats struct {
	Hits      int
	Misses    int
	Accesses  int
}

// MissRate returns Misses/Accesses, or 0 for an empty trace (EC: EmptyTrace).
func (s Stats) MissRate() float64 {
	if s.Accesses == 0 {
		return 0.0
	}
	return float64(s.Misses) / float64(s.Accesses)
}

// HitRate returns Hits/Accesses, or 0 for an empty trace.
func (s Stats) HitRate() float64 {
	if s.Accesses == 0 {
		return 0.0
	}
	return float64(s.Hits) / float64(s.Accesses)
}
