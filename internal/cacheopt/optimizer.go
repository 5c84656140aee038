package cacheopt

import (
	"math"
	"math/rand"

	"github.com/tiledse/tiledse/internal/cachesim"
	"github.com/tiledse/tiledse/internal/cachesim/tracegen"
	"github.com/tiledse/tiledse/internal/rng"
)

// HistoryEntry records one evaluated configuration in call order.
type HistoryEntry struct {
	Config   cachesim.CacheConfig `json:"config"`
	MissRate float64              `json:"miss_rate"`
}

// Result bundles the outcome of an OptimizeCache run.
type Result struct {
	BestConfig cachesim.CacheConfig
	BestMiss   float64
	History    []HistoryEntry
	Pareto     []HistoryEntry // Pareto frontier on (cache_size, miss_rate)
}

// Options configures one optimizer run.
type Options struct {
	MaxCacheBytes int
	MinCacheBytes int
	NCalls        int // total evaluations, default 50
	NInitial      int // seed-phase samples, default 10
	Acquisition   Acquisition
	Seed          int64
}

// DefaultOptions returns the configuration surface defaults from SPEC_FULL.md §6.
func DefaultOptions(maxCacheBytes int, seed int64) Options {
	return Options{
		MaxCacheBytes: maxCacheBytes,
		MinCacheBytes: 1024,
		NCalls:        50,
		NInitial:      10,
		Acquisition:   EI,
		Seed:          seed,
	}
}

// exponentSpace is the discrete 3-D search space described in spec.md §4.D.
type exponentSpace struct {
	cacheSizeExpMin, cacheSizeExpMax int
	blockSizeExpMin, blockSizeExpMax int
	assocExpMin, assocExpMax         int
}

func newExponentSpace(maxCacheBytes int) exponentSpace {
	maxExp := int(math.Log2(float64(maxCacheBytes)))
	if maxExp < 10 {
		maxExp = 10
	}
	return exponentSpace{
		cacheSizeExpMin: 10, cacheSizeExpMax: maxExp,
		blockSizeExpMin: 4, blockSizeExpMax: 9,
		assocExpMin: 0, assocExpMax: 4,
	}
}

func (s exponentSpace) lengthScales() dim3 {
	ls := dim3{
		float64(s.cacheSizeExpMax-s.cacheSizeExpMin) / 2,
		float64(s.blockSizeExpMax-s.blockSizeExpMin) / 2,
		float64(s.assocExpMax-s.assocExpMin) / 2,
	}
	for i := range ls {
		if ls[i] <= 0 {
			ls[i] = 1
		}
	}
	return ls
}

// point is one candidate in the exponent space.
type point struct {
	cacheSizeExp, blockSizeExp, assocExp int
}

func (p point) toDim3() dim3 {
	return dim3{float64(p.cacheSizeExp), float64(p.blockSizeExp), float64(p.assocExp)}
}

// decode converts an exponent-space point into a concrete CacheConfig,
// clamping cache_size to the configured cap and associativity to
// cache_size/block_size, per spec.md §4.D.
func decode(p point, maxCacheBytes int) cachesim.CacheConfig {
	cacheSize := 1 << uint(p.cacheSizeExp)
	blockSize := 1 << uint(p.blockSizeExp)
	assoc := 1 << uint(p.assocExp)

	if cacheSize > maxCacheBytes {
		cacheSize = maxCacheBytes
	}
	numBlocks := cacheSize / blockSize
	if numBlocks < 1 {
		numBlocks = 1
	}
	if assoc > numBlocks {
		assoc = numBlocks
	}
	return cachesim.CacheConfig{CacheSize: cacheSize, BlockSize: blockSize, Associativity: assoc}
}

// encode finds the exponent triple that would decode back to cfg, used by
// the round-trip property test. Only meaningful for powers-of-two in range.
func encode(cfg cachesim.CacheConfig) point {
	return point{
		cacheSizeExp: log2(cfg.CacheSize),
		blockSizeExp: log2(cfg.BlockSize),
		assocExp:     log2(cfg.Associativity),
	}
}

func log2(v int) int {
	e := 0
	for v > 1 {
		v >>= 1
		e++
	}
	return e
}

// allCandidates enumerates every point in the space.
func allCandidates(space exponentSpace) []point {
	var pts []point
	for cs := space.cacheSizeExpMin; cs <= space.cacheSizeExpMax; cs++ {
		for bs := space.blockSizeExpMin; bs <= space.blockSizeExpMax; bs++ {
			for as := space.assocExpMin; as <= space.assocExpMax; as++ {
				pts = append(pts, point{cs, bs, as})
			}
		}
	}
	return pts
}

// maxSampleTrials bounds the random-sampling fallback used when the
// discrete space is too large to enumerate exhaustively.
const maxSampleTrials = 1000

// enumerationCap is the largest space size the optimizer will enumerate
// exhaustively before falling back to random sampling.
const enumerationCap = 5000

// objectiveFunc evaluates a candidate cache configuration and returns its
// miss rate. Both OptimizeCache (trace-driven) and OptimizeSynthetic
// (closed-form demonstration objective) supply one to the shared loop.
type objectiveFunc func(cachesim.CacheConfig) float64

// OptimizeCache runs sequential model-based optimization (Bayesian
// optimization) to discover the cache geometry minimizing miss rate on
// trace, subject to a capacity cap. See spec.md §4.D.
func OptimizeCache(opts Options, trace tracegen.Trace) Result {
	return runOptimization(opts, func(cfg cachesim.CacheConfig) float64 {
		return evaluateForOptimizer(cfg, trace)
	})
}

// SyntheticObjective is the demonstration objective used for the
// deterministic-convergence test (spec.md §8 E6):
//
//	f(size, block, assoc) = 0.5/(size/1024) + 0.3/assoc + 0.2*(block/64)^2
func SyntheticObjective(cfg cachesim.CacheConfig) float64 {
	sizeTerm := 0.5 / (float64(cfg.CacheSize) / 1024)
	assocTerm := 0.3 / float64(cfg.Associativity)
	blockTerm := 0.2 * math.Pow(float64(cfg.BlockSize)/64, 2)
	v := sizeTerm + assocTerm + blockTerm
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// OptimizeSynthetic runs the same search loop as OptimizeCache but against
// SyntheticObjective instead of a trace-driven evaluator, for tests and
// demonstrations that do not need a concrete workload.
func OptimizeSynthetic(opts Options) Result {
	return runOptimization(opts, SyntheticObjective)
}

// runOptimization is the sequential model-based optimization loop shared
// by OptimizeCache and OptimizeSynthetic: seed phase, GP surrogate fit,
// acquisition-based selection, evaluate/append/refit until n_calls.
func runOptimization(opts Options, objective objectiveFunc) Result {
	space := newExponentSpace(opts.MaxCacheBytes)
	candidates := allCandidates(space)
	lengthScales := space.lengthScales()

	partitioned := rng.NewPartitioned(rng.NewKey(opts.Seed))
	r := partitioned.For(rng.SubsystemOptimizer)

	evaluated := make(map[point]float64)
	var history []HistoryEntry
	var xs []dim3
	var ys []float64

	bestMiss := math.Inf(1)
	var bestCfg cachesim.CacheConfig

	record := func(p point) {
		cfg := decode(p, opts.MaxCacheBytes)
		missRate, seen := evaluated[p]
		if !seen {
			missRate = objective(cfg)
			evaluated[p] = missRate
		}
		history = append(history, HistoryEntry{Config: cfg, MissRate: missRate})
		xs = append(xs, p.toDim3())
		ys = append(ys, missRate)
		if missRate < bestMiss {
			bestMiss = missRate
			bestCfg = cfg
		}
	}

	// Seed phase: uniform sampling of n_initial candidates.
	nInitial := opts.NInitial
	if nInitial > opts.NCalls {
		nInitial = opts.NCalls
	}
	for _, p := range samplePoints(r, candidates, nInitial) {
		record(p)
	}

	for len(history) < opts.NCalls {
		gp := newGaussianProcess(xs, ys, lengthScales)
		best := selectNext(r, candidates, evaluated, gp, opts.Acquisition, bestMiss)
		record(best)
	}

	return Result{
		BestConfig: bestCfg,
		BestMiss:   bestMiss,
		History:    history,
		Pareto:     extractCachePareto(history),
	}
}

// samplePoints draws n distinct candidates uniformly without replacement
// (quasi-random seed-phase sampling per spec.md §4.D step 1).
func samplePoints(r *rand.Rand, candidates []point, n int) []point {
	if n >= len(candidates) {
		shuffled := append([]point(nil), candidates...)
		r.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		return shuffled
	}
	idxs := r.Perm(len(candidates))[:n]
	pts := make([]point, n)
	for i, idx := range idxs {
		pts[i] = candidates[idx]
	}
	return pts
}

// selectNext enumerates (or samples, if the space is large) candidates not
// already evaluated and returns the one maximizing acquisition value. When
// the surrogate is not ready, it returns an unevaluated candidate drawn
// uniformly at random instead.
func selectNext(r *rand.Rand, candidates []point, evaluated map[point]float64, gp *gaussianProcess, acq Acquisition, fBest float64) point {
	pool := candidates
	if len(candidates) > enumerationCap {
		pool = samplePoints(r, candidates, maxSampleTrials)
	}

	if !gp.ready {
		var unevaluated []point
		for _, p := range pool {
			if _, ok := evaluated[p]; !ok {
				unevaluated = append(unevaluated, p)
			}
		}
		if len(unevaluated) > 0 {
			return unevaluated[r.Intn(len(unevaluated))]
		}
	}

	var bestPoint point
	bestScore := math.Inf(-1)
	found := false
	for _, p := range pool {
		if _, ok := evaluated[p]; ok {
			continue
		}
		mean, std := gp.predict(p.toDim3())
		score := acquisitionValue(acq, mean, std, fBest)
		if !found || score > bestScore {
			bestScore = score
			bestPoint = p
			found = true
		}
	}
	if found {
		return bestPoint
	}
	// Every enumerated candidate has been evaluated; repeat suggestions are
	// permitted (the cached value is reused without re-simulating).
	return samplePoints(r, candidates, 1)[0]
}

// extractCachePareto extracts the (cache_size minimize, miss_rate
// minimize) Pareto frontier from the optimizer's evaluation history.
func extractCachePareto(history []HistoryEntry) []HistoryEntry {
	points := make([]Point2D, len(history))
	for i, h := range history {
		points[i] = Point2D{X: float64(h.Config.CacheSize), Y: h.MissRate, Data: h}
	}
	frontier := ExtractPareto(points)
	out := make([]HistoryEntry, len(frontier))
	for i, p := range frontier {
		out[i] = p.Data.(HistoryEntry)
	}
	return out
}
