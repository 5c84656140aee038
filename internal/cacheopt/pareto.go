package cacheopt

import "sort"

// Point2D is a generic 2-D objective point carried through Pareto
// extraction. The concrete payload (a cache config + miss rate, or a
// GEMMCost) is attached via Data so callers can recover the full record
// after filtering.
type Point2D struct {
	X, Y float64
	Data any
}

// ExtractPareto computes the non-dominated subset of points under the
// convention "minimize X, minimize Y" (ExtractParetoMaxY handles the
// "maximize Y" convention). Ties on X keep the point with the
// better Y. Algorithm: sort ascending by X, walk in order keeping the best
// Y seen so far, emit whenever Y strictly improves.
func ExtractPareto(points []Point2D) []Point2D {
	if len(points) == 0 {
		return nil
	}
	sorted := make([]Point2D, len(points))
	copy(sorted, points)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].X != sorted[j].X {
			return sorted[i].X < sorted[j].X
		}
		return sorted[i].Y < sorted[j].Y
	})

	var frontier []Point2D
	var bestY float64
	first := true
	for _, p := range sorted {
		if first || p.Y < bestY {
			frontier = append(frontier, p)
			bestY = p.Y
			first = false
		}
	}
	return frontier
}

// ExtractParetoMaxY computes the non-dominated subset under "minimize X,
// maximize Y" — the convention used by the tiling frontier (DRAM down,
// utilization up). Sort ascending by X, track the running maximum Y, emit
// whenever Y strictly improves.
func ExtractParetoMaxY(points []Point2D) []Point2D {
	if len(points) == 0 {
		return nil
	}
	sorted := make([]Point2D, len(points))
	copy(sorted, points)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].X != sorted[j].X {
			return sorted[i].X < sorted[j].X
		}
		return sorted[i].Y > sorted[j].Y
	})

	var frontier []Point2D
	bestY := -1.0
	first := true
	for _, p := range sorted {
		if first || p.Y > bestY {
			frontier = append(frontier, p)
			bestY = p.Y
			first = false
		}
	}
	return frontier
}
