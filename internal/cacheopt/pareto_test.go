package cacheopt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func isDominated(p Point2D, points []Point2D) bool {
	for _, q := range points {
		if q.X == p.X && q.Y == p.Y {
			continue
		}
		if q.X <= p.X && q.Y <= p.Y && (q.X < p.X || q.Y < p.Y) {
			return true
		}
	}
	return false
}

func TestExtractPareto_EveryEmittedPointNonDominated(t *testing.T) {
	points := []Point2D{
		{X: 1024, Y: 0.5}, {X: 2048, Y: 0.3}, {X: 4096, Y: 0.3},
		{X: 8192, Y: 0.1}, {X: 1024, Y: 0.9}, {X: 16384, Y: 0.2},
	}
	frontier := ExtractPareto(points)
	for _, p := range frontier {
		assert.False(t, isDominated(p, points), "emitted point %+v should not be dominated", p)
	}
}

func TestExtractPareto_EveryOmittedPointDominated(t *testing.T) {
	points := []Point2D{
		{X: 1024, Y: 0.5}, {X: 2048, Y: 0.3}, {X: 4096, Y: 0.35},
		{X: 8192, Y: 0.1}, {X: 1024, Y: 0.9},
	}
	frontier := ExtractPareto(points)
	frontierSet := make(map[Point2D]bool)
	for _, p := range frontier {
		frontierSet[p] = true
	}
	for _, p := range points {
		if !frontierSet[p] {
			assert.True(t, isDominated(p, points), "omitted point %+v should be dominated", p)
		}
	}
}

func TestExtractPareto_Empty(t *testing.T) {
	assert.Nil(t, ExtractPareto(nil))
}

func TestExtractParetoMaxY_MinimizesXMaximizesY(t *testing.T) {
	points := []Point2D{
		{X: 100, Y: 0.2}, {X: 200, Y: 0.5}, {X: 150, Y: 0.3}, {X: 300, Y: 0.9},
	}
	frontier := ExtractParetoMaxY(points)
	// 100/0.2 is not dominated (smallest X). 150/0.3 improves Y over 100's 0.2.
	// 200/0.5 improves further. 300/0.9 improves further still.
	assert.Len(t, frontier, 4)
	assert.Equal(t, 100.0, frontier[0].X)
	assert.Equal(t, 300.0, frontier[len(frontier)-1].X)
}

func TestExtractParetoMaxY_DominatedPointOmitted(t *testing.T) {
	points := []Point2D{
		{X: 100, Y: 0.9}, {X: 200, Y: 0.1},
	}
	frontier := ExtractParetoMaxY(points)
	assert.Len(t, frontier, 1)
	assert.Equal(t, 100.0, frontier[0].X)
}
