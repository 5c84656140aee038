package cacheopt

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGaussianProcess_NotReadyBelowThreeObservations(t *testing.T) {
	xs := []dim3{{0, 0, 0}, {1, 1, 1}}
	ys := []float64{0.5, 0.3}
	gp := newGaussianProcess(xs, ys, dim3{1, 1, 1})
	mean, std := gp.predict(dim3{2, 2, 2})
	assert.Equal(t, 0.0, mean)
	assert.True(t, math.IsInf(std, 1))
}

func TestGaussianProcess_PredictsObservedPointsNearExactly(t *testing.T) {
	xs := []dim3{{0, 0, 0}, {5, 3, 2}, {10, 6, 4}, {2, 1, 1}}
	ys := []float64{0.8, 0.4, 0.1, 0.6}
	gp := newGaussianProcess(xs, ys, dim3{5, 3, 2})
	require.True(t, gp.ready)
	mean, std := gp.predict(xs[1])
	assert.InDelta(t, ys[1], mean, 0.2)
	assert.GreaterOrEqual(t, std, 0.0)
}

func TestGaussianProcess_VarianceGrowsWithDistance(t *testing.T) {
	xs := []dim3{{0, 0, 0}, {5, 3, 2}, {10, 6, 4}, {2, 1, 1}}
	ys := []float64{0.8, 0.4, 0.1, 0.6}
	gp := newGaussianProcess(xs, ys, dim3{5, 3, 2})
	_, stdNear := gp.predict(dim3{0, 0, 0})
	_, stdFar := gp.predict(dim3{100, 100, 100})
	assert.Greater(t, stdFar, stdNear)
}

func TestMatern52_ZeroAtIdenticalPoints_PeaksAtSignalVar(t *testing.T) {
	ls := dim3{1, 1, 1}
	v := matern52(dim3{1, 2, 3}, dim3{1, 2, 3}, ls, 2.0)
	assert.InDelta(t, 2.0, v, 1e-9)
}

func TestMatern52_DecreasesWithDistance(t *testing.T) {
	ls := dim3{1, 1, 1}
	near := matern52(dim3{0, 0, 0}, dim3{1, 0, 0}, ls, 1.0)
	far := matern52(dim3{0, 0, 0}, dim3{5, 0, 0}, ls, 1.0)
	assert.Greater(t, near, far)
}

func TestFitNugget_PicksFromCandidateGrid(t *testing.T) {
	xs := []dim3{{0, 0, 0}, {5, 3, 2}, {10, 6, 4}}
	ys := []float64{0.8, 0.4, 0.1}
	noise := fitNugget(xs, ys, dim3{5, 3, 2}, 1.0)
	candidates := map[float64]bool{1e-6: true, 1e-4: true, 1e-3: true, 1e-2: true, 1e-1: true}
	assert.True(t, candidates[noise])
}
