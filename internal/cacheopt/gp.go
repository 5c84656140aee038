package cacheopt

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// dim3 is a point in the continuous relaxation of the 3-D exponent space
// (cache_size_exp, block_size_exp, assoc_exp).
type dim3 [3]float64

// gaussianProcess is a Matern-5/2 (nu=2.5) surrogate over the continuous
// exponent space. Each dimension has its own fixed length scale supplied by
// the caller; the length scales are not fit to the data. Only the noise
// variance is fit, by grid search (no gradient-based hyperparameter
// optimization — see SPEC_FULL.md's note on not assuming a particular
// mathematical library).
type gaussianProcess struct {
	xs           []dim3
	ys           []float64
	lengthScales dim3
	signalVar    float64
	noiseVar     float64

	chol  mat.Cholesky
	alpha *mat.VecDense
	ready bool
}

// newGaussianProcess fits a surrogate to the observed (x, y) pairs. If
// fewer observations than dimensions (3) are available, the surrogate is
// left unready — callers must fall back to random sampling per SPEC_FULL.md.
func newGaussianProcess(xs []dim3, ys []float64, lengthScales dim3) *gaussianProcess {
	gp := &gaussianProcess{xs: xs, ys: ys, lengthScales: lengthScales, signalVar: 1.0}
	if len(xs) < 3 {
		return gp
	}
	gp.noiseVar = fitNugget(xs, ys, lengthScales, gp.signalVar)
	gp.fit()
	return gp
}

// fitNugget performs a small grid search over candidate noise variances,
// picking the one maximizing the Gaussian marginal likelihood. This is the
// "nugget term" fit by maximum likelihood named in the spec, implemented
// as a closed-form grid search rather than a gradient solve.
func fitNugget(xs []dim3, ys []float64, lengthScales dim3, signalVar float64) float64 {
	candidates := []float64{1e-6, 1e-4, 1e-3, 1e-2, 1e-1}
	bestNoise := candidates[0]
	bestLL := math.Inf(-1)
	for _, noise := range candidates {
		ll := logMarginalLikelihood(xs, ys, lengthScales, signalVar, noise)
		if ll > bestLL {
			bestLL = ll
			bestNoise = noise
		}
	}
	return bestNoise
}

func logMarginalLikelihood(xs []dim3, ys []float64, lengthScales dim3, signalVar, noiseVar float64) float64 {
	n := len(xs)
	k := buildKernelMatrix(xs, lengthScales, signalVar, noiseVar)
	sym := mat.NewSymDense(n, k)

	var chol mat.Cholesky
	if ok := chol.Factorize(sym); !ok {
		return math.Inf(-1)
	}

	y := mat.NewVecDense(n, ys)
	var alpha mat.VecDense
	if err := chol.SolveVecTo(&alpha, y); err != nil {
		return math.Inf(-1)
	}

	dataFit := -0.5 * mat.Dot(y, &alpha)
	complexity := -0.5 * chol.LogDet()
	normConst := -0.5 * float64(n) * math.Log(2*math.Pi)
	return dataFit + complexity + normConst
}

func buildKernelMatrix(xs []dim3, lengthScales dim3, signalVar, noiseVar float64) []float64 {
	n := len(xs)
	data := make([]float64, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			v := matern52(xs[i], xs[j], lengthScales, signalVar)
			if i == j {
				v += noiseVar
			}
			data[i*n+j] = v
		}
	}
	return data
}

func (gp *gaussianProcess) fit() {
	n := len(gp.xs)
	k := buildKernelMatrix(gp.xs, gp.lengthScales, gp.signalVar, gp.noiseVar)
	sym := mat.NewSymDense(n, k)
	if ok := gp.chol.Factorize(sym); !ok {
		return
	}
	y := mat.NewVecDense(n, gp.ys)
	var alpha mat.VecDense
	if err := gp.chol.SolveVecTo(&alpha, y); err != nil {
		return
	}
	gp.alpha = &alpha
	gp.ready = true
}

// predict returns the posterior mean and standard deviation at x.
// When the surrogate is not ready (too few observations), it returns a
// zero mean and an infinite standard deviation, signaling "no information"
// to the acquisition function.
func (gp *gaussianProcess) predict(x dim3) (mean, std float64) {
	if !gp.ready {
		return 0, math.Inf(1)
	}
	n := len(gp.xs)
	kStarData := make([]float64, n)
	for i, xi := range gp.xs {
		kStarData[i] = matern52(x, xi, gp.lengthScales, gp.signalVar)
	}
	kStar := mat.NewVecDense(n, kStarData)

	mean = mat.Dot(kStar, gp.alpha)

	var v mat.VecDense
	if err := gp.chol.SolveVecTo(&v, kStar); err != nil {
		return mean, 0
	}
	kStarStar := matern52(x, x, gp.lengthScales, gp.signalVar)
	variance := kStarStar - mat.Dot(kStar, &v)
	if variance < 0 {
		variance = 0
	}
	return mean, math.Sqrt(variance)
}

// matern52 computes the Matern kernel with nu=2.5 between two points,
// scaling each dimension by its own length scale:
// r^2 = sum((xi-xi')^2 / l_i^2). The kernel is isotropic only when all
// three length scales are equal.
func matern52(a, b, lengthScales dim3, signalVar float64) float64 {
	r2 := 0.0
	for i := 0; i < 3; i++ {
		d := (a[i] - b[i]) / lengthScales[i]
		r2 += d * d
	}
	r := math.Sqrt(r2)
	sqrt5r := math.Sqrt(5) * r
	return signalVar * (1 + sqrt5r + (5.0/3.0)*r2) * math.Exp(-sqrt5r)
}
