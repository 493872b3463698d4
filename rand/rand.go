package rand

import (
	"fmt"
	"math"

	rnd "golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// NewSource returns a new random source seeded with seed.
func NewSource(seed uint64) rnd.Source {
	return rnd.NewSource(seed)
}

// WithCovN draws n random samples from a zero-mean Normal (aka Gaussian) distribution with covariance cov.
// It returns matrix which contains the randomly generated samples stored in its columns.
// It fails with error if n is non-positive or if SVD factorization of cov fails.
// If src is nil the global source is used.
func WithCovN(cov mat.Symmetric, n int, src rnd.Source) (*mat.Dense, error) {
	if n <= 0 {
		return nil, fmt.Errorf("invalid number of samples requested: %d", n)
	}

	// Use SVD instead of Cholesky as Cholesky can be numerically unstable if cov is (almost) singular
	var svd mat.SVD
	ok := svd.Factorize(cov, mat.SVDFull)
	if !ok {
		return nil, fmt.Errorf("SVD factorization failed")
	}

	U := new(mat.Dense)
	svd.UTo(U)
	vals := svd.Values(nil)
	for i := range vals {
		vals[i] = math.Sqrt(vals[i])
	}
	diag := mat.NewDiagDense(len(vals), vals)
	U.Mul(U, diag)

	rows := cov.SymmetricDim()
	samples := normals(rows, n, src)
	samples.Mul(U, samples)

	return samples, nil
}

// Cov returns random n x n symmetric positive definite matrix
// A*A'/n + eps*I where A has standard normal entries.
// It fails with error if n is non-positive or eps is negative.
func Cov(n int, eps float64, src rnd.Source) (*mat.SymDense, error) {
	if n <= 0 {
		return nil, fmt.Errorf("invalid covariance size: %d", n)
	}

	if eps < 0 {
		return nil, fmt.Errorf("invalid diagonal loading: %f", eps)
	}

	a := normals(n, n, src)
	cov := mat.NewSymDense(n, nil)
	cov.SymOuterK(1/float64(n), a)
	for i := 0; i < n; i++ {
		cov.SetSym(i, i, cov.At(i, i)+eps)
	}

	return cov, nil
}

// Mask returns rows x cols matrix of draws from a Bernoulli distribution
// with probability p: true entries occur with probability p.
// It fails with error if p is outside [0, 1] or dimensions are negative.
func Mask(rows, cols int, p float64, src rnd.Source) ([][]bool, error) {
	if rows < 0 || cols < 0 {
		return nil, fmt.Errorf("invalid mask dimensions: [%d x %d]", rows, cols)
	}

	if p < 0 || p > 1 || math.IsNaN(p) {
		return nil, fmt.Errorf("invalid probability: %f", p)
	}

	b := distuv.Bernoulli{P: p, Src: src}
	mask := make([][]bool, rows)
	for i := range mask {
		mask[i] = make([]bool, cols)
		for j := range mask[i] {
			mask[i][j] = b.Rand() == 1
		}
	}

	return mask, nil
}

func normals(rows, cols int, src rnd.Source) *mat.Dense {
	norm := distuv.Normal{Mu: 0, Sigma: 1, Src: src}
	data := make([]float64, rows*cols)
	for i := range data {
		data[i] = norm.Rand()
	}

	return mat.NewDense(rows, cols, data)
}
