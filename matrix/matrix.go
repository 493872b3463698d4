package matrix

import (
	"fmt"
	"math"

	mx "github.com/milosgajdos/matrix"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Identity returns n x n identity matrix.
// It returns error if n is non-positive.
func Identity(n int) (*mat.Dense, error) {
	if n <= 0 {
		return nil, fmt.Errorf("invalid identity size: %d", n)
	}

	return mx.NewDenseValIdentity(n, 1.0)
}

// SelectRows returns len(idx) x n matrix whose rows are the rows
// of the n x n identity matrix selected by idx, in the order given.
// Multiplying it with a state vector picks the entities listed in idx.
// It returns error if idx is empty or any index is out of range.
func SelectRows(n int, idx []int) (*mat.Dense, error) {
	if len(idx) == 0 {
		return nil, fmt.Errorf("empty row selection")
	}

	h := mat.NewDense(len(idx), n, nil)
	for r, i := range idx {
		if i < 0 || i >= n {
			return nil, fmt.Errorf("row index %d out of range [0, %d)", i, n)
		}
		h.Set(r, i, 1.0)
	}

	return h, nil
}

// Symmetrize returns (m + m')/2 as a symmetric matrix.
// It panics if m is not square.
func Symmetrize(m mat.Matrix) *mat.SymDense {
	r, c := m.Dims()
	if r != c {
		panic(mat.ErrSquare)
	}

	s := mat.NewSymDense(r, nil)
	for i := 0; i < r; i++ {
		for j := i; j < r; j++ {
			s.SetSym(i, j, 0.5*(m.At(i, j)+m.At(j, i)))
		}
	}

	return s
}

// MaxAsymmetry returns the largest absolute difference between m[i,j] and m[j,i].
// It panics if m is not square.
func MaxAsymmetry(m mat.Matrix) float64 {
	r, c := m.Dims()
	if r != c {
		panic(mat.ErrSquare)
	}

	var max float64
	for i := 0; i < r; i++ {
		for j := i + 1; j < r; j++ {
			max = math.Max(max, math.Abs(m.At(i, j)-m.At(j, i)))
		}
	}

	return max
}

// IsSymmetric returns true if m is square and symmetric within eps.
func IsSymmetric(m mat.Matrix, eps float64) bool {
	r, c := m.Dims()
	if r != c {
		return false
	}

	return MaxAsymmetry(m) <= eps
}

// IsPSD returns true if all eigenvalues of s are no smaller than -tol.
// Non-finite entries or a failed eigen decomposition report false.
func IsPSD(s mat.Symmetric, tol float64) bool {
	n := s.SymmetricDim()
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			v := s.At(i, j)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return false
			}
		}
	}

	var es mat.EigenSym
	if ok := es.Factorize(s, false); !ok {
		return false
	}

	return floats.Min(es.Values(nil)) >= -tol
}

// Diag returns diagonal of s.
func Diag(s mat.Symmetric) []float64 {
	n := s.SymmetricDim()
	d := make([]float64, n)
	for i := range d {
		d[i] = s.At(i, i)
	}

	return d
}

// StdDev returns square roots of the diagonal of covariance s.
// Tiny negative variances caused by rounding are clamped to zero.
func StdDev(s mat.Symmetric) []float64 {
	d := Diag(s)
	for i := range d {
		d[i] = math.Sqrt(math.Max(d[i], 0))
	}

	return d
}
