package estimate

import (
	"fmt"

	filter "github.com/milosgajdos/go-assimilate"
	"github.com/milosgajdos/go-assimilate/matrix"
	"gonum.org/v1/gonum/mat"
)

// Z95 is the standard normal quantile of a two-sided 95% confidence band
const Z95 = 1.96

// Base is base estimate
type Base struct {
	// val is estimated value
	val *mat.VecDense
	// cov is estimated covariance
	cov *mat.SymDense
}

// NewBase returns base estimate given val and covariance cov.
// It returns error if val and cov dimensions do not match.
func NewBase(val mat.Vector, cov mat.Symmetric) (*Base, error) {
	if val == nil || cov == nil {
		return nil, fmt.Errorf("invalid estimate: nil value or covariance")
	}

	rv := val.Len()
	rc := cov.SymmetricDim()
	if rv != rc {
		return nil, fmt.Errorf("invalid dimensions. Val: %d, Cov: %d x %d", rv, rc, rc)
	}

	v := &mat.VecDense{}
	v.CloneFromVec(val)

	c := mat.NewSymDense(rc, nil)
	c.CopySym(cov)

	return &Base{
		val: v,
		cov: c,
	}, nil
}

// Val returns estimated value
func (b *Base) Val() mat.Vector {
	v := &mat.VecDense{}
	v.CloneFromVec(b.val)

	return v
}

// Cov returns covariance estimate
func (b *Base) Cov() mat.Symmetric {
	cov := mat.NewSymDense(b.cov.SymmetricDim(), nil)
	cov.CopySym(b.cov)

	return cov
}

// Band returns confidence band val -/+ z*sigma where sigma are
// the standard deviations on the covariance diagonal.
func (b *Base) Band(z float64) (lo, hi []float64) {
	return Band(b, z)
}

// String implements the Stringer interface.
func (b *Base) String() string {
	return fmt.Sprintf("Estimate{\nVal=%v\nCov=%v\n}",
		mat.Formatted(b.val.T(), mat.Prefix("    "), mat.Squeeze()),
		mat.Formatted(b.cov, mat.Prefix("    "), mat.Squeeze()))
}

// Band returns confidence band of any estimate e.
func Band(e filter.Estimate, z float64) (lo, hi []float64) {
	val := e.Val()
	sd := matrix.StdDev(e.Cov())

	lo = make([]float64, len(sd))
	hi = make([]float64, len(sd))
	for i, s := range sd {
		lo[i] = val.AtVec(i) - z*s
		hi[i] = val.AtVec(i) + z*s
	}

	return lo, hi
}
