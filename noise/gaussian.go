package noise

import (
	"fmt"
	"time"

	"github.com/milosgajdos/go-assimilate/model"
	"github.com/milosgajdos/go-assimilate/rand"
	rnd "golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distmv"
)

// Gaussian is gaussian noise with positive semi-definite covariance.
// Positive definite covariances are sampled from a multivariate normal
// distribution, singular ones through the SVD of the covariance and
// all-zero ones always sample the mean.
type Gaussian struct {
	// dist is a multivariate normal distribution; nil if cov is singular
	dist *distmv.Normal
	// src is the source of singular covariance samples
	src rnd.Source
	// mean is Gaussian mean
	mean []float64
	// cov is Gaussian covariance
	cov *mat.SymDense
	// zero is true if cov has no non-zero entry
	zero bool
}

// NewGaussian creates new Gaussian noise with given mean and covariance
// seeded from the current time.
// It returns error if it fails to create Gaussian.
func NewGaussian(mean []float64, cov mat.Symmetric) (*Gaussian, error) {
	return NewGaussianWithSource(mean, cov, rand.NewSource(uint64(time.Now().UnixNano())))
}

// NewGaussianWithSource creates new Gaussian noise with given mean and covariance
// drawing samples from src.
// It returns error if mean and cov dimensions differ or cov is not positive semi-definite.
func NewGaussianWithSource(mean []float64, cov mat.Symmetric, src rnd.Source) (*Gaussian, error) {
	if cov == nil || len(mean) == 0 || len(mean) != cov.SymmetricDim() {
		return nil, fmt.Errorf("invalid Gaussian noise dimensions")
	}

	c, err := model.ToCov("noise covariance", cov)
	if err != nil {
		return nil, err
	}

	m := make([]float64, len(mean))
	copy(m, mean)

	g := &Gaussian{
		src:  src,
		mean: m,
		cov:  c,
		zero: mat.Norm(c, 1) == 0,
	}

	if dist, ok := distmv.NewNormal(m, c, src); ok {
		g.dist = dist
	}

	return g, nil
}

// NewZero creates new zero noise i.e. zero mean and zero covariance.
// It returns error if size is non-positive.
func NewZero(size int) (*Gaussian, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid noise dimension: %d", size)
	}

	return NewGaussianWithSource(make([]float64, size), mat.NewSymDense(size, nil), nil)
}

// Sample generates a sample from Gaussian noise and returns it.
func (g *Gaussian) Sample() mat.Vector {
	switch {
	case g.zero:
		return mat.NewVecDense(len(g.mean), g.Mean())
	case g.dist != nil:
		r := g.dist.Rand(nil)
		return mat.NewVecDense(len(r), r)
	}

	// cov was checked to be positive semi-definite so its SVD exists
	s, err := rand.WithCovN(g.cov, 1, g.src)
	if err != nil {
		panic(err)
	}

	out := mat.NewVecDense(len(g.mean), g.Mean())
	out.AddVec(out, s.ColView(0))

	return out
}

// Cov returns covariance matrix of Gaussian noise.
func (g *Gaussian) Cov() mat.Symmetric {
	cov := mat.NewSymDense(g.cov.SymmetricDim(), nil)
	cov.CopySym(g.cov)

	return cov
}

// Mean returns Gaussian mean.
func (g *Gaussian) Mean() []float64 {
	mean := make([]float64, len(g.mean))
	copy(mean, g.mean)

	return mean
}

// IsSingular returns true if Gaussian covariance is not positive definite.
func (g *Gaussian) IsSingular() bool {
	return g.dist == nil
}

// String implements the Stringer interface.
func (g *Gaussian) String() string {
	return fmt.Sprintf("Gaussian{\nMean=%v\nCov=%v\n}", g.mean, mat.Formatted(g.cov, mat.Prefix("    "), mat.Squeeze()))
}
