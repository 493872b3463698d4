package sim

import (
	"fmt"

	filter "github.com/milosgajdos/go-assimilate"
	"github.com/milosgajdos/go-assimilate/noise"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
)

// System is a linear time-invariant dynamical system whose state
// is observed directly with additive noise:
//
//	x[n+1] = M*x[n] + w[n]
//	y[n]   = x[n] + v[n]
type System struct {
	// M is state transition matrix
	M *mat.Dense
	// W is process noise
	W filter.Noise
	// V is observation noise
	V filter.Noise
}

// NewSystem creates System from model m drawing process and observation
// noise samples from src.
// It returns error if the noise for either covariance can not be created.
func NewSystem(m filter.Model, src rand.Source) (*System, error) {
	w, err := newNoise(m.Dim(), m.StateNoiseCov(), src)
	if err != nil {
		return nil, fmt.Errorf("process noise: %w", err)
	}

	v, err := newNoise(m.Dim(), m.OutputNoiseCov(), src)
	if err != nil {
		return nil, fmt.Errorf("observation noise: %w", err)
	}

	return &System{
		M: mat.DenseCopyOf(m.StateMatrix()),
		W: w,
		V: v,
	}, nil
}

// Dim returns the length of the system state.
func (s *System) Dim() int {
	n, _ := s.M.Dims()
	return n
}

// Propagate returns the next internal state given state x.
func (s *System) Propagate(x mat.Vector) (mat.Vector, error) {
	if x.Len() != s.Dim() {
		return nil, fmt.Errorf("invalid state vector length: %d", x.Len())
	}

	out := &mat.VecDense{}
	out.MulVec(s.M, x)
	out.AddVec(out, s.W.Sample())

	return out, nil
}

// Observe returns a noisy observation of every entity of state x.
func (s *System) Observe(x mat.Vector) (mat.Vector, error) {
	if x.Len() != s.Dim() {
		return nil, fmt.Errorf("invalid state vector length: %d", x.Len())
	}

	out := &mat.VecDense{}
	out.AddVec(x, s.V.Sample())

	return out, nil
}

// newNoise returns zero-mean Gaussian noise of size n with covariance cov.
func newNoise(n int, cov mat.Symmetric, src rand.Source) (filter.Noise, error) {
	return noise.NewGaussianWithSource(make([]float64, n), cov, src)
}
