package rts

import (
	"fmt"

	filter "github.com/milosgajdos/go-assimilate"
	"github.com/milosgajdos/go-assimilate/estimate"
	"github.com/milosgajdos/go-assimilate/kalman/kf"
	"github.com/milosgajdos/go-assimilate/matrix"
	"gonum.org/v1/gonum/mat"
)

// RTS is Rauch-Tung-Striebel smoother
type RTS struct {
	// m is system model
	m filter.Model
}

// New creates new RTS and returns it.
// It returns error if m has invalid dimensions.
func New(m filter.Model) (*RTS, error) {
	if m == nil {
		return nil, fmt.Errorf("nil model: %w", filter.ErrDimensionMismatch)
	}

	n := m.Dim()
	rows, cols := m.StateMatrix().Dims()
	if n <= 0 || rows != n || cols != n {
		return nil, fmt.Errorf("invalid model dimensions: [%d x %d]: %w", rows, cols, filter.ErrDimensionMismatch)
	}

	return &RTS{
		m: m,
	}, nil
}

// Smooth implements Rauch-Tung-Striebel smoothing algorithm.
// It runs backwards over the forecasts and analyses stored in res and
// returns one smoothed estimate per time step. The last smoothed
// estimate equals the last analysis.
// It returns error if res is nil, does not match the model dimension,
// or a forecast covariance can not be inverted.
func (s *RTS) Smooth(res *kf.Result) ([]filter.Estimate, error) {
	if res == nil {
		return nil, fmt.Errorf("invalid filter result: nil")
	}

	steps := res.Len()
	if steps == 0 {
		return []filter.Estimate{}, nil
	}

	an := res.Analyses()
	fc := res.Forecasts()

	n := s.m.Dim()
	if an[0].Val().Len() != n {
		return nil, fmt.Errorf("invalid estimate dimension: %d != %d: %w", an[0].Val().Len(), n, filter.ErrDimensionMismatch)
	}

	M := s.m.StateMatrix()
	sx := make([]filter.Estimate, steps)
	sx[steps-1] = an[steps-1]

	for t := steps - 2; t >= 0; t-- {
		pa := an[t].Cov()
		pf := fc[t+1].Cov()

		// C' = P_f(t+1)^-1 * M * P_a(t)
		mp := &mat.Dense{}
		mp.Mul(M, pa)

		var chol mat.Cholesky
		if ok := chol.Factorize(pf); !ok {
			return nil, &filter.StepError{
				Step: t + 2,
				Err:  fmt.Errorf("forecast covariance is not positive definite: %w", filter.ErrInvalidCovariance),
			}
		}
		ct := &mat.Dense{}
		if err := chol.SolveTo(ct, mp); err != nil {
			return nil, &filter.StepError{Step: t + 2, Err: fmt.Errorf("%v: %w", err, filter.ErrInvalidCovariance)}
		}
		c := ct.T()

		// smooth the state: x_a + C*(x_s - x_f)
		dx := &mat.VecDense{}
		dx.SubVec(sx[t+1].Val(), fc[t+1].Val())
		x := &mat.VecDense{}
		x.MulVec(c, dx)
		x.AddVec(an[t].Val(), x)

		// smooth covariance: P_a + C*(P_s - P_f)*C'
		dp := &mat.Dense{}
		dp.Sub(sx[t+1].Cov(), pf)
		pk := &mat.Dense{}
		pk.Mul(c, dp)
		pk.Mul(pk, ct)
		pk.Add(pa, pk)

		e, err := estimate.NewBase(x, matrix.Symmetrize(pk))
		if err != nil {
			return nil, err
		}
		sx[t] = e
	}

	return sx, nil
}
