package kf

import (
	"fmt"
	"math"

	filter "github.com/milosgajdos/go-assimilate"
	"github.com/milosgajdos/go-assimilate/estimate"
	"github.com/milosgajdos/go-assimilate/matrix"
	"github.com/milosgajdos/go-assimilate/model"
	"github.com/milosgajdos/go-assimilate/obs"
	"gonum.org/v1/gonum/mat"
)

// KF is a batch linear Kalman Filter for partially observed entity states.
// KF holds no per-run state: a single KF can run any number of
// observation matrices, including concurrently.
type KF struct {
	// m is KF system model
	m filter.Model
	// init is initial condition of every run
	init *estimate.Base
}

// New creates new KF and returns it.
// It accepts the following parameters:
//   - m:    linear time-invariant model (M, Q, R)
//   - init: initial condition of the filter (mu0, P0)
//
// It returns error if either of the following conditions is met:
//   - model matrices and initial condition do not share the same dimension
//   - any of P0, Q, R is not symmetric positive semi-definite
func New(m filter.Model, init filter.InitCond) (*KF, error) {
	if m == nil || init == nil {
		return nil, fmt.Errorf("nil model or initial condition: %w", filter.ErrDimensionMismatch)
	}

	n := m.Dim()
	if n <= 0 {
		return nil, fmt.Errorf("invalid model dimension: %d: %w", n, filter.ErrDimensionMismatch)
	}

	rows, cols := m.StateMatrix().Dims()
	if rows != n || cols != n {
		return nil, fmt.Errorf("invalid transition matrix dimensions: [%d x %d]: %w",
			rows, cols, filter.ErrDimensionMismatch)
	}

	for _, c := range []struct {
		name string
		cov  mat.Symmetric
	}{
		{name: "P0", cov: init.Cov()},
		{name: "Q", cov: m.StateNoiseCov()},
		{name: "R", cov: m.OutputNoiseCov()},
	} {
		if c.cov.SymmetricDim() != n {
			return nil, fmt.Errorf("invalid %s dimension: %d != %d: %w",
				c.name, c.cov.SymmetricDim(), n, filter.ErrDimensionMismatch)
		}
		if _, err := model.ToCov(c.name, c.cov); err != nil {
			return nil, err
		}
	}

	if init.State().Len() != n {
		return nil, fmt.Errorf("invalid initial state length: %d != %d: %w",
			init.State().Len(), n, filter.ErrDimensionMismatch)
	}

	est, err := estimate.NewBase(init.State(), init.Cov())
	if err != nil {
		return nil, err
	}

	return &KF{
		m:    m,
		init: est,
	}, nil
}

// Run runs the filter over all time steps of y and returns the result.
// y rows are entities and columns are time steps.
// It returns error if y does not have one row per model entity or if any
// step fails; failed runs return no partial result. Step failures are
// reported as *filter.StepError carrying the 1-based step index.
func (k *KF) Run(y *obs.Matrix) (*Result, error) {
	if y == nil {
		return nil, fmt.Errorf("nil observations: %w", filter.ErrDimensionMismatch)
	}

	entities, steps := y.Dims()
	if entities != k.m.Dim() {
		return nil, fmt.Errorf("invalid number of observed entities: %d != %d: %w",
			entities, k.m.Dim(), filter.ErrDimensionMismatch)
	}

	r := k.m.OutputNoiseCov()
	res := make([]Step, 0, steps)

	fc := k.init
	for t := 0; t < steps; t++ {
		idx, yt := y.Observed(t)

		// a nil *mat.VecDense must reach Analyze as a nil mat.Vector
		var ym mat.Vector
		if yt != nil {
			ym = yt
		}

		step, err := Analyze(fc, r, idx, ym)
		if err != nil {
			return nil, &filter.StepError{Step: t + 1, Err: err}
		}
		step.time = t + 1

		next, err := Forecast(step.analysis, k.m)
		if err != nil {
			return nil, &filter.StepError{Step: t + 1, Err: err}
		}

		res = append(res, *step)
		fc = next
	}

	return &Result{
		steps: res,
		last:  fc,
	}, nil
}

// Model returns KF model
func (k *KF) Model() filter.Model {
	return k.m
}

// Run creates new KF from model m and initial condition init
// and runs it over observations y.
func Run(m filter.Model, init filter.InitCond, y *obs.Matrix) (*Result, error) {
	f, err := New(m, init)
	if err != nil {
		return nil, err
	}

	return f.Run(y)
}

// Forecast propagates analysis an to the next time step:
//
//	mu_f = M*mu_a
//	P_f  = Q + M*P_a*M'
//
// It returns error if an does not match the model dimension.
func Forecast(an filter.Estimate, m filter.Model) (*estimate.Base, error) {
	M := m.StateMatrix()

	x := an.Val()
	_, cols := M.Dims()
	if x.Len() != cols {
		return nil, fmt.Errorf("invalid state length: %d != %d: %w", x.Len(), cols, filter.ErrDimensionMismatch)
	}

	xNext := &mat.VecDense{}
	xNext.MulVec(M, x)

	cov := &mat.Dense{}
	cov.Mul(M, an.Cov())
	cov.Mul(cov, M.T())
	cov.Add(cov, m.StateNoiseCov())

	return estimate.NewBase(xNext, matrix.Symmetrize(cov))
}

// Analyze incorporates observations y of the entities listed in idx into forecast fc
// and returns the resulting step. r is the full observation noise covariance;
// it is restricted to idx. If idx is empty the analysis equals the forecast.
//
//	H   = rows idx of identity
//	S   = H*P_f*H' + R[idx, idx]
//	K   = P_f*H'*S^-1
//	mu_a = mu_f + K*(y - H*mu_f)
//	P_a  = (I - K*H)*P_f
//
// It returns error if y length differs from idx length, idx is out of range
// or S is singular within numerical tolerance.
func Analyze(fc filter.Estimate, r mat.Symmetric, idx []int, y mat.Vector) (*Step, error) {
	x := fc.Val()
	p := fc.Cov()
	n := x.Len()

	if len(idx) == 0 {
		an, err := estimate.NewBase(x, p)
		if err != nil {
			return nil, err
		}
		return &Step{
			forecast: toBase(fc),
			analysis: an,
			observed: []int{},
		}, nil
	}

	if y == nil || y.Len() != len(idx) {
		return nil, fmt.Errorf("invalid observation vector for %d observed entities: %w",
			len(idx), filter.ErrDimensionMismatch)
	}

	for i := 0; i < y.Len(); i++ {
		if v := y.AtVec(i); math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("non-finite observation of entity %d: %v", idx[i], v)
		}
	}

	if r.SymmetricDim() != n {
		return nil, fmt.Errorf("invalid R dimension: %d != %d: %w", r.SymmetricDim(), n, filter.ErrDimensionMismatch)
	}

	h, err := matrix.SelectRows(n, idx)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, filter.ErrDimensionMismatch)
	}

	// H*P
	hp := &mat.Dense{}
	hp.Mul(h, p)

	// H*P*H' + R_obs
	hph := &mat.Dense{}
	hph.Mul(hp, h.T())
	rObs := &mat.SymDense{}
	rObs.SubsetSym(r, idx)
	s := matrix.Symmetrize(hph)
	s.AddSym(s, rObs)

	// S is symmetric and P is symmetric so K' = S^-1*H*P
	sol, err := solve(s, hp)
	if err != nil {
		return nil, err
	}
	gain := mat.DenseCopyOf(sol.x.T())

	// innovation vector y - H*mu_f
	yPred := &mat.VecDense{}
	yPred.MulVec(h, x)
	inn := &mat.VecDense{}
	inn.SubVec(y, yPred)

	// update state
	corr := &mat.VecDense{}
	corr.MulVec(gain, inn)
	xa := &mat.VecDense{}
	xa.AddVec(x, corr)

	// (I - K*H)*P
	eye, err := matrix.Identity(n)
	if err != nil {
		return nil, err
	}
	kh := &mat.Dense{}
	kh.Mul(gain, h)
	kh.Sub(eye, kh)
	pa := &mat.Dense{}
	pa.Mul(kh, p)

	an, err := estimate.NewBase(xa, matrix.Symmetrize(pa))
	if err != nil {
		return nil, err
	}

	obsIdx := make([]int, len(idx))
	copy(obsIdx, idx)

	return &Step{
		forecast: toBase(fc),
		analysis: an,
		observed: obsIdx,
		inn:      inn,
		innCov:   s,
		gain:     gain,
		logLik:   sol.logLik(inn),
	}, nil
}

// solution is a solution of S*X = B
type solution struct {
	x    *mat.Dense
	chol *mat.Cholesky
}

// solve solves s*x = b, preferably via Cholesky decomposition of s.
// It falls back to a general LU solve when s is not positive definite.
// It returns ErrSingularInnovationCovariance if s is singular within tolerance.
func solve(s *mat.SymDense, b mat.Matrix) (*solution, error) {
	x := &mat.Dense{}

	var chol mat.Cholesky
	if ok := chol.Factorize(s); ok {
		if err := chol.SolveTo(x, b); err != nil {
			return nil, fmt.Errorf("cholesky solve: %v: %w", err, filter.ErrSingularInnovationCovariance)
		}
		return &solution{x: x, chol: &chol}, nil
	}

	if err := x.Solve(s, b); err != nil {
		return nil, fmt.Errorf("lu solve: %v: %w", err, filter.ErrSingularInnovationCovariance)
	}

	return &solution{x: x}, nil
}

// logLik returns Gaussian log density of innovation inn.
// It returns NaN when the innovation covariance is not positive definite.
func (s *solution) logLik(inn *mat.VecDense) float64 {
	if s.chol == nil {
		return math.NaN()
	}

	w := &mat.VecDense{}
	if err := s.chol.SolveVecTo(w, inn); err != nil {
		return math.NaN()
	}

	k := float64(inn.Len())
	return -0.5 * (k*math.Log(2*math.Pi) + s.chol.LogDet() + mat.Dot(inn, w))
}

func toBase(e filter.Estimate) *estimate.Base {
	if b, ok := e.(*estimate.Base); ok {
		return b
	}
	// e was validated by the caller
	b, _ := estimate.NewBase(e.Val(), e.Cov())

	return b
}
