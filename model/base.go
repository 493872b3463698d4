package model

import (
	"fmt"
	"math"

	filter "github.com/milosgajdos/go-assimilate"
	"github.com/milosgajdos/go-assimilate/matrix"
	"gonum.org/v1/gonum/mat"
)

const (
	// SymTol is the largest asymmetry tolerated in a covariance input
	SymTol = 1e-9
	// PSDTol is the most negative eigenvalue tolerated in a covariance input
	PSDTol = 1e-9
)

// InitCond implements filter.InitCond
type InitCond struct {
	state *mat.VecDense
	cov   *mat.SymDense
}

// NewInitCond creates new InitCond and returns it.
// It returns error if cov is not square, its size differs from state length
// or it is not symmetric positive semi-definite.
func NewInitCond(state mat.Vector, cov mat.Matrix) (*InitCond, error) {
	if state == nil || cov == nil {
		return nil, fmt.Errorf("invalid initial condition: %w", filter.ErrDimensionMismatch)
	}

	c, err := ToCov("P0", cov)
	if err != nil {
		return nil, err
	}

	if state.Len() != c.SymmetricDim() {
		return nil, fmt.Errorf("initial state length %d != P0 size %d: %w",
			state.Len(), c.SymmetricDim(), filter.ErrDimensionMismatch)
	}

	for i := 0; i < state.Len(); i++ {
		if v := state.AtVec(i); math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("non-finite initial state entry %d: %v", i, v)
		}
	}

	s := &mat.VecDense{}
	s.CloneFromVec(state)

	return &InitCond{
		state: s,
		cov:   c,
	}, nil
}

// State returns initial state
func (c *InitCond) State() mat.Vector {
	state := mat.NewVecDense(c.state.Len(), nil)
	state.CopyVec(c.state)

	return state
}

// Cov returns initial covariance
func (c *InitCond) Cov() mat.Symmetric {
	cov := mat.NewSymDense(c.cov.SymmetricDim(), nil)
	cov.CopySym(c.cov)

	return cov
}

// LTI is a linear time-invariant model of a system whose state
// is observed entity by entity.
//
//	x[t+1] = M*x[t] + w[t],  w ~ N(0, Q)
//	y[t]   = H[t]*x[t] + v[t], v ~ N(0, H[t]*R*H[t]')
//
// where H[t] selects the entities observed at step t.
type LTI struct {
	// M is state transition matrix
	M *mat.Dense
	// Q is process noise covariance
	Q *mat.SymDense
	// R is observation noise covariance
	R *mat.SymDense
}

// NewLTI creates new LTI model and returns it.
// It returns error if any of the matrices is nil, they do not share
// the same square dimension or Q or R is not a valid covariance matrix.
func NewLTI(M, Q, R mat.Matrix) (*LTI, error) {
	if M == nil || Q == nil || R == nil {
		return nil, fmt.Errorf("nil model matrix: %w", filter.ErrDimensionMismatch)
	}

	rows, cols := M.Dims()
	if rows != cols {
		return nil, fmt.Errorf("invalid transition matrix dimensions: [%d x %d]: %w",
			rows, cols, filter.ErrDimensionMismatch)
	}

	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if v := M.At(i, j); math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("non-finite transition matrix entry [%d, %d]: %v", i, j, v)
			}
		}
	}

	q, err := ToCov("Q", Q)
	if err != nil {
		return nil, err
	}

	r, err := ToCov("R", R)
	if err != nil {
		return nil, err
	}

	if q.SymmetricDim() != rows {
		return nil, fmt.Errorf("invalid Q dimension: %d != %d: %w", q.SymmetricDim(), rows, filter.ErrDimensionMismatch)
	}

	if r.SymmetricDim() != rows {
		return nil, fmt.Errorf("invalid R dimension: %d != %d: %w", r.SymmetricDim(), rows, filter.ErrDimensionMismatch)
	}

	return &LTI{
		M: mat.DenseCopyOf(M),
		Q: q,
		R: r,
	}, nil
}

// Dim returns number of entities tracked by the model.
func (l *LTI) Dim() int {
	n, _ := l.M.Dims()
	return n
}

// StateMatrix returns state transition matrix.
func (l *LTI) StateMatrix() mat.Matrix {
	m := &mat.Dense{}
	m.CloneFrom(l.M)

	return m
}

// StateNoiseCov returns process noise covariance.
func (l *LTI) StateNoiseCov() mat.Symmetric {
	q := mat.NewSymDense(l.Q.SymmetricDim(), nil)
	q.CopySym(l.Q)

	return q
}

// OutputNoiseCov returns observation noise covariance.
func (l *LTI) OutputNoiseCov() mat.Symmetric {
	r := mat.NewSymDense(l.R.SymmetricDim(), nil)
	r.CopySym(l.R)

	return r
}

// String implements the Stringer interface.
func (l *LTI) String() string {
	return fmt.Sprintf("LTI{\nM=%v\nQ=%v\nR=%v\n}",
		mat.Formatted(l.M, mat.Prefix("  "), mat.Squeeze()),
		mat.Formatted(l.Q, mat.Prefix("  "), mat.Squeeze()),
		mat.Formatted(l.R, mat.Prefix("  "), mat.Squeeze()))
}

// ToCov validates m as a covariance matrix and returns its symmetric copy.
// name is used in error messages.
// It returns ErrDimensionMismatch if m is not square and
// ErrInvalidCovariance if m is not symmetric positive semi-definite.
func ToCov(name string, m mat.Matrix) (*mat.SymDense, error) {
	rows, cols := m.Dims()
	if rows != cols {
		return nil, fmt.Errorf("%s is not square: [%d x %d]: %w", name, rows, cols, filter.ErrDimensionMismatch)
	}

	if !matrix.IsSymmetric(m, SymTol) {
		return nil, fmt.Errorf("%s is not symmetric: %w", name, filter.ErrInvalidCovariance)
	}

	c := matrix.Symmetrize(m)
	if !matrix.IsPSD(c, PSDTol) {
		return nil, fmt.Errorf("%s is not positive semi-definite: %w", name, filter.ErrInvalidCovariance)
	}

	return c, nil
}
