package estimate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"
)

func TestNewBase(t *testing.T) {
	assert := assert.New(t)

	state := mat.NewVecDense(2, []float64{1.0, 1.0})
	cov := mat.NewSymDense(2, []float64{1.0, 0.0, 0.0, 1.0})

	b, err := NewBase(state, cov)
	assert.NotNil(b)
	assert.NoError(err)
	assert.True(mat.Equal(state, b.Val()))
	assert.True(mat.Equal(cov, b.Cov()))
	assert.NotEmpty(b.String())

	b, err = NewBase(state, mat.NewSymDense(1, []float64{1.0}))
	assert.Nil(b)
	assert.Error(err)

	b, err = NewBase(nil, cov)
	assert.Nil(b)
	assert.Error(err)
}

func TestBaseCopies(t *testing.T) {
	assert := assert.New(t)

	state := mat.NewVecDense(2, []float64{1.0, 2.0})
	cov := mat.NewSymDense(2, []float64{1.0, 0.5, 0.5, 1.0})

	b, err := NewBase(state, cov)
	assert.NoError(err)

	state.SetVec(0, 10)
	cov.SetSym(0, 1, 0)
	assert.Equal(1.0, b.Val().AtVec(0))
	assert.Equal(0.5, b.Cov().At(0, 1))

	v := b.Val().(*mat.VecDense)
	v.SetVec(1, 20)
	assert.Equal(2.0, b.Val().AtVec(1))
}

func TestBand(t *testing.T) {
	assert := assert.New(t)

	state := mat.NewVecDense(2, []float64{1.0, -2.0})
	cov := mat.NewSymDense(2, []float64{4.0, 0.3, 0.3, 0.25})

	b, err := NewBase(state, cov)
	assert.NoError(err)

	lo, hi := b.Band(Z95)
	assert.InDeltaSlice([]float64{1 - 1.96*2, -2 - 1.96*0.5}, lo, 1e-12)
	assert.InDeltaSlice([]float64{1 + 1.96*2, -2 + 1.96*0.5}, hi, 1e-12)

	lo, hi = Band(b, 0)
	assert.Equal([]float64{1, -2}, lo)
	assert.Equal([]float64{1, -2}, hi)
}
