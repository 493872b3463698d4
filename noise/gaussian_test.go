package noise

import (
	"errors"
	"testing"

	filter "github.com/milosgajdos/go-assimilate"
	"github.com/milosgajdos/go-assimilate/rand"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestNewGaussian(t *testing.T) {
	assert := assert.New(t)
	for _, test := range []struct {
		mean     []float64
		cov      *mat.SymDense
		singular bool
		ok       bool
	}{
		{
			mean: []float64{2, 3},
			cov:  mat.NewSymDense(2, []float64{1, 0.1, 0.1, 1}),
			ok:   true,
		},
		{
			mean:     []float64{0, 0},
			cov:      mat.NewSymDense(2, []float64{0.01, 0, 0, 0}),
			singular: true,
			ok:       true,
		},
		{
			mean: []float64{2},
			cov:  mat.NewSymDense(2, []float64{1, 0.1, 0.1, 1}),
		},
		{
			mean: []float64{0, 0},
			cov:  mat.NewSymDense(2, []float64{1, 2, 2, 1}),
		},
	} {
		g, err := NewGaussian(test.mean, test.cov)
		if !test.ok {
			assert.Nil(g)
			assert.Error(err)
			continue
		}
		assert.NotNil(g)
		assert.NoError(err)
		assert.Equal(test.singular, g.IsSingular())
	}

	g, err := NewGaussian([]float64{0, 0}, mat.NewSymDense(2, []float64{1, 2, 2, 1}))
	assert.Nil(g)
	assert.True(errors.Is(err, filter.ErrInvalidCovariance))
}

func TestMeanCov(t *testing.T) {
	assert := assert.New(t)

	mean := []float64{2, 3}
	cov := mat.NewSymDense(2, []float64{1, 0.1, 0.1, 1})

	g, err := NewGaussian(mean, cov)
	assert.NotNil(g)
	assert.NoError(err)

	gCov := g.Cov()
	assert.Equal(cov.SymmetricDim(), gCov.SymmetricDim())
	assert.True(mat.Equal(cov, gCov))

	assert.EqualValues(mean, g.Mean())

	// accessors return copies
	g.Mean()[0] = 100
	assert.EqualValues(mean, g.Mean())
}

func TestSample(t *testing.T) {
	assert := assert.New(t)

	mean := []float64{2, 3}
	cov := mat.NewSymDense(2, []float64{1, 0.1, 0.1, 1})

	g, err := NewGaussian(mean, cov)
	assert.NotNil(g)
	assert.NoError(err)

	sample := g.Sample()
	assert.Equal(len(mean), sample.Len())

	// same seed draws same samples
	a, err := NewGaussianWithSource(mean, cov, rand.NewSource(5))
	assert.NoError(err)
	b, err := NewGaussianWithSource(mean, cov, rand.NewSource(5))
	assert.NoError(err)
	for i := 0; i < 3; i++ {
		assert.True(mat.Equal(a.Sample(), b.Sample()))
	}
}

func TestSampleSingular(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	// second entity carries no noise
	mean := []float64{1, 2}
	cov := mat.NewSymDense(2, []float64{0.01, 0, 0, 0})

	g, err := NewGaussianWithSource(mean, cov, rand.NewSource(9))
	require.NoError(err)
	require.True(g.IsSingular())

	moved := false
	for i := 0; i < 20; i++ {
		s := g.Sample()
		assert.Equal(2, s.Len())
		assert.InDelta(2.0, s.AtVec(1), 1e-12)
		if s.AtVec(0) != 1 {
			moved = true
		}
	}
	assert.True(moved)

	a, err := NewGaussianWithSource(mean, cov, rand.NewSource(9))
	require.NoError(err)
	b, err := NewGaussianWithSource(mean, cov, rand.NewSource(9))
	require.NoError(err)
	assert.True(mat.Equal(a.Sample(), b.Sample()))
}

func TestZero(t *testing.T) {
	assert := assert.New(t)

	z, err := NewZero(2)
	assert.NotNil(z)
	assert.NoError(err)
	assert.True(z.IsSingular())
	assert.EqualValues([]float64{0, 0}, z.Mean())
	assert.True(mat.Equal(mat.NewSymDense(2, nil), z.Cov()))
	assert.True(mat.Equal(mat.NewVecDense(2, nil), z.Sample()))

	for _, size := range []int{0, -10} {
		z, err = NewZero(size)
		assert.Nil(z)
		assert.Error(err)
	}

	// zero covariance with non-zero mean always samples the mean
	g, err := NewGaussian([]float64{1, 2}, mat.NewSymDense(2, nil))
	assert.NoError(err)
	assert.True(mat.Equal(mat.NewVecDense(2, []float64{1, 2}), g.Sample()))
}

func TestString(t *testing.T) {
	assert := assert.New(t)

	str := `Gaussian{
Mean=[2 3]
Cov=⎡  1  0.1⎤
    ⎣0.1    1⎦
}`
	mean := []float64{2, 3}
	cov := mat.NewSymDense(2, []float64{1, 0.1, 0.1, 1})

	g, err := NewGaussian(mean, cov)
	assert.NotNil(g)
	assert.NoError(err)
	assert.Equal(str, g.String())
}
