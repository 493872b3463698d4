package export

import (
	"bytes"
	"encoding/csv"
	"errors"
	"strconv"
	"testing"

	filter "github.com/milosgajdos/go-assimilate"
	"github.com/milosgajdos/go-assimilate/estimate"
	"github.com/milosgajdos/go-assimilate/kalman/kf"
	"github.com/milosgajdos/go-assimilate/model"
	"github.com/milosgajdos/go-assimilate/obs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func run(t *testing.T) *kf.Result {
	m, err := model.NewLTI(
		mat.NewDense(2, 2, []float64{1, 0, 0, 1}),
		mat.NewSymDense(2, []float64{0.01, 0, 0, 0.01}),
		mat.NewSymDense(2, []float64{0.1, 0, 0, 0.1}),
	)
	require.NoError(t, err)

	ic, err := model.NewInitCond(mat.NewVecDense(2, nil), mat.NewSymDense(2, []float64{1, 0, 0, 1}))
	require.NoError(t, err)

	y, err := obs.NewMatrix([][]obs.Value{
		{obs.Present(1), obs.Missing(), obs.Present(2)},
		{obs.Present(1), obs.Present(1), obs.Missing()},
	})
	require.NoError(t, err)

	res, err := kf.Run(m, ic, y)
	require.NoError(t, err)

	return res
}

func TestImplementsExporter(t *testing.T) {
	implements := func(Exporter) {}
	implements(new(CSV))
}

func TestCSVHeader(t *testing.T) {
	assert := assert.New(t)

	e := NewCSV(&bytes.Buffer{}, []string{"north", "south"}, estimate.Z95)
	assert.Equal([]string{"step", "kind", "north", "north_lo", "north_hi", "south", "south_lo", "south_hi"}, e.Header())
}

func TestCSVWrite(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	res := run(t)

	buf := &bytes.Buffer{}
	e := NewCSV(buf, []string{"north", "south"}, estimate.Z95)
	require.NoError(e.Write(res))

	recs, err := csv.NewReader(buf).ReadAll()
	require.NoError(err)

	// header, forecast and analysis per step, final forecast
	require.Len(recs, 1+2*res.Len()+1)

	assert.Equal([]string{"1", Forecast, "0", "-1.96", "1.96", "0", "-1.96", "1.96"}, recs[1])

	an := recs[2]
	assert.Equal("1", an[0])
	assert.Equal(Analysis, an[1])
	mean, err := strconv.ParseFloat(an[2], 64)
	require.NoError(err)
	assert.InDelta(1/1.1, mean, 1e-12)

	last := recs[len(recs)-1]
	assert.Equal("4", last[0])
	assert.Equal(Forecast, last[1])
	mean, err = strconv.ParseFloat(last[2], 64)
	require.NoError(err)
	assert.InDelta(1.4827586206896552, mean, 1e-9)
}

func TestCSVWriteInvalid(t *testing.T) {
	assert := assert.New(t)

	e := NewCSV(&bytes.Buffer{}, []string{"north"}, estimate.Z95)
	assert.Error(e.Write(nil))

	err := e.Write(run(t))
	assert.True(errors.Is(err, filter.ErrDimensionMismatch))
}

func TestCSVWriteEstimates(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	res := run(t)

	buf := &bytes.Buffer{}
	e := NewCSV(buf, []string{"north", "south"}, estimate.Z95)
	require.NoError(e.WriteEstimates(Smoothed, res.Analyses()))

	recs, err := csv.NewReader(buf).ReadAll()
	require.NoError(err)
	require.Len(recs, 1+res.Len())

	for i, rec := range recs[1:] {
		assert.Equal(strconv.Itoa(i+1), rec[0])
		assert.Equal(Smoothed, rec[1])
	}
}
