package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	filter "github.com/milosgajdos/go-assimilate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const params = `
mu0: [0, 0]
p0: [[1, 0], [0, 1]]
scenarios:
  - name: base
    m: [[1, 0], [0, 1]]
    q: [[0.01, 0], [0, 0.01]]
    r: [[0.1, 0], [0, 0.1]]
  - m: [[1, 0], [0, 1]]
    q: [[0.01, 0], [0, 0.01]]
    r: [[1, 0], [0, 1]]
`

func TestParseParams(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	p, err := parseParams([]byte(params))
	require.NoError(err)
	require.Len(p.Scenarios, 2)
	assert.Equal("base", p.Scenarios[0].Name)
	assert.Equal("scenario2", p.Scenarios[1].Name)

	ic, err := p.InitCond()
	require.NoError(err)
	assert.Equal(2, ic.State().Len())

	sp, err := p.Scenario("scenario2")
	require.NoError(err)
	m, err := sp.Model()
	require.NoError(err)
	assert.Equal(2, m.Dim())
	assert.Equal(1.0, m.OutputNoiseCov().At(1, 1))

	_, err = p.Scenario("unknown")
	assert.Error(err)
}

func TestParseParamsInvalid(t *testing.T) {
	assert := assert.New(t)

	for _, content := range []string{
		"mu0: [0]\n",
		"scenarios: [{name: a, m: [[1]], q: [[1]], r: [[1]]}, {name: a, m: [[1]], q: [[1]], r: [[1]]}]\n",
		"scenarios: {",
	} {
		p, err := parseParams([]byte(content))
		assert.Nil(p)
		assert.Error(err)
	}

	p, err := parseParams([]byte("scenarios: [{name: a, m: [[1, 0], [0]], q: [[1]], r: [[1]]}]\n"))
	assert.NoError(err)
	m, err := p.Scenarios[0].Model()
	assert.Nil(m)
	assert.Error(err)

	p, err = parseParams([]byte("scenarios: [{name: a, m: [[1]], q: [[-1]], r: [[1]]}]\n"))
	assert.NoError(err)
	m, err = p.Scenarios[0].Model()
	assert.Nil(m)
	assert.True(errors.Is(err, filter.ErrInvalidCovariance))

	ic, err := p.InitCond()
	assert.Nil(ic)
	assert.Error(err)
}

func TestLoadParams(t *testing.T) {
	assert := assert.New(t)

	path := filepath.Join(t.TempDir(), "params.yaml")
	assert.NoError(os.WriteFile(path, []byte(params), 0o644))

	p, err := loadParams(path)
	assert.NoError(err)
	assert.NotNil(p)

	p, err = loadParams(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Nil(p)
	assert.Error(err)
}
