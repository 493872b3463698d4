package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/milosgajdos/go-assimilate/obs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulateRun(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	dir := t.TempDir()
	paramsPath := filepath.Join(dir, "params.yaml")
	require.NoError(os.WriteFile(paramsPath, []byte(params), 0o644))

	obsPath := filepath.Join(dir, "obs.csv")
	truthPath := filepath.Join(dir, "truth.csv")
	sim := &SimulateCmd{
		Params:  paramsPath,
		Steps:   10,
		Missing: 0.3,
		Seed:    42,
		Out:     obsPath,
		Truth:   truthPath,
	}
	require.NoError(sim.Run())

	f, err := os.Open(truthPath)
	require.NoError(err)
	defer f.Close()
	truth, err := obs.ReadCSV(f, obs.CSVOptions{})
	require.NoError(err)
	assert.Equal(20, truth.Count())

	out := filepath.Join(dir, "out")
	run := &RunCmd{
		Obs:     obsPath,
		Params:  paramsPath,
		Out:     out,
		Missing: obs.DefaultMissing,
		Z:       1.96,
		Smooth:  true,
		Plot:    true,
	}
	require.NoError(run.Run())

	for _, name := range []string{
		"base.csv", "base_smoothed.csv", "base_0.png", "base_1.png",
		"scenario2.csv", "scenario2_smoothed.csv", "scenario2_0.png", "scenario2_1.png",
	} {
		_, err := os.Stat(filepath.Join(out, name))
		assert.NoError(err, name)
	}
}

func TestSimulateUnknownScenario(t *testing.T) {
	assert := assert.New(t)

	dir := t.TempDir()
	paramsPath := filepath.Join(dir, "params.yaml")
	assert.NoError(os.WriteFile(paramsPath, []byte(params), 0o644))

	sim := &SimulateCmd{
		Params:   paramsPath,
		Scenario: "unknown",
		Steps:    10,
		Out:      filepath.Join(dir, "obs.csv"),
	}
	assert.Error(sim.Run())
}

func TestSafeName(t *testing.T) {
	assert := assert.New(t)

	for _, test := range []struct {
		label string
		want  string
	}{
		{label: "north", want: "north"},
		{label: "new-york_1.2", want: "new-york_1.2"},
		{label: "../x", want: ".._x"},
		{label: "a/b", want: "a_b"},
		{label: "..", want: "7"},
		{label: "", want: "7"},
		{label: "//", want: "7"},
	} {
		assert.Equal(test.want, safeName(test.label, "7"), test.label)
	}
}

func TestRunUnsafeLabels(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	dir := t.TempDir()
	paramsPath := filepath.Join(dir, "params.yaml")
	require.NoError(os.WriteFile(paramsPath, []byte(params), 0o644))

	obsPath := filepath.Join(dir, "obs.csv")
	require.NoError(os.WriteFile(obsPath, []byte("../x,1,NA,2\na/b,1,1,NA\n"), 0o644))

	out := filepath.Join(dir, "out")
	run := &RunCmd{
		Obs:     obsPath,
		Params:  paramsPath,
		Out:     out,
		Missing: obs.DefaultMissing,
		Z:       1.96,
		Plot:    true,
	}
	require.NoError(run.Run())

	for _, name := range []string{"base_.._x.png", "base_a_b.png"} {
		_, err := os.Stat(filepath.Join(out, name))
		assert.NoError(err, name)
	}

	_, err := os.Stat(filepath.Join(dir, "x.png"))
	assert.True(os.IsNotExist(err))
}
