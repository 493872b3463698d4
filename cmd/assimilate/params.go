package main

import (
	"fmt"
	"os"

	"github.com/milosgajdos/go-assimilate/model"
	"gonum.org/v1/gonum/mat"
	"gopkg.in/yaml.v3"
)

// Params are filter parameters read from a YAML file.
//
//	mu0: [0, 0]
//	p0:  [[1, 0], [0, 1]]
//	scenarios:
//	  - name: base
//	    m: [[1, 0], [0, 1]]
//	    q: [[0.01, 0], [0, 0.01]]
//	    r: [[0.1, 0], [0, 0.1]]
type Params struct {
	Mu0       []float64        `yaml:"mu0"`
	P0        [][]float64      `yaml:"p0"`
	Scenarios []ScenarioParams `yaml:"scenarios"`
}

// ScenarioParams are model matrices of a single named scenario.
type ScenarioParams struct {
	Name string      `yaml:"name"`
	M    [][]float64 `yaml:"m"`
	Q    [][]float64 `yaml:"q"`
	R    [][]float64 `yaml:"r"`
}

func loadParams(path string) (*Params, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return parseParams(content)
}

func parseParams(content []byte) (*Params, error) {
	ret := &Params{}
	if err := yaml.Unmarshal(content, ret); err != nil {
		return nil, err
	}

	if len(ret.Scenarios) == 0 {
		return nil, fmt.Errorf("no scenarios defined")
	}

	seen := make(map[string]bool)
	for i := range ret.Scenarios {
		if ret.Scenarios[i].Name == "" {
			ret.Scenarios[i].Name = fmt.Sprintf("scenario%d", i+1)
		}
		if seen[ret.Scenarios[i].Name] {
			return nil, fmt.Errorf("duplicate scenario name: %s", ret.Scenarios[i].Name)
		}
		seen[ret.Scenarios[i].Name] = true
	}

	return ret, nil
}

// InitCond returns the initial condition defined by p.
func (p *Params) InitCond() (*model.InitCond, error) {
	if len(p.Mu0) == 0 {
		return nil, fmt.Errorf("mu0: empty vector")
	}

	p0, err := dense("p0", p.P0)
	if err != nil {
		return nil, err
	}

	return model.NewInitCond(mat.NewVecDense(len(p.Mu0), p.Mu0), p0)
}

// Scenario returns scenario parameters with the given name.
func (p *Params) Scenario(name string) (ScenarioParams, error) {
	for _, s := range p.Scenarios {
		if s.Name == name {
			return s, nil
		}
	}

	return ScenarioParams{}, fmt.Errorf("unknown scenario: %s", name)
}

// Model returns the model defined by s.
func (s ScenarioParams) Model() (*model.LTI, error) {
	m, err := dense("m", s.M)
	if err != nil {
		return nil, err
	}

	q, err := dense("q", s.Q)
	if err != nil {
		return nil, err
	}

	r, err := dense("r", s.R)
	if err != nil {
		return nil, err
	}

	lti, err := model.NewLTI(m, q, r)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", s.Name, err)
	}

	return lti, nil
}

// dense converts row-major nested lists to a matrix.
func dense(name string, rows [][]float64) (*mat.Dense, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("%s: empty matrix", name)
	}

	cols := len(rows[0])
	data := make([]float64, 0, len(rows)*cols)
	for i, row := range rows {
		if len(row) != cols {
			return nil, fmt.Errorf("%s: row %d has %d columns, expected %d", name, i, len(row), cols)
		}
		data = append(data, row...)
	}

	return mat.NewDense(len(rows), cols, data), nil
}
