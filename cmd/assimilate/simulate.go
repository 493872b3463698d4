package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/milosgajdos/go-assimilate/obs"
	"github.com/milosgajdos/go-assimilate/rand"
	"github.com/milosgajdos/go-assimilate/sim"
	"gonum.org/v1/gonum/mat"
)

// SimulateCmd generates synthetic observations
type SimulateCmd struct {
	Params   string  `name:"params" required:"" type:"existingfile" help:"YAML parameter file"`
	Scenario string  `name:"scenario" help:"scenario to simulate; defaults to the first one"`
	Steps    int     `name:"steps" default:"50" help:"number of time steps"`
	Missing  float64 `name:"missing" default:"0.2" help:"probability of a missing observation"`
	Seed     uint64  `name:"seed" default:"0" help:"random seed; 0 seeds from the current time"`
	Out      string  `name:"out" default:"obs.csv" type:"path" help:"observations CSV"`
	Truth    string  `name:"truth" type:"path" help:"optional true states CSV"`
}

// Run implements the simulate command.
func (c *SimulateCmd) Run() error {
	p, err := loadParams(c.Params)
	if err != nil {
		return fmt.Errorf("%s: %w", c.Params, err)
	}

	sp := p.Scenarios[0]
	if c.Scenario != "" {
		if sp, err = p.Scenario(c.Scenario); err != nil {
			return err
		}
	}

	m, err := sp.Model()
	if err != nil {
		return err
	}

	ic, err := p.InitCond()
	if err != nil {
		return err
	}

	seed := c.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	s, err := sim.GenerateWithSource(m, ic, c.Steps, c.Missing, rand.NewSource(seed))
	if err != nil {
		return err
	}

	if err := writeObs(c.Out, s.Obs); err != nil {
		return err
	}
	log.Printf("Wrote %d observations of scenario %s to %s", s.Obs.Count(), sp.Name, c.Out)

	if c.Truth == "" {
		return nil
	}

	truth, err := toObs(s.Truth, s.Obs.Names())
	if err != nil {
		return err
	}

	if err := writeObs(c.Truth, truth); err != nil {
		return err
	}
	log.Printf("Wrote true states to %s", c.Truth)

	return nil
}

func writeObs(path string, m *obs.Matrix) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := obs.WriteCSV(f, m); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}

// toObs converts fully observed matrix d to observations.
func toObs(d *mat.Dense, names []string) (*obs.Matrix, error) {
	r, c := d.Dims()
	rows := make([][]obs.Value, r)
	for i := range rows {
		rows[i] = make([]obs.Value, c)
		for t := range rows[i] {
			rows[i][t] = obs.Present(d.At(i, t))
		}
	}

	return obs.NewNamedMatrix(names, rows)
}
