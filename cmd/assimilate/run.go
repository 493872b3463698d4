package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/milosgajdos/go-assimilate/export"
	"github.com/milosgajdos/go-assimilate/kalman/kf"
	"github.com/milosgajdos/go-assimilate/obs"
	"github.com/milosgajdos/go-assimilate/scenario"
	"github.com/milosgajdos/go-assimilate/sim"
	"github.com/milosgajdos/go-assimilate/smooth/rts"
	"gonum.org/v1/plot/vg"
)

// RunCmd runs the filter
type RunCmd struct {
	Obs     string  `name:"obs" required:"" type:"existingfile" help:"observations CSV: one entity per row, one step per column"`
	Params  string  `name:"params" required:"" type:"existingfile" help:"YAML parameter file"`
	Out     string  `name:"out" default:"." type:"path" help:"output directory"`
	Missing string  `name:"missing" default:"NA" help:"missing observation token"`
	Header  bool    `name:"header" default:"false" help:"skip the first CSV record"`
	Z       float64 `name:"z" default:"1.96" help:"confidence band width in standard deviations"`
	Limit   int     `name:"limit" default:"0" help:"max number of concurrent runs; 0 means no limit"`
	Smooth  bool    `name:"smooth" default:"false" help:"also write Rauch-Tung-Striebel smoothed estimates"`
	Plot    bool    `name:"plot" default:"true" negatable:"" help:"write PNG band plot per scenario and entity"`
}

// Run implements the run command.
func (c *RunCmd) Run() error {
	f, err := os.Open(c.Obs)
	if err != nil {
		return err
	}
	defer f.Close()

	y, err := obs.ReadCSV(f, obs.CSVOptions{Missing: c.Missing, Header: c.Header})
	if err != nil {
		return fmt.Errorf("%s: %w", c.Obs, err)
	}

	entities, steps := y.Dims()
	log.Printf("Read %d observations of %d entities over %d steps", y.Count(), entities, steps)

	p, err := loadParams(c.Params)
	if err != nil {
		return fmt.Errorf("%s: %w", c.Params, err)
	}

	ic, err := p.InitCond()
	if err != nil {
		return err
	}

	s := make([]scenario.Scenario, len(p.Scenarios))
	for i, sp := range p.Scenarios {
		m, err := sp.Model()
		if err != nil {
			return err
		}
		s[i] = scenario.Scenario{
			Name:     sp.Name,
			Model:    m,
			InitCond: ic,
			Obs:      y,
		}
	}

	res, err := scenario.Run(context.Background(), s, c.Limit)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(c.Out, 0o755); err != nil {
		return err
	}

	for i := range s {
		log.Printf("Scenario %s: log-likelihood %g", s[i].Name, res[i].LogLikelihood())
		if err := c.write(s[i], res[i]); err != nil {
			return fmt.Errorf("scenario %q: %w", s[i].Name, err)
		}
	}

	return nil
}

func (c *RunCmd) write(s scenario.Scenario, res *kf.Result) error {
	names := s.Obs.Names()

	base := safeName(s.Name, "scenario")

	path := filepath.Join(c.Out, base+".csv")
	if err := writeCSV(path, func(e *export.CSV) error { return e.Write(res) }, names, c.Z); err != nil {
		return err
	}
	log.Printf("Wrote %s", path)

	if c.Smooth {
		sm, err := rts.New(s.Model)
		if err != nil {
			return err
		}

		sx, err := sm.Smooth(res)
		if err != nil {
			return err
		}

		path := filepath.Join(c.Out, base+"_smoothed.csv")
		if err := writeCSV(path, func(e *export.CSV) error { return e.WriteEstimates(export.Smoothed, sx) }, names, c.Z); err != nil {
			return err
		}
		log.Printf("Wrote %s", path)
	}

	if !c.Plot || res.Len() == 0 {
		return nil
	}

	for i, name := range names {
		p, err := sim.NewBandPlot(res, s.Obs, i, c.Z)
		if err != nil {
			return err
		}

		path := filepath.Join(c.Out, fmt.Sprintf("%s_%s.png", base, safeName(name, strconv.Itoa(i))))
		if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
			return err
		}
		log.Printf("Wrote %s", path)
	}

	return nil
}

func writeCSV(path string, write func(*export.CSV) error, names []string, z float64) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := write(export.NewCSV(f, names, z)); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}

// safeName maps label to a single file name component.
// Characters other than ASCII letters, digits, '-', '_' and '.' become '_'.
// fallback is returned when nothing usable is left.
func safeName(label, fallback string) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		}
		return '_'
	}, label)

	if strings.Trim(name, "._") == "" {
		return fallback
	}

	return name
}
