package sim

import (
	"fmt"
	"time"

	filter "github.com/milosgajdos/go-assimilate"
	"github.com/milosgajdos/go-assimilate/obs"
	"github.com/milosgajdos/go-assimilate/rand"
	rnd "golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
)

// Scenario is a synthetic filtering scenario
type Scenario struct {
	// Truth stores true entity states: one row per entity, one column per step
	Truth *mat.Dense
	// Obs stores noisy, partially missing observations of Truth
	Obs *obs.Matrix
}

// Generate generates a scenario of the given number of steps for model m
// seeded from the current time. See GenerateWithSource.
func Generate(m filter.Model, ic filter.InitCond, steps int, missing float64) (*Scenario, error) {
	return GenerateWithSource(m, ic, steps, missing, rand.NewSource(uint64(time.Now().UnixNano())))
}

// GenerateWithSource generates a scenario of the given number of steps for model m.
// The state at the first step is drawn from ic and every following state is
// propagated by m with process noise. Every state is observed with observation
// noise and each observation is dropped with probability missing.
// It returns error if steps is not positive, missing is not a probability or
// ic does not match m.
func GenerateWithSource(m filter.Model, ic filter.InitCond, steps int, missing float64, src rnd.Source) (*Scenario, error) {
	if m == nil || ic == nil {
		return nil, fmt.Errorf("nil model or initial condition: %w", filter.ErrDimensionMismatch)
	}

	if steps <= 0 {
		return nil, fmt.Errorf("invalid number of steps: %d", steps)
	}

	n := m.Dim()
	if ic.State().Len() != n || ic.Cov().SymmetricDim() != n {
		return nil, fmt.Errorf("initial condition does not match model dimension %d: %w", n, filter.ErrDimensionMismatch)
	}

	mask, err := rand.Mask(n, steps, missing, src)
	if err != nil {
		return nil, err
	}

	sys, err := NewSystem(m, src)
	if err != nil {
		return nil, err
	}

	x0, err := newNoise(n, ic.Cov(), src)
	if err != nil {
		return nil, fmt.Errorf("initial condition: %w", err)
	}

	x := &mat.VecDense{}
	x.AddVec(ic.State(), x0.Sample())

	truth := mat.NewDense(n, steps, nil)
	rows := make([][]obs.Value, n)
	for i := range rows {
		rows[i] = make([]obs.Value, steps)
	}

	var state mat.Vector = x
	for t := 0; t < steps; t++ {
		if t > 0 {
			state, err = sys.Propagate(state)
			if err != nil {
				return nil, err
			}
		}
		truth.SetCol(t, mat.Col(nil, 0, state))

		y, err := sys.Observe(state)
		if err != nil {
			return nil, err
		}

		for i := 0; i < n; i++ {
			if mask[i][t] {
				continue
			}
			rows[i][t] = obs.Present(y.AtVec(i))
		}
	}

	o, err := obs.NewMatrix(rows)
	if err != nil {
		return nil, err
	}

	return &Scenario{
		Truth: truth,
		Obs:   o,
	}, nil
}
