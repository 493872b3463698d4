package scenario

import (
	"context"
	"fmt"

	filter "github.com/milosgajdos/go-assimilate"
	"github.com/milosgajdos/go-assimilate/kalman/kf"
	"github.com/milosgajdos/go-assimilate/obs"
	"golang.org/x/sync/errgroup"
)

// Scenario is a single independent filter run
type Scenario struct {
	// Name identifies the scenario in errors and output
	Name string
	// Model is the filter model
	Model filter.Model
	// InitCond is the filter initial condition
	InitCond filter.InitCond
	// Obs are the observations the filter runs over
	Obs *obs.Matrix
}

// Run runs the filter for every scenario in s concurrently with at most limit
// runs in flight; limit <= 0 means no limit.
// It returns the results in the same order as s.
// The first failing run cancels the runs which have not started yet and its
// error is returned annotated with the scenario name.
func Run(ctx context.Context, s []Scenario, limit int) ([]*kf.Result, error) {
	res := make([]*kf.Result, len(s))

	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	for i := range s {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			r, err := kf.Run(s[i].Model, s[i].InitCond, s[i].Obs)
			if err != nil {
				return fmt.Errorf("scenario %q: %w", s[i].Name, err)
			}
			res[i] = r

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return res, nil
}
