package kf

import (
	filter "github.com/milosgajdos/go-assimilate"
	"github.com/milosgajdos/go-assimilate/estimate"
	"gonum.org/v1/gonum/mat"
)

// Step is an immutable record of a single filter time step.
type Step struct {
	// time is 1-based step index
	time int
	// forecast is the prior estimate before observing this step
	forecast *estimate.Base
	// analysis is the posterior estimate after observing this step
	analysis *estimate.Base
	// observed are indices of observed entities
	observed []int
	// inn is innovation vector
	inn *mat.VecDense
	// innCov is innovation covariance
	innCov *mat.SymDense
	// gain is Kalman gain
	gain *mat.Dense
	// logLik is innovation log density
	logLik float64
}

// Time returns 1-based time step index.
func (s Step) Time() int {
	return s.time
}

// Forecast returns the forecast (prior) estimate of the step.
func (s Step) Forecast() filter.Estimate {
	return s.forecast
}

// Analysis returns the analysis (posterior) estimate of the step.
func (s Step) Analysis() filter.Estimate {
	return s.analysis
}

// Observed returns the ordered indices of entities observed at this step.
func (s Step) Observed() []int {
	idx := make([]int, len(s.observed))
	copy(idx, s.observed)

	return idx
}

// Innovation returns the innovation vector y - H*mu_f.
// It returns nil if nothing was observed.
func (s Step) Innovation() mat.Vector {
	if s.inn == nil {
		return nil
	}

	inn := &mat.VecDense{}
	inn.CloneFromVec(s.inn)

	return inn
}

// InnovationCov returns the innovation covariance H*P_f*H' + R_obs.
// It returns nil if nothing was observed.
func (s Step) InnovationCov() mat.Symmetric {
	if s.innCov == nil {
		return nil
	}

	cov := mat.NewSymDense(s.innCov.SymmetricDim(), nil)
	cov.CopySym(s.innCov)

	return cov
}

// Gain returns Kalman gain.
// It returns nil if nothing was observed.
func (s Step) Gain() mat.Matrix {
	if s.gain == nil {
		return nil
	}

	gain := &mat.Dense{}
	gain.CloneFrom(s.gain)

	return gain
}

// LogLik returns log density of the step innovation.
// It is zero when nothing was observed.
func (s Step) LogLik() float64 {
	return s.logLik
}

// Result is an immutable result of a filter run over T time steps.
type Result struct {
	steps []Step
	// last is the forecast past the final step
	last *estimate.Base
}

// Len returns the number of time steps T.
func (r *Result) Len() int {
	return len(r.steps)
}

// Steps returns step records in time order.
func (r *Result) Steps() []Step {
	steps := make([]Step, len(r.steps))
	copy(steps, r.steps)

	return steps
}

// Forecasts returns T+1 forecast estimates: the initial condition
// followed by the forecast of every subsequent step.
func (r *Result) Forecasts() []filter.Estimate {
	fc := make([]filter.Estimate, 0, len(r.steps)+1)
	for _, s := range r.steps {
		fc = append(fc, s.forecast)
	}

	return append(fc, r.last)
}

// Analyses returns T analysis estimates.
func (r *Result) Analyses() []filter.Estimate {
	an := make([]filter.Estimate, len(r.steps))
	for i, s := range r.steps {
		an[i] = s.analysis
	}

	return an
}

// LogLikelihood returns sum of innovation log densities over all steps.
func (r *Result) LogLikelihood() float64 {
	var ll float64
	for _, s := range r.steps {
		ll += s.logLik
	}

	return ll
}
