package filter

import (
	"errors"
	"fmt"
)

var (
	// ErrDimensionMismatch is returned when model matrices, initial condition
	// or observations disagree on the number of entities.
	ErrDimensionMismatch = errors.New("dimension mismatch")
	// ErrInvalidCovariance is returned when a covariance matrix
	// is not symmetric positive semi-definite.
	ErrInvalidCovariance = errors.New("invalid covariance")
	// ErrSingularInnovationCovariance is returned when innovation covariance
	// can not be solved within numerical tolerance.
	ErrSingularInnovationCovariance = errors.New("singular innovation covariance")
)

// StepError is an error which occurred at a particular time step of a filter run.
type StepError struct {
	// Step is 1-based time step index
	Step int
	// Err is the cause
	Err error
}

// Error implements error interface.
func (e *StepError) Error() string {
	return fmt.Sprintf("step %d: %v", e.Step, e.Err)
}

// Unwrap returns the cause.
func (e *StepError) Unwrap() error {
	return e.Err
}
