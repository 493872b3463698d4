package filter

import "gonum.org/v1/gonum/mat"

// Model is a linear time-invariant model of a dynamical system
// whose state is observed directly, one entity per state element.
type Model interface {
	// Dim returns the number of tracked entities
	Dim() int
	// StateMatrix returns state transition matrix
	StateMatrix() mat.Matrix
	// StateNoiseCov returns process noise covariance
	StateNoiseCov() mat.Symmetric
	// OutputNoiseCov returns observation noise covariance
	OutputNoiseCov() mat.Symmetric
}

// InitCond is initial state condition of the filter
type InitCond interface {
	// State returns initial filter state
	State() mat.Vector
	// Cov returns initial state covariance
	Cov() mat.Symmetric
}

// Estimate is dynamical system filter estimate
type Estimate interface {
	// Val returns estimate value
	Val() mat.Vector
	// Cov returns estimate covariance
	Cov() mat.Symmetric
}

// Noise is dynamical system noise
type Noise interface {
	// Mean returns noise mean
	Mean() []float64
	// Cov returns covariance matrix of the noise
	Cov() mat.Symmetric
	// Sample returns a sample of the noise
	Sample() mat.Vector
}
