package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for simulation operations.
var (
	// ErrInvalidParameter indicates a plant, controller or run parameter
	// outside its admissible range.
	ErrInvalidParameter = errors.New("dynamo: invalid parameter")

	// ErrInvalidState indicates a state that left the finite reals.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrEmptySeries indicates a metric was asked about an empty series.
	ErrEmptySeries = errors.New("dynamo: empty series")

	// ErrLengthMismatch indicates paired series of different lengths.
	ErrLengthMismatch = errors.New("dynamo: series length mismatch")
)

// ParamError names the offending parameter and unwraps to ErrInvalidParameter.
type ParamError struct {
	Name   string
	Value  float64
	Reason string
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("%s: %s %s (got %g)", ErrInvalidParameter, e.Name, e.Reason, e.Value)
}

func (e *ParamError) Unwrap() error {
	return ErrInvalidParameter
}

// SimulationError wraps an error with the step at which it surfaced.
type SimulationError struct {
	Step    int
	Time    float64
	Sample  Sample
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
