package brownian

import (
	"errors"
	"fmt"
)

// Domain errors for simulation runs.
var (
	// ErrInvalidConfig indicates a run configuration with non-positive
	// step, duration or chunk size.
	ErrInvalidConfig = errors.New("brownian: invalid config")

	// ErrInvalidBox indicates a box with an empty or inverted extent.
	ErrInvalidBox = errors.New("brownian: invalid box")

	// ErrEmptyPopulation indicates a simulation without particles.
	ErrEmptyPopulation = errors.New("brownian: empty particle population")

	// ErrInvalidCoefficient indicates a negative diffusion coefficient.
	ErrInvalidCoefficient = errors.New("brownian: negative diffusion coefficient")
)

// RunError wraps an error with the step and simulated time it occurred at.
type RunError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *RunError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *RunError) Unwrap() error {
	return e.Wrapped
}
