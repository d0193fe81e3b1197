package diffusion

import (
	"fmt"
	"math"
)

// Sigma returns the standard deviation in m of the displacement of a
// particle with diffusion coefficient d (m^2/s) after time t (s) in dims
// dimensions:
//
//	sigma = sqrt(2 * N * d * t)
//
// d = 0 or t = 0 are valid and give sigma = 0.
func Sigma(d float64, dims int, t float64) (float64, error) {
	if dims <= 0 {
		return 0, fmt.Errorf("%w: dimensions must be positive, got %d", ErrInvalidArgument, dims)
	}
	if d < 0 {
		return 0, fmt.Errorf("%w: diffusion coefficient must be non-negative, got %g", ErrInvalidArgument, d)
	}
	if t < 0 {
		return 0, fmt.Errorf("%w: time must be non-negative, got %g", ErrInvalidArgument, t)
	}
	return math.Sqrt(2 * float64(dims) * d * t), nil
}

// Time returns the time in s for a particle with diffusion coefficient d
// (m^2/s) to spread a distance x (m) in dims dimensions:
//
//	t = x^2 / (2 * N * d)
func Time(x, d float64, dims int) (float64, error) {
	if d <= 0 {
		return 0, fmt.Errorf("%w: diffusion coefficient must be positive, got %g", ErrInvalidArgument, d)
	}
	if dims <= 0 {
		return 0, fmt.Errorf("%w: dimensions must be positive, got %d", ErrInvalidArgument, dims)
	}
	if x < 0 {
		return 0, fmt.Errorf("%w: distance must be non-negative, got %g", ErrInvalidArgument, x)
	}
	return x * x / (2 * float64(dims) * d), nil
}

// SigmaStep is the per-axis step deviation sqrt(2*d*dt) used when drawing
// Gaussian increments of a discretized Wiener process. It is Sigma with
// N = 1 and no validation, for use in inner loops with already checked
// parameters.
func SigmaStep(d, dt float64) float64 {
	return math.Sqrt(2 * d * dt)
}
