package diffusion

import (
	"fmt"
	"math"
)

// StokesEinstein returns the translational diffusion coefficient in m^2/s
// of a sphere of hydrodynamic diameter d (m) in a fluid of dynamic
// viscosity eta (Pa*s) at absolute temperature T (K):
//
//	D = kB * T / (3 * pi * eta * d)
func StokesEinstein(d, eta, T float64) (float64, error) {
	if d <= 0 {
		return 0, fmt.Errorf("%w: diameter must be positive, got %g", ErrInvalidArgument, d)
	}
	if eta <= 0 {
		return 0, fmt.Errorf("%w: viscosity must be positive, got %g", ErrInvalidArgument, eta)
	}
	if T <= 0 {
		return 0, fmt.Errorf("%w: temperature must be positive, got %g", ErrInvalidArgument, T)
	}
	return Boltzmann * T / (3 * math.Pi * eta * d), nil
}

// CoefficientFromSpot returns the diffusion coefficient in m^2/s implied
// by a residence time tau (s) in an observation spot of size s (m),
// treating the spot size as the displacement accumulated over tau in
// dims dimensions:
//
//	D = s^2 / (2 * N * tau)
//
// This is an independent estimate from StokesEinstein; comparing the two
// is the point, so they are never merged.
func CoefficientFromSpot(s float64, dims int, tau float64) (float64, error) {
	if s <= 0 {
		return 0, fmt.Errorf("%w: spot size must be positive, got %g", ErrInvalidArgument, s)
	}
	if dims <= 0 {
		return 0, fmt.Errorf("%w: dimensions must be positive, got %d", ErrInvalidArgument, dims)
	}
	if tau <= 0 {
		return 0, fmt.Errorf("%w: residence time must be positive, got %g", ErrInvalidArgument, tau)
	}
	return s * s / (2 * float64(dims) * tau), nil
}
