package brownian

import "math"

// Boundary folds a coordinate that stepped outside [lo, hi] back inside.
type Boundary interface {
	Fold(x, lo, hi float64) float64
	Name() string
}

// Periodic implements periodic boundary conditions: a particle leaving
// through one face re-enters through the opposite one.
type Periodic struct{}

func (Periodic) Fold(x, lo, hi float64) float64 {
	folded := math.Mod(x-lo, hi-lo)
	if folded < 0 {
		folded += hi - lo
	}
	return folded + lo
}

func (Periodic) Name() string { return "periodic" }

// Mirror implements reflective boundary conditions: a particle bounces
// off the box faces.
type Mirror struct{}

func (Mirror) Fold(x, lo, hi float64) float64 {
	for {
		switch {
		case x > hi:
			x = 2*hi - x
		case x < lo:
			x = 2*lo - x
		default:
			return x
		}
	}
}

func (Mirror) Name() string { return "mirror" }
