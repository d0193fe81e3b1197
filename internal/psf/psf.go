// Package psf models confocal excitation point-spread functions sampled
// by the trajectory simulation.
package psf

import (
	"fmt"
	"math"
)

// PSF is a normalized excitation profile. Eval returns the amplitude in
// [0, 1] at radial distance r from the optical axis and axial offset z,
// both in meters. Detected emission is the square of this amplitude.
type PSF interface {
	Eval(r, z float64) float64
	WaistXY() float64
	WaistZ() float64
	Name() string
}

// Gaussian is the analytic 3-D Gaussian beam profile
// exp(-2 r^2/wxy^2) * exp(-2 z^2/wz^2).
type Gaussian struct {
	wxy, wz float64
}

// DefaultWaistXY and DefaultWaistZ describe a typical confocal spot.
const (
	DefaultWaistXY = 0.3e-6
	DefaultWaistZ  = 0.5e-6
)

func NewGaussian() *Gaussian {
	return &Gaussian{wxy: DefaultWaistXY, wz: DefaultWaistZ}
}

func NewGaussianWaists(wxy, wz float64) (*Gaussian, error) {
	if wxy <= 0 || wz <= 0 {
		return nil, fmt.Errorf("psf: waists must be positive, got wxy=%g wz=%g", wxy, wz)
	}
	return &Gaussian{wxy: wxy, wz: wz}, nil
}

func (g *Gaussian) Eval(r, z float64) float64 {
	return math.Exp(-2*r*r/(g.wxy*g.wxy)) * math.Exp(-2*z*z/(g.wz*g.wz))
}

func (g *Gaussian) WaistXY() float64 { return g.wxy }
func (g *Gaussian) WaistZ() float64  { return g.wz }

func (g *Gaussian) Name() string {
	return fmt.Sprintf("gauss_wxy%.0fnm_wz%.0fnm", g.wxy*1e9, g.wz*1e9)
}
