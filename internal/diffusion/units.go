package diffusion

import "fmt"

// Unit is a named linear rescaling of a diffusion coefficient from SI
// m^2/s. Factor is the multiplier applied when converting out of SI.
type Unit struct {
	Name   string
	Factor float64
}

var (
	M2PerS   = Unit{Name: "m2/s", Factor: 1}
	Um2PerS  = Unit{Name: "um2/s", Factor: 1e12}
	Nm2PerUs = Unit{Name: "nm2/us", Factor: 1e12}
	Um2PerMs = Unit{Name: "um2/ms", Factor: 1e9}
)

// Units lists the supported coefficient units.
var Units = []Unit{M2PerS, Um2PerS, Nm2PerUs, Um2PerMs}

// Rescale converts a coefficient d from m^2/s into u.
func Rescale(d float64, u Unit) float64 {
	return d * u.Factor
}

// ToSI converts a coefficient expressed in u back to m^2/s.
func ToSI(d float64, u Unit) float64 {
	return d / u.Factor
}

// ParseUnit resolves a unit by name.
func ParseUnit(name string) (Unit, error) {
	for _, u := range Units {
		if u.Name == name {
			return u, nil
		}
	}
	return Unit{}, fmt.Errorf("%w: unknown unit %q", ErrInvalidArgument, name)
}
