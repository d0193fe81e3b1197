package brownian

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/seralo/diffsim/internal/diffusion"
)

// Particle is a single diffusing particle: its coefficient in m^2/s and
// its initial position.
type Particle struct {
	D  float64
	R0 Vec
}

// Population is an ordered set of particles placed in a box.
type Population struct {
	particles []Particle
	box       Box
}

// CoeffCount is a run of consecutive particles sharing one coefficient.
type CoeffCount struct {
	D float64
	N int
}

func place(n int, d float64, box Box, rng *rand.Rand) []Particle {
	ps := make([]Particle, n)
	for i := range ps {
		ps[i] = Particle{
			D: d,
			R0: Vec{
				X: rng.Float64()*(box.X2-box.X1) + box.X1,
				Y: rng.Float64()*(box.Y2-box.Y1) + box.Y1,
				Z: rng.Float64()*(box.Z2-box.Z1) + box.Z1,
			},
		}
	}
	return ps
}

// NewPopulation places n particles with diffusion coefficient d uniformly
// at random inside box, drawing positions from rng.
func NewPopulation(n int, d float64, box Box, rng *rand.Rand) (*Population, error) {
	if err := box.Validate(); err != nil {
		return nil, err
	}
	if n <= 0 {
		return nil, fmt.Errorf("%w: requested %d particles", ErrEmptyPopulation, n)
	}
	if d < 0 {
		return nil, fmt.Errorf("%w: got %g", ErrInvalidCoefficient, d)
	}
	return &Population{particles: place(n, d, box, rng), box: box}, nil
}

// NewPopulationFrom builds a population from explicit particles, as when
// reloading a stored run.
func NewPopulationFrom(box Box, particles ...Particle) (*Population, error) {
	if err := box.Validate(); err != nil {
		return nil, err
	}
	if len(particles) == 0 {
		return nil, ErrEmptyPopulation
	}
	for _, par := range particles {
		if par.D < 0 {
			return nil, fmt.Errorf("%w: got %g", ErrInvalidCoefficient, par.D)
		}
	}
	ps := make([]Particle, len(particles))
	copy(ps, particles)
	return &Population{particles: ps, box: box}, nil
}

// Add appends n more particles with coefficient d at random positions.
func (p *Population) Add(n int, d float64, rng *rand.Rand) error {
	if n <= 0 {
		return fmt.Errorf("%w: requested %d particles", ErrEmptyPopulation, n)
	}
	if d < 0 {
		return fmt.Errorf("%w: got %g", ErrInvalidCoefficient, d)
	}
	p.particles = append(p.particles, place(n, d, p.box, rng)...)
	return nil
}

func (p *Population) Len() int {
	return len(p.particles)
}

// Particles returns a copy of the particle list.
func (p *Population) Particles() []Particle {
	out := make([]Particle, len(p.particles))
	copy(out, p.particles)
	return out
}

// CoefficientCounts groups consecutive particles by coefficient,
// preserving insertion order.
func (p *Population) CoefficientCounts() []CoeffCount {
	var counts []CoeffCount
	for _, par := range p.particles {
		if len(counts) > 0 && counts[len(counts)-1].D == par.D {
			counts[len(counts)-1].N++
			continue
		}
		counts = append(counts, CoeffCount{D: par.D, N: 1})
	}
	return counts
}

// ShortName is a compact population label such as "P20_D1.2e-11", used in
// run names.
func (p *Population) ShortName() string {
	parts := make([]string, 0, 1)
	for _, c := range p.CoefficientCounts() {
		parts = append(parts, fmt.Sprintf("P%d_D%.2g", c.N, c.D))
	}
	return strings.Join(parts, "_")
}

func (p *Population) String() string {
	parts := make([]string, 0, 1)
	for _, c := range p.CoefficientCounts() {
		parts = append(parts, fmt.Sprintf("#Particles: %d D: %.2g", c.N, c.D))
	}
	return strings.Join(parts, ", ")
}

// Concentration of n particles in box, in mol/L.
func Concentration(n int, box Box) float64 {
	return (float64(n) / diffusion.Avogadro) / box.VolumeLiters()
}

// ConcentrationPM is Concentration expressed in picomolar.
func ConcentrationPM(n int, box Box) float64 {
	return Concentration(n, box) * 1e12
}
