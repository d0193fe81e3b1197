package metrics

import (
	"github.com/seralo/diffsim/internal/brownian"
)

// MSD tracks the squared displacement of every particle from its
// initial position. Value reports the population average in m^2 at the
// latest observed step.
type MSD struct {
	name    string
	origins []brownian.Vec
	last    []brownian.Vec
	seen    []bool
}

func NewMSD(pop *brownian.Population) *MSD {
	parts := pop.Particles()
	origins := make([]brownian.Vec, len(parts))
	for i, p := range parts {
		origins[i] = p.R0
	}
	return &MSD{
		name:    "msd",
		origins: origins,
		last:    make([]brownian.Vec, len(parts)),
		seen:    make([]bool, len(parts)),
	}
}

func (m *MSD) Name() string { return m.name }

func (m *MSD) ObserveChunk(particle, start int, pos []brownian.Vec, em []float64) {
	if particle < 0 || particle >= len(m.origins) || len(pos) == 0 {
		return
	}
	m.last[particle] = pos[len(pos)-1]
	m.seen[particle] = true
}

func (m *MSD) Value() float64 {
	var sum float64
	var n int
	for i, ok := range m.seen {
		if !ok {
			continue
		}
		d := m.last[i].Sub(m.origins[i])
		sum += d.X*d.X + d.Y*d.Y + d.Z*d.Z
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

func (m *MSD) Reset() {
	for i := range m.seen {
		m.seen[i] = false
	}
}
