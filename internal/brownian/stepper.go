package brownian

import (
	"math/rand"

	"github.com/seralo/diffsim/internal/diffusion"
)

// Stepper advances a simulation one time step at a time, for interactive
// views that render between steps.
type Stepper struct {
	sim   *Simulator
	tstep float64
	seed  int64
	rng   *rand.Rand
	pos   []Vec
	em    []float64
	sigma []float64
	steps int
}

func NewStepper(s *Simulator, tstep float64, seed int64) *Stepper {
	st := &Stepper{sim: s, tstep: tstep, seed: seed}
	st.Reset()
	return st
}

// Reset rewinds to the start positions and reseeds the random stream, so
// the same walk replays.
func (st *Stepper) Reset() {
	n := st.sim.pop.Len()
	st.rng = rand.New(rand.NewSource(st.seed))
	st.steps = 0
	st.pos = make([]Vec, n)
	st.em = make([]float64, n)
	st.sigma = make([]float64, n)
	for i, par := range st.sim.pop.particles {
		st.pos[i] = par.R0
		st.sigma[i] = diffusion.SigmaStep(par.D, st.tstep)
	}
}

// Step advances every particle once. The returned slices are owned by the
// Stepper and reused across calls.
func (st *Stepper) Step() ([]Vec, []float64) {
	s := st.sim
	for i := range st.pos {
		x := st.pos[i]
		x.X = s.boundary.Fold(x.X+st.rng.NormFloat64()*st.sigma[i], s.box.X1, s.box.X2)
		x.Y = s.boundary.Fold(x.Y+st.rng.NormFloat64()*st.sigma[i], s.box.Y1, s.box.Y2)
		x.Z = s.boundary.Fold(x.Z+st.rng.NormFloat64()*st.sigma[i], s.box.Z1, s.box.Z2)
		st.pos[i] = x

		a := s.psf.Eval(x.Radial(), x.Z)
		st.em[i] = a * a
	}
	st.steps++
	return st.pos, st.em
}

func (st *Stepper) Time() float64 {
	return float64(st.steps) * st.tstep
}

func (st *Stepper) Positions() []Vec    { return st.pos }
func (st *Stepper) Emission() []float64 { return st.em }
