package experiment

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/seralo/diffsim/internal/brownian"
	"github.com/seralo/diffsim/internal/config"
	"github.com/seralo/diffsim/internal/diffusion"
	"github.com/seralo/diffsim/internal/psf"
)

type Config struct {
	Particles int
	D         float64

	// Stokes-Einstein inputs, used when D is zero.
	Diameter    float64
	Viscosity   float64
	Temperature float64

	Box      brownian.Box
	TStep    float64
	TMax     float64
	Chunk    int
	Seed     int64
	SimID    int
	EngineID int

	SavePositions bool
	TotalEmission bool
}

// Coefficient resolves the diffusion coefficient: D when set, the
// Stokes-Einstein relation over the triple otherwise.
func (c Config) Coefficient() (float64, error) {
	if c.D != 0 {
		return c.D, nil
	}
	d, err := diffusion.StokesEinstein(c.Diameter, c.Viscosity, c.Temperature)
	if err != nil {
		return 0, fmt.Errorf("resolving coefficient: %w", err)
	}
	return d, nil
}

// FromConfig maps a file configuration onto an experiment configuration.
func FromConfig(c *config.Config) Config {
	return Config{
		Particles:     c.Particles,
		D:             c.D,
		Diameter:      c.Diameter,
		Viscosity:     c.Viscosity,
		Temperature:   c.Temperature,
		Box:           brownian.NewBox(c.Box.X, c.Box.Y, c.Box.Z),
		TStep:         c.TStep,
		TMax:          c.TMax,
		Chunk:         c.Chunk,
		Seed:          c.Seed,
		SimID:         c.SimID,
		EngineID:      c.EngineID,
		SavePositions: c.SavePositions,
		TotalEmission: c.TotalEmission,
	}
}

type Experiment struct {
	cfg        Config
	simulator  *brownian.Simulator
	coeff      float64
	randSource *rand.Rand
}

func New(cfg Config) *Experiment {
	return &Experiment{
		cfg:        cfg,
		randSource: rand.New(rand.NewSource(cfg.Seed)),
	}
}

// BuildPopulation resolves the coefficient and places the particles.
func (e *Experiment) BuildPopulation() (*brownian.Population, error) {
	d, err := e.cfg.Coefficient()
	if err != nil {
		return nil, err
	}
	e.coeff = d
	return brownian.NewPopulation(e.cfg.Particles, d, e.cfg.Box, e.randSource)
}

func (e *Experiment) Setup(pop *brownian.Population, p psf.PSF, boundary brownian.Boundary, ms []brownian.Metric) error {
	if pop == nil {
		return fmt.Errorf("experiment needs a population")
	}
	e.simulator = brownian.New(pop, e.cfg.Box, p, boundary)
	for _, m := range ms {
		e.simulator.AddMetric(m)
	}
	return nil
}

func (e *Experiment) Run(ctx context.Context) (*brownian.Result, error) {
	if e.simulator == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	return e.simulator.Run(ctx, e.SimConfig())
}

// SimConfig is the engine configuration this experiment runs with.
func (e *Experiment) SimConfig() brownian.Config {
	return brownian.Config{
		TStep:         e.cfg.TStep,
		TMax:          e.cfg.TMax,
		Chunk:         e.cfg.Chunk,
		Seed:          e.cfg.Seed,
		SimID:         e.cfg.SimID,
		EngineID:      e.cfg.EngineID,
		SavePositions: e.cfg.SavePositions,
		TotalEmission: e.cfg.TotalEmission,
	}
}

// GetSimulator returns the underlying simulator for adding observers
func (e *Experiment) GetSimulator() *brownian.Simulator {
	return e.simulator
}

// Coefficient is the resolved coefficient after BuildPopulation.
func (e *Experiment) Coefficient() float64 {
	return e.coeff
}
