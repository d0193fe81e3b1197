package brownian

import (
	"context"
	"fmt"
	"math/rand"

	"go.uber.org/zap"

	"github.com/seralo/diffsim/internal/diffusion"
	"github.com/seralo/diffsim/internal/psf"
)

// DeriveSeed combines a base seed with the simulation and engine indices.
// It yields different but deterministic seeds in parallel computations.
func DeriveSeed(seed int64, simID, engineID int) int64 {
	return seed + int64(engineID) + 100*int64(simID)
}

// Simulator runs chunked Brownian motion and emission simulations for one
// particle population.
type Simulator struct {
	pop      *Population
	box      Box
	psf      psf.PSF
	boundary Boundary
	metrics  []Metric
	logger   *zap.Logger
}

func New(pop *Population, box Box, p psf.PSF, b Boundary) *Simulator {
	return &Simulator{
		pop:      pop,
		box:      box,
		psf:      p,
		boundary: b,
		metrics:  make([]Metric, 0),
		logger:   zap.NewNop(),
	}
}

func (s *Simulator) AddMetric(m Metric) { s.metrics = append(s.metrics, m) }

func (s *Simulator) SetLogger(l *zap.Logger) {
	if l != nil {
		s.logger = l
	}
}

func (s *Simulator) Box() Box                { return s.box }
func (s *Simulator) Population() *Population { return s.pop }

// Run simulates Steps() time steps of every particle in chunks of
// cfg.Chunk. Within a chunk each particle advances by Gaussian increments
// of deviation sqrt(2*D*t_step) per axis, is folded through the boundary,
// and emits the squared PSF amplitude at its folded position.
//
// Cancellation is checked between chunks; a canceled run returns a
// *RunError wrapping ctx.Err() and no result.
func (s *Simulator) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := s.validate(cfg); err != nil {
		return nil, err
	}

	steps := cfg.Steps()
	rng := rand.New(rand.NewSource(DeriveSeed(cfg.Seed, cfg.SimID, cfg.EngineID)))

	for _, m := range s.metrics {
		m.Reset()
	}

	n := s.pop.Len()
	rows := n
	if cfg.TotalEmission {
		rows = 1
	}
	result := &Result{
		Emission: make([][]float64, rows),
		Metrics:  make(map[string]float64),
	}
	for i := range result.Emission {
		result.Emission[i] = make([]float64, steps)
	}
	if cfg.SavePositions {
		result.Positions = make([][]Vec, n)
		for i := range result.Positions {
			result.Positions[i] = make([]Vec, steps)
		}
	}

	pos := make([]Vec, n)
	sigma := make([]float64, n)
	for i, par := range s.pop.particles {
		pos[i] = par.R0
		sigma[i] = diffusion.SigmaStep(par.D, cfg.TStep)
	}

	chunk := cfg.Chunk
	if chunk > steps {
		chunk = steps
	}
	emBuf := make([]float64, chunk)
	posBuf := make([]Vec, chunk)

	s.logger.Info("run started",
		zap.Int("particles", n),
		zap.Int("steps", steps),
		zap.Float64("t_step", cfg.TStep),
		zap.String("boundary", s.boundary.Name()),
		zap.String("psf", s.psf.Name()))

	for start := 0; start < steps; start += chunk {
		select {
		case <-ctx.Done():
			return nil, &RunError{
				Step:    start,
				Time:    float64(start) * cfg.TStep,
				Wrapped: ctx.Err(),
			}
		default:
		}

		end := start + chunk
		if end > steps {
			end = steps
		}
		s.simChunk(rng, cfg, pos, sigma, result, start, end, emBuf, posBuf)

		s.logger.Debug("chunk simulated",
			zap.Int("start", start),
			zap.Float64("t", float64(end)*cfg.TStep))
	}

	result.StepsTaken = steps
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	s.logger.Info("run finished", zap.Int("steps", steps))
	return result, nil
}

func (s *Simulator) simChunk(rng *rand.Rand, cfg Config, pos []Vec, sigma []float64, result *Result, start, end int, emBuf []float64, posBuf []Vec) {
	chunk := end - start
	for i := range s.pop.particles {
		x := pos[i]
		for k := 0; k < chunk; k++ {
			x.X = s.boundary.Fold(x.X+rng.NormFloat64()*sigma[i], s.box.X1, s.box.X2)
			x.Y = s.boundary.Fold(x.Y+rng.NormFloat64()*sigma[i], s.box.Y1, s.box.Y2)
			x.Z = s.boundary.Fold(x.Z+rng.NormFloat64()*sigma[i], s.box.Z1, s.box.Z2)

			// Square the PSF amplitude: excitation times detection.
			a := s.psf.Eval(x.Radial(), x.Z)
			emBuf[k] = a * a
			posBuf[k] = x
		}
		pos[i] = x

		for _, m := range s.metrics {
			m.ObserveChunk(i, start, posBuf[:chunk], emBuf[:chunk])
		}

		if cfg.TotalEmission {
			row := result.Emission[0][start:end]
			for k := 0; k < chunk; k++ {
				row[k] += emBuf[k]
			}
		} else {
			copy(result.Emission[i][start:end], emBuf[:chunk])
		}
		if cfg.SavePositions {
			copy(result.Positions[i][start:end], posBuf[:chunk])
		}
	}
}

func (s *Simulator) validate(cfg Config) error {
	if cfg.TStep <= 0 {
		return fmt.Errorf("%w: t_step must be positive, got %g", ErrInvalidConfig, cfg.TStep)
	}
	if cfg.TMax <= 0 {
		return fmt.Errorf("%w: t_max must be positive, got %g", ErrInvalidConfig, cfg.TMax)
	}
	if cfg.Chunk <= 0 {
		return fmt.Errorf("%w: chunk must be positive, got %d", ErrInvalidConfig, cfg.Chunk)
	}
	if cfg.Steps() < 1 {
		return fmt.Errorf("%w: t_max %g shorter than one step %g", ErrInvalidConfig, cfg.TMax, cfg.TStep)
	}
	if err := s.box.Validate(); err != nil {
		return err
	}
	if s.pop == nil || s.pop.Len() == 0 {
		return ErrEmptyPopulation
	}
	return nil
}
