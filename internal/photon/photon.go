// Package photon turns simulated emission traces into photon counts and
// detector-style timestamp streams.
package photon

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
)

var (
	// ErrInvalidRate indicates a non-positive max rate, step or scale, or
	// a negative background rate.
	ErrInvalidRate = errors.New("photon: invalid rate configuration")

	// ErrNoEmission indicates an empty emission trace.
	ErrNoEmission = errors.New("photon: empty emission trace")
)

// CountsConfig parameterizes photon counting on an emission trace.
type CountsConfig struct {
	MaxRate float64 // peak detection rate of one particle, counts/s
	BgRate  float64 // constant background rate, counts/s; 0 disables
	TStep   float64 // duration of one emission bin, s
}

// Config drives timestamp generation over a full emission trace.
type Config struct {
	MaxRate   float64
	BgRate    float64
	TStep     float64
	Scale     int64 // clock ticks per time step; the clock period is TStep/Scale
	MaxPerBin int   // cap on timestamps emitted per bin per particle
	Chunk     int   // bins processed per chunk
	Seed      int64
}

func DefaultConfig() Config {
	return Config{
		MaxRate:   150e3,
		BgRate:    3e3,
		TStep:     0.5e-6,
		Scale:     10,
		MaxPerBin: 4,
		Chunk:     1 << 14,
		Seed:      1,
	}
}

// ClockPeriod is the duration of one timestamp clock tick in seconds.
func (c Config) ClockPeriod() float64 {
	return c.TStep / float64(c.Scale)
}

// Name is the storage key of a timestamp set, such as
// "max_rate150kcps_bg3000cps_seed1".
func Name(maxRate, bgRate float64, seed int64) string {
	return fmt.Sprintf("max_rate%.0fkcps_bg%.0fcps_seed%d", maxRate*1e-3, bgRate, seed)
}

// Timetrace draws per-bin photon counts ~ Poisson(emission*MaxRate*TStep)
// for every particle row. When cfg.BgRate > 0 the returned array has one
// extra final row of background counts ~ Poisson(BgRate*TStep).
func Timetrace(rng *rand.Rand, emission [][]float64, cfg CountsConfig) [][]uint8 {
	if len(emission) == 0 {
		return nil
	}
	bins := len(emission[0])

	rows := len(emission)
	if cfg.BgRate > 0 {
		rows++
	}
	counts := make([][]uint8, rows)
	for i := range counts {
		counts[i] = make([]uint8, bins)
	}

	for i, em := range emission {
		for k, e := range em {
			counts[i][k] = clampU8(poisson(rng, e*cfg.MaxRate*cfg.TStep))
		}
	}
	if cfg.BgRate > 0 {
		lambda := cfg.BgRate * cfg.TStep
		row := counts[rows-1]
		for k := range row {
			row[k] = clampU8(poisson(rng, lambda))
		}
	}
	return counts
}

// Generate draws photon counts over the emission trace chunk-wise and
// expands them into a merged, time-sorted timestamp stream. Background
// timestamps, when cfg.BgRate > 0, carry the conventional particle index
// len(emission).
func Generate(ctx context.Context, emission [][]float64, cfg Config) ([]int64, []uint8, error) {
	if len(emission) == 0 || len(emission[0]) == 0 {
		return nil, nil, ErrNoEmission
	}
	if cfg.MaxRate <= 0 {
		return nil, nil, fmt.Errorf("%w: max rate %g", ErrInvalidRate, cfg.MaxRate)
	}
	if cfg.BgRate < 0 {
		return nil, nil, fmt.Errorf("%w: background rate %g", ErrInvalidRate, cfg.BgRate)
	}
	if cfg.TStep <= 0 {
		return nil, nil, fmt.Errorf("%w: t_step %g", ErrInvalidRate, cfg.TStep)
	}
	if cfg.Scale <= 0 {
		return nil, nil, fmt.Errorf("%w: scale %d", ErrInvalidRate, cfg.Scale)
	}
	if cfg.MaxPerBin <= 0 {
		return nil, nil, fmt.Errorf("%w: max per bin %d", ErrInvalidRate, cfg.MaxPerBin)
	}
	if cfg.Chunk <= 0 {
		return nil, nil, fmt.Errorf("%w: chunk %d", ErrInvalidRate, cfg.Chunk)
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	bins := len(emission[0])
	ccfg := CountsConfig{MaxRate: cfg.MaxRate, BgRate: cfg.BgRate, TStep: cfg.TStep}

	var times []int64
	var particles []uint8
	sub := make([][]float64, len(emission))

	for start := 0; start < bins; start += cfg.Chunk {
		select {
		case <-ctx.Done():
			return nil, nil, ctx.Err()
		default:
		}

		end := start + cfg.Chunk
		if end > bins {
			end = bins
		}
		for i := range emission {
			sub[i] = emission[i][start:end]
		}

		counts := Timetrace(rng, sub, ccfg)
		t, p := Timestamps(counts, int64(start), cfg.Scale, cfg.MaxPerBin)
		times = append(times, t...)
		particles = append(particles, p...)
	}

	return times, particles, nil
}

func clampU8(v int64) uint8 {
	if v > 255 {
		return 255
	}
	return uint8(v)
}
