package metrics

import (
	"math"
	"testing"

	"github.com/seralo/diffsim/internal/brownian"
)

func twoParticlePopulation(t *testing.T) *brownian.Population {
	t.Helper()
	box := brownian.NewBox(8e-6, 8e-6, 12e-6)
	pop, err := brownian.NewPopulationFrom(box,
		brownian.Particle{D: 1e-11, R0: brownian.Vec{}},
		brownian.Particle{D: 1e-11, R0: brownian.Vec{X: 1e-6}},
	)
	if err != nil {
		t.Fatalf("NewPopulationFrom() error = %v", err)
	}
	return pop
}

func TestMSD(t *testing.T) {
	m := NewMSD(twoParticlePopulation(t))

	if m.Name() != "msd" {
		t.Errorf("Name() = %q, want %q", m.Name(), "msd")
	}
	if m.Value() != 0 {
		t.Errorf("Value() before any chunk = %v, want 0", m.Value())
	}

	// Particle 0 moved 2um along x, particle 1 moved 1um along z from
	// its origin at x=1um. Only the last position of a chunk counts.
	m.ObserveChunk(0, 0, []brownian.Vec{{X: 5e-6}, {X: 2e-6}}, []float64{0, 0})
	m.ObserveChunk(1, 0, []brownian.Vec{{X: 1e-6, Z: 1e-6}}, []float64{0})

	want := ((2e-6 * 2e-6) + (1e-6 * 1e-6)) / 2
	if diff := math.Abs(m.Value() - want); diff > 1e-24 {
		t.Errorf("Value() = %v, want %v", m.Value(), want)
	}
}

func TestMSDPartialObservation(t *testing.T) {
	m := NewMSD(twoParticlePopulation(t))

	// Only particle 0 observed; the average must not dilute over the
	// unobserved particle.
	m.ObserveChunk(0, 0, []brownian.Vec{{Y: 3e-6}}, []float64{0})

	want := 3e-6 * 3e-6
	if diff := math.Abs(m.Value() - want); diff > 1e-24 {
		t.Errorf("Value() = %v, want %v", m.Value(), want)
	}
}

func TestMSDLaterChunkWins(t *testing.T) {
	m := NewMSD(twoParticlePopulation(t))

	m.ObserveChunk(0, 0, []brownian.Vec{{X: 9e-6}}, []float64{0})
	m.ObserveChunk(0, 1, []brownian.Vec{{X: 4e-6}}, []float64{0})

	want := 4e-6 * 4e-6
	if diff := math.Abs(m.Value() - want); diff > 1e-24 {
		t.Errorf("Value() = %v, want %v", m.Value(), want)
	}
}

func TestMSDIgnoresOutOfRange(t *testing.T) {
	m := NewMSD(twoParticlePopulation(t))

	m.ObserveChunk(-1, 0, []brownian.Vec{{X: 1}}, []float64{0})
	m.ObserveChunk(7, 0, []brownian.Vec{{X: 1}}, []float64{0})
	m.ObserveChunk(0, 0, nil, nil)

	if m.Value() != 0 {
		t.Errorf("Value() = %v, want 0 after ignored chunks", m.Value())
	}
}

func TestMSDReset(t *testing.T) {
	m := NewMSD(twoParticlePopulation(t))
	m.ObserveChunk(0, 0, []brownian.Vec{{X: 2e-6}}, []float64{0})

	m.Reset()
	if m.Value() != 0 {
		t.Errorf("Value() after Reset() = %v, want 0", m.Value())
	}

	m.ObserveChunk(1, 0, []brownian.Vec{{X: 1e-6, Y: 2e-6}}, []float64{0})
	want := 2e-6 * 2e-6
	if diff := math.Abs(m.Value() - want); diff > 1e-24 {
		t.Errorf("Value() after Reset and reuse = %v, want %v", m.Value(), want)
	}
}

func TestMeanEmission(t *testing.T) {
	m := NewMeanEmission()

	if m.Name() != "mean_emission" {
		t.Errorf("Name() = %q, want %q", m.Name(), "mean_emission")
	}
	if m.Value() != 0 {
		t.Errorf("Value() with no samples = %v, want 0", m.Value())
	}

	m.ObserveChunk(0, 0, nil, []float64{0.2, 0.4})
	m.ObserveChunk(1, 0, nil, []float64{0.6})

	want := (0.2 + 0.4 + 0.6) / 3
	if diff := math.Abs(m.Value() - want); diff > 1e-12 {
		t.Errorf("Value() = %v, want %v", m.Value(), want)
	}

	m.Reset()
	if m.Value() != 0 {
		t.Errorf("Value() after Reset() = %v, want 0", m.Value())
	}
}

func TestPeakEmission(t *testing.T) {
	m := NewPeakEmission()

	if m.Name() != "peak_emission" {
		t.Errorf("Name() = %q, want %q", m.Name(), "peak_emission")
	}

	m.ObserveChunk(0, 0, nil, []float64{0.1, 0.9, 0.3})
	m.ObserveChunk(1, 0, nil, []float64{0.5})

	if m.Value() != 0.9 {
		t.Errorf("Value() = %v, want 0.9", m.Value())
	}

	m.Reset()
	if m.Value() != 0 {
		t.Errorf("Value() after Reset() = %v, want 0", m.Value())
	}
}

func TestOccupancy(t *testing.T) {
	m := NewOccupancy(0.5)

	if m.Name() != "occupancy" {
		t.Errorf("Name() = %q, want %q", m.Name(), "occupancy")
	}
	if m.Value() != 0 {
		t.Errorf("Value() with no samples = %v, want 0", m.Value())
	}

	m.ObserveChunk(0, 0, nil, []float64{0.2, 0.6, 0.7, 0.5})
	m.ObserveChunk(1, 0, nil, []float64{0.9, 0.1})

	// 0.6, 0.7 and 0.9 exceed the threshold; 0.5 does not.
	want := 3.0 / 6.0
	if diff := math.Abs(m.Value() - want); diff > 1e-12 {
		t.Errorf("Value() = %v, want %v", m.Value(), want)
	}

	m.Reset()
	if m.Value() != 0 {
		t.Errorf("Value() after Reset() = %v, want 0", m.Value())
	}
}
