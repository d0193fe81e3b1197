package brownian

import (
	"errors"
	"math"
	"math/rand"
	"testing"
)

func TestNewPopulationPlacement(t *testing.T) {
	box := NewBox(8e-6, 8e-6, 12e-6)
	pop, err := NewPopulation(50, 1.2e-11, box, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("population failed: %v", err)
	}

	if pop.Len() != 50 {
		t.Fatalf("expected 50 particles, got %d", pop.Len())
	}
	for i, par := range pop.Particles() {
		if !box.Contains(par.R0) {
			t.Errorf("particle %d starts outside box: %v", i, par.R0)
		}
		if par.D != 1.2e-11 {
			t.Errorf("particle %d has D=%g, want 1.2e-11", i, par.D)
		}
	}
}

func TestNewPopulationDeterministic(t *testing.T) {
	box := NewBox(8e-6, 8e-6, 12e-6)

	a, err := NewPopulation(10, 1e-11, box, rand.New(rand.NewSource(42)))
	if err != nil {
		t.Fatalf("population failed: %v", err)
	}
	b, err := NewPopulation(10, 1e-11, box, rand.New(rand.NewSource(42)))
	if err != nil {
		t.Fatalf("population failed: %v", err)
	}

	pa, pb := a.Particles(), b.Particles()
	for i := range pa {
		if pa[i] != pb[i] {
			t.Errorf("particle %d differs: %v vs %v", i, pa[i], pb[i])
		}
	}
}

func TestPopulationErrors(t *testing.T) {
	box := NewBox(8e-6, 8e-6, 12e-6)
	rng := rand.New(rand.NewSource(1))

	if _, err := NewPopulation(0, 1e-11, box, rng); !errors.Is(err, ErrEmptyPopulation) {
		t.Errorf("expected ErrEmptyPopulation, got %v", err)
	}
	if _, err := NewPopulation(5, -1e-11, box, rng); !errors.Is(err, ErrInvalidCoefficient) {
		t.Errorf("expected ErrInvalidCoefficient, got %v", err)
	}
	if _, err := NewPopulation(5, 1e-11, Box{}, rng); !errors.Is(err, ErrInvalidBox) {
		t.Errorf("expected ErrInvalidBox, got %v", err)
	}
	if _, err := NewPopulationFrom(box); !errors.Is(err, ErrEmptyPopulation) {
		t.Errorf("expected ErrEmptyPopulation, got %v", err)
	}
}

func TestCoefficientCounts(t *testing.T) {
	box := NewBox(8e-6, 8e-6, 12e-6)
	rng := rand.New(rand.NewSource(1))

	pop, err := NewPopulation(20, 1.2e-11, box, rng)
	if err != nil {
		t.Fatalf("population failed: %v", err)
	}
	if err := pop.Add(15, 6e-12, rng); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	counts := pop.CoefficientCounts()
	want := []CoeffCount{{D: 1.2e-11, N: 20}, {D: 6e-12, N: 15}}
	if len(counts) != len(want) {
		t.Fatalf("expected %d groups, got %d", len(want), len(counts))
	}
	for i := range want {
		if counts[i] != want[i] {
			t.Errorf("group %d: got %+v, want %+v", i, counts[i], want[i])
		}
	}

	if got := pop.ShortName(); got != "P20_D1.2e-11_P15_D6e-12" {
		t.Errorf("unexpected short name: %q", got)
	}
}

func TestConcentration(t *testing.T) {
	box := NewBox(8e-6, 8e-6, 12e-6)

	got := ConcentrationPM(20, box)
	// 20 / NA particles in 7.68e-13 L.
	want := (20.0 / 6.02214076e23) / 7.68e-13 * 1e12
	if math.Abs(got-want) > want*1e-9 {
		t.Errorf("expected %.2f pM, got %.2f", want, got)
	}
	if got < 43 || got > 44 {
		t.Errorf("expected about 43 pM, got %.2f", got)
	}
}
