package brownian

import (
	"strings"
	"testing"
)

func TestCompactName(t *testing.T) {
	sim, _ := testSimulator(t, 20, 1.2e-11, 1)
	cfg := DefaultConfig()

	name := sim.CompactName(cfg)

	if len(name) < 7 || name[6] != '_' {
		t.Fatalf("expected 6-digit hash prefix, got %q", name)
	}
	for _, part := range []string{"P20_D1.2e-11", "43pM", "step0.5us", "t_max0.3s", "ID0-0"} {
		if !strings.Contains(name, part) {
			t.Errorf("expected %q in name %q", part, name)
		}
	}

	cfg.SimID = 3
	cfg.EngineID = 1
	if got := sim.CompactName(cfg); !strings.HasSuffix(got, "ID3-1") {
		t.Errorf("expected ID3-1 suffix, got %q", got)
	}
}

func TestHashStability(t *testing.T) {
	sim, _ := testSimulator(t, 20, 1.2e-11, 1)
	cfg := DefaultConfig()

	a := sim.Hash(cfg)
	if len(a) != 32 {
		t.Fatalf("expected 32 hex digits, got %d", len(a))
	}
	if b := sim.Hash(cfg); b != a {
		t.Error("hash differs between calls with equal parameters")
	}

	cfg.SimID = 7
	if got := sim.Hash(cfg); got != a {
		t.Error("hash must not depend on SimID")
	}

	cfg.TStep = 1e-6
	if got := sim.Hash(cfg); got == a {
		t.Error("hash must change with t_step")
	}
}

func TestEstimateSizes(t *testing.T) {
	cfg := DefaultConfig() // 600000 steps
	est := EstimateSizes(20, cfg)

	if est.Steps != 600000 {
		t.Fatalf("expected 600000 steps, got %d", est.Steps)
	}
	if est.EmissionOne != 600000*8 {
		t.Errorf("expected %d bytes per particle, got %d", 600000*8, est.EmissionOne)
	}
	if est.Emission != est.EmissionOne*20 {
		t.Errorf("expected %d bytes total, got %d", est.EmissionOne*20, est.Emission)
	}
	if est.Positions != est.Emission*3 {
		t.Errorf("expected positions 3x emission, got %d", est.Positions)
	}

	s := est.String()
	for _, part := range []string{"600000", "particles: 20"} {
		if !strings.Contains(s, part) {
			t.Errorf("expected %q in %q", part, s)
		}
	}
}
