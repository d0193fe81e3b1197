package brownian

import (
	"context"
	"sync"
	"testing"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestEnsembleDistinctReplicas(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TMax = 0.001
	cfg.SavePositions = true

	sim, _ := testSimulator(t, 2, 1.2e-11, 9)
	ens := NewEnsemble(sim, 4)

	results, err := ens.Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("ensemble failed: %v", err)
	}
	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}

	// Replicas use different derived seeds, so trajectories must differ.
	for i := 1; i < len(results); i++ {
		same := true
		for k := range results[0].Positions[0] {
			if results[0].Positions[0][k] != results[i].Positions[0][k] {
				same = false
				break
			}
		}
		if same {
			t.Errorf("replica %d repeated replica 0", i)
		}
	}
}

func TestEnsembleMetricFactory(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TMax = 0.0005

	sim, _ := testSimulator(t, 1, 1.2e-11, 9)
	ens := NewEnsemble(sim, 3)
	ens.MetricFactory = func() []Metric {
		return []Metric{&chunkCounter{}}
	}

	results, err := ens.Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("ensemble failed: %v", err)
	}
	for i, r := range results {
		if _, ok := r.Metrics["chunks"]; !ok {
			t.Errorf("replica %d missing metric", i)
		}
	}
}

func TestEnsembleInvalidConfig(t *testing.T) {
	sim, _ := testSimulator(t, 1, 1.2e-11, 9)
	ens := NewEnsemble(sim, 2)

	if _, err := ens.Run(context.Background(), Config{}); err == nil {
		t.Error("expected error, got nil")
	}
}

func TestParallelForCoversRange(t *testing.T) {
	tests := []struct {
		name     string
		n        int
		minChunk int
	}{
		{"small below chunk", 5, 10},
		{"even split", 100, 10},
		{"ragged split", 97, 10},
		{"single element", 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var mu sync.Mutex
			visited := make([]int, tt.n)

			ParallelFor(tt.n, tt.minChunk, func(start, end int) {
				mu.Lock()
				defer mu.Unlock()
				for i := start; i < end; i++ {
					visited[i]++
				}
			})

			for i, v := range visited {
				if v != 1 {
					t.Fatalf("index %d visited %d times", i, v)
				}
			}
		})
	}
}
