package storage

import (
	"encoding/json"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/seralo/diffsim/internal/brownian"
	"github.com/seralo/diffsim/internal/photon"
	"github.com/seralo/diffsim/internal/psf"
)

func testSimulator(t *testing.T) (*brownian.Simulator, brownian.Config) {
	t.Helper()

	box := brownian.NewBox(8e-6, 8e-6, 12e-6)
	pop, err := brownian.NewPopulation(2, 1.2e-11, box, rand.New(rand.NewSource(42)))
	if err != nil {
		t.Fatalf("NewPopulation() error = %v", err)
	}

	cfg := brownian.DefaultConfig()
	cfg.TStep = 1e-6
	cfg.TMax = 3e-6
	return brownian.New(pop, box, psf.NewGaussian(), brownian.Periodic{}), cfg
}

func testResult() *brownian.Result {
	return &brownian.Result{
		Emission: [][]float64{{0.1, 0.2, 0.3}, {0.4, 0.5, 0.6}},
		Positions: [][]brownian.Vec{
			{{X: 1e-6}, {X: 2e-6}, {X: 3e-6}},
			{{Y: 1e-6}, {Y: 2e-6}, {Y: 3e-6, Z: -4e-6}},
		},
		StepsTaken: 3,
		Metrics:    map[string]float64{"msd": 1.5e-12},
	}
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	sim, cfg := testSimulator(t)
	runID, err := st.Save(sim, cfg, "freely-diffusing", "gaussian", "periodic", testResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if runID == "" {
		t.Fatal("expected non-empty run id")
	}
	if runID != sim.CompactName(cfg) {
		t.Errorf("runID = %q, want the compact name %q", runID, sim.CompactName(cfg))
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if meta.Model != "freely-diffusing" {
		t.Errorf("expected model 'freely-diffusing', got '%s'", meta.Model)
	}
	if meta.Seed != cfg.Seed {
		t.Errorf("expected seed %d, got %d", cfg.Seed, meta.Seed)
	}
	if meta.Particles != 2 {
		t.Errorf("expected 2 particles, got %d", meta.Particles)
	}
	if meta.Steps != 3 {
		t.Errorf("expected 3 steps, got %d", meta.Steps)
	}
	if meta.Metrics["msd"] != 1.5e-12 {
		t.Errorf("expected msd 1.5e-12, got %g", meta.Metrics["msd"])
	}
	if meta.ConcentrationPM <= 0 {
		t.Errorf("expected positive concentration, got %g", meta.ConcentrationPM)
	}
	if len(meta.Coefficients) != 1 || meta.Coefficients[0].N != 2 {
		t.Errorf("unexpected coefficients %v", meta.Coefficients)
	}
}

func TestLoadEmissionRoundTrip(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	sim, cfg := testSimulator(t)
	result := testResult()
	runID, err := st.Save(sim, cfg, "freely-diffusing", "gaussian", "periodic", result)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	emission, times, err := st.LoadEmission(runID)
	if err != nil {
		t.Fatalf("load emission failed: %v", err)
	}
	if diff := cmp.Diff(result.Emission, emission); diff != "" {
		t.Errorf("emission mismatch (-want +got):\n%s", diff)
	}

	wantTimes := []float64{1 * cfg.TStep, 2 * cfg.TStep, 3 * cfg.TStep}
	if diff := cmp.Diff(wantTimes, times); diff != "" {
		t.Errorf("times mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadPositionsRoundTrip(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	sim, cfg := testSimulator(t)
	result := testResult()
	runID, err := st.Save(sim, cfg, "freely-diffusing", "gaussian", "periodic", result)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	positions, times, err := st.LoadPositions(runID)
	if err != nil {
		t.Fatalf("load positions failed: %v", err)
	}
	if diff := cmp.Diff(result.Positions, positions); diff != "" {
		t.Errorf("positions mismatch (-want +got):\n%s", diff)
	}
	if len(times) != 3 {
		t.Errorf("expected 3 times, got %d", len(times))
	}
}

func TestTimestampsRoundTrip(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	sim, cfg := testSimulator(t)
	runID, err := st.Save(sim, cfg, "freely-diffusing", "gaussian", "periodic", testResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	pcfg := photon.DefaultConfig()
	pcfg.TStep = cfg.TStep
	ticks := []int64{50, 50, 60, 70}
	owners := []uint8{0, 0, 1, 0}
	if err := st.SaveTimestamps(runID, pcfg, ticks, owners); err != nil {
		t.Fatalf("save timestamps failed: %v", err)
	}

	gotTicks, gotOwners, err := st.LoadTimestamps(runID)
	if err != nil {
		t.Fatalf("load timestamps failed: %v", err)
	}
	if diff := cmp.Diff(ticks, gotTicks); diff != "" {
		t.Errorf("ticks mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(owners, gotOwners); diff != "" {
		t.Errorf("owners mismatch (-want +got):\n%s", diff)
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.ClockPeriod != pcfg.ClockPeriod() {
		t.Errorf("ClockPeriod = %g, want %g", meta.ClockPeriod, pcfg.ClockPeriod())
	}
	if meta.MaxRate != pcfg.MaxRate {
		t.Errorf("MaxRate = %g, want %g", meta.MaxRate, pcfg.MaxRate)
	}
}

func TestSaveTimestampsLengthMismatch(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	sim, cfg := testSimulator(t)
	runID, err := st.Save(sim, cfg, "freely-diffusing", "gaussian", "periodic", testResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	err = st.SaveTimestamps(runID, photon.DefaultConfig(), []int64{1, 2}, []uint8{0})
	if err == nil {
		t.Error("expected error for mismatched lengths")
	}
}

func TestStoreList(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}

	sim, cfg := testSimulator(t)
	if _, err := st.Save(sim, cfg, "freely-diffusing", "gaussian", "periodic", testResult()); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	// Directories without metadata and stray files are skipped.
	if err := os.MkdirAll(filepath.Join(tmpDir, "not-a-run"), 0755); err != nil {
		t.Fatalf("mkdir failed: %v", err)
	}
	if err := os.WriteFile(filepath.Join(tmpDir, "stray.txt"), []byte("x"), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 1 {
		t.Errorf("expected 1 run, got %d", len(runs))
	}
}

func TestStoreFileStructure(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	sim, cfg := testSimulator(t)
	runID, err := st.Save(sim, cfg, "freely-diffusing", "gaussian", "periodic", testResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	runDir := filepath.Join(tmpDir, runID)
	for _, name := range []string{"metadata.json", "emission.csv", "positions.csv"} {
		if _, err := os.Stat(filepath.Join(runDir, name)); os.IsNotExist(err) {
			t.Errorf("%s not created", name)
		}
	}
}

func TestExportRun(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	sim, cfg := testSimulator(t)
	result := testResult()
	runID, err := st.Save(sim, cfg, "freely-diffusing", "gaussian", "periodic", result)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := st.SaveTimestamps(runID, photon.DefaultConfig(), []int64{10, 20}, []uint8{0, 1}); err != nil {
		t.Fatalf("save timestamps failed: %v", err)
	}

	data, err := st.ExportRun(runID)
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if data.Meta.ID != runID {
		t.Errorf("Meta.ID = %q, want %q", data.Meta.ID, runID)
	}
	if diff := cmp.Diff(result.Emission, data.Emission); diff != "" {
		t.Errorf("emission mismatch (-want +got):\n%s", diff)
	}
	if len(data.Ticks) != 2 || len(data.TickOwners) != 2 {
		t.Errorf("ticks = %v owners = %v, want 2 each", data.Ticks, data.TickOwners)
	}

	path := filepath.Join(t.TempDir(), "run.json")
	if err := ExportJSON(path, data); err != nil {
		t.Fatalf("export json failed: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	var back ExportData
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if diff := cmp.Diff(data.Emission, back.Emission); diff != "" {
		t.Errorf("exported emission mismatch (-want +got):\n%s", diff)
	}
}
