package automation

import (
	"context"
	"fmt"
	"math"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/seralo/diffsim/internal/brownian"
	"github.com/seralo/diffsim/internal/config"
	"github.com/seralo/diffsim/internal/experiment"
	"github.com/seralo/diffsim/internal/photon"
	"github.com/seralo/diffsim/internal/storage"
	"github.com/seralo/diffsim/internal/sweep"
)

// Scenario defines a scripted sequence of runs and timestamp sets
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep is a single step in a scenario. A run step names a
// preset ("model/variant") and optionally overrides parts of it; a
// timestamp step names an earlier run step in From instead and derives
// photon timestamps from that run's emission.
type ScenarioStep struct {
	Name   string `yaml:"name"`
	Preset string `yaml:"preset"`

	// Run overrides, applied on top of the preset or the defaults.
	// Zero values leave the base untouched.
	Particles     int              `yaml:"particles"`
	D             float64          `yaml:"d"`
	PSF           string           `yaml:"psf"`
	Boundary      string           `yaml:"boundary"`
	Box           config.BoxConfig `yaml:"box"`
	TStep         float64          `yaml:"t_step"`
	TMax          float64          `yaml:"t_max"`
	Chunk         int              `yaml:"chunk"`
	Seed          int64            `yaml:"seed"`
	SavePositions bool             `yaml:"save_positions"`

	// Timestamp fields.
	From    string  `yaml:"from"`
	MaxRate float64 `yaml:"max_rate"`
	BgRate  float64 `yaml:"bg_rate"`

	// SaveAs exports the step's run to a JSON file when set.
	SaveAs string `yaml:"save_as"`
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}

	return &scenario, nil
}

// StepResult records what a scenario step produced
type StepResult struct {
	Name       string
	RunID      string
	Steps      int
	Metrics    map[string]float64
	Timestamps int
}

// RunScenario executes all steps in order. Run steps save into the
// store; timestamp steps look a named earlier step up and extend its
// run directory.
func RunScenario(ctx context.Context, scenario *Scenario, registry *experiment.Registry, store *storage.Store) ([]StepResult, error) {
	results := make([]StepResult, 0, len(scenario.Steps))
	runs := make(map[string]string)

	for i, step := range scenario.Steps {
		label := step.Name
		if label == "" {
			label = fmt.Sprintf("step-%d", i+1)
		}
		fmt.Printf("Running step %d/%d: %s\n", i+1, len(scenario.Steps), label)

		var res StepResult
		var err error
		if step.From != "" {
			res, err = runTimestampStep(ctx, step, store, runs)
		} else {
			res, err = runSimulationStep(ctx, step, registry, store)
		}
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		if step.SaveAs != "" {
			data, err := store.ExportRun(res.RunID)
			if err != nil {
				return results, fmt.Errorf("step %d export: %w", i+1, err)
			}
			if err := storage.ExportJSON(step.SaveAs, data); err != nil {
				return results, fmt.Errorf("step %d export: %w", i+1, err)
			}
		}

		res.Name = label
		runs[label] = res.RunID
		results = append(results, res)
	}

	return results, nil
}

func runSimulationStep(ctx context.Context, step ScenarioStep, registry *experiment.Registry, store *storage.Store) (StepResult, error) {
	cfg, err := stepConfig(step)
	if err != nil {
		return StepResult{}, err
	}

	result, exp, err := runExperiment(ctx, cfg, registry)
	if err != nil {
		return StepResult{}, err
	}

	runID, err := store.Save(exp.GetSimulator(), exp.SimConfig(), cfg.Model, cfg.PSF, cfg.Boundary, result)
	if err != nil {
		return StepResult{}, fmt.Errorf("save: %w", err)
	}

	return StepResult{RunID: runID, Steps: result.StepsTaken, Metrics: result.Metrics}, nil
}

func runTimestampStep(ctx context.Context, step ScenarioStep, store *storage.Store, runs map[string]string) (StepResult, error) {
	runID, ok := runs[step.From]
	if !ok {
		return StepResult{}, fmt.Errorf("unknown step: %s", step.From)
	}

	emission, _, err := store.LoadEmission(runID)
	if err != nil {
		return StepResult{}, fmt.Errorf("loading emission: %w", err)
	}
	meta, err := store.Load(runID)
	if err != nil {
		return StepResult{}, err
	}

	pcfg := photon.DefaultConfig()
	pcfg.TStep = meta.TStep
	if step.MaxRate != 0 {
		pcfg.MaxRate = step.MaxRate
	}
	if step.BgRate != 0 {
		pcfg.BgRate = step.BgRate
	}
	if step.Seed != 0 {
		pcfg.Seed = step.Seed
	}

	times, parts, err := photon.Generate(ctx, emission, pcfg)
	if err != nil {
		return StepResult{}, fmt.Errorf("timestamps: %w", err)
	}
	if err := store.SaveTimestamps(runID, pcfg, times, parts); err != nil {
		return StepResult{}, fmt.Errorf("saving timestamps: %w", err)
	}

	return StepResult{RunID: runID, Timestamps: len(times)}, nil
}

// stepConfig resolves a run step into a full configuration: the preset
// when named, the defaults otherwise, with the step's nonzero fields
// applied on top.
func stepConfig(step ScenarioStep) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if step.Preset != "" {
		var err error
		cfg, err = resolvePreset(step.Preset)
		if err != nil {
			return nil, err
		}
	}

	if step.Particles != 0 {
		cfg.Particles = step.Particles
	}
	if step.D != 0 {
		cfg.D = step.D
	}
	if step.PSF != "" {
		cfg.PSF = step.PSF
	}
	if step.Boundary != "" {
		cfg.Boundary = step.Boundary
	}
	if step.Box != (config.BoxConfig{}) {
		cfg.Box = step.Box
	}
	if step.TStep != 0 {
		cfg.TStep = step.TStep
	}
	if step.TMax != 0 {
		cfg.TMax = step.TMax
	}
	if step.Chunk != 0 {
		cfg.Chunk = step.Chunk
	}
	if step.Seed != 0 {
		cfg.Seed = step.Seed
	}
	if step.SavePositions {
		cfg.SavePositions = true
	}
	return cfg, nil
}

func resolvePreset(name string) (*config.Config, error) {
	model, variant, ok := strings.Cut(name, "/")
	if !ok {
		return nil, fmt.Errorf("preset %q is not model/variant", name)
	}
	cfg := config.GetPreset(model, variant)
	if cfg == nil {
		return nil, fmt.Errorf("unknown preset: %s", name)
	}
	return cfg, nil
}

// runExperiment builds and runs one experiment from a resolved
// configuration.
func runExperiment(ctx context.Context, cfg *config.Config, registry *experiment.Registry) (*brownian.Result, *experiment.Experiment, error) {
	p, err := registry.GetPSF(cfg.PSF, cfg.PSFParams())
	if err != nil {
		return nil, nil, err
	}
	boundary, err := registry.GetBoundary(cfg.Boundary)
	if err != nil {
		return nil, nil, err
	}

	exp := experiment.New(experiment.FromConfig(cfg))
	pop, err := exp.BuildPopulation()
	if err != nil {
		return nil, nil, err
	}
	if err := exp.Setup(pop, p, boundary, registry.DefaultMetrics(pop)); err != nil {
		return nil, nil, fmt.Errorf("setup: %w", err)
	}

	result, err := exp.Run(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("run: %w", err)
	}
	return result, exp, nil
}

// ParameterSweep runs the same experiment across evenly spaced values
// of one configuration parameter
type ParameterSweep struct {
	Preset string
	Param  string
	Min    float64
	Max    float64
	Points int
}

// SweepPoint holds the metrics of one sweep run
type SweepPoint struct {
	Value   float64
	Metrics map[string]float64
}

// RunSweep executes a parameter sweep
func RunSweep(ctx context.Context, ps *ParameterSweep, registry *experiment.Registry) ([]SweepPoint, error) {
	base, err := resolvePreset(ps.Preset)
	if err != nil {
		return nil, err
	}

	values := sweep.Range(ps.Min, ps.Max, ps.Points)
	points := make([]SweepPoint, 0, len(values))

	for i, v := range values {
		cfg := *base
		if err := applyParam(&cfg, ps.Param, v); err != nil {
			return nil, err
		}

		result, _, err := runExperiment(ctx, &cfg, registry)
		if err != nil {
			return nil, fmt.Errorf("point %s=%g: %w", ps.Param, v, err)
		}

		points = append(points, SweepPoint{Value: v, Metrics: result.Metrics})
		fmt.Printf("Sweep %d/%d: %s=%g\n", i+1, len(values), ps.Param, v)
	}

	return points, nil
}

func applyParam(cfg *config.Config, name string, v float64) error {
	switch name {
	case "d":
		cfg.D = v
	case "particles":
		cfg.Particles = int(v)
	case "t_step":
		cfg.TStep = v
	case "t_max":
		cfg.TMax = v
	// The Stokes-Einstein route only applies while d is unset.
	case "diameter":
		cfg.D = 0
		cfg.Diameter = v
	case "viscosity":
		cfg.D = 0
		cfg.Viscosity = v
	case "temperature":
		cfg.D = 0
		cfg.Temperature = v
	default:
		return fmt.Errorf("unknown parameter: %s", name)
	}
	return nil
}

// MonteCarloConfig defines repeated trials of one experiment
type MonteCarloConfig struct {
	Preset string
	Trials int
	Seed   int64
	TMax   float64
}

// MonteCarloResult holds the metrics of a single trial
type MonteCarloResult struct {
	TrialID int
	SimID   int
	Metrics map[string]float64
}

// RunMonteCarlo runs independent replicas of one experiment. Trial i
// runs with the simulation index offset by i, which gives every trial
// its own random stream while keeping the whole set reproducible.
func RunMonteCarlo(ctx context.Context, cfg *MonteCarloConfig, registry *experiment.Registry) ([]MonteCarloResult, error) {
	if cfg.Trials < 1 {
		return nil, fmt.Errorf("trials must be positive, got %d", cfg.Trials)
	}

	base, err := resolvePreset(cfg.Preset)
	if err != nil {
		return nil, err
	}
	if cfg.Seed != 0 {
		base.Seed = cfg.Seed
	}
	if cfg.TMax != 0 {
		base.TMax = cfg.TMax
	}

	p, err := registry.GetPSF(base.PSF, base.PSFParams())
	if err != nil {
		return nil, err
	}
	boundary, err := registry.GetBoundary(base.Boundary)
	if err != nil {
		return nil, err
	}

	exp := experiment.New(experiment.FromConfig(base))
	pop, err := exp.BuildPopulation()
	if err != nil {
		return nil, err
	}
	if err := exp.Setup(pop, p, boundary, nil); err != nil {
		return nil, err
	}

	ens := brownian.NewEnsemble(exp.GetSimulator(), cfg.Trials)
	ens.MetricFactory = func() []brownian.Metric {
		return registry.DefaultMetrics(pop)
	}

	simCfg := exp.SimConfig()
	runs, err := ens.Run(ctx, simCfg)
	if err != nil {
		return nil, err
	}

	results := make([]MonteCarloResult, 0, len(runs))
	for i, r := range runs {
		results = append(results, MonteCarloResult{
			TrialID: i,
			SimID:   simCfg.SimID + i,
			Metrics: r.Metrics,
		})
	}

	fmt.Printf("Monte Carlo: %d trials complete\n", len(results))
	return results, nil
}

// MonteCarloStats is the across-trial mean and standard deviation of
// one metric.
func MonteCarloStats(results []MonteCarloResult, metric string) (mean, std float64) {
	vals := make([]float64, 0, len(results))
	for _, r := range results {
		if v, ok := r.Metrics[metric]; ok {
			vals = append(vals, v)
		}
	}
	if len(vals) == 0 {
		return 0, 0
	}

	for _, v := range vals {
		mean += v
	}
	mean /= float64(len(vals))

	for _, v := range vals {
		std += (v - mean) * (v - mean)
	}
	std = math.Sqrt(std / float64(len(vals)))
	return mean, std
}
