package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/seralo/diffsim/internal/analysis"
	"github.com/seralo/diffsim/internal/automation"
	"github.com/seralo/diffsim/internal/brownian"
	"github.com/seralo/diffsim/internal/config"
	"github.com/seralo/diffsim/internal/diffusion"
	"github.com/seralo/diffsim/internal/experiment"
	"github.com/seralo/diffsim/internal/export"
	"github.com/seralo/diffsim/internal/photon"
	"github.com/seralo/diffsim/internal/psf"
	"github.com/seralo/diffsim/internal/storage"
	"github.com/seralo/diffsim/internal/viz"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	dataDir     string
	verbose     bool
	particles   int
	coeff       float64
	diameter    float64
	viscosity   float64
	temperature float64
	boxX        float64
	boxY        float64
	boxZ        float64
	waistXY     float64
	waistZ      float64
	psfName     string
	boundary    string
	tStep       float64
	tMax        float64
	chunk       int
	seed        int64
	simID       int
	engineID    int
	savePos     bool
	totalEm     bool
	// Photon stage parameters
	maxRate float64
	bgRate  float64
	tsScale int64
	// Closed-form inputs
	dims     int
	spotSize float64
	tauSpot  float64
	diffTime float64
	space    float64
	unitName string
	// Analysis and rendering
	particleIdx int
	exitRadius  float64
	svgOut      string
	svgDots     bool
	// Sweep and ensemble parameters
	sweepPreset string
	sweepParam  string
	sweepMin    float64
	sweepMax    float64
	sweepPoints int
	trials      int
	mcMetric    string
	// Config file
	configFile string
	// Frame rate for live view
	frameRate int
	// Preset name
	preset string
)

// main is the entry point for the diffsim CLI; it registers commands and
// flags and executes the root command. It exits the process with status 1
// if command execution returns an error.
func main() {
	rootCmd := &cobra.Command{
		Use:   "diffsim",
		Short: "Brownian diffusion and fluorescence simulation lab",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".diffsim", "data directory")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "debug logging")

	runCmd := &cobra.Command{
		Use:   "run [model]",
		Short: "run simulation",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	addRunFlags(runCmd)

	timestampsCmd := &cobra.Command{
		Use:   "timestamps [run_id]",
		Short: "generate photon timestamps from a run's emission",
		Args:  cobra.ExactArgs(1),
		RunE:  generateTimestamps,
	}
	timestampsCmd.Flags().Float64Var(&maxRate, "max-rate", config.DefaultMaxRate, "peak detection rate (cps)")
	timestampsCmd.Flags().Float64Var(&bgRate, "bg-rate", config.DefaultBgRate, "background rate (cps)")
	timestampsCmd.Flags().Int64Var(&seed, "seed", 1, "random seed (defaults to the run seed)")
	timestampsCmd.Flags().Int64Var(&tsScale, "scale", 10, "timestamp clock ticks per step")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot emission and mean squared displacement",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	trajCmd := &cobra.Command{
		Use:   "traj [run_id]",
		Short: "x-y trajectory scatter plot",
		Args:  cobra.ExactArgs(1),
		RunE:  plotTrajectory,
	}
	trajCmd.Flags().IntVar(&particleIdx, "particle", -1, "particle index (-1 for all)")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "diffusion analysis",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().Float64Var(&exitRadius, "radius", 0.5e-6, "exit time sphere radius (m), 0 to skip")
	analyzeCmd.Flags().Float64Var(&spotSize, "spot", psf.DefaultWaistXY, "spot size for the transit-time D estimate (m)")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export emission data to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "render a trajectory to SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVar(&svgOut, "out", "", "output path (defaults to <run_id>.svg)")
	exportSVGCmd.Flags().IntVar(&particleIdx, "particle", 0, "particle index")
	exportSVGCmd.Flags().BoolVar(&svgDots, "dots", false, "render as a dot raster instead of a path")

	liveCmd := &cobra.Command{
		Use:   "live [model]",
		Short: "run simulation with live visualization",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	addRunFlags(liveCmd)
	liveCmd.Flags().IntVar(&frameRate, "fps", 30, "frame rate")

	calcCmd := &cobra.Command{
		Use:   "calc",
		Short: "closed-form diffusion calculations",
	}

	calcCoeffCmd := &cobra.Command{
		Use:   "coefficient",
		Short: "Stokes-Einstein diffusion coefficient",
		RunE:  calcCoefficient,
	}
	calcCoeffCmd.Flags().Float64Var(&diameter, "diameter", 5e-9, "particle diameter (m)")
	calcCoeffCmd.Flags().Float64Var(&viscosity, "viscosity", 1e-3, "medium viscosity (Pa s)")
	calcCoeffCmd.Flags().Float64Var(&temperature, "temperature", 293, "temperature (K)")

	calcSpotCmd := &cobra.Command{
		Use:   "spot",
		Short: "diffusion coefficient from spot size and transit time",
		RunE:  calcSpot,
	}
	calcSpotCmd.Flags().Float64Var(&spotSize, "spot", 0.8e-6, "spot size (m)")
	calcSpotCmd.Flags().IntVar(&dims, "dims", 3, "spatial dimensions")
	calcSpotCmd.Flags().Float64Var(&tauSpot, "tau", 1e-3, "transit time (s)")

	calcSigmaCmd := &cobra.Command{
		Use:   "sigma",
		Short: "displacement standard deviation after a diffusion time",
		RunE:  calcSigma,
	}
	calcSigmaCmd.Flags().Float64Var(&coeff, "d", config.DefaultD, "diffusion coefficient (m²/s)")
	calcSigmaCmd.Flags().IntVar(&dims, "dims", 3, "spatial dimensions")
	calcSigmaCmd.Flags().Float64Var(&diffTime, "time", 10, "diffusion time (s)")

	calcTimeCmd := &cobra.Command{
		Use:   "time",
		Short: "time to diffuse a given displacement",
		RunE:  calcTime,
	}
	calcTimeCmd.Flags().Float64Var(&space, "space", 100e-6, "displacement (m)")
	calcTimeCmd.Flags().Float64Var(&coeff, "d", config.DefaultD, "diffusion coefficient (m²/s)")
	calcTimeCmd.Flags().IntVar(&dims, "dims", 3, "spatial dimensions")

	calcRescaleCmd := &cobra.Command{
		Use:   "rescale",
		Short: "convert a coefficient between units",
		RunE:  calcRescale,
	}
	calcRescaleCmd.Flags().Float64Var(&coeff, "d", config.DefaultD, "diffusion coefficient (m²/s)")
	calcRescaleCmd.Flags().StringVar(&unitName, "unit", "nm2/us", "target unit (m2/s, um2/s, nm2/us, um2/ms)")

	calcCmd.AddCommand(calcCoeffCmd, calcSpotCmd, calcSigmaCmd, calcTimeCmd, calcRescaleCmd)

	compareCmd := &cobra.Command{
		Use:   "compare",
		Short: "compare both coefficient derivations",
		RunE:  compareCoefficients,
	}
	compareCmd.Flags().Float64Var(&diameter, "diameter", 5e-9, "particle diameter (m)")
	compareCmd.Flags().Float64Var(&viscosity, "viscosity", 1e-3, "medium viscosity (Pa s)")
	compareCmd.Flags().Float64Var(&temperature, "temperature", 293, "temperature (K)")
	compareCmd.Flags().Float64Var(&spotSize, "spot", 0.8e-6, "spot size (m)")
	compareCmd.Flags().IntVar(&dims, "dims", 3, "spatial dimensions")
	compareCmd.Flags().Float64Var(&tauSpot, "tau", 1e-3, "transit time (s)")

	presetsCmd := &cobra.Command{
		Use:   "presets [model]",
		Short: "list available presets for a model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			names := config.ListPresets(args[0])
			if len(names) == 0 {
				fmt.Printf("no presets for model: %s\n", args[0])
				return nil
			}
			fmt.Printf("presets for %s:\n", args[0])
			for _, name := range names {
				fmt.Printf("  %s\n", name)
			}
			return nil
		},
	}

	sizesCmd := &cobra.Command{
		Use:   "sizes",
		Short: "estimate array sizes for a run configuration",
		RunE:  estimateRun,
	}
	sizesCmd.Flags().IntVar(&particles, "particles", config.DefaultParticles, "number of particles")
	sizesCmd.Flags().Float64Var(&tStep, "t-step", config.DefaultTStep, "timestep (s)")
	sizesCmd.Flags().Float64Var(&tMax, "t-max", config.DefaultTMax, "duration (s)")
	sizesCmd.Flags().IntVar(&chunk, "chunk", config.DefaultChunk, "chunk size in steps")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "sweep a parameter across a preset",
		RunE:  runParamSweep,
	}
	sweepCmd.Flags().StringVar(&sweepPreset, "preset", "freely-diffusing/standard", "model/preset to sweep")
	sweepCmd.Flags().StringVar(&sweepParam, "param", "d", "parameter (d, particles, t_step, t_max, diameter, viscosity, temperature)")
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 0.6e-11, "minimum value")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 2.4e-11, "maximum value")
	sweepCmd.Flags().IntVar(&sweepPoints, "points", 5, "number of points")

	ensembleCmd := &cobra.Command{
		Use:   "ensemble",
		Short: "replicate a preset across independent trials",
		RunE:  runEnsemble,
	}
	ensembleCmd.Flags().StringVar(&sweepPreset, "preset", "quick-look/standard", "model/preset to replicate")
	ensembleCmd.Flags().IntVar(&trials, "trials", 8, "number of trials")
	ensembleCmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 keeps the preset seed)")
	ensembleCmd.Flags().Float64Var(&tMax, "t-max", 0, "duration override (0 keeps the preset)")
	ensembleCmd.Flags().StringVar(&mcMetric, "metric", "msd", "metric to summarize")

	batchCmd := &cobra.Command{
		Use:   "batch [scenario.yaml]",
		Short: "run a multi-step scenario",
		Args:  cobra.ExactArgs(1),
		RunE:  runBatch,
	}

	rootCmd.AddCommand(runCmd, timestampsCmd, listCmd, plotCmd, trajCmd, analyzeCmd,
		exportCmd, exportCSVCmd, exportJSONCmd, exportSVGCmd, liveCmd, calcCmd,
		compareCmd, presetsCmd, sizesCmd, sweepCmd, ensembleCmd, batchCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&particles, "particles", config.DefaultParticles, "number of particles")
	cmd.Flags().Float64Var(&coeff, "d", config.DefaultD, "diffusion coefficient (m²/s)")
	cmd.Flags().Float64Var(&diameter, "diameter", 5e-9, "particle diameter (m)")
	cmd.Flags().Float64Var(&viscosity, "viscosity", 1e-3, "medium viscosity (Pa s)")
	cmd.Flags().Float64Var(&temperature, "temperature", 293, "temperature (K)")
	cmd.Flags().Float64Var(&boxX, "box-x", config.DefaultBoxX, "box side x (m)")
	cmd.Flags().Float64Var(&boxY, "box-y", config.DefaultBoxY, "box side y (m)")
	cmd.Flags().Float64Var(&boxZ, "box-z", config.DefaultBoxZ, "box side z (m)")
	cmd.Flags().Float64Var(&waistXY, "waist-xy", 0, "psf lateral waist (m), 0 for default")
	cmd.Flags().Float64Var(&waistZ, "waist-z", 0, "psf axial waist (m), 0 for default")
	cmd.Flags().StringVar(&psfName, "psf", "gaussian", "point spread function")
	cmd.Flags().StringVar(&boundary, "boundary", "periodic", "boundary condition")
	cmd.Flags().Float64Var(&tStep, "t-step", config.DefaultTStep, "timestep (s)")
	cmd.Flags().Float64Var(&tMax, "t-max", config.DefaultTMax, "duration (s)")
	cmd.Flags().IntVar(&chunk, "chunk", config.DefaultChunk, "chunk size in steps")
	cmd.Flags().Int64Var(&seed, "seed", 1, "random seed")
	cmd.Flags().IntVar(&simID, "sim-id", 0, "simulation id")
	cmd.Flags().IntVar(&engineID, "engine-id", 0, "engine id")
	cmd.Flags().BoolVar(&savePos, "save-positions", false, "record particle positions")
	cmd.Flags().BoolVar(&totalEm, "total-emission", false, "sum emission over particles")
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
}

// resolveRunConfig layers the run configuration: preset or config file
// first, then any CLI flags the user actually set.
func resolveRunConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	model := ""
	if len(args) > 0 {
		model = args[0]
	}

	var cfg *config.Config
	switch {
	case preset != "":
		if model == "" {
			return nil, fmt.Errorf("--preset requires a model argument")
		}
		cfg = config.GetPreset(model, preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(model))
		}
	case configFile != "":
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	default:
		cfg = config.DefaultConfig()
	}
	if model != "" {
		cfg.Model = model
	}

	// Any Stokes-Einstein flag switches the run to that route unless d
	// was set explicitly.
	seRoute := cmd.Flags().Changed("diameter") || cmd.Flags().Changed("viscosity") || cmd.Flags().Changed("temperature")
	if cmd.Flags().Changed("d") {
		cfg.D = coeff
	} else if seRoute {
		cfg.D = 0
		cfg.Diameter = diameter
		cfg.Viscosity = viscosity
		cfg.Temperature = temperature
	}

	if cmd.Flags().Changed("particles") {
		cfg.Particles = particles
	}
	if cmd.Flags().Changed("psf") {
		cfg.PSF = psfName
	}
	if cmd.Flags().Changed("boundary") {
		cfg.Boundary = boundary
	}
	if cmd.Flags().Changed("box-x") {
		cfg.Box.X = boxX
	}
	if cmd.Flags().Changed("box-y") {
		cfg.Box.Y = boxY
	}
	if cmd.Flags().Changed("box-z") {
		cfg.Box.Z = boxZ
	}
	if cmd.Flags().Changed("waist-xy") {
		cfg.Waists.XY = waistXY
	}
	if cmd.Flags().Changed("waist-z") {
		cfg.Waists.Z = waistZ
	}
	if cmd.Flags().Changed("t-step") {
		cfg.TStep = tStep
	}
	if cmd.Flags().Changed("t-max") {
		cfg.TMax = tMax
	}
	if cmd.Flags().Changed("chunk") {
		cfg.Chunk = chunk
	}
	if cmd.Flags().Changed("seed") {
		cfg.Seed = seed
	}
	if cmd.Flags().Changed("sim-id") {
		cfg.SimID = simID
	}
	if cmd.Flags().Changed("engine-id") {
		cfg.EngineID = engineID
	}
	if cmd.Flags().Changed("save-positions") {
		cfg.SavePositions = savePos
	}
	if cmd.Flags().Changed("total-emission") {
		cfg.TotalEmission = totalEm
	}

	return cfg, nil
}

func setupExperiment(cfg *config.Config, registry *experiment.Registry, withMetrics bool) (*experiment.Experiment, error) {
	p, err := registry.GetPSF(cfg.PSF, cfg.PSFParams())
	if err != nil {
		return nil, err
	}
	bnd, err := registry.GetBoundary(cfg.Boundary)
	if err != nil {
		return nil, err
	}

	exp := experiment.New(experiment.FromConfig(cfg))
	pop, err := exp.BuildPopulation()
	if err != nil {
		return nil, err
	}
	var ms []brownian.Metric
	if withMetrics {
		ms = registry.DefaultMetrics(pop)
	}
	if err := exp.Setup(pop, p, bnd, ms); err != nil {
		return nil, err
	}
	exp.GetSimulator().SetLogger(buildLogger())
	return exp, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveRunConfig(cmd, args)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	registry := experiment.NewRegistry()
	exp, err := setupExperiment(cfg, registry, true)
	if err != nil {
		return err
	}

	d := exp.Coefficient()
	fmt.Printf("running %s simulation...\n", cfg.Model)
	fmt.Printf("D: %.4e m²/s, step σ: %.2f nm\n", d, diffusion.SigmaStep(d, cfg.TStep)*1e9)
	start := time.Now()

	result, err := exp.Run(context.Background())
	if err != nil {
		return err
	}

	elapsed := time.Since(start)

	runID, err := st.Save(exp.GetSimulator(), exp.SimConfig(), cfg.Model, cfg.PSF, cfg.Boundary, result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d\n", result.StepsTaken)
	fmt.Println("\nmetrics:")
	for name, val := range result.Metrics {
		fmt.Printf("  %s: %.6g\n", name, val)
	}

	return nil
}

func generateTimestamps(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	emission, _, err := st.LoadEmission(runID)
	if err != nil {
		return err
	}

	pcfg := photon.DefaultConfig()
	pcfg.TStep = meta.TStep
	pcfg.MaxRate = maxRate
	pcfg.BgRate = bgRate
	pcfg.Seed = meta.Seed
	if cmd.Flags().Changed("seed") {
		pcfg.Seed = seed
	}
	if cmd.Flags().Changed("scale") {
		pcfg.Scale = tsScale
	}

	fmt.Printf("generating %s...\n", photon.Name(pcfg.MaxRate, pcfg.BgRate, pcfg.Seed))
	start := time.Now()

	times, parts, err := photon.Generate(context.Background(), emission, pcfg)
	if err != nil {
		return err
	}
	if err := st.SaveTimestamps(runID, pcfg, times, parts); err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", time.Since(start))
	fmt.Printf("timestamps: %d\n", len(times))
	fmt.Printf("clock period: %.3g s\n", pcfg.ClockPeriod())
	if len(times) > 0 {
		span := float64(times[len(times)-1]) * pcfg.ClockPeriod()
		if span > 0 {
			fmt.Printf("mean rate: %.0f cps\n", float64(len(times))/span)
		}
	}

	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMODEL\tTIME\tPARTICLES\tT_MAX\tSTEPS\tPSF\tBOUNDARY")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.3gs\t%d\t%s\t%s\n",
			run.ID,
			run.Model,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Particles,
			run.TMax,
			run.Steps,
			run.PSF,
			run.Boundary,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	emission, _, err := st.LoadEmission(runID)
	if err != nil {
		return err
	}
	if len(emission) == 0 || len(emission[0]) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("model: %s\n", meta.Model)
	fmt.Printf("samples: %d\n\n", len(emission[0]))

	total := make([]float64, len(emission[0]))
	for _, row := range emission {
		for i, v := range row {
			total[i] += v
		}
	}

	graph := asciigraph.Plot(binMean(total, 120),
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("detected emission"),
	)
	fmt.Println(graph)
	fmt.Println()

	traj, _, err := st.LoadPositions(runID)
	if err != nil || len(traj) == 0 {
		fmt.Println("no positions saved, skipping msd (rerun with --save-positions)")
		return nil
	}

	maxLag := len(traj[0]) - 1
	if maxLag > 400 {
		maxLag = 400
	}
	msd := analysis.MSDCurve(traj, maxLag)

	graph = asciigraph.Plot(msd,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("mean squared displacement (m²)"),
	)
	fmt.Println(graph)

	return nil
}

// binMean averages consecutive samples down to at most bins points so
// long traces stay readable in a terminal plot.
func binMean(xs []float64, bins int) []float64 {
	if len(xs) <= bins {
		return xs
	}
	size := len(xs) / bins
	out := make([]float64, 0, bins)
	for i := 0; i+size <= len(xs); i += size {
		sum := 0.0
		for _, v := range xs[i : i+size] {
			sum += v
		}
		out = append(out, sum/float64(size))
	}
	return out
}

func plotTrajectory(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	traj, _, err := st.LoadPositions(runID)
	if err != nil {
		return fmt.Errorf("loading positions (rerun with --save-positions): %w", err)
	}
	if len(traj) == 0 {
		return fmt.Errorf("no positions to plot")
	}

	sel := traj
	if particleIdx >= 0 {
		if particleIdx >= len(traj) {
			return fmt.Errorf("particle %d out of range (%d tracked)", particleIdx, len(traj))
		}
		sel = traj[particleIdx : particleIdx+1]
	}
	points := analysis.ProjectXY(sel)

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("model: %s\n", meta.Model)
	fmt.Printf("x-y projection, %d points\n\n", len(points))
	fmt.Println(analysis.ProjectionASCII(points, 70, 20))

	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("model: %s\n\n", meta.Model)

	configured := 0.0
	if len(meta.Coefficients) > 0 {
		configured = meta.Coefficients[0].D
	}

	traj, _, err := st.LoadPositions(runID)
	if err == nil && len(traj) > 0 && len(traj[0]) > 1 {
		maxLag := len(traj[0]) - 1
		if maxLag > 400 {
			maxLag = 400
		}
		msd := analysis.MSDCurve(traj, maxLag)
		fitted := analysis.FitD(msd, meta.TStep, 3)
		fmt.Printf("fitted D: %.4e m²/s\n", fitted)
		if configured > 0 {
			fmt.Printf("configured D: %.4e m²/s (ratio %.3f)\n", configured, fitted/configured)
		}

		if exitRadius > 0 {
			starts := make([]brownian.Vec, len(traj))
			for i := range traj {
				starts[i] = traj[i][0]
			}
			exits := analysis.ExitTimes(traj, starts, exitRadius, meta.TStep)
			if len(exits) > 0 {
				mean := analysis.MeanExitTime(exits)
				fmt.Printf("mean exit time (r=%.2g m): %.4g s, %d/%d exited\n",
					exitRadius, mean, len(exits), len(traj))
				if configured > 0 {
					theory := exitRadius * exitRadius / (6 * configured)
					fmt.Printf("theory r²/6D: %.4g s\n", theory)
				}
			} else {
				fmt.Printf("no particle left r=%.2g m\n", exitRadius)
			}
		}
		fmt.Println()
	} else {
		fmt.Println("no positions saved, skipping msd fit (rerun with --save-positions)")
		fmt.Println()
	}

	emission, _, err := st.LoadEmission(runID)
	if err != nil {
		return err
	}
	if len(emission) == 0 || len(emission[0]) == 0 {
		return fmt.Errorf("no data")
	}

	total := make([]float64, len(emission[0]))
	for _, row := range emission {
		for i, v := range row {
			total[i] += v
		}
	}

	acf := analysis.Autocorrelation(total)
	window := len(acf)
	if window > 240 {
		window = 240
	}

	graph := asciigraph.Plot(acf[:window],
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("intensity autocorrelation"),
	)
	fmt.Println(graph)
	fmt.Println()

	if tau, ok := analysis.FitCorrelationTime(acf, meta.TStep); ok {
		fmt.Printf("correlation time: %.4g s\n", tau)
		if d, err := diffusion.CoefficientFromSpot(spotSize, 3, tau); err == nil {
			fmt.Printf("spot-transit D (spot %.2g m): %.4e m²/s\n", spotSize, d)
			if configured > 0 {
				fmt.Printf("configured D: %.4e m²/s (ratio %.3f)\n", configured, d/configured)
			}
		}
	} else {
		fmt.Println("correlation time: no decay within the trace")
	}

	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	emission, times, err := st.LoadEmission(runID)
	if err != nil {
		return err
	}
	if len(emission) == 0 {
		return fmt.Errorf("no data to export")
	}

	w := csv.NewWriter(os.Stdout)
	defer w.Flush()

	header := []string{"time"}
	for i := range emission {
		header = append(header, fmt.Sprintf("em%d", i))
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for i := range times {
		row := []string{strconv.FormatFloat(times[i], 'g', -1, 64)}
		for _, em := range emission {
			row = append(row, strconv.FormatFloat(em[i], 'f', 6, 64))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	data, err := st.ExportRun(args[0])
	if err != nil {
		return err
	}
	return storage.ExportJSONStdout(data)
}

func exportSVG(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	traj, _, err := st.LoadPositions(runID)
	if err != nil {
		return fmt.Errorf("loading positions (rerun with --save-positions): %w", err)
	}
	if len(traj) == 0 {
		return fmt.Errorf("no positions to render")
	}
	if particleIdx < 0 || particleIdx >= len(traj) {
		return fmt.Errorf("particle %d out of range (%d tracked)", particleIdx, len(traj))
	}

	points := analysis.ProjectXY(traj[particleIdx : particleIdx+1])

	var svg string
	if svgDots {
		svg = export.CanvasToSVG(rasterize(points, 90, 30), 4)
	} else {
		svg = export.TrajectoryToSVG(points, 800, 600, "#1f77b4")
	}

	out := svgOut
	if out == "" {
		out = runID + ".svg"
	}
	if err := os.WriteFile(out, []byte(svg), 0644); err != nil {
		return err
	}

	fmt.Printf("wrote %s (%d points)\n", out, len(points))
	return nil
}

// rasterize scales a point cloud onto a braille canvas.
func rasterize(points []analysis.Point, cols, rows int) *viz.Canvas {
	canvas := viz.NewCanvas(cols, rows)
	if len(points) == 0 {
		return canvas
	}

	minX, maxX := points[0].X, points[0].X
	minY, maxY := points[0].Y, points[0].Y
	for _, p := range points {
		if p.X < minX {
			minX = p.X
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}
	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}

	w, h := canvas.SubWidth(), canvas.SubHeight()
	for _, p := range points {
		x := int(float64(w-1) * (p.X - minX) / rangeX)
		y := int(float64(h-1) * (maxY - p.Y) / rangeY)
		canvas.Set(x, y)
	}
	return canvas
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveRunConfig(cmd, args)
	if err != nil {
		return err
	}

	registry := experiment.NewRegistry()
	exp, err := setupExperiment(cfg, registry, false)
	if err != nil {
		return err
	}

	m := viz.NewModel(exp.GetSimulator(), cfg.TStep, cfg.Seed, cfg.Model, frameRate)

	p := tea.NewProgram(m)
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}

func calcCoefficient(cmd *cobra.Command, args []string) error {
	d, err := diffusion.StokesEinstein(diameter, viscosity, temperature)
	if err != nil {
		return err
	}
	printCoefficient(d)
	return nil
}

func calcSpot(cmd *cobra.Command, args []string) error {
	d, err := diffusion.CoefficientFromSpot(spotSize, dims, tauSpot)
	if err != nil {
		return err
	}
	printCoefficient(d)
	return nil
}

func printCoefficient(d float64) {
	fmt.Printf("D = %.4e m²/s\n", d)
	for _, u := range diffusion.Units[1:] {
		fmt.Printf("  = %.4g %s\n", diffusion.Rescale(d, u), u.Name)
	}
}

func calcSigma(cmd *cobra.Command, args []string) error {
	s, err := diffusion.Sigma(coeff, dims, diffTime)
	if err != nil {
		return err
	}
	fmt.Printf("Displacement (std dev): %.2f µm\n", s*1e6)
	return nil
}

func calcTime(cmd *cobra.Command, args []string) error {
	t, err := diffusion.Time(space, coeff, dims)
	if err != nil {
		return err
	}
	fmt.Printf("Time to diffuse %.1f µm: %.3g s\n", space*1e6, t)
	return nil
}

func calcRescale(cmd *cobra.Command, args []string) error {
	u, err := diffusion.ParseUnit(unitName)
	if err != nil {
		return err
	}
	fmt.Printf("%.6g m²/s = %.6g %s\n", coeff, diffusion.Rescale(coeff, u), u.Name)
	return nil
}

func compareCoefficients(cmd *cobra.Command, args []string) error {
	se, err := diffusion.StokesEinstein(diameter, viscosity, temperature)
	if err != nil {
		return err
	}
	spot, err := diffusion.CoefficientFromSpot(spotSize, dims, tauSpot)
	if err != nil {
		return err
	}

	fmt.Printf("%-16s  %-12s  %-10s\n", "method", "D (m2/s)", "nm2/us")
	fmt.Println(strings.Repeat("-", 42))
	fmt.Printf("%-16s  %12.4e  %10.4g\n", "stokes-einstein", se, diffusion.Rescale(se, diffusion.Nm2PerUs))
	fmt.Printf("%-16s  %12.4e  %10.4g\n", "spot-transit", spot, diffusion.Rescale(spot, diffusion.Nm2PerUs))
	fmt.Printf("\nratio (spot / stokes): %.4g\n", spot/se)

	return nil
}

func estimateRun(cmd *cobra.Command, args []string) error {
	cfg := brownian.Config{TStep: tStep, TMax: tMax, Chunk: chunk}
	fmt.Print(brownian.EstimateSizes(particles, cfg).String())
	return nil
}

func runParamSweep(cmd *cobra.Command, args []string) error {
	ps := &automation.ParameterSweep{
		Preset: sweepPreset,
		Param:  sweepParam,
		Min:    sweepMin,
		Max:    sweepMax,
		Points: sweepPoints,
	}

	registry := experiment.NewRegistry()
	points, err := automation.RunSweep(context.Background(), ps, registry)
	if err != nil {
		return err
	}
	if len(points) == 0 {
		return fmt.Errorf("no sweep points")
	}

	names := make([]string, 0, len(points[0].Metrics))
	for name := range points[0].Metrics {
		names = append(names, name)
	}
	sort.Strings(names)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s", strings.ToUpper(sweepParam))
	for _, name := range names {
		fmt.Fprintf(w, "\t%s", strings.ToUpper(name))
	}
	fmt.Fprintln(w)
	for _, pt := range points {
		fmt.Fprintf(w, "%g", pt.Value)
		for _, name := range names {
			fmt.Fprintf(w, "\t%.6g", pt.Metrics[name])
		}
		fmt.Fprintln(w)
	}

	return w.Flush()
}

func runEnsemble(cmd *cobra.Command, args []string) error {
	mc := &automation.MonteCarloConfig{
		Preset: sweepPreset,
		Trials: trials,
		Seed:   seed,
		TMax:   tMax,
	}

	registry := experiment.NewRegistry()
	results, err := automation.RunMonteCarlo(context.Background(), mc, registry)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "TRIAL\tSIM_ID\t%s\n", strings.ToUpper(mcMetric))
	for _, r := range results {
		fmt.Fprintf(w, "%d\t%d\t%.6g\n", r.TrialID, r.SimID, r.Metrics[mcMetric])
	}
	if err := w.Flush(); err != nil {
		return err
	}

	mean, std := automation.MonteCarloStats(results, mcMetric)
	fmt.Printf("\n%s: mean %.6g, std %.6g (%d trials)\n", mcMetric, mean, std, len(results))

	return nil
}

func runBatch(cmd *cobra.Command, args []string) error {
	scenario, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	registry := experiment.NewRegistry()

	fmt.Printf("scenario: %s\n", scenario.Name)
	if scenario.Description != "" {
		fmt.Println(scenario.Description)
	}
	fmt.Println()

	results, err := automation.RunScenario(context.Background(), scenario, registry, st)
	if err != nil {
		return err
	}

	fmt.Println()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tRUN\tSTEPS\tTIMESTAMPS")
	for _, r := range results {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\n", r.Name, r.RunID, r.Steps, r.Timestamps)
	}
	return w.Flush()
}

// buildLogger returns a debug-level logger when --verbose is set and a
// no-op logger otherwise.
func buildLogger() *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
