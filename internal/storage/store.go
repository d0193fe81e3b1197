package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/seralo/diffsim/internal/brownian"
	"github.com/seralo/diffsim/internal/photon"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir() string { return s.baseDir }

type RunMetadata struct {
	ID              string                `json:"id"`
	Model           string                `json:"model"`
	Timestamp       time.Time             `json:"timestamp"`
	Hash            string                `json:"hash"`
	Seed            int64                 `json:"seed"`
	SimID           int                   `json:"sim_id"`
	EngineID        int                   `json:"engine_id"`
	TStep           float64               `json:"t_step"`
	TMax            float64               `json:"t_max"`
	Steps           int                   `json:"steps"`
	PSF             string                `json:"psf"`
	Boundary        string                `json:"boundary"`
	Particles       int                   `json:"particles"`
	Coefficients    []brownian.CoeffCount `json:"coefficients"`
	ConcentrationPM float64               `json:"concentration_pm"`
	Box             brownian.Box          `json:"box"`
	Metrics         map[string]float64    `json:"metrics"`

	// Photon stage, set once timestamps are generated for the run.
	ClockPeriod float64 `json:"clock_period,omitempty"`
	MaxRate     float64 `json:"max_rate,omitempty"`
	BgRate      float64 `json:"bg_rate,omitempty"`
}

// Save writes a run directory named by the simulation's compact name:
// metadata.json, emission.csv and, when positions were recorded,
// positions.csv.
func (s *Store) Save(sim *brownian.Simulator, cfg brownian.Config, model, psfName, boundaryName string, result *brownian.Result) (string, error) {
	runID := sim.CompactName(cfg)
	runDir := filepath.Join(s.baseDir, runID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	pop := sim.Population()
	box := sim.Box()
	meta := RunMetadata{
		ID:              runID,
		Model:           model,
		Timestamp:       time.Now(),
		Hash:            sim.Hash(cfg),
		Seed:            cfg.Seed,
		SimID:           cfg.SimID,
		EngineID:        cfg.EngineID,
		TStep:           cfg.TStep,
		TMax:            cfg.TMax,
		Steps:           result.StepsTaken,
		PSF:             psfName,
		Boundary:        boundaryName,
		Particles:       pop.Len(),
		Coefficients:    pop.CoefficientCounts(),
		ConcentrationPM: brownian.ConcentrationPM(pop.Len(), box),
		Box:             box,
		Metrics:         result.Metrics,
	}
	if err := s.writeMetadata(runID, &meta); err != nil {
		return "", err
	}

	if err := writeEmission(runDir, cfg.TStep, result.Emission); err != nil {
		return "", err
	}
	if len(result.Positions) > 0 {
		if err := writePositions(runDir, cfg.TStep, result.Positions); err != nil {
			return "", err
		}
	}

	return runID, nil
}

func (s *Store) writeMetadata(runID string, meta *RunMetadata) error {
	metaFile, err := os.Create(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func writeEmission(runDir string, tstep float64, emission [][]float64) error {
	f, err := os.Create(filepath.Join(runDir, "emission.csv"))
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if len(emission) == 0 {
		return nil
	}

	header := []string{"time"}
	for i := range emission {
		header = append(header, fmt.Sprintf("e%d", i))
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for k := range emission[0] {
		row := make([]string, 0, len(emission)+1)
		row = append(row, formatFloat(float64(k+1)*tstep))
		for i := range emission {
			row = append(row, formatFloat(emission[i][k]))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return nil
}

func writePositions(runDir string, tstep float64, positions [][]brownian.Vec) error {
	f, err := os.Create(filepath.Join(runDir, "positions.csv"))
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{"time"}
	for i := range positions {
		header = append(header,
			fmt.Sprintf("x%d", i), fmt.Sprintf("y%d", i), fmt.Sprintf("z%d", i))
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for k := range positions[0] {
		row := make([]string, 0, 3*len(positions)+1)
		row = append(row, formatFloat(float64(k+1)*tstep))
		for i := range positions {
			p := positions[i][k]
			row = append(row, formatFloat(p.X), formatFloat(p.Y), formatFloat(p.Z))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return nil
}

// formatFloat keeps full round-trip precision; emission and time values
// span many orders of magnitude.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		metaPath := filepath.Join(s.baseDir, entry.Name(), "metadata.json")
		data, err := os.ReadFile(metaPath)
		if err != nil {
			continue
		}

		var meta RunMetadata
		if err := json.Unmarshal(data, &meta); err != nil {
			continue
		}

		runs = append(runs, meta)
	}

	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// LoadEmission reads emission.csv back as one row per emission trace
// plus the time column.
func (s *Store) LoadEmission(runID string) ([][]float64, []float64, error) {
	records, err := readCSV(filepath.Join(s.baseDir, runID, "emission.csv"))
	if err != nil {
		return nil, nil, err
	}
	if len(records) < 2 {
		return [][]float64{}, []float64{}, nil
	}

	cols := len(records[0]) - 1
	emission := make([][]float64, cols)
	times := make([]float64, 0, len(records)-1)

	for _, record := range records[1:] {
		if len(record) != cols+1 {
			continue
		}
		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			continue
		}
		times = append(times, t)
		for i := 0; i < cols; i++ {
			v, err := strconv.ParseFloat(record[i+1], 64)
			if err != nil {
				v = 0
			}
			emission[i] = append(emission[i], v)
		}
	}

	return emission, times, nil
}

// LoadPositions reads positions.csv back as one trajectory per
// particle plus the time column.
func (s *Store) LoadPositions(runID string) ([][]brownian.Vec, []float64, error) {
	records, err := readCSV(filepath.Join(s.baseDir, runID, "positions.csv"))
	if err != nil {
		return nil, nil, err
	}
	if len(records) < 2 {
		return [][]brownian.Vec{}, []float64{}, nil
	}

	parts := (len(records[0]) - 1) / 3
	positions := make([][]brownian.Vec, parts)
	times := make([]float64, 0, len(records)-1)

	for _, record := range records[1:] {
		if len(record) != 3*parts+1 {
			continue
		}
		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			continue
		}
		times = append(times, t)
		for i := 0; i < parts; i++ {
			x, errX := strconv.ParseFloat(record[3*i+1], 64)
			y, errY := strconv.ParseFloat(record[3*i+2], 64)
			z, errZ := strconv.ParseFloat(record[3*i+3], 64)
			if errX != nil || errY != nil || errZ != nil {
				continue
			}
			positions[i] = append(positions[i], brownian.Vec{X: x, Y: y, Z: z})
		}
	}

	return positions, times, nil
}

// SaveTimestamps writes timestamps.csv for a stored run and records the
// photon stage parameters in its metadata.
func (s *Store) SaveTimestamps(runID string, cfg photon.Config, times []int64, parts []uint8) error {
	if len(times) != len(parts) {
		return fmt.Errorf("timestamps and particles length mismatch: %d vs %d", len(times), len(parts))
	}
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}

	f, err := os.Create(filepath.Join(s.baseDir, runID, "timestamps.csv"))
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"tick", "particle"}); err != nil {
		return err
	}
	for i, t := range times {
		row := []string{strconv.FormatInt(t, 10), strconv.Itoa(int(parts[i]))}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	meta.ClockPeriod = cfg.ClockPeriod()
	meta.MaxRate = cfg.MaxRate
	meta.BgRate = cfg.BgRate
	return s.writeMetadata(runID, meta)
}

// LoadTimestamps reads timestamps.csv back as clock ticks and particle
// indices.
func (s *Store) LoadTimestamps(runID string) ([]int64, []uint8, error) {
	records, err := readCSV(filepath.Join(s.baseDir, runID, "timestamps.csv"))
	if err != nil {
		return nil, nil, err
	}
	if len(records) == 0 {
		return []int64{}, []uint8{}, nil
	}

	times := make([]int64, 0, len(records))
	parts := make([]uint8, 0, len(records))
	for _, record := range records[1:] {
		if len(record) != 2 {
			continue
		}
		t, errT := strconv.ParseInt(record[0], 10, 64)
		p, errP := strconv.Atoi(record[1])
		if errT != nil || errP != nil {
			continue
		}
		times = append(times, t)
		parts = append(parts, uint8(p))
	}

	return times, parts, nil
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1
	return r.ReadAll()
}
