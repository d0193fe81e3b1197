package storage

import (
	"encoding/json"
	"io"
	"os"
)

type ExportData struct {
	Meta       RunMetadata `json:"meta"`
	Times      []float64   `json:"times"`
	Emission   [][]float64 `json:"emission"`
	Ticks      []int64     `json:"ticks,omitempty"`
	TickOwners []uint8     `json:"tick_owners,omitempty"`
}

// ExportRun bundles a stored run for export: metadata, the emission
// traces and, when present, the photon timestamps.
func (s *Store) ExportRun(runID string) (*ExportData, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}
	emission, times, err := s.LoadEmission(runID)
	if err != nil {
		return nil, err
	}

	data := &ExportData{
		Meta:     *meta,
		Times:    times,
		Emission: emission,
	}

	// Timestamps are optional; only runs that went through the photon
	// stage have them.
	if ticks, owners, err := s.LoadTimestamps(runID); err == nil {
		data.Ticks = ticks
		data.TickOwners = owners
	}

	return data, nil
}

func ExportJSON(path string, data *ExportData) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return exportJSON(file, data)
}

func ExportJSONStdout(data *ExportData) error {
	return exportJSON(os.Stdout, data)
}

func exportJSON(w io.Writer, data *ExportData) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
