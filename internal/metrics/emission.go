package metrics

import (
	"github.com/seralo/diffsim/internal/brownian"
)

// MeanEmission accumulates the average detected emission across all
// particles and steps. Emission values are dimensionless PSF detection
// factors in [0, 1].
type MeanEmission struct {
	name    string
	sum     float64
	samples int
}

func NewMeanEmission() *MeanEmission {
	return &MeanEmission{name: "mean_emission"}
}

func (m *MeanEmission) Name() string { return m.name }

func (m *MeanEmission) ObserveChunk(particle, start int, pos []brownian.Vec, em []float64) {
	for _, e := range em {
		m.sum += e
	}
	m.samples += len(em)
}

func (m *MeanEmission) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.sum / float64(m.samples)
}

func (m *MeanEmission) Reset() {
	m.sum = 0
	m.samples = 0
}

// PeakEmission records the brightest single step seen by any particle.
type PeakEmission struct {
	name string
	peak float64
}

func NewPeakEmission() *PeakEmission {
	return &PeakEmission{name: "peak_emission"}
}

func (p *PeakEmission) Name() string { return p.name }

func (p *PeakEmission) ObserveChunk(particle, start int, pos []brownian.Vec, em []float64) {
	for _, e := range em {
		if e > p.peak {
			p.peak = e
		}
	}
}

func (p *PeakEmission) Value() float64 { return p.peak }

func (p *PeakEmission) Reset() { p.peak = 0 }
