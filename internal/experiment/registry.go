package experiment

import (
	"fmt"
	"strings"

	"github.com/seralo/diffsim/internal/brownian"
	"github.com/seralo/diffsim/internal/metrics"
	"github.com/seralo/diffsim/internal/psf"
)

type Registry struct {
	psfs       map[string]func(params map[string]float64) (psf.PSF, error)
	boundaries map[string]func() brownian.Boundary
}

func NewRegistry() *Registry {
	r := &Registry{
		psfs:       make(map[string]func(map[string]float64) (psf.PSF, error)),
		boundaries: make(map[string]func() brownian.Boundary),
	}

	r.psfs["gaussian"] = func(params map[string]float64) (psf.PSF, error) {
		wxy := params["waist_xy"]
		wz := params["waist_z"]
		if wxy == 0 && wz == 0 {
			return psf.NewGaussian(), nil
		}
		if wxy == 0 {
			wxy = psf.DefaultWaistXY
		}
		if wz == 0 {
			wz = psf.DefaultWaistZ
		}
		return psf.NewGaussianWaists(wxy, wz)
	}

	r.boundaries["periodic"] = func() brownian.Boundary { return brownian.Periodic{} }
	r.boundaries["mirror"] = func() brownian.Boundary { return brownian.Mirror{} }

	return r
}

// GetPSF resolves a PSF by name. "numeric:<path>" loads a sampled PSF
// from a CSV grid; everything else goes through the registered
// factories.
func (r *Registry) GetPSF(name string, params map[string]float64) (psf.PSF, error) {
	if path, ok := strings.CutPrefix(name, "numeric:"); ok {
		return psf.LoadNumeric(path)
	}
	fn, ok := r.psfs[name]
	if !ok {
		return nil, fmt.Errorf("unknown psf: %s", name)
	}
	return fn(params)
}

func (r *Registry) GetBoundary(name string) (brownian.Boundary, error) {
	fn, ok := r.boundaries[name]
	if !ok {
		return nil, fmt.Errorf("unknown boundary: %s", name)
	}
	return fn(), nil
}

func (r *Registry) ListPSFs() []string {
	names := make([]string, 0, len(r.psfs))
	for name := range r.psfs {
		names = append(names, name)
	}
	return names
}

func (r *Registry) ListBoundaries() []string {
	names := make([]string, 0, len(r.boundaries))
	for name := range r.boundaries {
		names = append(names, name)
	}
	return names
}

func (r *Registry) DefaultMetrics(pop *brownian.Population) []brownian.Metric {
	return []brownian.Metric{
		metrics.NewMSD(pop),
		metrics.NewMeanEmission(),
		metrics.NewPeakEmission(),
		metrics.NewOccupancy(0.1),
	}
}
