package config

var Presets = map[string]map[string]*Config{
	"freely-diffusing": {
		"small": {
			Model: "freely-diffusing", PSF: "gaussian", Boundary: "periodic",
			Particles: 4, D: 1.2e-11,
			Box:   BoxConfig{X: 6e-6, Y: 6e-6, Z: 9e-6},
			TStep: 0.5e-6, TMax: 0.1, Chunk: 1 << 14, Seed: 1,
			MaxRate: 150e3, BgRate: 3e3,
		},
		"standard": {
			Model: "freely-diffusing", PSF: "gaussian", Boundary: "periodic",
			Particles: 20, D: 1.2e-11,
			Box:   BoxConfig{X: 8e-6, Y: 8e-6, Z: 12e-6},
			TStep: 0.5e-6, TMax: 0.3, Chunk: 1 << 14, Seed: 1,
			MaxRate: 150e3, BgRate: 3e3,
		},
		"dense": {
			Model: "freely-diffusing", PSF: "gaussian", Boundary: "periodic",
			Particles: 35, D: 1.2e-11,
			Box:   BoxConfig{X: 8e-6, Y: 8e-6, Z: 12e-6},
			TStep: 0.5e-6, TMax: 0.3, Chunk: 1 << 14, Seed: 1,
			MaxRate: 150e3, BgRate: 6e3,
		},
	},
	"slow-protein": {
		"standard": {
			Model: "slow-protein", PSF: "gaussian", Boundary: "mirror",
			Particles: 15,
			Diameter:  5e-9, Viscosity: 1.0016e-3, Temperature: 293.15,
			Box:   BoxConfig{X: 8e-6, Y: 8e-6, Z: 12e-6},
			TStep: 1e-6, TMax: 0.5, Chunk: 1 << 14, Seed: 1,
			MaxRate: 80e3, BgRate: 2e3,
		},
		"dilute": {
			Model: "slow-protein", PSF: "gaussian", Boundary: "mirror",
			Particles: 5,
			Diameter:  5e-9, Viscosity: 1.0016e-3, Temperature: 293.15,
			Box:   BoxConfig{X: 10e-6, Y: 10e-6, Z: 14e-6},
			TStep: 1e-6, TMax: 0.5, Chunk: 1 << 14, Seed: 1,
			MaxRate: 80e3, BgRate: 2e3,
		},
	},
	"quick-look": {
		"standard": {
			Model: "quick-look", PSF: "gaussian", Boundary: "periodic",
			Particles: 8, D: 1.2e-11,
			Box:   BoxConfig{X: 8e-6, Y: 8e-6, Z: 12e-6},
			TStep: 2e-6, TMax: 0.05, Chunk: 1 << 12, Seed: 1,
			MaxRate: 150e3, BgRate: 3e3,
		},
	},
}

// GetPreset returns a copy of the named preset, or nil when the model
// or preset does not exist. Callers may adjust the copy freely.
func GetPreset(model, preset string) *Config {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	cfg, ok := modelPresets[preset]
	if !ok {
		return nil
	}
	c := *cfg
	return &c
}

func ListPresets(model string) []string {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(modelPresets))
	for name := range modelPresets {
		names = append(names, name)
	}
	return names
}
