package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultTStep     = 0.5e-6
	DefaultTMax      = 0.3
	DefaultChunk     = 1 << 14
	DefaultParticles = 20
	DefaultD         = 1.2e-11
	DefaultBoxX      = 8e-6
	DefaultBoxY      = 8e-6
	DefaultBoxZ      = 12e-6
	DefaultMaxRate   = 150e3
	DefaultBgRate    = 3e3
)

type Config struct {
	Model    string `yaml:"model"`
	PSF      string `yaml:"psf"`
	Boundary string `yaml:"boundary"`

	Particles int     `yaml:"particles"`
	D         float64 `yaml:"d"`

	// Stokes-Einstein route, used when d is zero.
	Diameter    float64 `yaml:"diameter"`
	Viscosity   float64 `yaml:"viscosity"`
	Temperature float64 `yaml:"temperature"`

	Box    BoxConfig   `yaml:"box"`
	Waists WaistConfig `yaml:"waists"`

	TStep float64 `yaml:"t_step"`
	TMax  float64 `yaml:"t_max"`
	Chunk int     `yaml:"chunk"`

	Seed     int64 `yaml:"seed"`
	SimID    int   `yaml:"sim_id"`
	EngineID int   `yaml:"engine_id"`

	MaxRate float64 `yaml:"max_rate"`
	BgRate  float64 `yaml:"bg_rate"`

	SavePositions bool `yaml:"save_positions"`
	TotalEmission bool `yaml:"total_emission"`
}

// BoxConfig holds the full side lengths of the simulation box in
// meters. The box is centered on the origin.
type BoxConfig struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	Z float64 `yaml:"z"`
}

// WaistConfig holds Gaussian PSF waists in meters. Zero means the
// package default.
type WaistConfig struct {
	XY float64 `yaml:"xy"`
	Z  float64 `yaml:"z"`
}

func DefaultConfig() *Config {
	return &Config{
		Model:     "freely-diffusing",
		PSF:       "gaussian",
		Boundary:  "periodic",
		Particles: DefaultParticles,
		D:         DefaultD,
		Box:       BoxConfig{X: DefaultBoxX, Y: DefaultBoxY, Z: DefaultBoxZ},
		TStep:     DefaultTStep,
		TMax:      DefaultTMax,
		Chunk:     DefaultChunk,
		Seed:      1,
		MaxRate:   DefaultMaxRate,
		BgRate:    DefaultBgRate,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// PSFParams flattens the waist settings into registry parameters.
func (c *Config) PSFParams() map[string]float64 {
	return map[string]float64{
		"waist_xy": c.Waists.XY,
		"waist_z":  c.Waists.Z,
	}
}
