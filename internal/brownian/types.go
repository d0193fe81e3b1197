package brownian

import "math"

// Vec is a position or displacement in 3-D space, in meters.
type Vec struct {
	X, Y, Z float64
}

func (v Vec) Add(o Vec) Vec {
	return Vec{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

func (v Vec) Sub(o Vec) Vec {
	return Vec{v.X - o.X, v.Y - o.Y, v.Z - o.Z}
}

func (v Vec) Norm() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Radial is the distance from the optical axis on the x-y plane.
func (v Vec) Radial() float64 {
	return math.Hypot(v.X, v.Y)
}

// Metric observes simulated chunks and reduces them to a scalar.
// ObserveChunk is called once per particle per chunk with the folded
// positions and detected emission of steps [start, start+len(pos)).
type Metric interface {
	Name() string
	ObserveChunk(particle, start int, pos []Vec, em []float64)
	Value() float64
	Reset()
}

// Config holds the run parameters of a trajectory simulation.
type Config struct {
	TStep         float64 // time step in seconds
	TMax          float64 // total simulated time in seconds
	Chunk         int     // steps simulated per chunk
	Seed          int64
	SimID         int // distinguishes repeated runs with equal parameters
	EngineID      int // distinguishes engines in parallel computations
	SavePositions bool
	TotalEmission bool // keep one summed emission row instead of one per particle
}

func DefaultConfig() Config {
	return Config{
		TStep: 0.5e-6,
		TMax:  0.3,
		Chunk: 1 << 14,
		Seed:  1,
	}
}

// Steps is the number of simulated time steps.
func (c Config) Steps() int {
	return int(c.TMax / c.TStep)
}

// Result holds the output of a completed run.
//
// Emission has one row per particle, or a single summed row when the run
// was configured with TotalEmission. Positions is populated only when
// SavePositions was set.
type Result struct {
	Emission   [][]float64
	Positions  [][]Vec
	StepsTaken int
	Metrics    map[string]float64
}
