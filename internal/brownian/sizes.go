package brownian

import (
	"fmt"
	"strings"
)

// SizeEstimate reports expected array sizes for a run configuration,
// before committing disk space to it.
type SizeEstimate struct {
	Particles   int
	Steps       int
	EmissionOne int64 // bytes for one particle's emission row
	Emission    int64 // bytes for all emission rows
	Positions   int64 // bytes for all position rows when saved
}

func EstimateSizes(particles int, cfg Config) SizeEstimate {
	const floatSize = 8
	steps := cfg.Steps()
	one := int64(steps) * floatSize
	return SizeEstimate{
		Particles:   particles,
		Steps:       steps,
		EmissionOne: one,
		Emission:    one * int64(particles),
		Positions:   3 * one * int64(particles),
	}
}

func (e SizeEstimate) String() string {
	const mb = 1 << 20
	var b strings.Builder
	fmt.Fprintf(&b, "  Number of particles: %d\n", e.Particles)
	fmt.Fprintf(&b, "  Number of time steps: %d\n", e.Steps)
	fmt.Fprintf(&b, "  Emission array - 1 particle (float64): %.1f MB\n", float64(e.EmissionOne)/mb)
	fmt.Fprintf(&b, "  Emission array (float64): %.1f MB\n", float64(e.Emission)/mb)
	fmt.Fprintf(&b, "  Position array (float64): %.1f MB\n", float64(e.Positions)/mb)
	return b.String()
}
