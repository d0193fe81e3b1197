package analysis

import (
	"math"

	"github.com/seralo/diffsim/internal/brownian"
)

// FirstPassage returns the first time the trajectory moves farther
// than radius from r0. traj[s] is taken at time (s+1)*dt and the
// trajectory is assumed to start at r0, so the crossing is linearly
// interpolated between the bracketing samples. The second return is
// false when the trajectory never leaves the sphere.
func FirstPassage(traj []brownian.Vec, r0 brownian.Vec, radius, dt float64) (float64, bool) {
	if len(traj) == 0 || radius <= 0 || dt <= 0 {
		return 0, false
	}

	prev := 0.0
	for s, p := range traj {
		d := p.Sub(r0)
		dist := math.Sqrt(d.X*d.X + d.Y*d.Y + d.Z*d.Z)
		if dist >= radius {
			frac := 0.5
			if dist != prev {
				frac = (radius - prev) / (dist - prev)
			}
			return (float64(s) + frac) * dt, true
		}
		prev = dist
	}
	return 0, false
}

// ExitTimes collects first-passage times for every trajectory that
// leaves the sphere of the given radius around its own starting point.
func ExitTimes(traj [][]brownian.Vec, starts []brownian.Vec, radius, dt float64) []float64 {
	times := make([]float64, 0, len(traj))
	for i, tr := range traj {
		if i >= len(starts) {
			break
		}
		if t, ok := FirstPassage(tr, starts[i], radius, dt); ok {
			times = append(times, t)
		}
	}
	return times
}

// MeanExitTime is the empirical mean of a set of first-passage times,
// comparable against the x^2/(2*N*D) prediction.
func MeanExitTime(times []float64) float64 {
	if len(times) == 0 {
		return 0
	}
	sum := 0.0
	for _, t := range times {
		sum += t
	}
	return sum / float64(len(times))
}
