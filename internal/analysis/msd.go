package analysis

import (
	"github.com/seralo/diffsim/internal/brownian"
)

// MSDCurve computes the time- and particle-averaged mean squared
// displacement for lags 1..maxLag. traj[i][s] is the position of
// particle i at step s. Lags are independent, so they are evaluated in
// parallel.
func MSDCurve(traj [][]brownian.Vec, maxLag int) []float64 {
	if len(traj) == 0 || maxLag <= 0 {
		return nil
	}

	steps := len(traj[0])
	if maxLag >= steps {
		maxLag = steps - 1
	}
	if maxLag <= 0 {
		return nil
	}

	msd := make([]float64, maxLag)
	brownian.ParallelFor(maxLag, 8, func(start, end int) {
		for li := start; li < end; li++ {
			lag := li + 1
			sum := 0.0
			count := 0
			for _, tr := range traj {
				for s := 0; s+lag < len(tr); s++ {
					d := tr[s+lag].Sub(tr[s])
					sum += d.X*d.X + d.Y*d.Y + d.Z*d.Z
					count++
				}
			}
			if count > 0 {
				msd[li] = sum / float64(count)
			}
		}
	})
	return msd
}

// FitD recovers a diffusion coefficient from an MSD curve by a
// least-squares fit of msd = 2*dims*D*t through the origin. msd[k] is
// taken at lag time (k+1)*dt. Returns 0 on degenerate input.
func FitD(msd []float64, dt float64, dims int) float64 {
	if len(msd) == 0 || dt <= 0 || dims <= 0 {
		return 0
	}

	var num, den float64
	for k, y := range msd {
		t := float64(k+1) * dt
		num += t * y
		den += t * t
	}
	if den == 0 {
		return 0
	}
	return num / den / (2 * float64(dims))
}
