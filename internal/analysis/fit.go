package analysis

import (
	"context"
	"fmt"
	"math"

	"github.com/seralo/diffsim/internal/sweep"
)

// FitCorrelationTime fits exp(-t/tau) to the leading part of the ACF,
// scanning tau on a grid around the half-decay estimate. The fitted
// time constant is steadier than the interpolated half-decay when the
// curve is noisy. The second return is false when the ACF never decays
// to half.
func FitCorrelationTime(acf []float64, dt float64) (float64, bool) {
	halfTime, ok := CorrelationTime(acf, dt)
	if !ok {
		return 0, false
	}
	center := halfTime / math.Ln2

	// Fit over the first three time constants.
	n := int(3 * center / dt)
	if n > len(acf) {
		n = len(acf)
	}
	if n < 2 {
		n = 2
	}

	taus := sweep.Range(0.6*center, 1.4*center, 41)
	grid := sweep.NewGrid([]string{"tau"}, [][]float64{taus})
	best, _, _, err := grid.Search(context.Background(), func(p map[string]float64) (float64, error) {
		tau := p["tau"]
		if tau <= 0 {
			return 0, fmt.Errorf("tau must be positive, got %g", tau)
		}
		ss := 0.0
		for k := 0; k < n; k++ {
			r := acf[k] - math.Exp(-float64(k)*dt/tau)
			ss += r * r
		}
		return ss, nil
	})
	if err != nil || best == nil {
		return center, true
	}
	return best["tau"], true
}
