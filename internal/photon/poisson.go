package photon

import (
	"math"
	"math/rand"
)

// poisson draws from a Poisson distribution with mean lambda: the Knuth
// product method for small means, a rounded Gaussian above lambda = 30
// where the approximation error is far below the shot noise.
func poisson(rng *rand.Rand, lambda float64) int64 {
	if lambda <= 0 {
		return 0
	}
	if lambda > 30 {
		v := math.Round(rng.NormFloat64()*math.Sqrt(lambda) + lambda)
		if v < 0 {
			return 0
		}
		return int64(v)
	}

	limit := math.Exp(-lambda)
	var k int64
	p := 1.0
	for {
		p *= rng.Float64()
		if p <= limit {
			return k
		}
		k++
	}
}
