package metrics

import (
	"github.com/seralo/diffsim/internal/brownian"
)

// Occupancy measures the fraction of observed steps spent inside the
// bright region of the detection volume. A step counts as occupied
// when its emission exceeds the threshold.
type Occupancy struct {
	name      string
	threshold float64
	inside    int
	samples   int
}

func NewOccupancy(threshold float64) *Occupancy {
	return &Occupancy{name: "occupancy", threshold: threshold}
}

func (o *Occupancy) Name() string { return o.name }

func (o *Occupancy) ObserveChunk(particle, start int, pos []brownian.Vec, em []float64) {
	for _, e := range em {
		if e > o.threshold {
			o.inside++
		}
	}
	o.samples += len(em)
}

func (o *Occupancy) Value() float64 {
	if o.samples == 0 {
		return 0
	}
	return float64(o.inside) / float64(o.samples)
}

func (o *Occupancy) Reset() {
	o.inside = 0
	o.samples = 0
}
