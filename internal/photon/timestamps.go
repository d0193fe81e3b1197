package photon

import "sort"

// Timestamps expands per-bin counts into clock-tick timestamps. A bin
// with c counts emits min(c, maxPerBin) identical timestamps
// (bin+iStart)*scale tagged with the row index. Rows are merged and
// stable-sorted by time, so equal times keep ascending row order.
func Timestamps(counts [][]uint8, iStart, scale int64, maxPerBin int) ([]int64, []uint8) {
	var times []int64
	var particles []uint8

	for ip, row := range counts {
		for v := 1; v <= maxPerBin; v++ {
			for bin, c := range row {
				if int(c) >= v {
					times = append(times, (int64(bin)+iStart)*scale)
					particles = append(particles, uint8(ip))
				}
			}
		}
	}

	sort.Stable(&timeOrder{times: times, particles: particles})
	return times, particles
}

// timeOrder sorts a timestamp stream by time, carrying the particle tags
// along.
type timeOrder struct {
	times     []int64
	particles []uint8
}

func (o *timeOrder) Len() int           { return len(o.times) }
func (o *timeOrder) Less(i, j int) bool { return o.times[i] < o.times[j] }
func (o *timeOrder) Swap(i, j int) {
	o.times[i], o.times[j] = o.times[j], o.times[i]
	o.particles[i], o.particles[j] = o.particles[j], o.particles[i]
}
