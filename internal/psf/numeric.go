package psf

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// Numeric is a PSF sampled on a regular (r, z) grid, bilinearly
// interpolated between nodes. Points outside the grid evaluate to 0.
//
// The CSV layout is one header record holding the z grid (first cell
// ignored), then one record per radial node: the r value followed by the
// amplitudes at each z.
type Numeric struct {
	name string
	rs   []float64
	zs   []float64
	grid [][]float64 // grid[i][j] = amplitude at (rs[i], zs[j])
	wxy  float64
	wz   float64
}

func LoadNumeric(path string) (*Numeric, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open psf: %w", err)
	}
	defer f.Close()

	n, err := ParseNumeric(f)
	if err != nil {
		return nil, fmt.Errorf("parse psf %s: %w", path, err)
	}
	n.name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return n, nil
}

func ParseNumeric(r io.Reader) (*Numeric, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 3 || len(records[0]) < 3 {
		return nil, fmt.Errorf("psf: grid needs at least 2 radial and 2 axial nodes")
	}

	zs, err := parseFloats(records[0][1:])
	if err != nil {
		return nil, fmt.Errorf("psf: z grid: %w", err)
	}

	rs := make([]float64, 0, len(records)-1)
	grid := make([][]float64, 0, len(records)-1)
	for _, rec := range records[1:] {
		if len(rec) != len(zs)+1 {
			return nil, fmt.Errorf("psf: row has %d values, want %d", len(rec)-1, len(zs))
		}
		rv, err := strconv.ParseFloat(strings.TrimSpace(rec[0]), 64)
		if err != nil {
			return nil, fmt.Errorf("psf: r grid: %w", err)
		}
		row, err := parseFloats(rec[1:])
		if err != nil {
			return nil, fmt.Errorf("psf: amplitudes at r=%g: %w", rv, err)
		}
		rs = append(rs, rv)
		grid = append(grid, row)
	}

	if !ascending(rs) || !ascending(zs) {
		return nil, fmt.Errorf("psf: grid axes must be strictly ascending")
	}

	n := &Numeric{name: "numeric", rs: rs, zs: zs, grid: grid}
	n.wxy, n.wz = n.estimateWaists()
	return n, nil
}

func (n *Numeric) Eval(r, z float64) float64 {
	r = math.Abs(r)
	if r < n.rs[0] || r > n.rs[len(n.rs)-1] || z < n.zs[0] || z > n.zs[len(n.zs)-1] {
		return 0
	}

	i := cellIndex(n.rs, r)
	j := cellIndex(n.zs, z)

	tr := (r - n.rs[i]) / (n.rs[i+1] - n.rs[i])
	tz := (z - n.zs[j]) / (n.zs[j+1] - n.zs[j])

	lo := n.grid[i][j]*(1-tz) + n.grid[i][j+1]*tz
	hi := n.grid[i+1][j]*(1-tz) + n.grid[i+1][j+1]*tz
	return lo*(1-tr) + hi*tr
}

func (n *Numeric) WaistXY() float64 { return n.wxy }
func (n *Numeric) WaistZ() float64  { return n.wz }
func (n *Numeric) Name() string     { return n.name }

// cellIndex returns the lower node of the grid cell containing x, assuming
// x lies within the axis range.
func cellIndex(axis []float64, x float64) int {
	i := sort.SearchFloat64s(axis, x)
	if i > 0 {
		i--
	}
	if i > len(axis)-2 {
		i = len(axis) - 2
	}
	return i
}

// estimateWaists finds the 1/e^2 half-widths along r at the focal plane
// and along z on the axis.
func (n *Numeric) estimateWaists() (wxy, wz float64) {
	j0 := nearestIndex(n.zs, 0)
	radial := make([]float64, len(n.rs))
	for i := range n.rs {
		radial[i] = n.grid[i][j0]
	}
	wxy = crossingDistance(n.rs, radial)

	i0 := nearestIndex(n.rs, 0)
	axial := n.grid[i0]
	// Scan outward from the peak, the z axis may span negative offsets.
	peak := 0
	for j := range axial {
		if axial[j] > axial[peak] {
			peak = j
		}
	}
	zsOut := make([]float64, 0, len(axial)-peak)
	ampOut := make([]float64, 0, len(axial)-peak)
	for j := peak; j < len(axial); j++ {
		zsOut = append(zsOut, n.zs[j]-n.zs[peak])
		ampOut = append(ampOut, axial[j])
	}
	wz = crossingDistance(zsOut, ampOut)
	return wxy, wz
}

// crossingDistance returns the axis offset where amp first falls below
// 1/e^2 of its initial value, linearly interpolated.
func crossingDistance(axis, amp []float64) float64 {
	if len(amp) == 0 || amp[0] <= 0 {
		return 0
	}
	target := amp[0] * math.Exp(-2)
	for i := 1; i < len(amp); i++ {
		if amp[i] <= target {
			t := (amp[i-1] - target) / (amp[i-1] - amp[i])
			return axis[i-1] + t*(axis[i]-axis[i-1])
		}
	}
	return axis[len(axis)-1]
}

func nearestIndex(axis []float64, x float64) int {
	best := 0
	for i, v := range axis {
		if math.Abs(v-x) < math.Abs(axis[best]-x) {
			best = i
		}
	}
	return best
}

func ascending(xs []float64) bool {
	for i := 1; i < len(xs); i++ {
		if xs[i] <= xs[i-1] {
			return false
		}
	}
	return true
}

func parseFloats(cells []string) ([]float64, error) {
	out := make([]float64, len(cells))
	for i, c := range cells {
		v, err := strconv.ParseFloat(strings.TrimSpace(c), 64)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
