package export

import (
	"fmt"
	"strings"

	"github.com/seralo/diffsim/internal/analysis"
	"github.com/seralo/diffsim/internal/viz"
)

// CanvasToSVG renders a braille canvas as SVG dots, one circle per lit
// sub-pixel. scale is the sub-pixel size in SVG units.
func CanvasToSVG(canvas *viz.Canvas, scale float64) string {
	if canvas == nil {
		return ""
	}

	subW, subH := canvas.SubWidth(), canvas.SubHeight()
	width := float64(subW) * scale
	height := float64(subH) * scale
	dotRadius := scale * 0.4

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="#ffffff"/>
<g fill="#1f77b4">
`, width, height, width, height)

	for y := 0; y < subH; y++ {
		for x := 0; x < subW; x++ {
			if !canvas.Lit(x, y) {
				continue
			}
			cx := (float64(x) + 0.5) * scale
			cy := (float64(y) + 0.5) * scale
			fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n", cx, cy, dotRadius)
		}
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// TrajectoryToSVG renders an x-y trajectory as an SVG polyline. The
// viewBox is fitted to the points with 10% padding on each side.
func TrajectoryToSVG(points []analysis.Point, width, height int, strokeColor string) string {
	if len(points) < 2 {
		return ""
	}

	minX, rangeX := span(points, func(p analysis.Point) float64 { return p.X })
	minY, rangeY := span(points, func(p analysis.Point) float64 { return p.Y })

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#ffffff"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, strokeColor)

	for i, p := range points {
		x := (p.X - minX) / rangeX * float64(width)
		y := float64(height) - (p.Y-minY)/rangeY*float64(height)
		if i > 0 {
			sb.WriteString(" L")
		}
		fmt.Fprintf(&sb, "%.1f,%.1f", x, y)
	}

	sb.WriteString("\"/>\n</svg>")
	return sb.String()
}

// span returns the minimum and extent of one axis after widening the
// data range by 10% per side. A degenerate axis gets a unit extent.
func span(points []analysis.Point, coord func(analysis.Point) float64) (min, extent float64) {
	lo, hi := coord(points[0]), coord(points[0])
	for _, p := range points[1:] {
		v := coord(p)
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	extent = hi - lo
	if extent == 0 {
		extent = 1
	}
	lo -= extent * 0.1
	hi += extent * 0.1
	return lo, hi - lo
}
