package viz

import "strings"

// brailleBits maps a sub-pixel (x, y) inside one terminal cell to its
// bit in the braille pattern block starting at U+2800. Cells are two
// sub-pixels wide and four tall.
var brailleBits = [2][4]rune{
	{0x01, 0x02, 0x04, 0x40},
	{0x08, 0x10, 0x20, 0x80},
}

// Canvas is a braille pixel canvas. A w x h cell canvas draws
// (2w) x (4h) sub-pixels.
type Canvas struct {
	w, h  int
	cells []rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{w: w, h: h, cells: make([]rune, w*h)}
	c.Clear()
	return c
}

func (c *Canvas) SubWidth() int  { return c.w * 2 }
func (c *Canvas) SubHeight() int { return c.h * 4 }

// Size returns the canvas dimensions in terminal cells.
func (c *Canvas) Size() (w, h int) { return c.w, c.h }

// Cell returns the braille rune at (col, row).
func (c *Canvas) Cell(col, row int) rune { return c.cells[row*c.w+col] }

func (c *Canvas) Clear() {
	for i := range c.cells {
		c.cells[i] = 0x2800
	}
}

// Set turns the sub-pixel at (x, y) on. Coordinates outside the canvas
// are ignored.
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 || x >= c.w*2 || y >= c.h*4 {
		return
	}
	c.cells[(y/4)*c.w+x/2] |= brailleBits[x%2][y%4]
}

// Lit reports whether the sub-pixel at (x, y) is on. Coordinates
// outside the canvas are off.
func (c *Canvas) Lit(x, y int) bool {
	if x < 0 || y < 0 || x >= c.w*2 || y >= c.h*4 {
		return false
	}
	return c.cells[(y/4)*c.w+x/2]&brailleBits[x%2][y%4] != 0
}

// Dot draws a 3x3 block centered on (x, y).
func (c *Canvas) Dot(x, y int) {
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			c.Set(x+dx, y+dy)
		}
	}
}

// Line draws from (x0, y0) to (x1, y1) with Bresenham steps.
func (c *Canvas) Line(x0, y0, x1, y1 int) {
	dx := abs(x1 - x0)
	dy := abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx - dy

	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// Rect draws the outline of the axis-aligned rectangle spanned by the
// two corners.
func (c *Canvas) Rect(x0, y0, x1, y1 int) {
	c.Line(x0, y0, x1, y0)
	c.Line(x1, y0, x1, y1)
	c.Line(x1, y1, x0, y1)
	c.Line(x0, y1, x0, y0)
}

func (c *Canvas) String() string {
	var b strings.Builder
	b.Grow(c.h * (3*c.w + 1))
	for row := 0; row < c.h; row++ {
		b.WriteString(string(c.cells[row*c.w : (row+1)*c.w]))
		b.WriteByte('\n')
	}
	return b.String()
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
