// Package viz draws world geometry onto a Braille character canvas.
package viz

import (
	"strings"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/trebsim/internal/fixed"
)

// Each cell holds a 2x4 Braille dot block starting at U+2800:
//
//	1 4
//	2 5
//	3 6
//	7 8
const blank = 0x2800

var dotBits = [4][2]rune{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

// NewCanvas makes a canvas of w by h cells, that is 2w by 4h dots.
func NewCanvas(w, h int) *Canvas {
	c := &Canvas{Width: w, Height: h, Grid: make([][]rune, h)}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

func (c *Canvas) Dots() (int, int) { return c.Width * 2, c.Height * 4 }

// Set turns on the dot at (x, y). Dots off the canvas are ignored.
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return
	}
	c.Grid[row][col] |= dotBits[y%4][x%2]
}

func (c *Canvas) IsSet(x, y int) bool {
	if x < 0 || y < 0 || x/2 >= c.Width || y/4 >= c.Height {
		return false
	}
	return c.Grid[y/4][x/2]&dotBits[y%4][x%2] != 0
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = blank
		}
	}
}

// DrawLine draws a Bresenham line between two dots.
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
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

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row))
		b.WriteByte('\n')
	}
	return b.String()
}

// Viewport maps world units onto canvas dots, y up, with Center in the
// middle of the canvas and Scale world units per dot.
type Viewport struct {
	Center mgl64.Vec2
	Scale  float64
	W, H   int
}

func NewViewport(c *Canvas, center mgl64.Vec2, scale float64) Viewport {
	w, h := c.Dots()
	return Viewport{Center: center, Scale: scale, W: w, H: h}
}

func (v Viewport) Project(p mgl64.Vec2) (int, int) {
	d := p.Sub(v.Center).Mul(1 / v.Scale)
	return v.W/2 + int(d.X()), v.H/2 - int(d.Y())
}

func (v Viewport) ProjectFixed(p fixed.Vec2) (int, int) {
	return v.Project(fixed.ToFloat(p))
}

// Near reports whether a dot is within one canvas size of the visible area,
// close enough that a line through it may cross the canvas.
func (v Viewport) Near(x, y int) bool {
	return x > -v.W && x < 2*v.W && y > -v.H && y < 2*v.H
}

// Line draws a world-space segment, skipping segments far off screen.
func (c *Canvas) Line(v Viewport, a, b mgl64.Vec2) {
	x0, y0 := v.Project(a)
	x1, y1 := v.Project(b)
	if !v.Near(x0, y0) && !v.Near(x1, y1) {
		return
	}
	c.DrawLine(x0, y0, x1, y1)
}

// Polyline draws consecutive segments through pts.
func (c *Canvas) Polyline(v Viewport, pts []mgl64.Vec2) {
	for i := 1; i < len(pts); i++ {
		c.Line(v, pts[i-1], pts[i])
	}
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
