// Package export renders finished flights to files for viewing outside
// the terminal.
package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/trebsim/internal/fixed"
	"github.com/san-kum/trebsim/internal/flight"
)

type bounds struct{ minX, minY, maxX, maxY float64 }

func (b *bounds) add(p mgl64.Vec2) {
	b.minX = math.Min(b.minX, p.X())
	b.maxX = math.Max(b.maxX, p.X())
	b.minY = math.Min(b.minY, p.Y())
	b.maxY = math.Max(b.maxY, p.Y())
}

// overlaps reports whether the bounding box of segment a-c meets b.
func (b bounds) overlaps(a, c mgl64.Vec2) bool {
	return math.Min(a.X(), c.X()) <= b.maxX && math.Max(a.X(), c.X()) >= b.minX &&
		math.Min(a.Y(), c.Y()) <= b.maxY && math.Max(a.Y(), c.Y()) >= b.minY
}

// TrajectoryToSVG draws the flight path over the stretch of terrain it
// crosses. The view is fitted to the trajectory with 10% padding and keeps
// the world's aspect ratio. It returns "" for fewer than two samples.
func TrajectoryToSVG(terrain []fixed.Vec2, samples []flight.Sample, width, height int) string {
	if len(samples) < 2 {
		return ""
	}

	path := make([]mgl64.Vec2, len(samples))
	inf := math.Inf(1)
	b := bounds{inf, inf, -inf, -inf}
	for i, s := range samples {
		path[i] = fixed.ToFloat(s.Position)
		b.add(path[i])
	}

	rangeX := math.Max(b.maxX-b.minX, 1)
	rangeY := math.Max(b.maxY-b.minY, 1)
	// match the output aspect ratio
	aspect := float64(width) / float64(height)
	if rangeX/rangeY < aspect {
		rangeX = rangeY * aspect
	} else {
		rangeY = rangeX / aspect
	}
	cx, cy := (b.minX+b.maxX)/2, (b.minY+b.maxY)/2
	view := bounds{
		minX: cx - rangeX*0.6, maxX: cx + rangeX*0.6,
		minY: cy - rangeY*0.6, maxY: cy + rangeY*0.6,
	}
	scale := float64(width) / (view.maxX - view.minX)

	toSVG := func(p mgl64.Vec2) (float64, float64) {
		return (p.X() - view.minX) * scale, float64(height) - (p.Y()-view.minY)*scale
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height)

	// terrain edges near the view, including the closing edge
	n := len(terrain)
	sb.WriteString(`<g stroke="#8a6d3b" stroke-width="2" fill="none">` + "\n")
	for i := 0; i < n; i++ {
		a := fixed.ToFloat(terrain[i])
		c := fixed.ToFloat(terrain[(i+1)%n])
		if !view.overlaps(a, c) {
			continue
		}
		x0, y0 := toSVG(a)
		x1, y1 := toSVG(c)
		fmt.Fprintf(&sb, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f"/>`+"\n", x0, y0, x1, y1)
	}
	sb.WriteString("</g>\n")

	sb.WriteString(`<path fill="none" stroke="#00ccff" stroke-width="1.5" d="`)
	for i, p := range path {
		x, y := toSVG(p)
		if i == 0 {
			fmt.Fprintf(&sb, "M%.1f,%.1f", x, y)
		} else {
			fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
		}
	}
	sb.WriteString(`"/>` + "\n")

	for _, marker := range []struct {
		p     mgl64.Vec2
		color string
	}{
		{path[0], "#00ff88"},
		{path[len(path)-1], "#ff4444"},
	} {
		x, y := toSVG(marker.p)
		fmt.Fprintf(&sb, `<circle cx="%.1f" cy="%.1f" r="4" fill="%s"/>`+"\n", x, y, marker.color)
	}

	sb.WriteString("</svg>\n")
	return sb.String()
}
