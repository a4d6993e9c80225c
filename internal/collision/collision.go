// Package collision finds where a moving body first meets the terrain ring.
package collision

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/trebsim/internal/fixed"
	"github.com/san-kum/trebsim/internal/geom"
)

// Ground is the circular vertex sequence a body can land on. Vertices wind
// counter-clockwise around the world centre, so open sky lies on the
// clockwise side of every edge.
type Ground interface {
	TerrainIndexBeneath(p fixed.Vec2) int
	Surface(i int) fixed.Vec2
	Len() int
}

// DetectGroundCrossing reports the point where moving from pos by disp
// crosses the terrain edge under pos. The edge after the last vertex joins
// back to the first.
func DetectGroundCrossing(g Ground, pos fixed.Vec2, disp mgl64.Vec2) (fixed.Vec2, bool) {
	i := g.TerrainIndexBeneath(pos)
	a := g.Surface(i)
	b := g.Surface((i + 1) % g.Len())

	next := pos.Add(fixed.ToFixed(disp))
	if geom.Orient(a, b, next) == geom.Clockwise {
		return fixed.Vec2{}, false
	}
	return geom.SegmentIntersection(a, b, pos, next)
}
