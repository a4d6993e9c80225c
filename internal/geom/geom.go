// Package geom holds the exact integer predicates used for ground contact.
package geom

import (
	"fmt"

	"github.com/san-kum/trebsim/internal/fixed"
)

// Orientation classifies the turn made by three ordered points.
type Orientation int

const (
	Colinear Orientation = iota
	Clockwise
	AntiClockwise
)

func (o Orientation) String() string {
	switch o {
	case Colinear:
		return "colinear"
	case Clockwise:
		return "clockwise"
	case AntiClockwise:
		return "anticlockwise"
	default:
		return fmt.Sprintf("orientation(%d)", int(o))
	}
}

// Orient reports whether p → q → r turns clockwise, anticlockwise or not at
// all, in a y-up frame. The cross product is computed on integers, so the
// three cases are exhaustive.
func Orient(p, q, r fixed.Vec2) Orientation {
	switch o := (q.Y-p.Y)*(r.X-q.X) - (q.X-p.X)*(r.Y-q.Y); {
	case o > 0:
		return Clockwise
	case o < 0:
		return AntiClockwise
	case o == 0:
		return Colinear
	}
	panic("geom: orientation sign is neither positive, negative nor zero")
}

// SegmentIntersection returns the point where segment a–b meets the travel
// segment p–q. The point is measured along p–q and truncated toward p, so it
// never lies past q. For overlapping colinear segments it returns the first
// point of p–q that lies on a–b. Parallel or disjoint segments report false.
func SegmentIntersection(a, b, p, q fixed.Vec2) (fixed.Vec2, bool) {
	r := b.Sub(a)
	s := q.Sub(p)
	ap := p.Sub(a)

	denom := r.Cross(s)
	if denom == 0 {
		if r.Cross(ap) != 0 {
			return fixed.Vec2{}, false
		}
		return colinearOverlap(a, b, p, q)
	}

	tNum := ap.Cross(s)
	uNum := ap.Cross(r)
	if denom < 0 {
		denom, tNum, uNum = -denom, -tNum, -uNum
	}
	if tNum < 0 || tNum > denom || uNum < 0 || uNum > denom {
		return fixed.Vec2{}, false
	}

	return fixed.Vec2{
		X: p.X + fixed.MulDiv(s.X, uNum, denom),
		Y: p.Y + fixed.MulDiv(s.Y, uNum, denom),
	}, true
}

func colinearOverlap(a, b, p, q fixed.Vec2) (fixed.Vec2, bool) {
	if within(p, a, b) {
		return p, true
	}

	s := q.Sub(p)
	best, found := fixed.Vec2{}, false
	var bestDist int64
	for _, c := range [2]fixed.Vec2{a, b} {
		if !within(c, p, q) {
			continue
		}
		d := c.Sub(p)
		dist := d.X*s.X + d.Y*s.Y
		if !found || dist < bestDist {
			best, bestDist, found = c, dist, true
		}
	}
	return best, found
}

// within reports whether c lies in the bounding box of a–b. Only meaningful
// for points already known to be colinear with a–b.
func within(c, a, b fixed.Vec2) bool {
	return min(a.X, b.X) <= c.X && c.X <= max(a.X, b.X) &&
		min(a.Y, b.Y) <= c.Y && c.Y <= max(a.Y, b.Y)
}
