// Package fixed stores world positions exactly on a grid of 1/256 world units
// and moves floating per-tick displacement onto that grid.
//
// Positions never carry floating error. Motion smaller than one subunit is
// kept by the caller as a floating remainder until it adds up to a whole
// subunit, at which point [ToFixedWithRemainder] transfers the integral part.
package fixed

import (
	"math"
	"math/bits"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	Shift = 8
	// Scale is the number of subunits per world unit.
	Scale = 1 << Shift
	// Unit is one subunit expressed in world units.
	Unit = 1.0 / Scale
	// MaxCoord bounds |X| and |Y| of points handed to cross products and
	// orientation tests. Differences then stay below 2^31 subunits and a
	// cross product of two differences below 2^63. About 4.19e6 world units.
	MaxCoord = 1<<30 - 1
)

// Vec2 is a position or offset in subunits.
type Vec2 struct {
	X int64
	Y int64
}

func V(x, y int64) Vec2 { return Vec2{X: x, Y: y} }

func (v Vec2) Add(o Vec2) Vec2 { return Vec2{X: v.X + o.X, Y: v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{X: v.X - o.X, Y: v.Y - o.Y} }

// Cross returns the z component of v × o.
func (v Vec2) Cross(o Vec2) int64 { return v.X*o.Y - v.Y*o.X }

func (v Vec2) IsZero() bool { return v.X == 0 && v.Y == 0 }

// ToFloat converts subunits back to world units.
func ToFloat(v Vec2) mgl64.Vec2 {
	return mgl64.Vec2{float64(v.X) / Scale, float64(v.Y) / Scale}
}

// ToFixed floors a world-unit displacement onto the subunit grid.
func ToFixed(d mgl64.Vec2) Vec2 {
	return Vec2{X: floorScaled(d[0]), Y: floorScaled(d[1])}
}

// FromInt places whole world units on the grid.
func FromInt(x, y int64) Vec2 {
	return Vec2{X: x << Shift, Y: y << Shift}
}

// ToFixedWithRemainder splits d into whole subunits and the leftover below
// one subunit. The leftover is the Euclidean remainder, so it lies in
// [0, Unit) for either sign of d and ToFloat(delta)+rem reproduces d.
func ToFixedWithRemainder(d mgl64.Vec2) (Vec2, mgl64.Vec2) {
	x, rx := split(d[0])
	y, ry := split(d[1])
	return Vec2{X: x, Y: y}, mgl64.Vec2{rx, ry}
}

func floorScaled(f float64) int64 {
	return int64(math.Floor(f * Scale))
}

func split(f float64) (int64, float64) {
	n := floorScaled(f)
	rem := f - float64(n)*Unit
	// f*Scale may round across an integer boundary; pull the pair back in range.
	if rem < 0 {
		n--
		rem += Unit
	}
	if rem >= Unit {
		n++
		rem -= Unit
	}
	return n, rem
}

// MulDiv computes a*b/c with a 128-bit intermediate, truncating toward zero.
// The quotient must fit in an int64.
func MulDiv(a, b, c int64) int64 {
	if c == 0 {
		panic("fixed: MulDiv by zero")
	}
	neg := ((a < 0) != (b < 0)) != (c < 0)
	hi, lo := bits.Mul64(abs(a), abs(b))
	q, _ := bits.Div64(hi, lo, abs(c))
	if neg {
		return -int64(q)
	}
	return int64(q)
}

func abs(x int64) uint64 {
	if x < 0 {
		return uint64(-x)
	}
	return uint64(x)
}
