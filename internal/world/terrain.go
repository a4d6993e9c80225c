package world

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/trebsim/internal/fixed"
)

var (
	ErrTooFewVertices = errors.New("world: terrain needs at least 3 vertices")
	ErrNotStarShaped  = errors.New("world: terrain vertices must wind counter-clockwise around the centre")
)

// Terrain is a closed ring of surface vertices around the origin. The edge
// after the last vertex joins back to the first. A Terrain is never
// modified after construction.
type Terrain struct {
	vertices []fixed.Vec2
	// start is the polar angle of vertex 0; rel[i] is the angle of vertex i
	// measured counter-clockwise from start.
	start float64
	rel   []float64
}

// NewTerrain builds a ring from vertices listed counter-clockwise. Every ray
// from the origin must cross the ring exactly once.
func NewTerrain(vertices []fixed.Vec2) (*Terrain, error) {
	n := len(vertices)
	if n < 3 {
		return nil, fmt.Errorf("%w: got %d", ErrTooFewVertices, n)
	}

	t := &Terrain{
		vertices: append([]fixed.Vec2(nil), vertices...),
		start:    polarAngle(vertices[0]),
		rel:      make([]float64, n),
	}
	for i, v := range vertices {
		if v.IsZero() {
			return nil, fmt.Errorf("%w: vertex %d is at the centre", ErrNotStarShaped, i)
		}
		t.rel[i] = wrapAngle(polarAngle(v) - t.start)
		if i > 0 && t.rel[i] <= t.rel[i-1] {
			return nil, fmt.Errorf("%w: vertex %d", ErrNotStarShaped, i)
		}
	}
	return t, nil
}

func (t *Terrain) Len() int { return len(t.vertices) }

// Vertex returns vertex i modulo Len, for any i including negatives.
func (t *Terrain) Vertex(i int) fixed.Vec2 {
	n := len(t.vertices)
	i %= n
	if i < 0 {
		i += n
	}
	return t.vertices[i]
}

func (t *Terrain) Vertices() []fixed.Vec2 {
	return append([]fixed.Vec2(nil), t.vertices...)
}

// IndexBeneath returns i such that the ray from the origin through p passes
// between vertex i and vertex i+1.
func (t *Terrain) IndexBeneath(p fixed.Vec2) int {
	if p.IsZero() {
		return 0
	}
	r := wrapAngle(polarAngle(p) - t.start)
	return sort.Search(len(t.rel), func(i int) bool { return t.rel[i] > r }) - 1
}

func polarAngle(v fixed.Vec2) float64 {
	return math.Atan2(float64(v.Y), float64(v.X))
}

// wrapAngle maps a into [0, 2π).
func wrapAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	if a >= 2*math.Pi {
		a = 0
	}
	return a
}
