// Package world is the planet the body flies around: a terrain ring centred
// at the origin and a radial inverse-square gravity field.
package world

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/trebsim/internal/fixed"
	"github.com/san-kum/trebsim/internal/geom"
)

var ErrInvalidConfig = errors.New("world: invalid config")

// Config describes a generated planet. Distances are in world units and
// SurfaceGravity in world units per second squared.
type Config struct {
	Radius         float64 `yaml:"radius" json:"radius"`
	Vertices       int     `yaml:"vertices" json:"vertices"`
	Roughness      float64 `yaml:"roughness" json:"roughness"`
	Harmonics      int     `yaml:"harmonics" json:"harmonics"`
	Seed           int64   `yaml:"seed" json:"seed"`
	SurfaceGravity float64 `yaml:"surface_gravity" json:"surface_gravity"`
}

func DefaultConfig() Config {
	return Config{
		Radius:         20000,
		Vertices:       4096,
		Roughness:      40,
		Harmonics:      12,
		Seed:           1,
		SurfaceGravity: 9.81,
	}
}

// MaxRadius keeps the terrain and anything up to one radius above it within
// fixed.MaxCoord, where ground contact tests are exact.
const MaxRadius = fixed.MaxCoord / fixed.Scale / 2

func (c Config) Validate() error {
	switch {
	case c.Radius <= 0:
		return fmt.Errorf("%w: radius must be positive", ErrInvalidConfig)
	case c.Radius+c.Roughness > MaxRadius:
		return fmt.Errorf("%w: radius %g exceeds %d", ErrInvalidConfig, c.Radius, MaxRadius)
	case c.Vertices < 3:
		return fmt.Errorf("%w: need at least 3 vertices, got %d", ErrInvalidConfig, c.Vertices)
	case c.Roughness < 0 || c.Roughness >= c.Radius/2:
		return fmt.Errorf("%w: roughness must be in [0, radius/2)", ErrInvalidConfig)
	case c.Harmonics < 0:
		return fmt.Errorf("%w: harmonics must not be negative", ErrInvalidConfig)
	case c.SurfaceGravity < 0:
		return fmt.Errorf("%w: surface gravity must not be negative", ErrInvalidConfig)
	}
	return nil
}

// Planet pairs a terrain ring with a point-mass gravity field at the origin.
type Planet struct {
	terrain *Terrain
	radius  float64
	gm      float64
}

// NewPlanet wraps an existing terrain. gm is the gravitational parameter and
// radius the datum altitudes are measured from.
func NewPlanet(t *Terrain, radius, gm float64) *Planet {
	return &Planet{terrain: t, radius: radius, gm: gm}
}

// Generate builds a planet whose surface height is a seeded sum of integer
// harmonics, so the ring closes on itself without a seam. The same Config
// always yields the same vertices.
func Generate(cfg Config) (*Planet, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	amp := make([]float64, cfg.Harmonics)
	phase := make([]float64, cfg.Harmonics)
	total := 0.0
	for k := range amp {
		amp[k] = rng.Float64() / float64(k+1)
		phase[k] = rng.Float64() * 2 * math.Pi
		total += amp[k]
	}
	if total > 0 {
		for k := range amp {
			amp[k] *= cfg.Roughness / total
		}
	}

	vertices := make([]fixed.Vec2, cfg.Vertices)
	for i := range vertices {
		theta := 2 * math.Pi * float64(i) / float64(cfg.Vertices)
		h := 0.0
		for k := range amp {
			h += amp[k] * math.Sin(float64(k+1)*theta+phase[k])
		}
		r := cfg.Radius + h
		vertices[i] = fixed.ToFixed(mgl64.Vec2{r * math.Cos(theta), r * math.Sin(theta)})
	}

	t, err := NewTerrain(vertices)
	if err != nil {
		return nil, fmt.Errorf("generate terrain: %w", err)
	}
	return NewPlanet(t, cfg.Radius, cfg.SurfaceGravity*cfg.Radius*cfg.Radius), nil
}

func (p *Planet) Terrain() *Terrain { return p.terrain }
func (p *Planet) Radius() float64   { return p.radius }
func (p *Planet) GM() float64       { return p.gm }

func (p *Planet) Len() int                 { return p.terrain.Len() }
func (p *Planet) Surface(i int) fixed.Vec2 { return p.terrain.Vertex(i) }

func (p *Planet) TerrainIndexBeneath(pos fixed.Vec2) int {
	return p.terrain.IndexBeneath(pos)
}

// GravityAt is -GM·p/|p|³. It is zero at the centre.
func (p *Planet) GravityAt(pos fixed.Vec2) mgl64.Vec2 {
	v := fixed.ToFloat(pos)
	r := v.Len()
	if r == 0 {
		return mgl64.Vec2{}
	}
	return v.Mul(-p.gm / (r * r * r))
}

// AltitudeAt is the distance from the centre above the datum radius.
func (p *Planet) AltitudeAt(pos fixed.Vec2) float64 {
	return fixed.ToFloat(pos).Len() - p.radius
}

// Potential is the specific gravitational potential -GM/|p|.
func (p *Planet) Potential(pos fixed.Vec2) float64 {
	r := fixed.ToFloat(pos).Len()
	if r == 0 {
		return math.Inf(-1)
	}
	return -p.gm / r
}

// SurfaceAngle is the polar angle of pos in [0, 2π).
func (p *Planet) SurfaceAngle(pos fixed.Vec2) float64 {
	return wrapAngle(polarAngle(pos))
}

// SurfaceAt returns where the ray from the centre at angle theta meets the
// terrain.
func (p *Planet) SurfaceAt(theta float64) fixed.Vec2 {
	far := p.radius*2 + 1
	ray := fixed.ToFixed(mgl64.Vec2{far * math.Cos(theta), far * math.Sin(theta)})
	i := p.terrain.IndexBeneath(ray)
	a, b := p.terrain.Vertex(i), p.terrain.Vertex(i+1)
	if pt, ok := geom.SegmentIntersection(a, b, fixed.Vec2{}, ray); ok {
		return pt
	}
	return a
}

// LaunchSite is the surface point straight up the y axis.
func (p *Planet) LaunchSite() fixed.Vec2 {
	return p.SurfaceAt(math.Pi / 2)
}
