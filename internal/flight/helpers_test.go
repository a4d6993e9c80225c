package flight

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/trebsim/internal/fixed"
	"github.com/san-kum/trebsim/internal/world"
)

// heldLauncher holds the projectile for hold ticks, lifting it one subunit
// per tick, then lets go with vel.
type heldLauncher struct {
	hold     int
	pos      fixed.Vec2
	vel      mgl64.Vec2
	advanced int
}

func (l *heldLauncher) Advance(dt float64) bool {
	if l.advanced >= l.hold {
		return false
	}
	l.advanced++
	l.pos = l.pos.Add(fixed.V(0, 1))
	return l.advanced < l.hold
}

func (l *heldLauncher) ProjectilePosition() fixed.Vec2 { return l.pos }
func (l *heldLauncher) ProjectileVelocity() mgl64.Vec2 { return l.vel }
func (l *heldLauncher) SlingPoint() fixed.Vec2         { return l.pos }

// ArmSlingPoint trails the projectile so the body faces along x.
func (l *heldLauncher) ArmSlingPoint() fixed.Vec2 { return l.pos.Sub(fixed.V(256, 0)) }

func planet(gravity float64) *world.Planet {
	p, err := world.Generate(world.Config{Radius: 1000, Vertices: 360, SurfaceGravity: gravity})
	if err != nil {
		panic(err)
	}
	return p
}

func mustPhysics(w World, l Launcher) *Physics {
	p, err := NewPhysics(w, l, DefaultTick)
	if err != nil {
		panic(err)
	}
	return p
}

// above returns a point h world units above the top of a radius 1000 planet.
func above(h int64) fixed.Vec2 { return fixed.FromInt(0, 1000+h) }
