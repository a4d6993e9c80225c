package flight

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/trebsim/internal/collision"
	"github.com/san-kum/trebsim/internal/fixed"
)

type Phase int

const (
	Paused Phase = iota
	Launched
	Landed
)

func (p Phase) String() string {
	switch p {
	case Paused:
		return "paused"
	case Launched:
		return "launched"
	case Landed:
		return "landed"
	}
	return "unknown"
}

func (p Phase) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

func (p *Phase) UnmarshalText(b []byte) error {
	for _, c := range []Phase{Paused, Launched, Landed} {
		if c.String() == string(b) {
			*p = c
			return nil
		}
	}
	return fmt.Errorf("flight: unknown phase %q", b)
}

// Stage splits the Launched phase into riding the launcher and free flight.
type Stage int

const (
	Launching Stage = iota
	Freeflight
)

func (s Stage) String() string {
	if s == Launching {
		return "launching"
	}
	return "freeflight"
}

func (s Stage) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Stage) UnmarshalText(b []byte) error {
	switch string(b) {
	case "launching":
		*s = Launching
	case "freeflight":
		*s = Freeflight
	default:
		return fmt.Errorf("flight: unknown stage %q", b)
	}
	return nil
}

// Body is the player. Acceleration only holds thrust collected during a
// tick and is zero between ticks.
type Body struct {
	Position     fixed.Vec2
	Velocity     mgl64.Vec2
	Acceleration mgl64.Vec2
	Rotation     float64
	MoveSpeed    float64
}

// Stats only ever grow during a flight.
type Stats struct {
	Time        float64 `json:"time"`
	Distance    float64 `json:"distance"`
	MaxAltitude float64 `json:"max_altitude"`
	MaxSpeed    float64 `json:"max_speed"`
}

// Input is the control snapshot for one frame.
type Input struct {
	Forward bool
	Back    bool
	Left    bool
	Right   bool
	Pause   bool
}

// State is everything about a flight that the caller owns and renders.
type State struct {
	Phase Phase
	Stage Stage
	Body  Body
	Stats Stats
}

// World is the terrain and gravity field the body flies through.
type World interface {
	collision.Ground
	GravityAt(p fixed.Vec2) mgl64.Vec2
	AltitudeAt(p fixed.Vec2) float64
}

// Launcher carries the body until release.
type Launcher interface {
	// Advance steps the launcher and reports whether it still holds the
	// projectile.
	Advance(dt float64) bool
	ProjectilePosition() fixed.Vec2
	ProjectileVelocity() mgl64.Vec2
	SlingPoint() fixed.Vec2
	ArmSlingPoint() fixed.Vec2
}

// NewState puts a body in the launcher, ready to fly.
func NewState(l Launcher, moveSpeed float64) *State {
	s := &State{Phase: Launched, Stage: Launching}
	s.Body.MoveSpeed = moveSpeed
	syncFromLauncher(&s.Body, l)
	return s
}

// Resume continues a paused flight. It reports whether anything changed.
func (s *State) Resume() bool {
	if s.Phase != Paused {
		return false
	}
	s.Phase = Launched
	return true
}

func syncFromLauncher(b *Body, l Launcher) {
	b.Position = l.ProjectilePosition()
	b.Velocity = l.ProjectileVelocity()
	b.Rotation = angle(fixed.ToFloat(l.SlingPoint().Sub(l.ArmSlingPoint())))
}

func angle(v mgl64.Vec2) float64 { return math.Atan2(v.Y(), v.X()) }

func fromAngle(a float64) mgl64.Vec2 { return mgl64.Vec2{math.Cos(a), math.Sin(a)} }
