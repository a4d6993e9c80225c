package flight

import (
	"fmt"
	"io"
	"math"

	"github.com/charmbracelet/log"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/trebsim/internal/collision"
	"github.com/san-kum/trebsim/internal/fixed"
)

const (
	DefaultTick = 0.001
	// RotationStep is how far one tick of Left or Right turns the body.
	RotationStep = 0.001
)

// Physics is the fixed-timestep clock. It owns the time accumulator and the
// floating displacement not yet moved onto the fixed grid.
type Physics struct {
	world    World
	launcher Launcher
	tick     float64
	logger   *log.Logger

	timeAcc           float64
	floatDisplacement mgl64.Vec2
}

func NewPhysics(w World, l Launcher, tick float64) (*Physics, error) {
	if !(tick > 0) {
		return nil, fmt.Errorf("%w: tick must be positive, got %g", ErrInvalidConfig, tick)
	}
	return &Physics{
		world:    w,
		launcher: l,
		tick:     tick,
		logger:   log.New(io.Discard),
	}, nil
}

func (p *Physics) SetLogger(l *log.Logger) { p.logger = l }

func (p *Physics) Tick() float64 { return p.tick }

// FloatDisplacement is the carried sub-subunit motion, always within
// [0, fixed.Unit) on each axis between frames.
func (p *Physics) FloatDisplacement() mgl64.Vec2 { return p.floatDisplacement }

// Reset clears the accumulator and carried displacement for a new flight.
func (p *Physics) Reset() {
	p.timeAcc = 0
	p.floatDisplacement = mgl64.Vec2{}
}

// Update advances s by frameTime seconds of ticks. Nothing happens unless
// s is Launched. A pause request takes effect before any tick runs.
func (p *Physics) Update(s *State, frameTime float64, in Input) {
	if s.Phase != Launched {
		return
	}
	if in.Pause {
		s.Phase = Paused
		p.logger.Debug("paused", "time", s.Stats.Time)
		return
	}

	p.timeAcc += frameTime
	for p.timeAcc > p.tick {
		p.timeAcc -= p.tick
		if p.step(s, in) {
			break
		}
	}

	delta, rem := fixed.ToFixedWithRemainder(p.floatDisplacement)
	s.Body.Position = s.Body.Position.Add(delta)
	p.floatDisplacement = rem
}

// step runs one tick and reports whether the body landed.
func (p *Physics) step(s *State, in Input) bool {
	applyInput(&s.Body, in)

	if s.Stage == Launching {
		if p.launchStep(s) {
			return false
		}
		s.Stage = Freeflight
		p.logger.Debug("released",
			"x", fixed.ToFloat(s.Body.Position).X(),
			"y", fixed.ToFloat(s.Body.Position).Y(),
			"speed", s.Body.Velocity.Len())
	}
	return p.flightStep(s)
}

func applyInput(b *Body, in Input) {
	if in.Forward {
		b.Acceleration = b.Acceleration.Add(fromAngle(b.Rotation).Mul(b.MoveSpeed))
	}
	if in.Back {
		b.Acceleration = b.Acceleration.Sub(fromAngle(b.Rotation).Mul(b.MoveSpeed))
	}
	if in.Left {
		b.Rotation += RotationStep
	}
	if in.Right {
		b.Rotation -= RotationStep
	}
}

// launchStep moves the body with the launcher and reports whether it is
// still held.
func (p *Physics) launchStep(s *State) bool {
	held := p.launcher.Advance(p.tick)
	syncFromLauncher(&s.Body, p.launcher)
	if held {
		s.Body.Acceleration = mgl64.Vec2{}
	}
	return held
}

func (p *Physics) flightStep(s *State) bool {
	b := &s.Body
	dt := p.tick

	cur := b.Position.Add(fixed.ToFixed(p.floatDisplacement))
	gCur := p.world.GravityAt(cur)
	b.Acceleration = b.Acceleration.Add(gCur)

	disp := b.Velocity.Mul(dt).Add(b.Acceleration.Mul(0.5 * dt * dt))
	p.floatDisplacement = p.floatDisplacement.Add(disp)

	next := b.Position.Add(fixed.ToFixed(p.floatDisplacement))
	gNext := p.world.GravityAt(next)
	// Acceleration still carries thrust here, so thrust enters the average at half weight.
	b.Velocity = b.Velocity.Add(b.Acceleration.Add(gNext).Mul(0.5 * dt))
	b.Acceleration = mgl64.Vec2{}

	st := &s.Stats
	st.Time += dt
	st.Distance += disp.Len()
	st.MaxAltitude = math.Max(st.MaxAltitude, p.world.AltitudeAt(next))
	st.MaxSpeed = math.Max(st.MaxSpeed, b.Velocity.Len())

	point, hit := collision.DetectGroundCrossing(p.world, cur, disp)
	if !hit {
		return false
	}
	b.Position = point
	b.Velocity = mgl64.Vec2{}
	s.Phase = Landed
	p.floatDisplacement = mgl64.Vec2{}
	p.logger.Debug("landed",
		"time", st.Time,
		"distance", st.Distance,
		"max_altitude", st.MaxAltitude)
	return true
}
