// Package trebuchet models a counterweight trebuchet with a sling. The arm
// is driven by the counterweight; the sling is a pendulum hanging from the
// accelerating arm tip. Both are integrated as one ODE until release.
package trebuchet

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/trebsim/internal/dynamo"
	"github.com/san-kum/trebsim/internal/fixed"
)

// State layout: arm angle θ, sling angle ψ, then their rates.
const (
	idxTheta = iota
	idxPsi
	idxOmega
	idxPsiDot
	stateDim
)

// Trebuchet is the launcher used during the launching stage. It is not
// safe for concurrent use.
type Trebuchet struct {
	params Params
	base   fixed.Vec2
	integ  dynamo.Integrator

	x        dynamo.State
	t        float64
	released bool
}

// New places a trebuchet with its base at base. integ steps the mechanism
// and must not be shared with another system.
func New(p Params, base fixed.Vec2, integ dynamo.Integrator) (*Trebuchet, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	tr := &Trebuchet{params: p, base: base, integ: integ}
	tr.Reset()
	return tr, nil
}

// Reset returns the arm to its cocked position.
func (tr *Trebuchet) Reset() {
	tr.x = dynamo.State{tr.params.StartAngle, tr.params.SlingAngle, 0, 0}
	tr.t = 0
	tr.released = false
}

func (tr *Trebuchet) StateDim() int { return stateDim }

func (tr *Trebuchet) inertia() float64 {
	p := tr.params
	return p.Counterweight*p.ShortArm*p.ShortArm + p.ArmInertia
}

func (tr *Trebuchet) armAccel(theta float64) float64 {
	p := tr.params
	return p.Counterweight * p.Gravity * p.ShortArm * math.Cos(theta) / tr.inertia()
}

func (tr *Trebuchet) Derive(x dynamo.State, t float64) dynamo.State {
	p := tr.params
	theta, psi, omega, psiDot := x[idxTheta], x[idxPsi], x[idxOmega], x[idxPsiDot]

	alpha := tr.armAccel(theta)
	eTheta := mgl64.Vec2{math.Cos(theta), math.Sin(theta)}
	tTheta := mgl64.Vec2{-eTheta.Y(), eTheta.X()}
	tipAccel := tTheta.Mul(alpha * p.LongArm).Sub(eTheta.Mul(omega * omega * p.LongArm))

	tPsi := mgl64.Vec2{-math.Sin(psi), math.Cos(psi)}
	g := mgl64.Vec2{0, -p.Gravity}
	psiAccel := g.Sub(tipAccel).Dot(tPsi) / p.Sling

	return dynamo.State{omega, psiDot, alpha, psiAccel}
}

// Energy is the arm's kinetic plus counterweight potential energy, taken
// relative to the pivot. The sling carries a massless projectile so this is
// conserved exactly by the true dynamics.
func (tr *Trebuchet) Energy(x dynamo.State) float64 {
	p := tr.params
	omega := x[idxOmega]
	return 0.5*tr.inertia()*omega*omega - p.Counterweight*p.Gravity*p.ShortArm*math.Sin(x[idxTheta])
}

// Advance steps the mechanism by dt. It returns true while the projectile
// is still held. The step on which the projectile moves forward and upward
// at or below the release elevation, or reaches the launch time limit,
// returns false, as does every call after it.
func (tr *Trebuchet) Advance(dt float64) bool {
	if tr.released {
		return false
	}

	next := tr.integ.Step(tr, tr.x, tr.t, dt)
	tr.t += dt
	if !next.IsValid() {
		tr.released = true
		return false
	}
	tr.x = next

	if tr.readyToRelease() || tr.t >= tr.params.MaxLaunchTime {
		tr.released = true
		return false
	}
	return true
}

// readyToRelease reports whether the projectile is heading up and towards
// +x no steeper than the release angle. The velocity direction turns
// clockwise for the whole throw, so the first such step is the release.
func (tr *Trebuchet) readyToRelease() bool {
	v := tr.ProjectileVelocity()
	if v.X() <= 0 || v.Y() <= 0 {
		return false
	}
	return math.Atan2(v.Y(), v.X()) <= tr.params.ReleaseAngle
}

func (tr *Trebuchet) Released() bool      { return tr.released }
func (tr *Trebuchet) Time() float64       { return tr.t }
func (tr *Trebuchet) State() dynamo.State { return tr.x.Clone() }
func (tr *Trebuchet) Params() Params      { return tr.params }

func (tr *Trebuchet) pivot() mgl64.Vec2 {
	return mgl64.Vec2{0, tr.params.PivotHeight}
}

func (tr *Trebuchet) tip() mgl64.Vec2 {
	theta := tr.x[idxTheta]
	return tr.pivot().Add(mgl64.Vec2{math.Cos(theta), math.Sin(theta)}.Mul(tr.params.LongArm))
}

func (tr *Trebuchet) projectile() mgl64.Vec2 {
	psi := tr.x[idxPsi]
	return tr.tip().Add(mgl64.Vec2{math.Cos(psi), math.Sin(psi)}.Mul(tr.params.Sling))
}

func (tr *Trebuchet) counterweight() mgl64.Vec2 {
	theta := tr.x[idxTheta]
	return tr.pivot().Sub(mgl64.Vec2{math.Cos(theta), math.Sin(theta)}.Mul(tr.params.ShortArm))
}

func (tr *Trebuchet) place(local mgl64.Vec2) fixed.Vec2 {
	return tr.base.Add(fixed.ToFixed(local))
}

func (tr *Trebuchet) ProjectilePosition() fixed.Vec2 { return tr.place(tr.projectile()) }

func (tr *Trebuchet) ProjectileVelocity() mgl64.Vec2 {
	theta, psi := tr.x[idxTheta], tr.x[idxPsi]
	tTheta := mgl64.Vec2{-math.Sin(theta), math.Cos(theta)}
	tPsi := mgl64.Vec2{-math.Sin(psi), math.Cos(psi)}
	return tTheta.Mul(tr.params.LongArm * tr.x[idxOmega]).Add(tPsi.Mul(tr.params.Sling * tr.x[idxPsiDot]))
}

// SlingPoint is the projectile end of the sling.
func (tr *Trebuchet) SlingPoint() fixed.Vec2 { return tr.ProjectilePosition() }

// ArmSlingPoint is where the sling attaches to the long arm.
func (tr *Trebuchet) ArmSlingPoint() fixed.Vec2 { return tr.place(tr.tip()) }

func (tr *Trebuchet) Pivot() fixed.Vec2         { return tr.place(tr.pivot()) }
func (tr *Trebuchet) Counterweight() fixed.Vec2 { return tr.place(tr.counterweight()) }

func (tr *Trebuchet) GetParams() map[string]float64 { return tr.params.GetParams() }

// SetParam changes a parameter and resets the mechanism.
func (tr *Trebuchet) SetParam(name string, value float64) error {
	if err := tr.params.SetParam(name, value); err != nil {
		return err
	}
	tr.Reset()
	return nil
}
