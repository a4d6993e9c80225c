package flight

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/trebsim/internal/fixed"
)

var _ = Describe("Physics", func() {
	const frame = 1.0 / 60

	Describe("NewPhysics", func() {
		It("rejects a non-positive tick", func() {
			_, err := NewPhysics(planet(0), &heldLauncher{}, 0)
			Expect(err).To(MatchError(ErrInvalidConfig))
		})
	})

	Describe("Update", func() {
		var (
			phys     *Physics
			state    *State
			launcher *heldLauncher
		)

		BeforeEach(func() {
			launcher = &heldLauncher{pos: above(100)}
			phys = mustPhysics(planet(0), launcher)
			state = NewState(launcher, 10)
			state.Stage = Freeflight
		})

		It("does nothing unless launched", func() {
			for _, ph := range []Phase{Paused, Landed} {
				state.Phase = ph
				before := *state
				phys.Update(state, 1, Input{Forward: true})
				Expect(*state).To(Equal(before))
				Expect(phys.timeAcc).To(BeZero())
			}
		})

		It("pauses before running any tick", func() {
			state.Body.Velocity = mgl64.Vec2{3, 0}
			before := state.Body

			phys.Update(state, 0.5, Input{Pause: true, Forward: true})

			Expect(state.Phase).To(Equal(Paused))
			Expect(state.Body).To(Equal(before))
			Expect(state.Stats).To(Equal(Stats{}))
			Expect(phys.timeAcc).To(BeZero())
			Expect(launcher.advanced).To(BeZero())
		})

		It("runs only whole ticks and carries the rest", func() {
			phys.Update(state, 0.0105, Input{})

			Expect(state.Stats.Time).To(BeNumerically("~", 10*DefaultTick, 1e-12))
			Expect(phys.timeAcc).To(BeNumerically("~", 0.0005, 1e-9))

			phys.Update(state, 0.0006, Input{})
			Expect(state.Stats.Time).To(BeNumerically("~", 11*DefaultTick, 1e-12))
		})

		It("does not tick when the accumulator equals one tick", func() {
			phys.Update(state, DefaultTick, Input{})
			Expect(state.Stats.Time).To(BeZero())
		})

		It("keeps the carried displacement below one subunit", func() {
			state.Body.Velocity = mgl64.Vec2{-7.3, 12.9}
			for i := 0; i < 50; i++ {
				phys.Update(state, frame, Input{Forward: i%3 == 0})
				fd := phys.FloatDisplacement()
				for axis := 0; axis < 2; axis++ {
					Expect(fd[axis]).To(BeNumerically(">=", 0))
					Expect(fd[axis]).To(BeNumerically("<", fixed.Unit))
				}
			}
		})

		It("moves in a straight line without gravity", func() {
			state.Body.Velocity = mgl64.Vec2{2, 0}
			start := fixed.ToFloat(launcher.pos)

			for i := 0; i < 60; i++ {
				phys.Update(state, frame, Input{})
			}

			pos := fixed.ToFloat(state.Body.Position).Add(phys.FloatDisplacement())
			elapsed := state.Stats.Time
			Expect(pos.X()).To(BeNumerically("~", start.X()+2*elapsed, 2*fixed.Unit))
			Expect(pos.Y()).To(BeNumerically("~", start.Y(), fixed.Unit))
			Expect(state.Stats.Distance).To(BeNumerically("~", 2*elapsed, 1e-9))
		})
	})

	Describe("input", func() {
		var (
			phys  *Physics
			state *State
		)

		BeforeEach(func() {
			l := &heldLauncher{pos: above(100)}
			phys = mustPhysics(planet(0), l)
			state = NewState(l, 50)
			state.Stage = Freeflight
		})

		It("turns by a fixed step per tick", func() {
			start := state.Body.Rotation
			phys.Update(state, 0.0105, Input{Left: true})
			Expect(state.Body.Rotation).To(BeNumerically("~", start+10*RotationStep, 1e-12))

			phys.Update(state, 0.0105, Input{Left: true, Right: true})
			Expect(state.Body.Rotation).To(BeNumerically("~", start+10*RotationStep, 1e-12))

			phys.Update(state, 0.0105, Input{Right: true})
			Expect(state.Body.Rotation).To(BeNumerically("~", start, 1e-9))
		})

		It("thrusts along the facing direction and clears acceleration", func() {
			state.Body.Rotation = math.Pi / 2
			phys.Update(state, 0.0105, Input{Forward: true})

			v := state.Body.Velocity
			Expect(v.X()).To(BeNumerically("~", 0, 1e-9))
			Expect(v.Y()).To(BeNumerically("~", 0.5*50*10*DefaultTick, 1e-9))
			Expect(state.Body.Acceleration).To(Equal(mgl64.Vec2{}))

			phys.Update(state, 0.0105, Input{Back: true})
			Expect(state.Body.Velocity.Len()).To(BeNumerically("~", 0, 1e-9))
		})
	})

	Describe("stages", func() {
		It("rides the launcher then flies from the release point", func() {
			l := &heldLauncher{hold: 25, pos: above(100), vel: mgl64.Vec2{5, 5}}
			phys := mustPhysics(planet(9.81), l)
			state := NewState(l, 0)
			start := l.pos

			phys.Update(state, 0.0105, Input{Forward: true})
			Expect(state.Stage).To(Equal(Launching))
			Expect(state.Body.Position).To(Equal(start.Add(fixed.V(0, 10))))
			Expect(state.Body.Velocity).To(Equal(l.vel))
			Expect(state.Body.Rotation).To(BeZero())
			Expect(state.Body.Acceleration).To(Equal(mgl64.Vec2{}))
			Expect(state.Stats).To(Equal(Stats{}))

			phys.Update(state, 0.02, Input{})
			Expect(state.Stage).To(Equal(Freeflight))
			Expect(l.advanced).To(Equal(25))
			// the release tick and five more were flown
			Expect(state.Stats.Time).To(BeNumerically("~", 6*DefaultTick, 1e-12))
			Expect(state.Body.Position.X).To(BeNumerically(">", start.X))
		})
	})

	Describe("landing", func() {
		var (
			phys  *Physics
			state *State
		)

		BeforeEach(func() {
			l := &heldLauncher{pos: above(10), vel: mgl64.Vec2{1, 0}}
			phys = mustPhysics(planet(9.81), l)
			state = NewState(l, 0)
		})

		fly := func() int {
			frames := 0
			for state.Phase == Launched && frames < 10000 {
				phys.Update(state, frame, Input{})
				frames++
			}
			return frames
		}

		It("stops on the ground and resets motion", func() {
			fly()

			Expect(state.Phase).To(Equal(Landed))
			Expect(state.Body.Velocity).To(Equal(mgl64.Vec2{}))
			Expect(phys.FloatDisplacement()).To(Equal(mgl64.Vec2{}))
			Expect(phys.world.AltitudeAt(state.Body.Position)).To(BeNumerically("~", 0, 0.05))

			// free fall from 10 units at 9.81
			Expect(state.Stats.Time).To(BeNumerically("~", math.Sqrt(20/9.81), 0.02))
		})

		It("stays put once landed", func() {
			fly()
			landed := *state
			phys.Update(state, frame, Input{Forward: true})
			Expect(*state).To(Equal(landed))
		})

		It("never lets stats decrease", func() {
			prev := state.Stats
			for state.Phase == Launched {
				phys.Update(state, frame, Input{})
				s := state.Stats
				Expect(s.Time).To(BeNumerically(">=", prev.Time))
				Expect(s.Distance).To(BeNumerically(">=", prev.Distance))
				Expect(s.MaxAltitude).To(BeNumerically(">=", prev.MaxAltitude))
				Expect(s.MaxSpeed).To(BeNumerically(">=", prev.MaxSpeed))
				prev = s
			}
		})

		It("lands at the same place for different frame rates", func() {
			fly()
			at60 := fixed.ToFloat(state.Body.Position)

			l := &heldLauncher{pos: above(10), vel: mgl64.Vec2{1, 0}}
			phys = mustPhysics(planet(9.81), l)
			state = NewState(l, 0)
			for state.Phase == Launched {
				phys.Update(state, 1.0/23, Input{})
			}
			at23 := fixed.ToFloat(state.Body.Position)

			Expect(at23.Sub(at60).Len()).To(BeNumerically("<", 0.05))
		})
	})
})
