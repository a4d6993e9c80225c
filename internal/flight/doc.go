// Package flight advances the player body through a launch and a ballistic
// flight until it lands.
//
// [Physics.Update] is called once per rendered frame with that frame's wall
// time. Time is accumulated and consumed in fixed ticks, so the trajectory
// does not depend on the frame rate:
//
//	phys, _ := flight.NewPhysics(planet, treb, flight.DefaultTick)
//	state := flight.NewState(treb, 200)
//	for state.Phase != flight.Landed {
//		phys.Update(state, frameTime, input)
//	}
//
// Positions are exact fixed-point values (see package fixed). Per-tick
// displacement is summed in floating point and moved onto the grid once per
// frame; the part below one subunit is carried to the next frame.
//
// Each flight begins in the [Launching] stage, where the body rides the
// [Launcher]. When the launcher lets go the stage becomes [Freeflight] and
// the body falls under the world's gravity until [collision.DetectGroundCrossing]
// reports ground contact.
//
// [Session] drives the same loop headlessly from a [Script] of timed inputs.
package flight
