// Package dynamo holds the primitives shared by the continuous mechanisms
// in the simulator.
//
// A mechanism such as the trebuchet is an ordinary differential equation
// dX/dt = f(X, t) over a flat [State] vector. It implements [System] and is
// advanced by any [Integrator] from the integrators package:
//
//	treb := trebuchet.New(trebuchet.DefaultParams(), base)
//	x = integ.Step(treb, x, t, dt)
//
// Mechanisms that conserve energy also implement [Hamiltonian] so metrics
// can report drift, and tunable ones implement [Configurable] so the CLI and
// presets can set parameters by name.
package dynamo
