package integrators

import "github.com/san-kum/trebsim/internal/dynamo"

// Euler is the explicit first-order step. Cheap and drifts; kept for
// comparing against RK4 on the same preset.
type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Step(sys dynamo.System, x dynamo.State, t, dt float64) dynamo.State {
	return x.Axpy(dt, sys.Derive(x, t))
}
