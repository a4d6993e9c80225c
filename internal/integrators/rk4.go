package integrators

import "github.com/san-kum/trebsim/internal/dynamo"

// rk4Nodes are the time offsets, as fractions of dt, of stages two to four.
// Stage s+1 is evaluated at x + node·dt·k_s.
var rk4Nodes = [3]float64{0.5, 0.5, 1}

// RK4 is the default stepper for the trebuchet arm and sling. It keeps its
// stage slopes between calls, so each mechanism needs its own RK4.
type RK4 struct {
	k   [4]dynamo.State
	tmp dynamo.State
}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) Step(sys dynamo.System, x dynamo.State, t, dt float64) dynamo.State {
	if len(r.tmp) != len(x) {
		for s := range r.k {
			r.k[s] = make(dynamo.State, len(x))
		}
		r.tmp = make(dynamo.State, len(x))
	}

	copy(r.k[0], sys.Derive(x, t))
	for s, c := range rk4Nodes {
		for i, xi := range x {
			r.tmp[i] = xi + c*dt*r.k[s][i]
		}
		copy(r.k[s+1], sys.Derive(r.tmp, t+c*dt))
	}

	next := x.Clone()
	for i := range next {
		next[i] += dt / 6 * (r.k[0][i] + 2*r.k[1][i] + 2*r.k[2][i] + r.k[3][i])
	}
	return next
}
