package integrators

import "github.com/san-kum/trebsim/internal/dynamo"

// Verlet is velocity Verlet for states laid out as [positions..., velocities...]
// where the derivative of each velocity is its acceleration.
type Verlet struct {
	scratch dynamo.State
}

func NewVerlet() *Verlet {
	return &Verlet{}
}

func (v *Verlet) Step(sys dynamo.System, x dynamo.State, t, dt float64) dynamo.State {
	n := len(x)
	half := n / 2
	if len(v.scratch) != n {
		v.scratch = make(dynamo.State, n)
	}

	result := make(dynamo.State, n)
	dx := sys.Derive(x, t)

	for i := 0; i < half; i++ {
		result[i] = x[i] + x[half+i]*dt + 0.5*dx[half+i]*dt*dt
		v.scratch[i] = result[i]
		v.scratch[half+i] = x[half+i] + dx[half+i]*dt
	}

	dxNew := sys.Derive(v.scratch, t+dt)
	for i := 0; i < half; i++ {
		result[half+i] = x[half+i] + 0.5*(dx[half+i]+dxNew[half+i])*dt
	}
	return result
}

// Leapfrog is the kick-drift-kick form of the same scheme.
type Leapfrog struct {
	scratch dynamo.State
}

func NewLeapfrog() *Leapfrog {
	return &Leapfrog{}
}

func (l *Leapfrog) Step(sys dynamo.System, x dynamo.State, t, dt float64) dynamo.State {
	n := len(x)
	half := n / 2
	if len(l.scratch) != n {
		l.scratch = make(dynamo.State, n)
	}

	result := make(dynamo.State, n)
	dx := sys.Derive(x, t)
	halfDt := dt * 0.5

	for i := 0; i < half; i++ {
		l.scratch[half+i] = x[half+i] + dx[half+i]*halfDt
	}
	for i := 0; i < half; i++ {
		result[i] = x[i] + l.scratch[half+i]*dt
		l.scratch[i] = result[i]
	}

	dxNew := sys.Derive(l.scratch, t+dt)
	for i := 0; i < half; i++ {
		result[half+i] = l.scratch[half+i] + dxNew[half+i]*halfDt
	}
	return result
}
