package dynamo

import "math"

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum)
}

// Axpy returns s + a*o. Missing entries of o count as zero.
func (s State) Axpy(a float64, o State) State {
	result := make(State, len(s))
	for i := range s {
		result[i] = s[i]
		if i < len(o) {
			result[i] += a * o[i]
		}
	}
	return result
}

// System is a continuous mechanism dX/dt = Derive(X, t).
type System interface {
	Derive(x State, t float64) State
	StateDim() int
}

type Hamiltonian interface {
	Energy(x State) float64
}

// Integrator advances a System by one step of length dt.
type Integrator interface {
	Step(sys System, x State, t, dt float64) State
}

type Configurable interface {
	GetParams() map[string]float64
	SetParam(name string, value float64) error
}
