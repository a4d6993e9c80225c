// Package metrics observes flight samples and reduces them to numbers the
// CLI prints and stores with each run.
package metrics

import (
	"math"

	"github.com/san-kum/trebsim/internal/fixed"
	"github.com/san-kum/trebsim/internal/flight"
)

// Field is a gravity field with a potential.
type Field interface {
	Potential(p fixed.Vec2) float64
}

// SpecificEnergy is the orbital energy per unit mass of a sample.
func SpecificEnergy(f Field, s flight.Sample) float64 {
	v := s.Velocity.Len()
	return 0.5*v*v + f.Potential(s.Position)
}

// EnergyDrift is the largest relative change in specific orbital energy
// seen during free flight. Launching and landed samples are skipped.
// Thrust changes the energy too, so the value is only a drift figure for
// unpowered flights.
type EnergyDrift struct {
	name     string
	field    Field
	initial  float64
	maxDrift float64
	samples  int
}

func NewEnergyDrift(f Field) *EnergyDrift {
	return &EnergyDrift{name: "energy_drift", field: f}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(s flight.Sample) {
	if s.Stage != flight.Freeflight || s.Phase == flight.Landed {
		return
	}

	energy := SpecificEnergy(e.field, s)
	if e.samples == 0 {
		e.initial = energy
	}
	e.samples++

	if e.initial != 0 {
		drift := math.Abs(energy-e.initial) / math.Abs(e.initial)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 { return e.maxDrift }

func (e *EnergyDrift) Reset() {
	e.initial = 0
	e.maxDrift = 0
	e.samples = 0
}
