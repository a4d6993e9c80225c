package metrics

import "github.com/san-kum/trebsim/internal/flight"

// Planet is what the default metric set needs from the world.
type Planet interface {
	Field
	Surface
}

// Default returns fresh instances of every metric.
func Default(p Planet) []flight.Metric {
	return []flight.Metric{
		NewEnergyDrift(p),
		NewDownrange(p),
	}
}
