package config

import (
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/san-kum/trebsim/internal/flight"
	"github.com/san-kum/trebsim/internal/integrators"
	"github.com/san-kum/trebsim/internal/trebuchet"
	"github.com/san-kum/trebsim/internal/world"
)

// Scenario is a ready-to-fly world: the body sits in a cocked trebuchet at
// the top of the planet.
type Scenario struct {
	Planet    *world.Planet
	Trebuchet *trebuchet.Trebuchet
	Physics   *flight.Physics
	State     *flight.State
}

// Build assembles a scenario. logger may be nil.
func (c *Config) Build(logger *log.Logger) (*Scenario, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	planet, err := world.Generate(c.World)
	if err != nil {
		return nil, fmt.Errorf("build world: %w", err)
	}

	site := planet.LaunchSite()
	params := c.Trebuchet
	if params.Gravity == 0 {
		params.Gravity = planet.GravityAt(site).Len()
	}

	integ, err := integrators.New(c.Integrator)
	if err != nil {
		return nil, err
	}
	treb, err := trebuchet.New(params, site, integ)
	if err != nil {
		return nil, fmt.Errorf("build trebuchet: %w", err)
	}

	phys, err := flight.NewPhysics(planet, treb, c.Tick)
	if err != nil {
		return nil, err
	}
	if logger != nil {
		phys.SetLogger(logger)
		logger.Debug("scenario built",
			"name", c.Name,
			"radius", c.World.Radius,
			"vertices", planet.Len(),
			"integrator", c.Integrator)
	}

	return &Scenario{
		Planet:    planet,
		Trebuchet: treb,
		Physics:   phys,
		State:     flight.NewState(treb, c.Body.MoveSpeed),
	}, nil
}

// Session wraps the scenario for a headless run.
func (s *Scenario) Session() *flight.Session {
	return flight.NewSession(s.Physics, s.State)
}
