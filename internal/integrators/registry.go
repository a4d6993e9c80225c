package integrators

import (
	"errors"
	"fmt"
	"sort"

	"github.com/san-kum/trebsim/internal/dynamo"
)

var ErrUnknownIntegrator = errors.New("integrators: unknown integrator")

var registry = map[string]func() dynamo.Integrator{
	"euler":    func() dynamo.Integrator { return NewEuler() },
	"rk4":      func() dynamo.Integrator { return NewRK4() },
	"rk45":     func() dynamo.Integrator { return NewRK45() },
	"verlet":   func() dynamo.Integrator { return NewVerlet() },
	"leapfrog": func() dynamo.Integrator { return NewLeapfrog() },
}

// New returns a fresh integrator by name. Each call gets its own scratch
// buffers.
func New(name string) (dynamo.Integrator, error) {
	ctor, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownIntegrator, name)
	}
	return ctor(), nil
}

func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
