package config

import (
	"math"
	"sort"

	"github.com/san-kum/trebsim/internal/flight"
)

var Presets = map[string]*Config{
	"default": DefaultConfig(),
	"siege":   siege(),
	"moon":    moon(),
	"tiny":    tiny(),
	"thrust":  thrust(),
}

func siege() *Config {
	c := DefaultConfig()
	c.Name = "siege"
	c.Trebuchet.Counterweight = 4000
	c.Trebuchet.ShortArm = 2
	c.Trebuchet.LongArm = 8
	c.Trebuchet.Sling = 6
	c.Trebuchet.PivotHeight = 8.5
	c.Trebuchet.ArmInertia = 6000
	return c
}

func moon() *Config {
	c := DefaultConfig()
	c.Name = "moon"
	c.World.Radius = 5000
	c.World.Vertices = 2048
	c.World.Roughness = 20
	c.World.SurfaceGravity = 1.62
	c.MaxTime = 300
	return c
}

// tiny pairs a weak planet with a trebuchet tuned as if for stronger gravity,
// so a low throw carries the body most of the way round.
func tiny() *Config {
	c := DefaultConfig()
	c.Name = "tiny"
	c.World.Radius = 300
	c.World.Vertices = 512
	c.World.Roughness = 2
	c.World.Harmonics = 6
	c.World.SurfaceGravity = 0.5
	c.Trebuchet.Gravity = 1.2
	c.Trebuchet.ReleaseAngle = 20 * math.Pi / 180
	c.MaxTime = 600
	return c
}

func thrust() *Config {
	c := DefaultConfig()
	c.Name = "thrust"
	c.Body.MoveSpeed = 25
	c.Inputs = flight.Script{
		{Action: flight.Right, Start: 2, End: 3.5},
		{Action: flight.Forward, Start: 3.5, End: 7},
	}
	return c
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
