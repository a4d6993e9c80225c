package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/trebsim/internal/flight"
	"github.com/san-kum/trebsim/internal/integrators"
	"github.com/san-kum/trebsim/internal/trebuchet"
	"github.com/san-kum/trebsim/internal/world"
)

const (
	DefaultFrameTime = 1.0 / 60
	DefaultMaxTime   = 120.0
	DefaultMoveSpeed = 15.0
)

var ErrInvalid = errors.New("config: invalid")

type Config struct {
	Name       string           `yaml:"name"`
	Integrator string           `yaml:"integrator"`
	Tick       float64          `yaml:"tick"`
	FrameTime  float64          `yaml:"frame_time"`
	MaxTime    float64          `yaml:"max_time"`
	World      world.Config     `yaml:"world"`
	Body       BodyConfig       `yaml:"body"`
	Trebuchet  trebuchet.Params `yaml:"trebuchet"`
	Inputs     flight.Script    `yaml:"inputs,omitempty"`
}

type BodyConfig struct {
	MoveSpeed float64 `yaml:"move_speed"`
}

// DefaultConfig uses the planet's gravity for the trebuchet; a non-zero
// trebuchet gravity overrides it.
func DefaultConfig() *Config {
	treb := trebuchet.DefaultParams()
	treb.Gravity = 0
	return &Config{
		Name:       "default",
		Integrator: "rk4",
		Tick:       flight.DefaultTick,
		FrameTime:  DefaultFrameTime,
		MaxTime:    DefaultMaxTime,
		World:      world.DefaultConfig(),
		Body:       BodyConfig{MoveSpeed: DefaultMoveSpeed},
		Trebuchet:  treb,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if !(c.Tick > 0) {
		return fmt.Errorf("%w: tick must be positive, got %g", ErrInvalid, c.Tick)
	}
	if !(c.FrameTime > 0) || !(c.MaxTime > 0) {
		return fmt.Errorf("%w: frame_time and max_time must be positive", ErrInvalid)
	}
	if c.Body.MoveSpeed < 0 {
		return fmt.Errorf("%w: move_speed must not be negative", ErrInvalid)
	}
	if _, err := integrators.New(c.Integrator); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if err := c.World.Validate(); err != nil {
		return err
	}
	if err := c.Trebuchet.Validate(); err != nil {
		return err
	}
	return c.Inputs.Validate()
}

// SetParam overrides one trebuchet parameter by name.
func (c *Config) SetParam(name string, value float64) error {
	return c.Trebuchet.SetParam(name, value)
}

func (c *Config) RunConfig() flight.RunConfig {
	return flight.RunConfig{FrameTime: c.FrameTime, MaxTime: c.MaxTime}
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	out.Inputs = append(flight.Script(nil), c.Inputs...)
	return &out
}
