package trebuchet

import (
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/trebsim/internal/dynamo"
)

// Params describes a counterweight trebuchet. Lengths are in world units,
// angles in radians measured counter-clockwise from +x, and the arm turns
// clockwise (θ decreasing) during the throw, which goes towards +x.
// ReleaseAngle is the elevation of the projectile's velocity at which the
// sling lets go, so it must lie strictly between 0 and π/2.
type Params struct {
	Counterweight float64 `yaml:"counterweight" json:"counterweight"`
	ShortArm      float64 `yaml:"short_arm" json:"short_arm"`
	LongArm       float64 `yaml:"long_arm" json:"long_arm"`
	Sling         float64 `yaml:"sling" json:"sling"`
	PivotHeight   float64 `yaml:"pivot_height" json:"pivot_height"`
	ArmInertia    float64 `yaml:"arm_inertia" json:"arm_inertia"`
	Gravity       float64 `yaml:"gravity" json:"gravity"`
	StartAngle    float64 `yaml:"start_angle" json:"start_angle"`
	SlingAngle    float64 `yaml:"sling_angle" json:"sling_angle"`
	ReleaseAngle  float64 `yaml:"release_angle" json:"release_angle"`
	MaxLaunchTime float64 `yaml:"max_launch_time" json:"max_launch_time"`
}

func DefaultParams() Params {
	return Params{
		Counterweight: 1000,
		ShortArm:      1.5,
		LongArm:       5,
		Sling:         4,
		PivotHeight:   5.5,
		ArmInertia:    2000,
		Gravity:       9.81,
		StartAngle:    -math.Pi/2 - 0.4,
		SlingAngle:    0,
		ReleaseAngle:  math.Pi / 4,
		MaxLaunchTime: 10,
	}
}

func (p Params) Validate() error {
	positive := []struct {
		name string
		v    float64
	}{
		{"counterweight", p.Counterweight},
		{"short_arm", p.ShortArm},
		{"long_arm", p.LongArm},
		{"sling", p.Sling},
		{"max_launch_time", p.MaxLaunchTime},
	}
	for _, f := range positive {
		if !(f.v > 0) {
			return fmt.Errorf("%w: %s must be positive, got %g", dynamo.ErrParameterBounds, f.name, f.v)
		}
	}
	if p.ArmInertia < 0 || p.Gravity < 0 {
		return fmt.Errorf("%w: arm_inertia and gravity must not be negative", dynamo.ErrParameterBounds)
	}
	if p.PivotHeight <= p.ShortArm {
		return fmt.Errorf("%w: pivot_height %g leaves no clearance for short_arm %g",
			dynamo.ErrParameterBounds, p.PivotHeight, p.ShortArm)
	}
	if !(p.ReleaseAngle > 0 && p.ReleaseAngle < math.Pi/2) {
		return fmt.Errorf("%w: release_angle %g must be an upward forward elevation in (0, π/2)",
			dynamo.ErrParameterBounds, p.ReleaseAngle)
	}
	return nil
}

func (p *Params) fields() map[string]*float64 {
	return map[string]*float64{
		"counterweight":   &p.Counterweight,
		"short_arm":       &p.ShortArm,
		"long_arm":        &p.LongArm,
		"sling":           &p.Sling,
		"pivot_height":    &p.PivotHeight,
		"arm_inertia":     &p.ArmInertia,
		"gravity":         &p.Gravity,
		"start_angle":     &p.StartAngle,
		"sling_angle":     &p.SlingAngle,
		"release_angle":   &p.ReleaseAngle,
		"max_launch_time": &p.MaxLaunchTime,
	}
}

func (p *Params) GetParams() map[string]float64 {
	out := make(map[string]float64)
	for name, ptr := range p.fields() {
		out[name] = *ptr
	}
	return out
}

// SetParam sets one field by name. The result is validated as a whole and
// left unchanged on error.
func (p *Params) SetParam(name string, value float64) error {
	ptr, ok := p.fields()[name]
	if !ok {
		return fmt.Errorf("%w: %q (have %v)", dynamo.ErrUnknownParam, name, ParamNames())
	}
	old := *ptr
	*ptr = value
	if err := p.Validate(); err != nil {
		*ptr = old
		return err
	}
	return nil
}

func ParamNames() []string {
	var p Params
	names := make([]string, 0, 11)
	for n := range p.fields() {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
