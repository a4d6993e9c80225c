package metrics

import (
	"math"

	"github.com/san-kum/trebsim/internal/fixed"
	"github.com/san-kum/trebsim/internal/flight"
)

// Surface maps positions to angles around the planet.
type Surface interface {
	SurfaceAngle(p fixed.Vec2) float64
	Radius() float64
}

// Downrange is the ground distance covered, measured along the datum
// circle. Angles are unwrapped sample to sample, so a flight that goes
// more than halfway round keeps counting.
type Downrange struct {
	name    string
	surface Surface
	prev    float64
	total   float64
	samples int
}

func NewDownrange(s Surface) *Downrange {
	return &Downrange{name: "downrange", surface: s}
}

func (d *Downrange) Name() string { return d.name }

func (d *Downrange) Observe(s flight.Sample) {
	a := d.surface.SurfaceAngle(s.Position)
	if d.samples > 0 {
		d.total += wrapPi(a - d.prev)
	}
	d.prev = a
	d.samples++
}

func (d *Downrange) Value() float64 { return math.Abs(d.total) * d.surface.Radius() }

func (d *Downrange) Reset() {
	d.prev = 0
	d.total = 0
	d.samples = 0
}

// wrapPi maps a into [-π, π).
func wrapPi(a float64) float64 {
	a = math.Mod(a+math.Pi, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a - math.Pi
}
