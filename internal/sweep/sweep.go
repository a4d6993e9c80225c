// Package sweep flies a scenario over a grid of trebuchet parameters and
// ranks the throws.
package sweep

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/trebsim/internal/config"
	"github.com/san-kum/trebsim/internal/flight"
	"github.com/san-kum/trebsim/internal/metrics"
)

var ErrInvalidPlan = errors.New("sweep: invalid plan")

// Axis spans Steps evenly spaced values of one trebuchet parameter,
// endpoints included.
type Axis struct {
	Param string  `yaml:"param"`
	Min   float64 `yaml:"min"`
	Max   float64 `yaml:"max"`
	Steps int     `yaml:"steps"`
}

func (a Axis) Values() []float64 {
	if a.Steps == 1 {
		return []float64{a.Min}
	}
	out := make([]float64, a.Steps)
	step := (a.Max - a.Min) / float64(a.Steps-1)
	for i := range out {
		out[i] = a.Min + float64(i)*step
	}
	return out
}

type Plan struct {
	Preset  string `yaml:"preset"`
	Metric  string `yaml:"metric"`
	Workers int    `yaml:"workers"`
	Axes    []Axis `yaml:"axes"`
}

// LoadPlan reads a YAML plan file.
func LoadPlan(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var p Plan
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse plan %s: %w", path, err)
	}
	return &p, nil
}

func (p *Plan) Validate() error {
	if len(p.Axes) == 0 {
		return fmt.Errorf("%w: no axes", ErrInvalidPlan)
	}
	for _, a := range p.Axes {
		if a.Steps < 1 || a.Max < a.Min {
			return fmt.Errorf("%w: axis %s needs steps >= 1 and min <= max", ErrInvalidPlan, a.Param)
		}
	}
	return nil
}

// Point is one flown grid cell.
type Point struct {
	Params  map[string]float64 `json:"params"`
	Stats   flight.Stats       `json:"stats"`
	Metrics map[string]float64 `json:"metrics"`
	Landed  bool               `json:"landed"`
	Err     error              `json:"-"`
}

// Value looks name up among the flight stats, then the run metrics.
func (pt Point) Value(name string) (float64, bool) {
	switch name {
	case "time":
		return pt.Stats.Time, true
	case "distance":
		return pt.Stats.Distance, true
	case "max_altitude":
		return pt.Stats.MaxAltitude, true
	case "max_speed":
		return pt.Stats.MaxSpeed, true
	}
	v, ok := pt.Metrics[name]
	return v, ok
}

// grid expands the axes into every parameter combination, first axis
// outermost.
func grid(axes []Axis) []map[string]float64 {
	var out []map[string]float64
	var walk func(depth int, current map[string]float64)
	walk = func(depth int, current map[string]float64) {
		if depth == len(axes) {
			out = append(out, current)
			return
		}
		for _, v := range axes[depth].Values() {
			next := make(map[string]float64, len(current)+1)
			for k, cv := range current {
				next[k] = cv
			}
			next[axes[depth].Param] = v
			walk(depth+1, next)
		}
	}
	walk(0, map[string]float64{})
	return out
}

// Run flies base once per grid cell on a pool of workers. Points come back
// in grid order; a cell whose parameters are rejected carries the error in
// Err and does not stop the sweep.
func Run(ctx context.Context, base *config.Config, plan *Plan) ([]Point, error) {
	if err := plan.Validate(); err != nil {
		return nil, err
	}
	if err := base.Validate(); err != nil {
		return nil, err
	}

	cells := grid(plan.Axes)
	points := make([]Point, len(cells))

	workers := plan.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				points[i] = fly(ctx, base, cells[i])
			}
		}()
	}

feed:
	for i := range cells {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return points, nil
}

func fly(ctx context.Context, base *config.Config, params map[string]float64) Point {
	pt := Point{Params: params}

	cfg := base.Clone()
	for name, v := range params {
		if err := cfg.SetParam(name, v); err != nil {
			pt.Err = err
			return pt
		}
	}
	sc, err := cfg.Build(nil)
	if err != nil {
		pt.Err = err
		return pt
	}

	sess := sc.Session()
	for _, m := range metrics.Default(sc.Planet) {
		sess.AddMetric(m)
	}
	res, err := sess.Run(ctx, cfg.RunConfig(), cfg.Inputs)
	if err != nil {
		pt.Err = err
		return pt
	}

	pt.Stats = res.Stats
	pt.Metrics = res.Metrics
	pt.Landed = res.Landed
	return pt
}

// Rank returns the successful points ordered by metric, largest first.
func Rank(points []Point, metric string) ([]Point, error) {
	var out []Point
	for _, pt := range points {
		if pt.Err != nil {
			continue
		}
		if _, ok := pt.Value(metric); !ok {
			return nil, fmt.Errorf("%w: unknown metric %q", ErrInvalidPlan, metric)
		}
		out = append(out, pt)
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, _ := out[i].Value(metric)
		b, _ := out[j].Value(metric)
		return a > b
	})
	return out, nil
}
