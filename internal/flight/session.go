package flight

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/trebsim/internal/fixed"
)

// Sample is the body as seen at the end of one frame.
type Sample struct {
	Time     float64    `json:"time"`
	Position fixed.Vec2 `json:"position"`
	Velocity mgl64.Vec2 `json:"velocity"`
	Rotation float64    `json:"rotation"`
	Altitude float64    `json:"altitude"`
	Phase    Phase      `json:"phase"`
	Stage    Stage      `json:"stage"`
}

type Metric interface {
	Name() string
	Observe(s Sample)
	Value() float64
	Reset()
}

type Observer interface {
	OnFrame(s Sample)
}

type RunConfig struct {
	FrameTime float64
	MaxTime   float64
}

type Result struct {
	Samples []Sample
	Stats   Stats
	Metrics map[string]float64
	Frames  int
	Landed  bool
}

// Session replays a scripted flight without a terminal, one fixed-length
// frame at a time.
type Session struct {
	physics   *Physics
	world     World
	state     *State
	metrics   []Metric
	observers []Observer
	logger    *log.Logger
}

func NewSession(p *Physics, s *State) *Session {
	return &Session{
		physics: p,
		world:   p.world,
		state:   s,
		logger:  log.New(io.Discard),
	}
}

func (s *Session) AddMetric(m Metric)      { s.metrics = append(s.metrics, m) }
func (s *Session) AddObserver(o Observer)  { s.observers = append(s.observers, o) }
func (s *Session) SetLogger(l *log.Logger) { s.logger = l; s.physics.SetLogger(l) }
func (s *Session) State() *State           { return s.state }

func (s *Session) sample(t float64) Sample {
	b := s.state.Body
	return Sample{
		Time:     t,
		Position: b.Position,
		Velocity: b.Velocity,
		Rotation: b.Rotation,
		Altitude: s.world.AltitudeAt(b.Position),
		Phase:    s.state.Phase,
		Stage:    s.state.Stage,
	}
}

func (s *Session) observe(smp Sample, result *Result) {
	result.Samples = append(result.Samples, smp)
	for _, m := range s.metrics {
		m.Observe(smp)
	}
	for _, o := range s.observers {
		o.OnFrame(smp)
	}
}

// Run feeds frames until the body lands or MaxTime of session time has
// passed. A paused flight resumes on the first frame whose input no longer
// asks for a pause. On cancellation the partial result is returned with the
// context's error.
func (s *Session) Run(ctx context.Context, cfg RunConfig, script Script) (*Result, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	if err := script.Validate(); err != nil {
		return nil, err
	}

	frames := int(cfg.MaxTime / cfg.FrameTime)
	result := &Result{
		Samples: make([]Sample, 0, frames+1),
		Metrics: make(map[string]float64),
	}
	for _, m := range s.metrics {
		m.Reset()
	}

	t := 0.0
	s.observe(s.sample(t), result)

	for i := 0; i < frames && s.state.Phase != Landed; i++ {
		select {
		case <-ctx.Done():
			s.finish(result)
			return result, ctx.Err()
		default:
		}

		in := script.At(t)
		if !in.Pause && s.state.Resume() {
			s.logger.Debug("resumed", "time", t)
		}
		s.physics.Update(s.state, cfg.FrameTime, in)

		t += cfg.FrameTime
		result.Frames++
		s.observe(s.sample(t), result)
	}

	s.finish(result)
	s.logger.Info("run finished",
		"frames", result.Frames,
		"landed", result.Landed,
		"flight_time", result.Stats.Time,
		"distance", result.Stats.Distance)
	return result, nil
}

func (s *Session) finish(result *Result) {
	result.Stats = s.state.Stats
	result.Landed = s.state.Phase == Landed
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
}

func validateConfig(cfg RunConfig) error {
	if !(cfg.FrameTime > 0) {
		return fmt.Errorf("%w: frame time must be positive, got %g", ErrInvalidConfig, cfg.FrameTime)
	}
	if !(cfg.MaxTime > 0) {
		return fmt.Errorf("%w: max time must be positive, got %g", ErrInvalidConfig, cfg.MaxTime)
	}
	return nil
}
