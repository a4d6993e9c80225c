// Package tui is the interactive terminal front end: it feeds real frame
// times and held keys into the flight physics and draws the result.
package tui

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/trebsim/internal/config"
	"github.com/san-kum/trebsim/internal/fixed"
	"github.com/san-kum/trebsim/internal/flight"
	"github.com/san-kum/trebsim/internal/viz"
)

const (
	// Terminals report key repeats, not key releases, so a key counts as
	// held for this long after its last press.
	repeatWindow = 200 * time.Millisecond
	// maxFrame caps the time fed to the physics after a stall.
	maxFrame   = 0.25
	frameEvery = 16 * time.Millisecond
	trailLen   = 600
	historyLen = 240
	minZoom    = 1.0 / 64
	maxZoom    = 64.0
)

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(frameEvery, func(t time.Time) tea.Msg { return tickMsg(t) })
}

type Model struct {
	cfg    *config.Config
	logger *log.Logger
	sc     *config.Scenario
	now    func() time.Time

	held      map[flight.Action]time.Time
	pauseReq  bool
	lastFrame time.Time
	fps       float64

	trail    []mgl64.Vec2
	altitude []float64
	speed    []float64
	zoom     float64

	width, height int
}

// New builds the model and its first scenario. logger may be nil.
func New(cfg *config.Config, logger *log.Logger) (*Model, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	m := &Model{
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
		zoom:   0.25,
		width:  100,
		height: 36,
	}
	if err := m.restart(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Model) restart() error {
	sc, err := m.cfg.Build(m.logger)
	if err != nil {
		return err
	}
	m.sc = sc
	m.held = make(map[flight.Action]time.Time)
	m.pauseReq = false
	m.lastFrame = time.Time{}
	m.trail = m.trail[:0]
	m.altitude = m.altitude[:0]
	m.speed = m.speed[:0]
	return nil
}

func (m *Model) State() *flight.State { return m.sc.State }

func (m *Model) Init() tea.Cmd { return tick() }

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m, m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case tickMsg:
		m.frame(time.Time(msg))
		return m, tick()
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	now := m.now()
	switch msg.String() {
	case "q", "ctrl+c":
		return tea.Quit
	case "esc":
		m.pauseReq = true
	case " ":
		if m.sc.State.Resume() {
			m.logger.Debug("resumed")
		}
	case "r":
		if err := m.restart(); err != nil {
			m.logger.Error("restart failed", "err", err)
		}
		return tea.ClearScreen
	case "w", "up":
		m.held[flight.Forward] = now
	case "s", "down":
		m.held[flight.Back] = now
	case "a", "left":
		m.held[flight.Left] = now
	case "d", "right":
		m.held[flight.Right] = now
	case "+", "=":
		m.zoom = math.Max(m.zoom/2, minZoom)
	case "-", "_":
		m.zoom = math.Min(m.zoom*2, maxZoom)
	}
	return nil
}

// input is the control snapshot for a frame starting at now.
func (m *Model) input(now time.Time) flight.Input {
	down := func(a flight.Action) bool {
		t, ok := m.held[a]
		return ok && now.Sub(t) <= repeatWindow
	}
	return flight.Input{
		Forward: down(flight.Forward),
		Back:    down(flight.Back),
		Left:    down(flight.Left),
		Right:   down(flight.Right),
		Pause:   m.pauseReq,
	}
}

func (m *Model) frame(now time.Time) {
	dt := 0.0
	if !m.lastFrame.IsZero() {
		dt = math.Min(now.Sub(m.lastFrame).Seconds(), maxFrame)
		if dt > 0 {
			m.fps = 1 / dt
		}
	}
	m.lastFrame = now

	st := m.sc.State
	m.sc.Physics.Update(st, dt, m.input(now))
	m.pauseReq = false

	if st.Phase == flight.Launched && st.Stage == flight.Freeflight {
		m.trail = appendBounded(m.trail, fixed.ToFloat(st.Body.Position), trailLen)
		m.altitude = appendBounded(m.altitude, m.sc.Planet.AltitudeAt(st.Body.Position), historyLen)
		m.speed = appendBounded(m.speed, st.Body.Velocity.Len(), historyLen)
	}
}

func appendBounded[T any](s []T, v T, n int) []T {
	s = append(s, v)
	if len(s) > n {
		s = s[len(s)-n:]
	}
	return s
}

func (m *Model) View() string {
	var b strings.Builder
	st := m.sc.State

	b.WriteString("\n  " + cyan.Render("t r e b s i m") + "  " + dim.Render(m.cfg.Name) + "  " + m.status() + "\n")

	cw := max(m.width-6, 40)
	ch := max(m.height-16, 8)
	canvas := viz.NewCanvas(cw, ch)
	m.draw(canvas)
	b.WriteString(panel.Render(strings.TrimRight(canvas.String(), "\n")) + "\n")

	body := st.Body
	stats := []struct{ label, value string }{
		{"time", fmt.Sprintf("%7.2fs", st.Stats.Time)},
		{"alt", fmt.Sprintf("%8.1f", m.sc.Planet.AltitudeAt(body.Position))},
		{"speed", fmt.Sprintf("%7.1f", body.Velocity.Len())},
		{"heading", fmt.Sprintf("%6.1f°", body.Rotation*180/math.Pi)},
		{"dist", fmt.Sprintf("%8.1f", st.Stats.Distance)},
		{"max alt", fmt.Sprintf("%8.1f", st.Stats.MaxAltitude)},
		{"max speed", fmt.Sprintf("%7.1f", st.Stats.MaxSpeed)},
	}
	b.WriteString("  ")
	for _, s := range stats {
		b.WriteString(metricLabel.Render(s.label) + " " + metricValue.Render(s.value) + "   ")
	}
	b.WriteString("\n")

	if len(m.altitude) > 1 {
		graph := asciigraph.Plot(m.altitude,
			asciigraph.Height(4),
			asciigraph.Width(min(cw-12, 80)),
			asciigraph.Caption("altitude"))
		b.WriteString(dim.Render(graph) + "\n")
		b.WriteString("  " + metricLabel.Render("speed ") + green.Render(sparkline(m.speed, min(cw-8, 80))) + "\n")
	}

	b.WriteString(dimmer.Render(fmt.Sprintf("  %.0f fps  zoom %.3g", m.fps, m.zoom)) + "\n")
	b.WriteString(dim.Render("  w/s thrust  a/d turn  esc pause  space resume  +/- zoom  r restart  q quit") + "\n")
	return b.String()
}

func (m *Model) status() string {
	st := m.sc.State
	switch st.Phase {
	case flight.Paused:
		return yellow.Render("⏸ paused")
	case flight.Landed:
		return red.Render("■ landed")
	}
	if st.Stage == flight.Launching {
		return magenta.Render("◆ launching")
	}
	return green.Render("▶ flying")
}

func (m *Model) draw(c *viz.Canvas) {
	st := m.sc.State
	center := fixed.ToFloat(st.Body.Position)
	v := viz.NewViewport(c, center, m.zoom)

	m.drawTerrain(c, v, st.Body.Position)

	if st.Stage == flight.Launching {
		tr := m.sc.Trebuchet
		site := fixed.ToFloat(m.sc.Planet.LaunchSite())
		pivot := fixed.ToFloat(tr.Pivot())
		c.Line(v, site, pivot)
		c.Line(v, pivot, fixed.ToFloat(tr.Counterweight()))
		c.Line(v, pivot, fixed.ToFloat(tr.ArmSlingPoint()))
		c.Line(v, fixed.ToFloat(tr.ArmSlingPoint()), fixed.ToFloat(tr.SlingPoint()))
	}

	c.Polyline(v, m.trail)

	nose := center.Add(mgl64.Vec2{math.Cos(st.Body.Rotation), math.Sin(st.Body.Rotation)}.Mul(4 * m.zoom))
	c.Line(v, center, nose)
}

// drawTerrain draws the edges around the one beneath the body, enough to
// cover the canvas width.
func (m *Model) drawTerrain(c *viz.Canvas, v viz.Viewport, at fixed.Vec2) {
	p := m.sc.Planet
	n := p.Len()
	edge := 2 * math.Pi * p.Radius() / float64(n)
	span := min(int(float64(v.W)*v.Scale/edge)+2, n/2)

	i0 := p.TerrainIndexBeneath(at)
	for i := i0 - span; i <= i0+span; i++ {
		c.Line(v, fixed.ToFloat(p.Surface(i)), fixed.ToFloat(p.Surface(i+1)))
	}
}

// Run starts the full-screen interactive session.
func Run(cfg *config.Config, logger *log.Logger) error {
	m, err := New(cfg, logger)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
