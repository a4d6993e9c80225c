package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/trebsim/internal/config"
	"github.com/san-kum/trebsim/internal/flight"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newModel(t *testing.T) (*Model, *clock) {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.World.Vertices = 720
	m, err := New(cfg, nil)
	require.NoError(t, err)
	c := &clock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	m.now = c.now
	return m, c
}

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func TestHeldKeysExpire(t *testing.T) {
	m, c := newModel(t)
	m.Update(runes("w"))
	m.Update(runes("a"))

	in := m.input(c.t.Add(100 * time.Millisecond))
	assert.True(t, in.Forward)
	assert.True(t, in.Left)
	assert.False(t, in.Back)
	assert.False(t, in.Right)

	in = m.input(c.t.Add(300 * time.Millisecond))
	assert.False(t, in.Forward)
	assert.False(t, in.Left)
}

func TestArrowKeysMapLikeWASD(t *testing.T) {
	m, c := newModel(t)
	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m.Update(tea.KeyMsg{Type: tea.KeyRight})

	in := m.input(c.t)
	assert.True(t, in.Back)
	assert.True(t, in.Right)
}

func TestPauseAndResume(t *testing.T) {
	m, c := newModel(t)
	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.True(t, m.input(c.t).Pause)

	m.Update(tickMsg(c.t))
	assert.Equal(t, flight.Paused, m.State().Phase)
	assert.False(t, m.pauseReq, "pause request is consumed by one frame")

	before := m.State().Stats
	m.Update(tickMsg(c.t.Add(50 * time.Millisecond)))
	assert.Equal(t, before, m.State().Stats)

	m.Update(tea.KeyMsg{Type: tea.KeySpace})
	assert.Equal(t, flight.Launched, m.State().Phase)
}

func TestFramesAdvanceToFlight(t *testing.T) {
	m, c := newModel(t)
	for i := 0; i < 400 && m.State().Stage == flight.Launching; i++ {
		m.Update(tickMsg(c.t.Add(time.Duration(i) * frameEvery)))
	}
	require.Equal(t, flight.Freeflight, m.State().Stage)

	for i := 0; i < 10; i++ {
		m.Update(tickMsg(c.t.Add(time.Duration(400+i) * frameEvery)))
	}
	assert.NotEmpty(t, m.trail)
	assert.NotEmpty(t, m.altitude)
	assert.Greater(t, m.State().Stats.Time, 0.0)
}

func TestLongStallIsClamped(t *testing.T) {
	m, c := newModel(t)
	m.Update(tickMsg(c.t))
	m.Update(tickMsg(c.t.Add(10 * time.Second)))
	assert.LessOrEqual(t, m.sc.Trebuchet.Time(), maxFrame+0.01)
}

func TestRestart(t *testing.T) {
	m, c := newModel(t)
	old := m.State()
	for i := 0; i < 50; i++ {
		m.Update(tickMsg(c.t.Add(time.Duration(i) * frameEvery)))
	}
	m.Update(runes("w"))

	m.Update(runes("r"))
	assert.NotSame(t, old, m.State())
	assert.Equal(t, flight.Launching, m.State().Stage)
	assert.Equal(t, flight.Stats{}, m.State().Stats)
	assert.False(t, m.input(c.t).Forward)
	assert.Zero(t, m.sc.Trebuchet.Time())
}

func TestQuit(t *testing.T) {
	m, _ := newModel(t)
	_, cmd := m.Update(runes("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestZoomBounds(t *testing.T) {
	m, _ := newModel(t)
	for i := 0; i < 20; i++ {
		m.Update(runes("+"))
	}
	assert.Equal(t, minZoom, m.zoom)
	for i := 0; i < 20; i++ {
		m.Update(runes("-"))
	}
	assert.Equal(t, maxZoom, m.zoom)
}

func TestView(t *testing.T) {
	m, _ := newModel(t)
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 30})
	out := m.View()
	assert.Contains(t, out, "launching")
	assert.Contains(t, out, "max alt")
	assert.True(t, strings.ContainsFunc(out, func(r rune) bool { return r > 0x2800 && r <= 0x28ff }),
		"canvas draws something")
}

func TestSparkline(t *testing.T) {
	assert.Equal(t, "──", sparkline(nil, 2))
	s := sparkline([]float64{0, 1, 2, 3}, 3)
	assert.Equal(t, 3, len([]rune(s)))
	assert.Equal(t, '█', []rune(s)[2])
}
