package viz

import (
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestCanvasSet(t *testing.T) {
	c := NewCanvas(2, 1)
	c.Set(0, 0)
	c.Set(3, 3)
	c.Set(-1, 0)
	c.Set(4, 0)

	if got := c.Grid[0][0]; got != blank|0x1 {
		t.Errorf("cell 0 = %U, want %U", got, blank|0x1)
	}
	if got := c.Grid[0][1]; got != blank|0x80 {
		t.Errorf("cell 1 = %U, want %U", got, blank|0x80)
	}
	if !c.IsSet(3, 3) || c.IsSet(2, 3) {
		t.Error("IsSet disagrees with Set")
	}

	c.Clear()
	if c.IsSet(0, 0) {
		t.Error("Clear left a dot")
	}
}

func TestDrawLine(t *testing.T) {
	c := NewCanvas(4, 2)
	c.DrawLine(0, 0, 7, 7)
	for i := 0; i < 8; i++ {
		if !c.IsSet(i, i) {
			t.Errorf("diagonal dot (%d,%d) missing", i, i)
		}
	}
	if lines := strings.Count(c.String(), "\n"); lines != 2 {
		t.Errorf("String() has %d rows, want 2", lines)
	}
}

func TestViewportProject(t *testing.T) {
	c := NewCanvas(10, 5)
	v := NewViewport(c, mgl64.Vec2{100, 50}, 0.5)

	x, y := v.Project(mgl64.Vec2{100, 50})
	if x != 10 || y != 10 {
		t.Errorf("centre maps to (%d,%d), want (10,10)", x, y)
	}
	x, y = v.Project(mgl64.Vec2{102, 51})
	if x != 14 || y != 8 {
		t.Errorf("offset maps to (%d,%d), want (14,8)", x, y)
	}
}

func TestLineSkipsFarSegments(t *testing.T) {
	c := NewCanvas(10, 5)
	v := NewViewport(c, mgl64.Vec2{}, 1)
	c.Line(v, mgl64.Vec2{1000, 1000}, mgl64.Vec2{1001, 1000})
	if c.String() != NewCanvas(10, 5).String() {
		t.Error("far segment was drawn")
	}

	c.Polyline(v, []mgl64.Vec2{{-5, 0}, {5, 0}})
	if !c.IsSet(10, 10) {
		t.Error("horizontal line through centre missing")
	}
}
