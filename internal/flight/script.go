package flight

import "fmt"

type Action string

const (
	Forward Action = "forward"
	Back    Action = "back"
	Left    Action = "left"
	Right   Action = "right"
	Pause   Action = "pause"
)

// Window holds an action down from Start until End, in session seconds.
type Window struct {
	Action Action  `yaml:"action" json:"action"`
	Start  float64 `yaml:"start" json:"start"`
	End    float64 `yaml:"end" json:"end"`
}

// Script is a list of possibly overlapping input windows.
type Script []Window

func (sc Script) Validate() error {
	for i, w := range sc {
		switch w.Action {
		case Forward, Back, Left, Right, Pause:
		default:
			return fmt.Errorf("window %d: %w: %q", i, ErrUnknownAction, w.Action)
		}
		if w.Start < 0 || w.End <= w.Start {
			return fmt.Errorf("window %d: %w: need 0 <= start < end, got [%g, %g)",
				i, ErrInvalidConfig, w.Start, w.End)
		}
	}
	return nil
}

// At returns the input held at time t. Windows are half open.
func (sc Script) At(t float64) Input {
	var in Input
	for _, w := range sc {
		if t < w.Start || t >= w.End {
			continue
		}
		switch w.Action {
		case Forward:
			in.Forward = true
		case Back:
			in.Back = true
		case Left:
			in.Left = true
		case Right:
			in.Right = true
		case Pause:
			in.Pause = true
		}
	}
	return in
}
