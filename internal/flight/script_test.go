package flight

import (
	"errors"
	"testing"
)

func TestScriptAt(t *testing.T) {
	sc := Script{
		{Action: Forward, Start: 0, End: 1},
		{Action: Left, Start: 0.5, End: 2},
		{Action: Pause, Start: 3, End: 4},
	}

	tests := []struct {
		t    float64
		want Input
	}{
		{0, Input{Forward: true}},
		{0.5, Input{Forward: true, Left: true}},
		{1, Input{Left: true}},
		{2, Input{}},
		{3.5, Input{Pause: true}},
		{4, Input{}},
		{-1, Input{}},
	}
	for _, tt := range tests {
		if got := sc.At(tt.t); got != tt.want {
			t.Errorf("At(%v) = %+v, want %+v", tt.t, got, tt.want)
		}
	}
}

func TestScriptValidate(t *testing.T) {
	if err := (Script{{Action: Back, Start: 0, End: 1}, {Action: Right, Start: 2, End: 3}}).Validate(); err != nil {
		t.Fatalf("valid script rejected: %v", err)
	}
	if err := (Script{}).Validate(); err != nil {
		t.Fatalf("empty script rejected: %v", err)
	}

	tests := []struct {
		name string
		w    Window
		want error
	}{
		{"unknown action", Window{Action: "jump", Start: 0, End: 1}, ErrUnknownAction},
		{"empty window", Window{Action: Left, Start: 1, End: 1}, ErrInvalidConfig},
		{"negative start", Window{Action: Left, Start: -1, End: 1}, ErrInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Script{tt.w}.Validate()
			if !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}
}
