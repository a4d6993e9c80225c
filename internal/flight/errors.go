package flight

import "errors"

var (
	// ErrInvalidConfig indicates a non-positive tick, frame time or duration.
	ErrInvalidConfig = errors.New("flight: invalid config")

	// ErrUnknownAction indicates a script window naming an action that is
	// not one of forward, back, left, right or pause.
	ErrUnknownAction = errors.New("flight: unknown action")
)
