package dynamo

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidState indicates a state vector holding NaN or Inf.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrParameterBounds indicates a parameter value outside its valid range.
	ErrParameterBounds = errors.New("dynamo: parameter out of valid bounds")

	// ErrUnknownParam indicates a parameter name the mechanism does not have.
	ErrUnknownParam = errors.New("dynamo: unknown parameter")

	// ErrDimensionMismatch indicates a state of the wrong length for a system.
	ErrDimensionMismatch = errors.New("dynamo: dimension mismatch between state and system")
)

// StepError wraps a failure with the integration step that produced it.
type StepError struct {
	Step    int
	Time    float64
	State   State
	Wrapped error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}

// Check returns a *StepError wrapping ErrInvalidState if x is not finite,
// and ErrDimensionMismatch if it does not fit sys.
func Check(sys System, x State, step int, t float64) error {
	if len(x) != sys.StateDim() {
		return &StepError{Step: step, Time: t, State: x.Clone(), Wrapped: ErrDimensionMismatch}
	}
	if !x.IsValid() {
		return &StepError{Step: step, Time: t, State: x.Clone(), Wrapped: ErrInvalidState}
	}
	return nil
}
