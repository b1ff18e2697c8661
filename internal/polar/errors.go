package polar

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedPolar matches every *ValidationError
	ErrMalformedPolar = errors.New("malformed polar")

	// ErrNotConverged matches every *ConvergenceError
	ErrNotConverged = errors.New("fit did not converge")
)

// ValidationError represents a polar table that cannot be fitted
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string {
	return "malformed polar: " + e.msg
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrMalformedPolar
}

// Stages reported by ConvergenceError
const (
	StageLift         = "lift"          // Lift curve parameters
	StageDrag         = "drag"          // Drag polar parameters
	StageJoint        = "joint"         // All parameters, combined error
	StageCriticalMach = "critical mach" // Newton solve for MCrit
)

// StatusNotConverged is the status of a critical Mach solve that stopped early.
// Optimizer stages report the optimize.Status name instead.
const StatusNotConverged = "NotConverged"

// ConvergenceError reports an optimizer or root-find that stopped before
// converging. The Result returned alongside it holds the best estimate found.
type ConvergenceError struct {
	Stage      string // One of the Stage constants
	Status     string // Termination status of the stage
	Iterations int
	Err        error
}

func (e *ConvergenceError) Error() string {
	msg := fmt.Sprintf("%s stage stopped with status %s after %d iterations", e.Stage, e.Status, e.Iterations)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConvergenceError) Is(target error) bool {
	return target == ErrNotConverged
}

func (e *ConvergenceError) Unwrap() error {
	return e.Err
}
