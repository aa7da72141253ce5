package netdesign

import (
	"errors"
	"fmt"

	"git.solver4all.com/azaryc2s/netdesign/mip"
)

var (
	// ErrInfeasible is returned when the engine proves the model has no
	// feasible solution. It is a property of the input, not a fault.
	ErrInfeasible = errors.New("infeasible input")
	// ErrExtraction marks a solution vector that violates a structural
	// property the extractor checks.
	ErrExtraction = errors.New("inconsistent solution")
)

// InputShapeError reports a distance or probability matrix that cannot be
// used to build any model.
type InputShapeError struct {
	Sheet  string
	Rows   int
	Cols   int
	Reason string
}

func (e *InputShapeError) Error() string {
	return fmt.Sprintf("sheet %q (%dx%d): %s", e.Sheet, e.Rows, e.Cols, e.Reason)
}

// SolverError wraps an engine failure for one problem.
type SolverError struct {
	Problem Problem
	Status  mip.Status
	Err     error
}

func (e *SolverError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: solver stopped with status %s", e.Problem, e.Status)
	}
	return fmt.Sprintf("%s: solver stopped with status %s: %v", e.Problem, e.Status, e.Err)
}

func (e *SolverError) Unwrap() error {
	return e.Err
}
