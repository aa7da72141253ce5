// Package mip is the solver boundary used by the netdesign formulations.
//
// The Engine interface mirrors the handful of calls a formulation needs from
// a MIP solver: create bounded variables, add linear rows, set a minimization
// objective, solve and read values back. Model is a pure Go implementation of
// it (best-bound branch-and-bound over a dense two-phase simplex) that needs
// no native solver library. Built with -tags lpsolve, LPSolveModel runs the
// same models on lp_solve.
package mip

import (
	"errors"
	"fmt"
	"math"
)

// Var is a handle to a variable of one engine instance.
type Var int

// NoVar marks a variable slot that was never created (e.g. the diagonal of
// an edge matrix).
const NoVar Var = -1

// Sense of a linear constraint, using the same characters as Gurobi.
type Sense int8

const (
	LessEqual    Sense = '<'
	Equal        Sense = '='
	GreaterEqual Sense = '>'
)

func (s Sense) String() string {
	switch s {
	case LessEqual:
		return "<="
	case Equal:
		return "="
	case GreaterEqual:
		return ">="
	default:
		return fmt.Sprintf("Sense(%d)", int8(s))
	}
}

// Status of a solve call.
type Status int

const (
	Unsolved Status = iota
	Optimal
	Feasible
	Infeasible
	Error
)

func (s Status) String() string {
	switch s {
	case Unsolved:
		return "UNSOLVED"
	case Optimal:
		return "OPTIMAL"
	case Feasible:
		return "FEASIBLE"
	case Infeasible:
		return "INFEASIBLE"
	case Error:
		return "ERROR"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// HasSolution reports whether variable values may be read after a solve that
// returned s.
func (s Status) HasSolution() bool {
	return s == Optimal || s == Feasible
}

// Inf is the unbounded upper bound.
var Inf = math.Inf(1)

var (
	ErrUnbounded     = errors.New("relaxation is unbounded")
	ErrIterLimit     = errors.New("simplex iteration limit reached")
	ErrNodeLimit     = errors.New("node limit reached before an integer solution was found")
	ErrTimeLimit     = errors.New("time limit reached before an integer solution was found")
	ErrNoLPSolve     = errors.New("lp_solve support not compiled in, rebuild with -tags lpsolve")
	ErrUnknownVar    = errors.New("unknown variable")
	ErrInvalidBounds = errors.New("invalid variable bounds")
)

// Engine is the boundary between a formulation and the solver.
type Engine interface {
	// AddVar creates a variable with the given bounds. lb must be finite.
	AddVar(lb, ub float64, integer bool, name string) (Var, error)
	// AddConstr adds the row sum(val[i]*ind[i]) sense rhs.
	AddConstr(ind []Var, val []float64, sense Sense, rhs float64, name string) error
	// SetObjective sets the minimization objective sum(val[i]*ind[i]).
	SetObjective(ind []Var, val []float64) error
	Solve() (Status, error)
	// Value returns the value of v in the last solution. It is only
	// meaningful after Solve returned Optimal or Feasible.
	Value(v Var) float64
	ObjVal() float64
}

// Starter is implemented by engines that take a known assignment as their
// first incumbent, like the Start attribute of Gurobi. Variables left out
// start at their lower bound. A start that violates a bound or a row is
// ignored.
type Starter interface {
	SetStart(ind []Var, val []float64) error
}

// Factory creates a fresh engine for one formulation.
type Factory func(name string) (Engine, error)
