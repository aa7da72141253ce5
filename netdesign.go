// Package netdesign formulates four network design problems over a set of
// locations as mixed integer programs: capacitated facility location, the
// same with a risk cap on assignments, a constrained tour and multi-agent
// routing under a distance budget. The models are solved through the
// mip.Engine boundary and their solutions read back into plain results.
package netdesign

import (
	"fmt"
	"io"

	"github.com/pkg/errors"

	"git.solver4all.com/azaryc2s/netdesign/mip"
)

// Formulation builds one problem into an engine and reads its solution back.
// A Formulation is used once: Build on a fresh engine, solve, Extract.
type Formulation interface {
	Problem() Problem
	Build(eng mip.Engine) error
	Extract(eng mip.Engine) (Result, error)
}

// Result is the extracted solution of one problem.
type Result interface {
	Problem() Problem
	Objective() float64
	// Describe writes the human readable report body.
	Describe(w io.Writer)
	// Fill copies the problem specific payload into sol.
	Fill(sol *Solution)
}

// NewFormulation returns the formulation of p for the given instance.
func NewFormulation(p Problem, inst *Instance, cfg Config) (Formulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	switch p {
	case FacilityLocation:
		return NewFacilityLocationModel(inst, cfg, false), nil
	case RiskFacilityLocation:
		return NewFacilityLocationModel(inst, cfg, true), nil
	case ConstrainedTour:
		return NewConstrainedTourModel(inst, cfg), nil
	case MultiAgentRouting:
		if cfg.Routing == ROUTING_THREE_IDX {
			return NewThreeIndexRoutingModel(inst, cfg), nil
		}
		return NewFlowRoutingModel(inst, cfg), nil
	default:
		return nil, fmt.Errorf("unknown problem index %d, must be between 1 and %d", int(p), len(Problems))
	}
}

// Solve builds f into an engine created by factory, solves it and extracts
// the result. afterBuild hooks run between building and solving. A proven
// infeasible model yields ErrInfeasible; any other failure of the engine is
// a *SolverError.
func Solve(f Formulation, factory mip.Factory, afterBuild ...func(mip.Engine) error) (Result, mip.Status, error) {
	p := f.Problem()
	eng, err := factory(p.Slug())
	if err != nil {
		return nil, mip.Error, &SolverError{Problem: p, Status: mip.Error, Err: err}
	}
	if err := f.Build(eng); err != nil {
		return nil, mip.Unsolved, errors.Wrapf(err, "building %s", p)
	}
	for _, hook := range afterBuild {
		if err := hook(eng); err != nil {
			return nil, mip.Unsolved, err
		}
	}

	status, err := eng.Solve()
	if err != nil {
		return nil, status, &SolverError{Problem: p, Status: status, Err: err}
	}
	switch status {
	case mip.Optimal, mip.Feasible:
	case mip.Infeasible:
		return nil, status, ErrInfeasible
	default:
		return nil, status, &SolverError{Problem: p, Status: status}
	}

	res, err := f.Extract(eng)
	if err != nil {
		return nil, status, errors.Wrapf(err, "extracting %s", p)
	}
	return res, status, nil
}

// addVarMatrix creates an n x n matrix of binary variables named
// prefix_i_j. The diagonal holds mip.NoVar unless withDiagonal is set.
func addVarMatrix(eng mip.Engine, n int, prefix string, withDiagonal bool) ([][]mip.Var, error) {
	vars := make([][]mip.Var, n)
	for i := 0; i < n; i++ {
		vars[i] = make([]mip.Var, n)
		for j := 0; j < n; j++ {
			if i == j && !withDiagonal {
				vars[i][j] = mip.NoVar
				continue
			}
			v, err := eng.AddVar(0, 1, true, fmt.Sprintf("%s_%d_%d", prefix, i, j))
			if err != nil {
				return nil, err
			}
			vars[i][j] = v
		}
	}
	return vars, nil
}
