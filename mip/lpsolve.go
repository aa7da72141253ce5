//go:build lpsolve

package mip

import (
	"context"
	"math"
	"time"

	"github.com/costela/golpa"
	"github.com/pkg/errors"
)

// LPSolveModel runs the model on lp_solve through golpa. It needs cgo and
// liblpsolve55.
type LPSolveModel struct {
	name      string
	lp        *golpa.Model
	vars      []*golpa.Variable
	obj       []int
	timeLimit time.Duration
	// broken names a row without variables that cannot hold
	broken string

	res    *golpa.SolveResult
	status Status
}

func NewLPSolveModel(name string, logger Logger, timeLimit time.Duration) (*LPSolveModel, error) {
	if logger == nil {
		logger = noopLogger{}
	}
	lp, err := golpa.NewModel(name, golpa.Minimize, golpa.WithLogger(logger))
	if err != nil {
		return nil, errors.Wrap(err, "creating lp_solve model")
	}
	return &LPSolveModel{name: name, lp: lp, timeLimit: timeLimit}, nil
}

// NewLPSolveFactory returns a Factory creating LPSolveModels.
func NewLPSolveFactory(logger Logger, timeLimit time.Duration) Factory {
	return func(name string) (Engine, error) {
		return NewLPSolveModel(name, logger, timeLimit)
	}
}

func (m *LPSolveModel) AddVar(lb, ub float64, integer bool, name string) (Var, error) {
	if err := checkBounds(lb, ub, name); err != nil {
		return NoVar, err
	}
	typ := golpa.ContinuousVariable
	if integer {
		typ = golpa.IntegerVariable
	}
	v, err := m.lp.AddDefinedVariable(name, typ, 0, lb, ub)
	if err != nil {
		return NoVar, errors.Wrapf(err, "variable %q", name)
	}
	m.vars = append(m.vars, v)
	return Var(len(m.vars) - 1), nil
}

func (m *LPSolveModel) terms(ind []Var, val []float64) ([]*golpa.Variable, []float64, error) {
	cols, vals, err := normalizeTerms(ind, val, len(m.vars))
	if err != nil {
		return nil, nil, err
	}
	vars := make([]*golpa.Variable, len(cols))
	for k, j := range cols {
		vars[k] = m.vars[j]
	}
	return vars, vals, nil
}

func (m *LPSolveModel) AddConstr(ind []Var, val []float64, sense Sense, rhs float64, name string) error {
	if err := checkRow(sense, rhs, name); err != nil {
		return err
	}
	vars, vals, err := m.terms(ind, val)
	if err != nil {
		return errors.Wrapf(err, "constraint %q", name)
	}
	if len(vars) == 0 {
		if !constantHolds(sense, rhs) && m.broken == "" {
			m.broken = name
		}
		return nil
	}
	lower, upper := math.Inf(-1), math.Inf(1)
	switch sense {
	case LessEqual:
		upper = rhs
	case GreaterEqual:
		lower = rhs
	default:
		lower, upper = rhs, rhs
	}
	return errors.Wrapf(m.lp.AddConstraint(lower, upper, vars, vals), "constraint %q", name)
}

func (m *LPSolveModel) SetObjective(ind []Var, val []float64) error {
	cols, vals, err := normalizeTerms(ind, val, len(m.vars))
	if err != nil {
		return errors.Wrap(err, "objective")
	}
	for _, j := range m.obj {
		m.vars[j].SetObjectiveCoefficient(0)
	}
	for k, j := range cols {
		m.vars[j].SetObjectiveCoefficient(vals[k])
	}
	m.obj = cols
	return nil
}

func (m *LPSolveModel) Solve() (Status, error) {
	m.res, m.status = nil, Unsolved
	if m.broken != "" {
		m.status = Infeasible
		return m.status, nil
	}

	ctx := context.Background()
	if m.timeLimit > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeLimit)
		defer cancel()
	}
	res, err := m.lp.SolveWithContext(ctx)
	switch {
	case err == nil && res.Status() == golpa.SolutionOptimal:
		m.res, m.status = res, Optimal
	case err == nil:
		m.res, m.status = res, Feasible
	case errors.Is(err, golpa.ErrModelInfeasible):
		m.status = Infeasible
	case errors.Is(err, context.DeadlineExceeded):
		m.status = Error
		return m.status, errors.Wrapf(ErrTimeLimit, "solving %s", m.name)
	case errors.Is(err, golpa.ErrModelUnbounded):
		m.status = Error
		return m.status, errors.Wrapf(ErrUnbounded, "solving %s", m.name)
	default:
		m.status = Error
		return m.status, errors.Wrapf(err, "solving %s with lp_solve", m.name)
	}
	return m.status, nil
}

func (m *LPSolveModel) Value(v Var) float64 {
	if m.res == nil || int(v) < 0 || int(v) >= len(m.vars) {
		return math.NaN()
	}
	return m.res.Value(m.vars[v])
}

func (m *LPSolveModel) ObjVal() float64 {
	if m.res == nil {
		return math.NaN()
	}
	return m.res.ObjectiveValue()
}
