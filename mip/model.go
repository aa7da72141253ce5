package mip

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/pkg/errors"
)

const (
	feasTol = 1e-7
	intTol  = 1e-6
)

type variable struct {
	name    string
	lb, ub  float64
	integer bool
}

type constr struct {
	name  string
	ind   []int
	val   []float64
	sense Sense
	rhs   float64
}

// Model is a pure Go MIP engine. A Model is not safe for concurrent use;
// every formulation gets its own.
type Model struct {
	name      string
	vars      []variable
	constrs   []constr
	obj       []float64
	logger    Logger
	nodeLimit int
	timeLimit time.Duration
	start     map[int]float64

	status Status
	x      []float64
	objVal float64
	nodes  int
}

// NewModel creates an empty minimization model.
func NewModel(name string, opts ...Option) (*Model, error) {
	m := &Model{
		name:   name,
		logger: noopLogger{},
	}
	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, fmt.Errorf("applying model option: %w", err)
		}
	}
	return m, nil
}

func (m *Model) Name() string    { return m.name }
func (m *Model) NumVars() int    { return len(m.vars) }
func (m *Model) NumConstrs() int { return len(m.constrs) }
func (m *Model) Status() Status  { return m.status }
func (m *Model) NodeCount() int  { return m.nodes }

func (m *Model) VarName(v Var) string {
	if int(v) < 0 || int(v) >= len(m.vars) {
		return ""
	}
	return m.vars[v].name
}

func (m *Model) AddVar(lb, ub float64, integer bool, name string) (Var, error) {
	if err := checkBounds(lb, ub, name); err != nil {
		return NoVar, err
	}
	if name == "" {
		name = fmt.Sprintf("V%d", len(m.vars))
	}
	m.vars = append(m.vars, variable{name: name, lb: lb, ub: ub, integer: integer})
	m.obj = append(m.obj, 0)
	return Var(len(m.vars) - 1), nil
}

// normalize merges duplicate variables and drops zero coefficients.
func (m *Model) normalize(ind []Var, val []float64) ([]int, []float64, error) {
	return normalizeTerms(ind, val, len(m.vars))
}

// normalizeTerms checks a linear expression over numVars variables, merges
// duplicate variables and drops zero coefficients. The result is sorted by
// variable.
func normalizeTerms(ind []Var, val []float64, numVars int) ([]int, []float64, error) {
	if len(ind) != len(val) {
		return nil, nil, fmt.Errorf("inconsistent number of variables and coefficients: %d != %d", len(ind), len(val))
	}
	acc := make(map[int]float64, len(ind))
	for i, v := range ind {
		if int(v) < 0 || int(v) >= numVars {
			return nil, nil, errors.Wrapf(ErrUnknownVar, "index %d", v)
		}
		if math.IsNaN(val[i]) || math.IsInf(val[i], 0) {
			return nil, nil, fmt.Errorf("coefficient of variable %d is not finite", v)
		}
		acc[int(v)] += val[i]
	}
	cols := make([]int, 0, len(acc))
	for j, a := range acc {
		if a != 0 {
			cols = append(cols, j)
		}
	}
	sort.Ints(cols)
	vals := make([]float64, len(cols))
	for k, j := range cols {
		vals[k] = acc[j]
	}
	return cols, vals, nil
}

// checkBounds rejects the bounds AddVar does not accept.
func checkBounds(lb, ub float64, name string) error {
	if math.IsInf(lb, 0) || math.IsNaN(lb) || math.IsNaN(ub) {
		return errors.Wrapf(ErrInvalidBounds, "variable %q: lower bound must be finite, got [%g, %g]", name, lb, ub)
	}
	if ub < lb {
		return errors.Wrapf(ErrInvalidBounds, "variable %q: upper bound %g below lower bound %g", name, ub, lb)
	}
	return nil
}

// checkRow rejects constraints with an unknown sense or a non finite
// right-hand side.
func checkRow(sense Sense, rhs float64, name string) error {
	switch sense {
	case LessEqual, Equal, GreaterEqual:
	default:
		return fmt.Errorf("constraint %q: unknown sense %v", name, sense)
	}
	if math.IsNaN(rhs) || math.IsInf(rhs, 0) {
		return fmt.Errorf("constraint %q: right-hand side is not finite", name)
	}
	return nil
}

func (m *Model) AddConstr(ind []Var, val []float64, sense Sense, rhs float64, name string) error {
	if err := checkRow(sense, rhs, name); err != nil {
		return err
	}
	cols, vals, err := m.normalize(ind, val)
	if err != nil {
		return errors.Wrapf(err, "constraint %q", name)
	}
	if name == "" {
		name = fmt.Sprintf("R%d", len(m.constrs))
	}
	m.constrs = append(m.constrs, constr{name: name, ind: cols, val: vals, sense: sense, rhs: rhs})
	return nil
}

func (m *Model) SetObjective(ind []Var, val []float64) error {
	cols, vals, err := m.normalize(ind, val)
	if err != nil {
		return errors.Wrap(err, "objective")
	}
	for j := range m.obj {
		m.obj[j] = 0
	}
	for k, j := range cols {
		m.obj[j] = vals[k]
	}
	return nil
}

func (m *Model) SetStart(ind []Var, val []float64) error {
	if len(ind) != len(val) {
		return fmt.Errorf("inconsistent number of variables and start values: %d != %d", len(ind), len(val))
	}
	start := make(map[int]float64, len(ind))
	for i, v := range ind {
		if int(v) < 0 || int(v) >= len(m.vars) {
			return errors.Wrapf(ErrUnknownVar, "start index %d", v)
		}
		start[int(v)] = val[i]
	}
	m.start = start
	return nil
}

// startSolution expands the recorded start to all variables. It returns nil
// if there is no start or it is not a feasible integer solution.
func (m *Model) startSolution() []float64 {
	if m.start == nil {
		return nil
	}
	x := make([]float64, len(m.vars))
	for j, v := range m.vars {
		x[j] = v.lb
		if s, ok := m.start[j]; ok {
			x[j] = s
		}
		if x[j] < v.lb-feasTol || x[j] > v.ub+feasTol {
			m.logger.Print(fmt.Sprintf("%s: start ignored, %s = %g is out of bounds", m.name, v.name, x[j]))
			return nil
		}
		if v.integer {
			if math.Abs(x[j]-math.Round(x[j])) > intTol {
				m.logger.Print(fmt.Sprintf("%s: start ignored, %s = %g is fractional", m.name, v.name, x[j]))
				return nil
			}
			x[j] = math.Round(x[j])
		}
	}
	for _, c := range m.constrs {
		act := 0.0
		for k, j := range c.ind {
			act += c.val[k] * x[j]
		}
		tol := feasTol * (1 + math.Abs(c.rhs))
		var ok bool
		switch c.sense {
		case LessEqual:
			ok = act <= c.rhs+tol
		case GreaterEqual:
			ok = act >= c.rhs-tol
		default:
			ok = math.Abs(act-c.rhs) <= tol
		}
		if !ok {
			m.logger.Print(fmt.Sprintf("%s: start ignored, row %s is violated", m.name, c.name))
			return nil
		}
	}
	return x
}

func (m *Model) objective(x []float64) float64 {
	obj := 0.0
	for j, c := range m.obj {
		obj += c * x[j]
	}
	return obj
}

func (m *Model) Value(v Var) float64 {
	if !m.status.HasSolution() || int(v) < 0 || int(v) >= len(m.x) {
		return math.NaN()
	}
	return m.x[v]
}

func (m *Model) ObjVal() float64 {
	if !m.status.HasSolution() {
		return math.NaN()
	}
	return m.objVal
}

// Solve runs branch-and-bound on the model. The model may be solved again
// after further changes; every call starts from scratch.
func (m *Model) Solve() (Status, error) {
	m.status, m.x, m.objVal, m.nodes = Unsolved, nil, 0, 0

	lb := make([]float64, len(m.vars))
	ub := make([]float64, len(m.vars))
	for j, v := range m.vars {
		lb[j], ub[j] = v.lb, v.ub
	}
	rows, ok := m.presolve(lb, ub)
	if !ok {
		m.logger.Print(fmt.Sprintf("%s: presolve detected infeasibility", m.name))
		m.status = Infeasible
		return m.status, nil
	}

	start := m.startSolution()
	if start != nil {
		m.logger.Print(fmt.Sprintf("%s: start accepted with objective %g", m.name, m.objective(start)))
	}
	status, x, err := m.branchAndBound(rows, lb, ub, start)
	m.status = status
	if err != nil {
		return status, errors.Wrapf(err, "solving %s", m.name)
	}
	if status.HasSolution() {
		m.x = x
		m.objVal = m.objective(x)
	}
	return status, nil
}

// presolve turns single-variable rows into bounds, rounds the bounds of
// integer variables and checks rows without variables. It returns the rows
// left for the LP and false if the bounds are contradictory.
func (m *Model) presolve(lb, ub []float64) ([]constr, bool) {
	rows := make([]constr, 0, len(m.constrs))
	for _, c := range m.constrs {
		switch len(c.ind) {
		case 0:
			if !constantHolds(c.sense, c.rhs) {
				return nil, false
			}
		case 1:
			j, a := c.ind[0], c.val[0]
			bound := c.rhs / a
			sense := c.sense
			if a < 0 {
				switch sense {
				case LessEqual:
					sense = GreaterEqual
				case GreaterEqual:
					sense = LessEqual
				}
			}
			if sense == LessEqual || sense == Equal {
				ub[j] = math.Min(ub[j], bound)
			}
			if sense == GreaterEqual || sense == Equal {
				lb[j] = math.Max(lb[j], bound)
			}
		default:
			rows = append(rows, c)
		}
	}
	for j, v := range m.vars {
		if v.integer {
			lb[j] = math.Ceil(lb[j] - intTol)
			if !math.IsInf(ub[j], 1) {
				ub[j] = math.Floor(ub[j] + intTol)
			}
		}
		if ub[j] < lb[j]-feasTol {
			return nil, false
		}
		if ub[j] < lb[j] {
			ub[j] = lb[j]
		}
	}
	return rows, true
}

func constantHolds(sense Sense, rhs float64) bool {
	switch sense {
	case LessEqual:
		return 0 <= rhs+feasTol
	case GreaterEqual:
		return 0 >= rhs-feasTol
	default:
		return math.Abs(rhs) <= feasTol
	}
}
