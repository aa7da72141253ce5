package mip

import (
	"container/heap"
	"fmt"
	"math"
	"time"
)

type node struct {
	lb, ub []float64
	// bound is the relaxation value of the parent.
	bound float64
}

// relax solves the LP relaxation of the model under the node bounds. Fixed
// variables are substituted out and the others are shifted to y = x - lb.
func (m *Model) relax(rows []constr, lb, ub []float64) lpResult {
	n := len(m.vars)
	col := make([]int, n)
	free := 0
	for j := range col {
		col[j] = -1
		if ub[j]-lb[j] > feasTol {
			col[j] = free
			free++
		}
	}

	c := make([]float64, free)
	width := make([]float64, free)
	offset := 0.0
	for j, k := range col {
		offset += m.obj[j] * lb[j]
		if k >= 0 {
			c[k] = m.obj[j]
			width[k] = ub[j] - lb[j]
		}
	}

	lpRows := make([]lpRow, 0, len(rows))
	for _, r := range rows {
		lr := lpRow{sense: r.sense, rhs: r.rhs}
		for k, j := range r.ind {
			lr.rhs -= r.val[k] * lb[j]
			if col[j] >= 0 {
				lr.cols = append(lr.cols, col[j])
				lr.vals = append(lr.vals, r.val[k])
			}
		}
		if len(lr.cols) == 0 {
			if !constantHolds(r.sense, lr.rhs) {
				return lpResult{status: lpInfeasible}
			}
			continue
		}
		lpRows = append(lpRows, lr)
	}

	res := solveLP(c, lpRows, width)
	if res.status != lpOptimal {
		return res
	}
	x := make([]float64, n)
	for j, k := range col {
		x[j] = lb[j]
		if k >= 0 {
			x[j] += res.x[k]
		}
	}
	return lpResult{status: lpOptimal, x: x, obj: res.obj + offset}
}

// nodeQueue holds the open nodes, lowest bound first.
type nodeQueue []*node

func (q nodeQueue) Len() int            { return len(q) }
func (q nodeQueue) Less(i, j int) bool  { return q[i].bound < q[j].bound }
func (q nodeQueue) Swap(i, j int)       { q[i], q[j] = q[j], q[i] }
func (q *nodeQueue) Push(x interface{}) { *q = append(*q, x.(*node)) }

func (q *nodeQueue) Pop() interface{} {
	old := *q
	nd := old[len(old)-1]
	*q = old[:len(old)-1]
	return nd
}

// branchAndBound dives into the child on the side the fractional value
// rounds to and parks its sibling. When a dive ends, the parked node with
// the lowest bound is resumed. start, if not nil, is the first incumbent.
func (m *Model) branchAndBound(rows []constr, lb, ub, start []float64) (Status, []float64, error) {
	intObj := m.integralObjective()
	incumbent := start
	incObj := math.Inf(1)
	if start != nil {
		incObj = m.objective(start)
	}
	prune := func(bound float64) bool {
		if incumbent == nil {
			return false
		}
		if intObj {
			bound = math.Ceil(bound - intTol)
		}
		return bound >= incObj-intTol*math.Max(1, math.Abs(incObj))
	}

	began := time.Now()
	var limit error
	open := &nodeQueue{}
	next := &node{lb: lb, ub: ub, bound: math.Inf(-1)}
	for next != nil || open.Len() > 0 {
		nd := next
		next = nil
		if nd == nil {
			nd = heap.Pop(open).(*node)
		}
		if prune(nd.bound) {
			continue
		}
		switch {
		case m.nodeLimit > 0 && m.nodes >= m.nodeLimit:
			limit = ErrNodeLimit
		case m.timeLimit > 0 && time.Since(began) > m.timeLimit:
			limit = ErrTimeLimit
		}
		if limit != nil {
			heap.Push(open, nd)
			break
		}
		m.nodes++
		if m.nodes%1000 == 0 {
			m.logger.Print(fmt.Sprintf("%s: %d nodes, %d open, incumbent %.6g", m.name, m.nodes, open.Len(), incObj))
		}

		res := m.relax(rows, nd.lb, nd.ub)
		switch res.status {
		case lpInfeasible:
			continue
		case lpUnbounded:
			return Error, nil, ErrUnbounded
		case lpIterLimit:
			return Error, nil, ErrIterLimit
		}
		if prune(res.obj) {
			continue
		}

		j := m.branchVar(res.x)
		if j < 0 {
			incumbent, incObj = res.x, res.obj
			m.logger.Print(fmt.Sprintf("%s: new incumbent %.6g at node %d", m.name, incObj, m.nodes))
			continue
		}

		v := res.x[j]
		down := &node{lb: nd.lb, ub: clone(nd.ub), bound: res.obj}
		down.ub[j] = math.Floor(v)
		up := &node{lb: clone(nd.lb), ub: nd.ub, bound: res.obj}
		up.lb[j] = math.Ceil(v)
		if v-math.Floor(v) > 0.5 {
			next = up
			heap.Push(open, down)
		} else {
			next = down
			heap.Push(open, up)
		}
	}

	m.logger.Print(fmt.Sprintf("%s: explored %d nodes", m.name, m.nodes))
	if limit != nil {
		m.logger.Print(fmt.Sprintf("%s: %v, best open bound %.6g", m.name, limit, (*open)[0].bound))
	}
	switch {
	case incumbent == nil && limit != nil:
		return Error, nil, limit
	case incumbent == nil:
		return Infeasible, nil, nil
	case limit != nil:
		return Feasible, incumbent, nil
	default:
		return Optimal, incumbent, nil
	}
}

// branchVar returns the most fractional integer variable, or -1 if x is
// integral.
func (m *Model) branchVar(x []float64) int {
	best, bestDist := -1, intTol
	for j, v := range m.vars {
		if !v.integer {
			continue
		}
		frac := x[j] - math.Floor(x[j])
		if dist := math.Min(frac, 1-frac); dist > bestDist {
			best, bestDist = j, dist
		}
	}
	return best
}

// integralObjective reports whether every feasible objective value is an
// integer, which allows pruning nodes that cannot improve by at least one.
func (m *Model) integralObjective() bool {
	for j, c := range m.obj {
		if c == 0 {
			continue
		}
		if !m.vars[j].integer || math.Abs(c-math.Round(c)) > 1e-9 {
			return false
		}
	}
	return true
}

func clone(s []float64) []float64 {
	return append([]float64(nil), s...)
}
