package netdesign

import (
	"fmt"
	"io"
	"math"

	"github.com/pkg/errors"

	"git.solver4all.com/azaryc2s/netdesign/mip"
)

type Edge struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// Route is the path of one agent. Stops starts at the root, the return leg is
// implicit.
type Route struct {
	Agent    int     `json:"agent"`
	Stops    []int   `json:"stops"`
	Distance float64 `json:"distance"`
}

// zeroLeg is the length below which a leg does not drain the budget.
const zeroLeg = 1e-6

// FlowRoutingModel minimizes the number of agents needed to visit every
// location when no agent may travel further than cfg.MaxDistance(). The
// remaining budget is carried along the selected edges, which rules out
// cycles that miss the root unless all their legs have zero length. Those
// legs get MTZ ordering rows.
type FlowRoutingModel struct {
	inst *Instance
	cfg  Config

	edge       [][]mip.Var
	remaining  [][]mip.Var
	order      []mip.Var
	agentCount mip.Var
}

func NewFlowRoutingModel(inst *Instance, cfg Config) *FlowRoutingModel {
	return &FlowRoutingModel{inst: inst, cfg: cfg, agentCount: mip.NoVar}
}

func (m *FlowRoutingModel) Problem() Problem { return MultiAgentRouting }

func (m *FlowRoutingModel) Build(eng mip.Engine) error {
	d := m.inst.Distances
	n := len(d)
	maxDist := m.cfg.MaxDistance()
	var err error

	if m.edge, err = addVarMatrix(eng, n, "E", false); err != nil {
		return err
	}
	m.remaining = make([][]mip.Var, n)
	for i := 0; i < n; i++ {
		m.remaining[i] = make([]mip.Var, n)
		for j := 0; j < n; j++ {
			if i == j {
				m.remaining[i][j] = mip.NoVar
				continue
			}
			if m.remaining[i][j], err = eng.AddVar(0, maxDist, false, fmt.Sprintf("R_%d_%d", i, j)); err != nil {
				return err
			}
		}
	}
	if m.agentCount, err = eng.AddVar(0, float64(n-1), true, "K"); err != nil {
		return err
	}

	//Degrees: the root is left and entered once per agent, every other
	//location exactly once
	{
		Log(3, "Creating degree constraints")
		for i := 0; i < n; i++ {
			var out, in []mip.Var
			var val []float64
			for j := 0; j < n; j++ {
				if i == j {
					continue
				}
				out = append(out, m.edge[i][j])
				in = append(in, m.edge[j][i])
				val = append(val, 1)
			}
			rhs := 1.0
			if i == 0 {
				out = append(out, m.agentCount)
				in = append(in, m.agentCount)
				val = append(val, -1)
				rhs = 0
			}
			if err := eng.AddConstr(out, val, mip.Equal, rhs, fmt.Sprintf("out_%d", i)); err != nil {
				return err
			}
			if err := eng.AddConstr(in, val, mip.Equal, rhs, fmt.Sprintf("in_%d", i)); err != nil {
				return err
			}
		}
	}

	//Budget only flows over selected edges; a root leg starts with the full
	//budget minus its own length
	{
		Log(3, "Creating budget constraints, max distance = %g", maxDist)
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				if i == j {
					continue
				}
				ind := []mip.Var{m.remaining[i][j], m.edge[i][j]}
				if i == 0 {
					err = eng.AddConstr(ind, []float64{1, -(maxDist - d[0][j])}, mip.Equal, 0, fmt.Sprintf("start_%d", j))
				} else {
					err = eng.AddConstr(ind, []float64{1, -maxDist}, mip.LessEqual, 0, fmt.Sprintf("budget_%d_%d", i, j))
				}
				if err != nil {
					return err
				}
			}
		}
	}

	//Leaving a location, the remaining budget drops by the length of the
	//selected out-edge
	{
		Log(3, "Creating budget conservation constraints")
		for i := 1; i < n; i++ {
			var ind []mip.Var
			var val []float64
			for j := 0; j < n; j++ {
				if i == j {
					continue
				}
				ind = append(ind, m.remaining[j][i], m.remaining[i][j], m.edge[i][j])
				val = append(val, 1, -1, -d[i][j])
			}
			if err := eng.AddConstr(ind, val, mip.Equal, 0, fmt.Sprintf("flow_%d", i)); err != nil {
				return err
			}
		}
	}

	//Cycles of co-located locations keep their budget, so order them
	if pairs := m.zeroLegs(); len(pairs) > 0 {
		Log(3, "Creating MTZ constraints for %d zero length legs", len(pairs))
		m.order = make([]mip.Var, n)
		m.order[0] = mip.NoVar
		for i := 1; i < n; i++ {
			if m.order[i], err = eng.AddVar(1, float64(n-1), false, fmt.Sprintf("U_%d", i)); err != nil {
				return err
			}
		}
		for _, e := range pairs {
			ind := []mip.Var{m.order[e.From], m.order[e.To], m.edge[e.From][e.To]}
			val := []float64{1, -1, float64(n - 1)}
			if err := eng.AddConstr(ind, val, mip.LessEqual, float64(n-2), fmt.Sprintf("mtz_%d_%d", e.From, e.To)); err != nil {
				return err
			}
		}
	}

	if err := eng.SetObjective([]mip.Var{m.agentCount}, []float64{1}); err != nil {
		return err
	}
	return m.seed(eng)
}

// seed starts the engine from greedily built routes. The remaining budget
// on an edge is what is left after driving it.
func (m *FlowRoutingModel) seed(eng mip.Engine) error {
	d := m.inst.Distances
	maxDist := m.cfg.MaxDistance()
	routes, ok := greedyRoutes(d, maxDist)
	if !ok {
		Log(3, "Some location is out of reach, no start routes")
		return nil
	}
	Log(3, "Starting from %d greedy routes", len(routes))

	ind := []mip.Var{m.agentCount}
	val := []float64{float64(len(routes))}
	pos := 0
	for _, route := range routes {
		left := maxDist
		for k, i := range route {
			j := route[(k+1)%len(route)]
			left -= d[i][j]
			ind = append(ind, m.edge[i][j], m.remaining[i][j])
			val = append(val, 1, left)
			if k > 0 && m.order != nil {
				pos++
				ind = append(ind, m.order[i])
				val = append(val, float64(pos))
			}
		}
	}
	return setStart(eng, ind, val)
}

// zeroLegs lists the legs between non-root locations that have no length.
func (m *FlowRoutingModel) zeroLegs() []Edge {
	d := m.inst.Distances
	var legs []Edge
	for i := 1; i < len(d); i++ {
		for j := 1; j < len(d); j++ {
			if i != j && d[i][j] < zeroLeg {
				legs = append(legs, Edge{From: i, To: j})
			}
		}
	}
	return legs
}

func (m *FlowRoutingModel) Extract(eng mip.Engine) (Result, error) {
	edges := ExtractEdgeMatrix(eng, m.edge)
	agents := int(math.Round(eng.Value(m.agentCount)))
	routes, err := decomposeRoutes(edges)
	if err != nil {
		return nil, err
	}
	if len(routes) != agents {
		return nil, errors.Wrapf(ErrExtraction, "%d agents but %d departures from the root", agents, len(routes))
	}
	res := &RoutingResult{Agents: agents, Edges: SelectedEdges(edges), MaxDistance: m.cfg.MaxDistance()}
	for k, stops := range routes {
		res.Routes = append(res.Routes, Route{Agent: k, Stops: stops, Distance: RouteDistance(stops, m.inst.Distances)})
	}
	if ok, comment := CheckRouteValidity(routes, m.inst.Distances, res.MaxDistance); !ok {
		return nil, errors.Wrap(ErrExtraction, comment)
	}
	return res, nil
}

// ThreeIndexRoutingModel is the agent indexed routing formulation. It keeps
// one copy of the edge variables per agent of a pool of n-1, so it only
// suits small instances.
type ThreeIndexRoutingModel struct {
	inst *Instance
	cfg  Config

	use    [][][]mip.Var
	active []mip.Var
	order  [][]mip.Var
}

func NewThreeIndexRoutingModel(inst *Instance, cfg Config) *ThreeIndexRoutingModel {
	return &ThreeIndexRoutingModel{inst: inst, cfg: cfg}
}

func (m *ThreeIndexRoutingModel) Problem() Problem { return MultiAgentRouting }

func (m *ThreeIndexRoutingModel) pool() int {
	n := len(m.inst.Distances)
	if n-1 > 1 {
		return n - 1
	}
	return 1
}

func (m *ThreeIndexRoutingModel) Build(eng mip.Engine) error {
	d := m.inst.Distances
	n := len(d)
	agents := m.pool()
	maxDist := m.cfg.MaxDistance()
	var err error

	m.use = make([][][]mip.Var, agents)
	m.active = make([]mip.Var, agents)
	m.order = make([][]mip.Var, agents)
	for k := 0; k < agents; k++ {
		if m.use[k], err = addVarMatrix(eng, n, fmt.Sprintf("X%d", k), false); err != nil {
			return err
		}
		if m.active[k], err = eng.AddVar(0, 1, true, fmt.Sprintf("Act_%d", k)); err != nil {
			return err
		}
		m.order[k] = make([]mip.Var, n)
		m.order[k][0] = mip.NoVar
		for i := 1; i < n; i++ {
			if m.order[k][i], err = eng.AddVar(1, math.Max(float64(n-1), 1), false, fmt.Sprintf("U%d_%d", k, i)); err != nil {
				return err
			}
		}
	}

	for k := 0; k < agents; k++ {
		Log(3, "Creating constraints of agent %d", k)
		var budgetInd []mip.Var
		var budgetVal []float64
		var depart, ret []mip.Var
		var ones []float64
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				if i == j {
					continue
				}
				err := eng.AddConstr([]mip.Var{m.use[k][i][j], m.active[k]}, []float64{1, -1}, mip.LessEqual, 0, fmt.Sprintf("act%d_%d_%d", k, i, j))
				if err != nil {
					return err
				}
				budgetInd = append(budgetInd, m.use[k][i][j])
				budgetVal = append(budgetVal, d[i][j])
			}
			if i > 0 {
				depart = append(depart, m.use[k][0][i])
				ret = append(ret, m.use[k][i][0])
				ones = append(ones, 1)
			}
		}
		if err := eng.AddConstr(budgetInd, budgetVal, mip.LessEqual, maxDist, fmt.Sprintf("budget_%d", k)); err != nil {
			return err
		}
		if err := eng.AddConstr(append(depart, m.active[k]), append(ones, -1), mip.Equal, 0, fmt.Sprintf("depart_%d", k)); err != nil {
			return err
		}
		if err := eng.AddConstr(append(ret, m.active[k]), append(ones, -1), mip.Equal, 0, fmt.Sprintf("return_%d", k)); err != nil {
			return err
		}

		for i := 1; i < n; i++ {
			var ind []mip.Var
			var val []float64
			for j := 0; j < n; j++ {
				if i == j {
					continue
				}
				ind = append(ind, m.use[k][j][i], m.use[k][i][j])
				val = append(val, 1, -1)
			}
			if err := eng.AddConstr(ind, val, mip.Equal, 0, fmt.Sprintf("flow%d_%d", k, i)); err != nil {
				return err
			}
			for j := 1; j < n; j++ {
				if i == j {
					continue
				}
				ind := []mip.Var{m.order[k][i], m.order[k][j], m.use[k][i][j]}
				val := []float64{1, -1, float64(n)}
				if err := eng.AddConstr(ind, val, mip.LessEqual, float64(n-1), fmt.Sprintf("mtz%d_%d_%d", k, i, j)); err != nil {
					return err
				}
			}
		}

		if k+1 < agents {
			err := eng.AddConstr([]mip.Var{m.active[k], m.active[k+1]}, []float64{1, -1}, mip.GreaterEqual, 0, fmt.Sprintf("sym_%d", k))
			if err != nil {
				return err
			}
		}
	}

	Log(3, "Creating coverage constraints")
	for j := 1; j < n; j++ {
		var ind []mip.Var
		var val []float64
		for k := 0; k < agents; k++ {
			for i := 0; i < n; i++ {
				if i != j {
					ind = append(ind, m.use[k][i][j])
					val = append(val, 1)
				}
			}
		}
		if err := eng.AddConstr(ind, val, mip.GreaterEqual, 1, fmt.Sprintf("cover_%d", j)); err != nil {
			return err
		}
	}

	ones := make([]float64, agents)
	for k := range ones {
		ones[k] = 1
	}
	return eng.SetObjective(m.active, ones)
}

func (m *ThreeIndexRoutingModel) Extract(eng mip.Engine) (Result, error) {
	d := m.inst.Distances
	n := len(d)
	res := &RoutingResult{MaxDistance: m.cfg.MaxDistance()}
	visited := make([]bool, n)
	visited[0] = true
	for k := range m.active {
		if !selected(eng.Value(m.active[k])) {
			continue
		}
		edges := ExtractEdgeMatrix(eng, m.use[k])
		succ, err := successors(edges, false)
		if err != nil {
			return nil, err
		}
		stops := []int{0}
		for cur := 0; ; {
			next, ok := succ[cur]
			if !ok {
				return nil, errors.Wrapf(ErrExtraction, "route of agent %d stops at location %d", k, cur)
			}
			if next == 0 {
				break
			}
			if len(stops) >= n {
				return nil, errors.Wrapf(ErrExtraction, "route of agent %d does not return to the root", k)
			}
			stops = append(stops, next)
			visited[next] = true
			cur = next
		}
		route := Route{Agent: k, Stops: stops, Distance: RouteDistance(stops, d)}
		if route.Distance > res.MaxDistance+1e-6 {
			return nil, errors.Wrapf(ErrExtraction, "route of agent %d has length %g, budget is %g", k, route.Distance, res.MaxDistance)
		}
		res.Agents++
		res.Routes = append(res.Routes, route)
		res.Edges = append(res.Edges, SelectedEdges(edges)...)
	}
	for j, v := range visited {
		if !v {
			return nil, errors.Wrapf(ErrExtraction, "location %d is not visited", j)
		}
	}
	return res, nil
}

type RoutingResult struct {
	Agents      int
	Edges       []Edge
	Routes      []Route
	MaxDistance float64
}

func (r *RoutingResult) Problem() Problem   { return MultiAgentRouting }
func (r *RoutingResult) Objective() float64 { return float64(r.Agents) }

func (r *RoutingResult) Describe(w io.Writer) {
	fmt.Fprintf(w, "Agents needed: %d (budget %g per agent)\n", r.Agents, r.MaxDistance)
	fmt.Fprint(w, "Selected edges:")
	for _, e := range r.Edges {
		fmt.Fprintf(w, " %d->%d", e.From, e.To)
	}
	fmt.Fprintln(w)
	for _, route := range r.Routes {
		fmt.Fprintf(w, "Agent %d: %v -> 0, distance %g\n", route.Agent, route.Stops, route.Distance)
	}
}

func (r *RoutingResult) Fill(sol *Solution) {
	for _, route := range r.Routes {
		sol.Routes = append(sol.Routes, route.Stops)
		sol.RouteCosts = append(sol.RouteCosts, route.Distance)
	}
}
