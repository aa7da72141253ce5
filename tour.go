package netdesign

import (
	"fmt"
	"io"

	"github.com/pkg/errors"

	"git.solver4all.com/azaryc2s/netdesign/mip"
)

// ConstrainedTourModel finds the shortest tour through all locations that
// starts and ends at the root and never uses an edge whose blockage
// probability exceeds cfg.RiskThreshold. Sub-tours are excluded with MTZ
// ordering variables.
type ConstrainedTourModel struct {
	inst *Instance
	cfg  Config

	edge  [][]mip.Var
	order []mip.Var
}

func NewConstrainedTourModel(inst *Instance, cfg Config) *ConstrainedTourModel {
	return &ConstrainedTourModel{inst: inst, cfg: cfg}
}

func (m *ConstrainedTourModel) Problem() Problem { return ConstrainedTour }

func (m *ConstrainedTourModel) Build(eng mip.Engine) error {
	d := m.inst.Distances
	p := m.inst.Probabilities
	n := len(d)
	if n <= 1 {
		Log(3, "Tour over %d locations is trivial", n)
		return nil
	}
	var err error
	if m.edge, err = addVarMatrix(eng, n, "E", false); err != nil {
		return err
	}
	m.order = make([]mip.Var, n)
	m.order[0] = mip.NoVar
	for i := 1; i < n; i++ {
		if m.order[i], err = eng.AddVar(1, float64(n-1), true, fmt.Sprintf("U_%d", i)); err != nil {
			return err
		}
	}

	//Every location is left and entered exactly once
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
			if err := eng.AddConstr(out, val, mip.Equal, 1, fmt.Sprintf("out_%d", i)); err != nil {
				return err
			}
			if err := eng.AddConstr(in, val, mip.Equal, 1, fmt.Sprintf("in_%d", i)); err != nil {
				return err
			}
		}
	}

	//MTZ, vacuous with a single non-root location
	{
		Log(3, "Creating MTZ subtour elimination constraints")
		for i := 1; i < n; i++ {
			for j := 1; j < n; j++ {
				if i == j {
					continue
				}
				ind := []mip.Var{m.order[i], m.order[j], m.edge[i][j]}
				val := []float64{1, -1, float64(n)}
				if err := eng.AddConstr(ind, val, mip.LessEqual, float64(n-1), fmt.Sprintf("mtz_%d_%d", i, j)); err != nil {
					return err
				}
			}
		}
	}

	//A tour through three or more locations never uses both directions of
	//an edge
	if n >= 3 {
		Log(3, "Creating two-cycle cuts")
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				err := eng.AddConstr([]mip.Var{m.edge[i][j], m.edge[j][i]}, []float64{1, 1}, mip.LessEqual, 1, fmt.Sprintf("cycle2_%d_%d", i, j))
				if err != nil {
					return err
				}
			}
		}
	}

	{
		Log(3, "Creating risk constraints, threshold = %.2f", m.cfg.RiskThreshold)
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				if i == j || p[i][j] == 0 {
					continue
				}
				err := eng.AddConstr([]mip.Var{m.edge[i][j]}, []float64{p[i][j]}, mip.LessEqual, m.cfg.RiskThreshold, fmt.Sprintf("risk_%d_%d", i, j))
				if err != nil {
					return err
				}
			}
		}
	}

	var ind []mip.Var
	var val []float64
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i != j {
				ind = append(ind, m.edge[i][j])
				val = append(val, d[i][j])
			}
		}
	}
	if err := eng.SetObjective(ind, val); err != nil {
		return err
	}
	return m.seed(eng)
}

// allowed reports whether the risk rows permit the edge i -> j.
func (m *ConstrainedTourModel) allowed(i, j int) bool {
	p := m.inst.Probabilities[i][j]
	return p == 0 || p <= m.cfg.RiskThreshold
}

// seed starts the engine from a nearest neighbour tour improved by 2-opt.
func (m *ConstrainedTourModel) seed(eng mip.Engine) error {
	d := m.inst.Distances
	tour := nearestNeighbourTour(d, m.allowed)
	if tour == nil {
		Log(3, "No nearest neighbour tour within the risk threshold")
		return nil
	}
	tour = twoOpt(tour, d, m.allowed)
	Log(3, "Starting from a tour of length %g", RouteDistance(tour, d))

	var ind []mip.Var
	var val []float64
	for k, i := range tour {
		ind = append(ind, m.edge[i][tour[(k+1)%len(tour)]])
		val = append(val, 1)
		if k > 0 {
			ind = append(ind, m.order[i])
			val = append(val, float64(k))
		}
	}
	return setStart(eng, ind, val)
}

func (m *ConstrainedTourModel) Extract(eng mip.Engine) (Result, error) {
	d := m.inst.Distances
	n := len(d)
	res := &TourResult{Speed: m.cfg.Speed}
	if n <= 1 {
		res.Tour = []int{0}
		return res, nil
	}

	edges := ExtractEdgeMatrix(eng, m.edge)
	tour, err := followTour(edges)
	if err != nil {
		return nil, err
	}
	for k := range tour {
		i, j := tour[k], tour[(k+1)%len(tour)]
		if m.inst.Probabilities[i][j] > m.cfg.RiskThreshold {
			return nil, errors.Wrapf(ErrExtraction, "edge %d -> %d exceeds the risk threshold", i, j)
		}
	}
	res.Tour = tour
	res.Distance = RouteDistance(tour, d)
	res.Duration = res.Distance / m.cfg.Speed
	return res, nil
}

type TourResult struct {
	Distance float64
	Duration float64
	Speed    float64
	Tour     []int
}

func (r *TourResult) Problem() Problem   { return ConstrainedTour }
func (r *TourResult) Objective() float64 { return r.Distance }

func (r *TourResult) Describe(w io.Writer) {
	fmt.Fprintf(w, "Tour length: %g (%.4g time units at speed %g)\n", r.Distance, r.Duration, r.Speed)
	fmt.Fprintf(w, "Visiting order: %v -> 0\n", r.Tour)
}

func (r *TourResult) Fill(sol *Solution) {
	sol.Tour = r.Tour
	sol.RouteCosts = []float64{r.Distance}
}
