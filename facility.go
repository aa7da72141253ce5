package netdesign

import (
	"fmt"
	"io"
	"math"

	"github.com/pkg/errors"

	"git.solver4all.com/azaryc2s/netdesign/mip"
)

// Facility is a chosen center with the locations assigned to it. A center
// may be served by another center, so it is not always one of its members.
type Facility struct {
	Center  int   `json:"center"`
	Members []int `json:"members"`
}

// FacilityLocationModel picks cfg.Facilities centers, each serving at most
// cfg.Capacity locations, so that every location is served by exactly one
// center. With riskCap set, assignments whose blockage probability exceeds
// cfg.RiskThreshold are forbidden.
type FacilityLocationModel struct {
	inst    *Instance
	cfg     Config
	riskCap bool

	center      []mip.Var
	assign      [][]mip.Var
	minDistance mip.Var
}

func NewFacilityLocationModel(inst *Instance, cfg Config, riskCap bool) *FacilityLocationModel {
	return &FacilityLocationModel{inst: inst, cfg: cfg, riskCap: riskCap, minDistance: mip.NoVar}
}

func (m *FacilityLocationModel) Problem() Problem {
	if m.riskCap {
		return RiskFacilityLocation
	}
	return FacilityLocation
}

func (m *FacilityLocationModel) Build(eng mip.Engine) error {
	d := m.inst.Distances
	p := m.inst.Probabilities
	n := len(d)
	var err error

	m.center = make([]mip.Var, n)
	for i := 0; i < n; i++ {
		if m.center[i], err = eng.AddVar(0, 1, true, fmt.Sprintf("C_%d", i)); err != nil {
			return err
		}
	}
	if m.assign, err = addVarMatrix(eng, n, "A", true); err != nil {
		return err
	}
	if m.cfg.FacilityObjective == OBJ_MINMAX {
		if m.minDistance, err = eng.AddVar(0, mip.Inf, false, "Dmax"); err != nil {
			return err
		}
	}

	//Exactly k centers
	{
		Log(3, "Creating the center count constraint, k = %d", m.cfg.Facilities)
		val := make([]float64, n)
		for i := range val {
			val[i] = 1
		}
		if err := eng.AddConstr(m.center, val, mip.Equal, float64(m.cfg.Facilities), "centers"); err != nil {
			return err
		}
	}

	//Capacity of every center and assignments only to open centers
	{
		Log(3, "Creating capacity constraints, capacity = %d", m.cfg.Capacity)
		for i := 0; i < n; i++ {
			ind := []mip.Var{m.center[i]}
			val := []float64{-float64(m.cfg.Capacity)}
			for j := 0; j < n; j++ {
				ind = append(ind, m.assign[i][j])
				val = append(val, 1)
				err := eng.AddConstr([]mip.Var{m.assign[i][j], m.center[i]}, []float64{1, -1}, mip.LessEqual, 0, fmt.Sprintf("open_%d_%d", i, j))
				if err != nil {
					return err
				}
			}
			if err := eng.AddConstr(ind, val, mip.LessEqual, 0, fmt.Sprintf("cap_%d", i)); err != nil {
				return err
			}
		}
	}

	//Every location is served exactly once
	{
		Log(3, "Creating coverage constraints")
		for j := 0; j < n; j++ {
			ind := make([]mip.Var, n)
			val := make([]float64, n)
			for i := 0; i < n; i++ {
				ind[i] = m.assign[i][j]
				val[i] = 1
			}
			if err := eng.AddConstr(ind, val, mip.Equal, 1, fmt.Sprintf("cover_%d", j)); err != nil {
				return err
			}
		}
	}

	if m.riskCap {
		Log(3, "Creating risk constraints, threshold = %.2f", m.cfg.RiskThreshold)
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				if p[i][j] == 0 {
					continue
				}
				err := eng.AddConstr([]mip.Var{m.assign[i][j]}, []float64{p[i][j]}, mip.LessEqual, m.cfg.RiskThreshold, fmt.Sprintf("risk_%d_%d", i, j))
				if err != nil {
					return err
				}
			}
		}
	}

	if m.cfg.FacilityObjective == OBJ_TOTAL {
		var ind []mip.Var
		var val []float64
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				ind = append(ind, m.assign[i][j])
				val = append(val, d[i][j])
			}
		}
		return eng.SetObjective(ind, val)
	}

	//Linking every assignment distance to Dmax, plus one summed row per
	//location which tightens the relaxation
	{
		Log(3, "Creating and setting constraints <= Dmax")
		for j := 0; j < n; j++ {
			ind := []mip.Var{m.minDistance}
			val := []float64{-1}
			for i := 0; i < n; i++ {
				if d[i][j] == 0 {
					continue
				}
				ind = append(ind, m.assign[i][j])
				val = append(val, d[i][j])
				err := eng.AddConstr([]mip.Var{m.assign[i][j], m.minDistance}, []float64{d[i][j], -1}, mip.LessEqual, 0, fmt.Sprintf("dist_%d_%d", i, j))
				if err != nil {
					return err
				}
			}
			if err := eng.AddConstr(ind, val, mip.LessEqual, 0, fmt.Sprintf("distsum_%d", j)); err != nil {
				return err
			}
		}
	}
	return eng.SetObjective([]mip.Var{m.minDistance}, []float64{1})
}

func (m *FacilityLocationModel) Extract(eng mip.Engine) (Result, error) {
	d := m.inst.Distances
	n := len(d)
	assign := ExtractEdgeMatrix(eng, m.assign)

	res := &FacilityResult{problem: m.Problem(), Obj: eng.ObjVal()}
	served := make([]int, n)
	for i := 0; i < n; i++ {
		if !selected(eng.Value(m.center[i])) {
			for j := 0; j < n; j++ {
				if assign[i][j] == 1 {
					return nil, errors.Wrapf(ErrExtraction, "location %d assigned to closed center %d", j, i)
				}
			}
			continue
		}
		fac := Facility{Center: i}
		for j := 0; j < n; j++ {
			if assign[i][j] != 1 {
				continue
			}
			if m.riskCap && m.inst.Probabilities[i][j] > m.cfg.RiskThreshold {
				return nil, errors.Wrapf(ErrExtraction, "assignment %d -> %d exceeds the risk threshold", j, i)
			}
			fac.Members = append(fac.Members, j)
			served[j]++
			res.MaxDistance = math.Max(res.MaxDistance, d[i][j])
			res.TotalDistance += d[i][j]
		}
		if len(fac.Members) > m.cfg.Capacity {
			return nil, errors.Wrapf(ErrExtraction, "center %d serves %d locations, capacity is %d", i, len(fac.Members), m.cfg.Capacity)
		}
		res.Facilities = append(res.Facilities, fac)
	}
	if len(res.Facilities) != m.cfg.Facilities {
		return nil, errors.Wrapf(ErrExtraction, "%d centers open, want %d", len(res.Facilities), m.cfg.Facilities)
	}
	for j, s := range served {
		if s != 1 {
			return nil, errors.Wrapf(ErrExtraction, "location %d is served %d times", j, s)
		}
	}
	return res, nil
}

type FacilityResult struct {
	problem       Problem
	Obj           float64
	MaxDistance   float64
	TotalDistance float64
	Facilities    []Facility
}

func (r *FacilityResult) Problem() Problem   { return r.problem }
func (r *FacilityResult) Objective() float64 { return r.Obj }

func (r *FacilityResult) Describe(w io.Writer) {
	fmt.Fprintf(w, "Objective value: %g\n", r.Obj)
	fmt.Fprintf(w, "Longest assignment: %g, total assignment distance: %g\n", r.MaxDistance, r.TotalDistance)
	for _, f := range r.Facilities {
		fmt.Fprintf(w, "Facility at location %d serves %v\n", f.Center, f.Members)
	}
}

func (r *FacilityResult) Fill(sol *Solution) {
	sol.Facilities = r.Facilities
}
