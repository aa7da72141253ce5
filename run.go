package netdesign

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pkg/errors"

	"git.solver4all.com/azaryc2s/netdesign/mip"
)

// Outcome of solving one problem.
type Outcome struct {
	Problem Problem
	Result  Result
	Status  mip.Status
	Elapsed time.Duration
	Err     error
}

// Runner solves a selection of problems on one instance. Every problem gets
// its own formulation and engine; only the instance is shared, read-only.
type Runner struct {
	Instance   *Instance
	Config     Config
	Factory    mip.Factory
	Reporter   *Reporter
	Concurrent bool
	// LPDir, if set, receives one LP file per problem.
	LPDir string
}

// Run solves the given problems and returns their outcomes in the same
// order. A failing problem never stops the others.
func (r *Runner) Run(problems []Problem) []Outcome {
	outcomes := make([]Outcome, len(problems))
	if !r.Concurrent {
		for i, p := range problems {
			outcomes[i] = r.solveOne(p)
		}
		return outcomes
	}

	var wg sync.WaitGroup
	for i, p := range problems {
		wg.Add(1)
		go func(i int, p Problem) {
			defer wg.Done()
			outcomes[i] = r.solveOne(p)
		}(i, p)
	}
	wg.Wait()
	return outcomes
}

func (r *Runner) solveOne(p Problem) (out Outcome) {
	out.Problem = p
	if r.Reporter != nil {
		defer func() { r.Reporter.Report(out) }()
	}

	Log(2, "Solving problem %d: %s", int(p), p)
	f, err := NewFormulation(p, r.Instance, r.Config)
	if err != nil {
		out.Err = err
		return out
	}
	var hooks []func(mip.Engine) error
	if r.LPDir != "" {
		hooks = append(hooks, func(eng mip.Engine) error {
			return writeLP(eng, filepath.Join(r.LPDir, fmt.Sprintf("%s_%s.lp", r.Instance.Name, p.Slug())))
		})
	}

	startTime := time.Now()
	out.Result, out.Status, out.Err = Solve(f, r.Factory, hooks...)
	out.Elapsed = time.Since(startTime)
	if out.Err != nil {
		Log(1, "Problem %d: %s", int(p), out.Err.Error())
	} else {
		Log(2, "Problem %d solved with objective %g in %s", int(p), out.Result.Objective(), out.Elapsed)
	}
	return out
}

type lpWriter interface {
	WriteLP(w io.Writer) error
}

func writeLP(eng mip.Engine, fileName string) error {
	lw, ok := eng.(lpWriter)
	if !ok {
		Log(2, "Engine %T cannot write LP files, skipping %s", eng, fileName)
		return nil
	}
	f, err := os.Create(fileName)
	if err != nil {
		return errors.Wrap(err, "creating LP file")
	}
	if err := lw.WriteLP(f); err != nil {
		f.Close()
		return errors.Wrapf(err, "writing %s", fileName)
	}
	return f.Close()
}

// NewSolution turns an outcome into its persisted record.
func NewSolution(runID string, inst *Instance, cfg Config, out Outcome, sys SysInfo) Solution {
	sol := Solution{
		RunID:     runID,
		Instance:  inst.Name,
		Problem:   int(out.Problem),
		Name:      out.Problem.String(),
		Status:    out.Status.String(),
		Optimal:   out.Status == mip.Optimal && out.Err == nil,
		Time:      out.Elapsed.String(),
		System:    sys,
		Config:    cfg,
		Dimension: inst.N(),
	}
	if out.Err != nil {
		sol.Comment = out.Err.Error()
		return sol
	}
	sol.Obj = out.Result.Objective()
	out.Result.Fill(&sol)
	return sol
}
