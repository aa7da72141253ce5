package netdesign

import (
	"encoding/json"
	"io/ioutil"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.solver4all.com/azaryc2s/netdesign/mip"
)

func smallRunner(concurrent bool) *Runner {
	cfg := routingConfig(ROUTING_FLOW, 5)
	cfg.Facilities = 2
	return &Runner{Instance: starInstance(4), Config: cfg, Factory: mip.NewFactory(), Concurrent: concurrent}
}

func TestRunSequentialAndConcurrentAgree(t *testing.T) {
	seq := smallRunner(false).Run(Problems)
	par := smallRunner(true).Run(Problems)
	require.Len(t, seq, len(Problems))
	require.Len(t, par, len(Problems))
	for i, p := range Problems {
		require.NoError(t, seq[i].Err, "%s", p)
		require.NoError(t, par[i].Err, "%s", p)
		assert.Equal(t, p, seq[i].Problem)
		assert.Equal(t, p, par[i].Problem)
		assert.InDelta(t, seq[i].Result.Objective(), par[i].Result.Objective(), delta, "%s", p)
	}
	assert.InDelta(t, 6, seq[2].Result.Objective(), delta)
	assert.InDelta(t, 2, seq[3].Result.Objective(), delta)
}

func TestRunIsolatesFailures(t *testing.T) {
	r := smallRunner(true)
	r.Config.TimeLimit = 3
	outs := r.Run(Problems)
	for _, out := range outs[:3] {
		assert.NoError(t, out.Err, "%s", out.Problem)
	}
	assert.ErrorIs(t, outs[3].Err, ErrInfeasible)
}

func TestRunWritesLPFiles(t *testing.T) {
	r := smallRunner(false)
	r.LPDir = t.TempDir()
	outs := r.Run([]Problem{ConstrainedTour})
	require.NoError(t, outs[0].Err)

	lp, err := ioutil.ReadFile(filepath.Join(r.LPDir, "test_constrained_tour.lp"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(lp), "\\ Problem: constrained_tour\nMinimize\n"))
	assert.Contains(t, string(lp), " mtz_1_2: 4 E_1_2 + U_1 - U_2 <= 3\n")
}

func TestNewSolution(t *testing.T) {
	r := smallRunner(false)
	outs := r.Run([]Problem{MultiAgentRouting, FacilityLocation})
	sys := SysInfo{Platform: "test", CPU: "cpu", RAM: "1 GB"}

	sol := NewSolution("run-1", r.Instance, r.Config, outs[0], sys)
	assert.Equal(t, "run-1", sol.RunID)
	assert.Equal(t, 4, sol.Problem)
	assert.True(t, sol.Optimal)
	assert.Equal(t, 2.0, sol.Obj)
	assert.Len(t, sol.Routes, 2)
	assert.Len(t, sol.RouteCosts, 2)
	assert.Equal(t, 4, sol.Dimension)

	js, err := json.Marshal(sol)
	require.NoError(t, err)
	var back Solution
	require.NoError(t, json.Unmarshal(js, &back))
	assert.Equal(t, sol.Routes, back.Routes)

	sol = NewSolution("run-1", r.Instance, r.Config, outs[1], sys)
	assert.Len(t, sol.Facilities, 2)
	assert.Empty(t, sol.Routes)

	failed := NewSolution("run-1", r.Instance, r.Config, Outcome{Problem: ConstrainedTour, Status: mip.Infeasible, Err: ErrInfeasible}, sys)
	assert.False(t, failed.Optimal)
	assert.Equal(t, "infeasible input", failed.Comment)
	assert.Nil(t, failed.Tour)
}
