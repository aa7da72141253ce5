package netdesign

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solveTour(t *testing.T, inst *Instance, cfg Config) *TourResult {
	t.Helper()
	res := mustSolve(t, NewConstrainedTourModel(inst, cfg))
	tr, ok := res.(*TourResult)
	require.True(t, ok)
	return tr
}

func TestTourFollowsUniqueCheapCycle(t *testing.T) {
	cfg := DefaultConfig()
	tr := solveTour(t, ringInstance(5), cfg)

	if diff := cmp.Diff([]int{0, 1, 2, 3, 4}, tr.Tour); diff != "" {
		t.Errorf("tour mismatch (-want +got):\n%s", diff)
	}
	assert.InDelta(t, 5, tr.Distance, delta)
	assert.InDelta(t, 5/cfg.Speed, tr.Duration, delta)
	assert.Equal(t, ConstrainedTour, tr.Problem())
}

func TestTourThreeLocations(t *testing.T) {
	inst := newInstance([][]float64{
		{0, 1, 2},
		{1, 0, 1},
		{2, 1, 0},
	})
	tr := solveTour(t, inst, DefaultConfig())
	assert.InDelta(t, 4, tr.Distance, delta)
	assert.Len(t, tr.Tour, 3)
	assert.Equal(t, 0, tr.Tour[0])
}

func TestTourExcludesSubtours(t *testing.T) {
	// two cheap pairs 0-1 and 2-3; joining them costs two long edges
	d := [][]float64{
		{0, 1, 10, 10},
		{1, 0, 10, 10},
		{10, 10, 0, 1},
		{10, 10, 1, 0},
	}
	tr := solveTour(t, newInstance(d), DefaultConfig())
	assert.Len(t, tr.Tour, 4)
	assert.InDelta(t, 22, tr.Distance, delta)
}

func TestTourAvoidsRiskyEdge(t *testing.T) {
	inst := ringInstance(4)
	inst.Probabilities[0][1] = 0.9
	cfg := DefaultConfig()
	tr := solveTour(t, inst, cfg)

	require.Len(t, tr.Tour, 4)
	assert.NotEqual(t, 1, tr.Tour[1], "edge 0->1 is above the risk threshold")
	assert.Greater(t, tr.Distance, 4.0)
	for k := range tr.Tour {
		i, j := tr.Tour[k], tr.Tour[(k+1)%len(tr.Tour)]
		assert.LessOrEqual(t, inst.Probabilities[i][j], cfg.RiskThreshold)
	}
}

func TestTourDegenerateSizes(t *testing.T) {
	tr := solveTour(t, newInstance([][]float64{{0}}), DefaultConfig())
	assert.Equal(t, []int{0}, tr.Tour)
	assert.Equal(t, 0.0, tr.Distance)

	tr = solveTour(t, newInstance([][]float64{{0, 3}, {4, 0}}), DefaultConfig())
	assert.Equal(t, []int{0, 1}, tr.Tour)
	assert.InDelta(t, 7, tr.Distance, delta)
}
