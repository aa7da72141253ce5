package netdesign

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.solver4all.com/azaryc2s/netdesign/mip"
)

func anyEdge(i, j int) bool { return true }

// startRecorder counts the starts handed to the wrapped model.
type startRecorder struct {
	*mip.Model
	starts int
}

func (r *startRecorder) SetStart(ind []mip.Var, val []float64) error {
	r.starts++
	return r.Model.SetStart(ind, val)
}

// recording returns a factory whose models stop after the root node.
func recording(rec *startRecorder) mip.Factory {
	return func(name string) (mip.Engine, error) {
		m, err := mip.NewModel(name, mip.WithNodeLimit(1))
		if err != nil {
			return nil, err
		}
		rec.Model = m
		return rec, nil
	}
}

func TestNearestNeighbourTour(t *testing.T) {
	d := ringInstance(5).Distances
	if diff := cmp.Diff([]int{0, 1, 2, 3, 4}, nearestNeighbourTour(d, anyEdge)); diff != "" {
		t.Errorf("tour mismatch (-want +got):\n%s", diff)
	}
	assert.Nil(t, nearestNeighbourTour(d, func(i, j int) bool { return j != 1 }))
	assert.Nil(t, nearestNeighbourTour(d, func(i, j int) bool { return j != 0 }))
}

func TestTwoOptUncrossesSquare(t *testing.T) {
	pts := [][2]float64{{0, 0}, {1, 0}, {0, 1}, {1, 1}}
	d := zeroMatrix(4)
	for i := range pts {
		for j := range pts {
			d[i][j] = math.Hypot(pts[i][0]-pts[j][0], pts[i][1]-pts[j][1])
		}
	}
	crossed := 2 + 2*math.Sqrt2

	tour := twoOpt([]int{0, 1, 2, 3}, d, anyEdge)
	assert.InDelta(t, 4, RouteDistance(tour, d), delta)
	assert.Equal(t, 0, tour[0])

	sides := func(i, j int) bool {
		return !(i == 1 && j == 3 || i == 3 && j == 1 || i == 0 && j == 2 || i == 2 && j == 0)
	}
	tour = twoOpt([]int{0, 1, 2, 3}, d, sides)
	assert.InDelta(t, crossed, RouteDistance(tour, d), delta)
	assert.True(t, tourAllowed(tour, sides))
}

func TestGreedyRoutes(t *testing.T) {
	d := starInstance(4).Distances
	routes, ok := greedyRoutes(d, 5)
	require.True(t, ok)
	if diff := cmp.Diff([][]int{{0, 1, 2}, {0, 3}}, routes); diff != "" {
		t.Errorf("routes mismatch (-want +got):\n%s", diff)
	}

	_, ok = greedyRoutes(d, 3)
	assert.False(t, ok)

	routes, ok = greedyRoutes(zeroMatrix(1), 1)
	require.True(t, ok)
	assert.Empty(t, routes)
}

func TestSeededTourSurvivesNodeLimit(t *testing.T) {
	rec := &startRecorder{}
	res, status, err := Solve(NewConstrainedTourModel(ringInstance(6), DefaultConfig()), recording(rec))
	require.NoError(t, err)
	assert.Contains(t, []mip.Status{mip.Optimal, mip.Feasible}, status)
	assert.Equal(t, 1, rec.starts)
	assert.InDelta(t, 6, res.(*TourResult).Distance, delta)
}

func TestSeededRoutingSurvivesNodeLimit(t *testing.T) {
	colocated := starInstance(4)
	colocated.Distances[1][2] = 0
	colocated.Distances[2][1] = 0

	tests := []struct {
		name   string
		inst   *Instance
		budget float64
	}{
		{"star", starInstance(4), 5},
		{"colocated", colocated, 4},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			rec := &startRecorder{}
			res, status, err := Solve(NewFlowRoutingModel(test.inst, routingConfig(ROUTING_FLOW, test.budget)), recording(rec))
			require.NoError(t, err)
			assert.Contains(t, []mip.Status{mip.Optimal, mip.Feasible}, status)
			assert.Equal(t, 1, rec.starts)
			rr := res.(*RoutingResult)
			assert.Equal(t, 2, rr.Agents)
			assertCovered(t, test.inst, rr)
			assertRoutesValid(t, test.inst, rr)
		})
	}
}

func TestUnseededModelsAreLeftAlone(t *testing.T) {
	rec := &startRecorder{}
	_, _, err := Solve(NewFlowRoutingModel(starInstance(4), routingConfig(ROUTING_FLOW, 3)), recording(rec))
	assert.Error(t, err)
	assert.Zero(t, rec.starts)
}
