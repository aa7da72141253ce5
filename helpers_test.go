package netdesign

import (
	"testing"

	"github.com/stretchr/testify/require"

	"git.solver4all.com/azaryc2s/netdesign/mip"
)

const delta = 1e-6

func zeroMatrix(n int) [][]float64 {
	m := make([][]float64, n)
	for i := range m {
		m[i] = make([]float64, n)
	}
	return m
}

func newInstance(d [][]float64) *Instance {
	return &Instance{Name: "test", Distances: d, Probabilities: zeroMatrix(len(d))}
}

// clusterInstance has two groups {0,1,2} and {3,4,5}. Locations inside a
// group are 1 apart, across groups 10.
func clusterInstance() *Instance {
	d := zeroMatrix(6)
	for i := 0; i < 6; i++ {
		for j := 0; j < 6; j++ {
			switch {
			case i == j:
			case i/3 == j/3:
				d[i][j] = 1
			default:
				d[i][j] = 10
			}
		}
	}
	return newInstance(d)
}

// ringInstance makes i -> i+1 (mod n) the only edges of length 1, all others
// have length 10.
func ringInstance(n int) *Instance {
	d := zeroMatrix(n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i != j {
				d[i][j] = 10
			}
		}
		d[i][(i+1)%n] = 1
	}
	return newInstance(d)
}

// starInstance puts the root 2 away from every other location, which are 1
// apart from each other.
func starInstance(n int) *Instance {
	d := zeroMatrix(n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			switch {
			case i == j:
			case i == 0 || j == 0:
				d[i][j] = 2
			default:
				d[i][j] = 1
			}
		}
	}
	return newInstance(d)
}

func solve(t *testing.T, f Formulation) (Result, mip.Status, error) {
	t.Helper()
	return Solve(f, mip.NewFactory())
}

func mustSolve(t *testing.T, f Formulation) Result {
	t.Helper()
	res, status, err := solve(t, f)
	require.NoError(t, err)
	require.Equal(t, mip.Optimal, status)
	return res
}
