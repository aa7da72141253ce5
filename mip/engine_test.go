package mip

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testEngine runs the models every Engine has to solve alike.
func testEngine(t *testing.T, factory Factory) {
	newEngine := func(t *testing.T) Engine {
		eng, err := factory(t.Name())
		require.NoError(t, err)
		return eng
	}

	t.Run("lp", func(t *testing.T) {
		eng := newEngine(t)
		x, _ := eng.AddVar(0, Inf, false, "x")
		y, _ := eng.AddVar(0, Inf, false, "y")
		require.NoError(t, eng.AddConstr([]Var{x, y}, []float64{1, 2}, LessEqual, 4, "c1"))
		require.NoError(t, eng.AddConstr([]Var{x, y}, []float64{3, 1}, LessEqual, 6, "c2"))
		require.NoError(t, eng.SetObjective([]Var{x, y}, []float64{-1, -1}))

		status, err := eng.Solve()
		require.NoError(t, err)
		assert.Equal(t, Optimal, status)
		assert.InDelta(t, 1.6, eng.Value(x), delta)
		assert.InDelta(t, 1.2, eng.Value(y), delta)
		assert.InDelta(t, -2.8, eng.ObjVal(), delta)
	})

	t.Run("knapsack", func(t *testing.T) {
		eng := newEngine(t)
		var vars []Var
		for i := 0; i < 3; i++ {
			v, err := eng.AddVar(0, 1, true, "")
			require.NoError(t, err)
			vars = append(vars, v)
		}
		require.NoError(t, eng.AddConstr(vars, []float64{2, 3, 1}, LessEqual, 5, "capacity"))
		require.NoError(t, eng.SetObjective(vars, []float64{-5, -4, -3}))

		status, err := eng.Solve()
		require.NoError(t, err)
		require.Equal(t, Optimal, status)
		assert.InDelta(t, -9, eng.ObjVal(), delta)
		assert.InDelta(t, 1, eng.Value(vars[0]), delta)
		assert.InDelta(t, 1, eng.Value(vars[1]), delta)
		assert.InDelta(t, 0, eng.Value(vars[2]), delta)
	})

	t.Run("objective replaced", func(t *testing.T) {
		eng := newEngine(t)
		x, _ := eng.AddVar(0, 2, false, "x")
		y, _ := eng.AddVar(0, 2, false, "y")
		require.NoError(t, eng.SetObjective([]Var{x}, []float64{-1}))
		require.NoError(t, eng.SetObjective([]Var{y}, []float64{-1}))

		status, err := eng.Solve()
		require.NoError(t, err)
		require.Equal(t, Optimal, status)
		assert.InDelta(t, -2, eng.ObjVal(), delta)
		assert.InDelta(t, 2, eng.Value(y), delta)
	})

	t.Run("infeasible", func(t *testing.T) {
		eng := newEngine(t)
		x, _ := eng.AddVar(0, 1, false, "x")
		y, _ := eng.AddVar(0, 1, false, "y")
		require.NoError(t, eng.AddConstr([]Var{x, y}, []float64{1, 1}, GreaterEqual, 3, "tooMuch"))

		status, err := eng.Solve()
		require.NoError(t, err)
		assert.Equal(t, Infeasible, status)
		assert.True(t, math.IsNaN(eng.Value(x)))
	})

	t.Run("empty row", func(t *testing.T) {
		eng := newEngine(t)
		x, _ := eng.AddVar(0, 1, false, "x")
		require.NoError(t, eng.AddConstr([]Var{x, x}, []float64{1, -1}, Equal, 1, "impossible"))

		status, err := eng.Solve()
		require.NoError(t, err)
		assert.Equal(t, Infeasible, status)
	})

	t.Run("validation", func(t *testing.T) {
		eng := newEngine(t)
		_, err := eng.AddVar(2, 1, false, "inverted")
		assert.ErrorIs(t, err, ErrInvalidBounds)
		x, _ := eng.AddVar(0, 1, false, "x")
		assert.ErrorIs(t, eng.AddConstr([]Var{x + 1}, []float64{1}, LessEqual, 1, "unknown"), ErrUnknownVar)
		assert.Error(t, eng.AddConstr([]Var{x}, []float64{1}, Sense('!'), 1, "sense"))
	})
}
