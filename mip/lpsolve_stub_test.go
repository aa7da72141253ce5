//go:build !lpsolve

package mip

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLPSolveNotCompiledIn(t *testing.T) {
	factory, err := NewEngineFactory(EngineLPSolve, Settings{})
	assert.NoError(t, err)
	_, err = factory("any")
	assert.ErrorIs(t, err, ErrNoLPSolve)
}
