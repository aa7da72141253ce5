//go:build !lpsolve

package mip

import "time"

// NewLPSolveFactory returns a Factory that fails with ErrNoLPSolve. Build
// with -tags lpsolve to solve on lp_solve.
func NewLPSolveFactory(logger Logger, timeLimit time.Duration) Factory {
	return func(name string) (Engine, error) {
		return nil, ErrNoLPSolve
	}
}
