package mip

import (
	"fmt"
	"time"
)

type Option func(*Model) error

// Logger receives progress messages of the branch-and-bound search.
type Logger interface {
	Print(v ...interface{})
}

type noopLogger struct{}

func (noopLogger) Print(v ...interface{}) {}

func WithLogger(logger Logger) Option {
	return func(m *Model) error {
		if logger == nil {
			return fmt.Errorf("nil logger")
		}
		m.logger = logger
		return nil
	}
}

// WithNodeLimit stops the search after limit branch-and-bound nodes. Zero
// means no limit.
func WithNodeLimit(limit int) Option {
	return func(m *Model) error {
		if limit < 0 {
			return fmt.Errorf("negative node limit %d", limit)
		}
		m.nodeLimit = limit
		return nil
	}
}

// WithTimeLimit stops the search after d and keeps the best solution found
// so far. Zero means no limit.
func WithTimeLimit(d time.Duration) Option {
	return func(m *Model) error {
		if d < 0 {
			return fmt.Errorf("negative time limit %s", d)
		}
		m.timeLimit = d
		return nil
	}
}

// NewFactory returns a Factory creating Models with the given options.
func NewFactory(opts ...Option) Factory {
	return func(name string) (Engine, error) {
		return NewModel(name, opts...)
	}
}

const (
	EngineBuiltin = "builtin"
	EngineLPSolve = "lpsolve"
)

// Settings are the engine parameters the command line exposes.
type Settings struct {
	Logger    Logger
	NodeLimit int
	TimeLimit time.Duration
}

// NewEngineFactory returns the factory of the named engine. The lp_solve
// engine has no node limit.
func NewEngineFactory(engine string, s Settings) (Factory, error) {
	if s.Logger == nil {
		s.Logger = noopLogger{}
	}
	if s.TimeLimit < 0 {
		return nil, fmt.Errorf("negative time limit %s", s.TimeLimit)
	}
	switch engine {
	case EngineBuiltin, "":
		if s.NodeLimit < 0 {
			return nil, fmt.Errorf("negative node limit %d", s.NodeLimit)
		}
		return NewFactory(WithLogger(s.Logger), WithNodeLimit(s.NodeLimit), WithTimeLimit(s.TimeLimit)), nil
	case EngineLPSolve:
		return NewLPSolveFactory(s.Logger, s.TimeLimit), nil
	default:
		return nil, fmt.Errorf("unknown engine %q, want %s or %s", engine, EngineBuiltin, EngineLPSolve)
	}
}
