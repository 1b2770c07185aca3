package sim

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/go-logr/logr"
	"github.com/san-kum/verletnet/internal/cloth"
	"github.com/san-kum/verletnet/internal/compute"
)

type Option func(*Simulator)

// WithMode selects the solver strategy. Ignored when WithSolver is given.
func WithMode(m compute.Mode) Option {
	return func(s *Simulator) { s.mode = m }
}

// WithSolver injects a strategy instead of building one from the mode.
func WithSolver(solver compute.Solver) Option {
	return func(s *Simulator) { s.solver = solver }
}

func WithFactory(f cloth.Factory) Option {
	return func(s *Simulator) { s.factory = f }
}

// WithStart sets the position every node is created at.
func WithStart(p mgl64.Vec3) Option {
	return func(s *Simulator) { s.start = p }
}

// WithReference sets the anchor whose motion drives bulk displacement
// correction. Defaults to the first corner anchor.
func WithReference(a cloth.Anchor) Option {
	return func(s *Simulator) { s.reference = a }
}

func WithParallel(cfg compute.ParallelConfig) Option {
	return func(s *Simulator) { s.parallel = cfg }
}

func WithLogger(log logr.Logger) Option {
	return func(s *Simulator) { s.log = log }
}

// WithValidateState makes Tick fail when a position becomes NaN or Inf.
func WithValidateState(on bool) Option {
	return func(s *Simulator) { s.validate = on }
}

func WithMetrics(ms ...Metric) Option {
	return func(s *Simulator) { s.metrics = append(s.metrics, ms...) }
}

func WithObserver(obs ...Observer) Option {
	return func(s *Simulator) { s.observers = append(s.observers, obs...) }
}
