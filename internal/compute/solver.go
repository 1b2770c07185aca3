package compute

import (
	"fmt"
	"strings"

	"github.com/san-kum/verletnet/internal/cloth"
)

// Solver advances the arena by one frame: integration followed by constraint
// relaxation. It must not retain nodes between calls.
type Solver interface {
	Name() string
	RunTick(nodes []cloth.Node, params cloth.Params, dt float64) error
}

// Mode selects a solver strategy. It is fixed for the lifetime of a simulation.
type Mode int

const (
	Sequential Mode = iota
	Parallel
)

func (m Mode) String() string {
	switch m {
	case Sequential:
		return "sequential"
	case Parallel:
		return "parallel"
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "sequential", "cpu", "seq":
		return Sequential, nil
	case "parallel", "gpu", "par":
		return Parallel, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// NewSolver builds the strategy for mode. nodeCount is checked against the
// parallel record capacity up front so an oversized net fails at construction.
func NewSolver(mode Mode, nodeCount int, cfg ParallelConfig) (Solver, error) {
	switch mode {
	case Sequential:
		return NewSequential(), nil
	case Parallel:
		return NewParallel(nodeCount, cfg, NewCPUKernels(cfg))
	}
	return nil, fmt.Errorf("%w: %v", ErrUnknownMode, mode)
}
