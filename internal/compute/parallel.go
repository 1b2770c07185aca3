package compute

import (
	"fmt"

	"github.com/san-kum/verletnet/internal/cloth"
)

// DefaultCapacity is the record buffer size, independent of the actual node
// count so one buffer serves any net up to that size.
const DefaultCapacity = 400

// ParallelConfig configures the data-parallel strategy.
type ParallelConfig struct {
	Capacity  int
	BlockSize int
	// Passes is the number of ResolveConstraints dispatches per frame.
	Passes   int
	Workers  int
	Dispatch DispatchPolicy
	Resolve  ResolvePolicy
}

// DefaultParallelConfig resolves with ResolveMean. Each per-neighbor share is
// the sequential pair correction; ResolveSum adds them up instead and diverges
// on dense nets.
func DefaultParallelConfig() ParallelConfig {
	return ParallelConfig{
		Capacity:  DefaultCapacity,
		BlockSize: DefaultBlockSize,
		Passes:    1,
		Dispatch:  DispatchCover,
		Resolve:   ResolveMean,
	}
}

func (c ParallelConfig) Validate() error {
	switch {
	case c.Capacity <= 0:
		return fmt.Errorf("%w: capacity %d", ErrInvalidParallelConfig, c.Capacity)
	case c.BlockSize <= 0:
		return fmt.Errorf("%w: block size %d", ErrInvalidParallelConfig, c.BlockSize)
	case c.Passes <= 0:
		return fmt.Errorf("%w: passes %d", ErrInvalidParallelConfig, c.Passes)
	case c.Workers < 0:
		return fmt.Errorf("%w: workers %d", ErrInvalidParallelConfig, c.Workers)
	case c.Dispatch != DispatchCover && c.Dispatch != DispatchTruncate:
		return fmt.Errorf("%w: %v", ErrInvalidParallelConfig, c.Dispatch)
	case c.Resolve != ResolveMean && c.Resolve != ResolveSum:
		return fmt.Errorf("%w: %v", ErrInvalidParallelConfig, c.Resolve)
	}
	return nil
}

// ParallelSolver round-trips the arena through a fixed record buffer every
// frame: upload, Integrate, ResolveConstraints x Passes, download.
type ParallelSolver struct {
	cfg     ParallelConfig
	kernels Kernels
	records []NodeRecord
}

func NewParallel(nodeCount int, cfg ParallelConfig, kernels Kernels) (*ParallelSolver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if nodeCount > cfg.Capacity {
		return nil, fmt.Errorf("%w: %d nodes, capacity %d", ErrCapacityExceeded, nodeCount, cfg.Capacity)
	}
	if kernels == nil {
		kernels = NewCPUKernels(cfg)
	}

	return &ParallelSolver{
		cfg:     cfg,
		kernels: kernels,
		records: NewRecordBuffer(cfg.Capacity),
	}, nil
}

func (s *ParallelSolver) Name() string { return "parallel/" + s.kernels.Name() }

// Records exposes the record buffer as left by the last frame.
func (s *ParallelSolver) Records() []NodeRecord { return s.records }

func (s *ParallelSolver) Config() ParallelConfig { return s.cfg }

func (s *ParallelSolver) RunTick(nodes []cloth.Node, params cloth.Params, dt float64) error {
	if err := Upload(s.records, nodes); err != nil {
		return fmt.Errorf("%w: %d nodes, capacity %d", err, len(nodes), len(s.records))
	}

	kp := KernelParams{
		Gravity:      params.Gravity,
		Dt:           dt,
		RestDistance: params.RestDistance,
		Stiffness:    params.Stiffness,
		NodeCount:    len(nodes),
	}

	if err := s.kernels.Integrate(s.records, kp); err != nil {
		return fmt.Errorf("integrate: %w", err)
	}
	for pass := 0; pass < s.cfg.Passes; pass++ {
		if err := s.kernels.ResolveConstraints(s.records, kp); err != nil {
			return fmt.Errorf("resolve constraints: %w", err)
		}
	}

	Download(s.records, nodes)
	return nil
}

// Close releases kernel resources.
func (s *ParallelSolver) Close() {
	s.kernels.Cleanup()
}
