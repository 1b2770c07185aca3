package compute

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"golang.org/x/sync/errgroup"
)

// KernelParams are the uniforms shared by both kernels.
type KernelParams struct {
	Gravity      mgl64.Vec3
	Dt           float64
	RestDistance float64
	Stiffness    float64
	NodeCount    int
}

// Kernels is the data-parallel compute contract. Each call updates records in
// place and returns only after every scheduled group has finished.
type Kernels interface {
	Name() string
	Available() bool
	Integrate(records []NodeRecord, p KernelParams) error
	ResolveConstraints(records []NodeRecord, p KernelParams) error
	Cleanup()
}

// ResolvePolicy decides how a record combines the corrections of its
// neighbors within one ResolveConstraints dispatch.
type ResolvePolicy int

const (
	// ResolveMean applies the average of the per-neighbor corrections, all
	// measured from the snapshot. Stable for any stiffness in (0,1].
	ResolveMean ResolvePolicy = iota
	// ResolveSum applies each neighbor's full correction in slot order,
	// measured from the running position. Overshoots on interior nodes and
	// can diverge on dense nets.
	ResolveSum
)

func (p ResolvePolicy) String() string {
	switch p {
	case ResolveMean:
		return "mean"
	case ResolveSum:
		return "sum"
	}
	return fmt.Sprintf("resolve(%d)", int(p))
}

func ParseResolvePolicy(s string) (ResolvePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "mean", "average":
		return ResolveMean, nil
	case "sum", "accumulate":
		return ResolveSum, nil
	}
	return 0, fmt.Errorf("%w: resolve policy %q", ErrInvalidParallelConfig, s)
}

// CPUKernels emulates a compute device: each work group of BlockSize records
// runs on its own goroutine, with at most Workers groups in flight.
type CPUKernels struct {
	workers   int
	blockSize int
	policy    DispatchPolicy
	resolve   ResolvePolicy
	snapshot  []mgl64.Vec3
}

func NewCPUKernels(cfg ParallelConfig) *CPUKernels {
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	block := cfg.BlockSize
	if block <= 0 {
		block = DefaultBlockSize
	}
	return &CPUKernels{
		workers:   workers,
		blockSize: block,
		policy:    cfg.Dispatch,
		resolve:   cfg.Resolve,
	}
}

func (c *CPUKernels) Name() string    { return "cpu" }
func (c *CPUKernels) Available() bool { return true }
func (c *CPUKernels) Cleanup()        { c.snapshot = nil }

func (c *CPUKernels) Integrate(records []NodeRecord, p KernelParams) error {
	if err := checkCount(records, p); err != nil {
		return err
	}

	accel := p.Gravity.Mul(p.Dt)
	return c.dispatch(p.NodeCount, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			r := &records[i]
			r.Prev, r.Cur = verlet(r.Prev, r.Cur, accel)
		}
	})
}

// ResolveConstraints is a Jacobi pass: every record reads the positions all
// records had before the dispatch and writes only its own slot. Pinned
// records are read at their pin.
func (c *CPUKernels) ResolveConstraints(records []NodeRecord, p KernelParams) error {
	if err := checkCount(records, p); err != nil {
		return err
	}

	if cap(c.snapshot) < p.NodeCount {
		c.snapshot = make([]mgl64.Vec3, p.NodeCount)
	}
	snap := c.snapshot[:p.NodeCount]
	for i := range snap {
		if records[i].Pinned {
			snap[i] = records[i].Pin
		} else {
			snap[i] = records[i].Cur
		}
	}

	return c.dispatch(p.NodeCount, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			r := &records[i]
			if r.Pinned {
				r.Cur = r.Pin
				continue
			}

			r.Cur = c.relax(snap, i, r.Neighbors, p)
		}
	})
}

func (c *CPUKernels) relax(snap []mgl64.Vec3, i int, neighbors [4]int32, p KernelParams) mgl64.Vec3 {
	pos := snap[i]
	if c.resolve == ResolveSum {
		for _, j := range neighbors {
			if j == NoNeighbor || int(j) >= len(snap) {
				continue
			}
			pos = pos.Sub(correction(pos, snap[j], p.RestDistance, p.Stiffness))
		}
		return pos
	}

	var total mgl64.Vec3
	count := 0
	for _, j := range neighbors {
		if j == NoNeighbor || int(j) >= len(snap) {
			continue
		}
		total = total.Add(correction(pos, snap[j], p.RestDistance, p.Stiffness))
		count++
	}
	if count == 0 {
		return pos
	}
	return pos.Sub(total.Mul(1 / float64(count)))
}

func (c *CPUKernels) dispatch(n int, fn func(lo, hi int)) error {
	groups := Groups(n, c.blockSize, c.policy)
	if groups == 0 {
		return nil
	}

	var g errgroup.Group
	g.SetLimit(c.workers)
	for k := 0; k < groups; k++ {
		lo := k * c.blockSize
		hi := min(lo+c.blockSize, n)
		g.Go(func() error {
			fn(lo, hi)
			return nil
		})
	}
	return g.Wait()
}

func checkCount(records []NodeRecord, p KernelParams) error {
	if p.NodeCount < 0 || p.NodeCount > len(records) {
		return fmt.Errorf("%w: %d nodes, %d records", ErrCapacityExceeded, p.NodeCount, len(records))
	}
	return nil
}
