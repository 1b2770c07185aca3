package compute

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/verletnet/internal/cloth"
)

// SequentialSolver relaxes constraints in place, node by node in index order.
// Corrections made earlier in a sweep are visible later in the same sweep.
type SequentialSolver struct{}

func NewSequential() *SequentialSolver {
	return &SequentialSolver{}
}

func (s *SequentialSolver) Name() string { return "sequential" }

func (s *SequentialSolver) RunTick(nodes []cloth.Node, params cloth.Params, dt float64) error {
	Integrate(nodes, params.Gravity, dt)
	for i := 0; i < params.Iterations; i++ {
		Sweep(nodes, params.RestDistance, params.Stiffness)
	}
	return nil
}

// Integrate applies one Verlet step to every node. No damping is applied.
func Integrate(nodes []cloth.Node, gravity mgl64.Vec3, dt float64) {
	accel := gravity.Mul(dt)
	for i := range nodes {
		n := &nodes[i]
		n.PrevPosition, n.Position = verlet(n.PrevPosition, n.Position, accel)
	}
}

// Sweep runs one relaxation pass. A pinned node is snapped to its anchor when
// visited and never receives a share of any correction afterwards. Each edge
// is visited from both endpoints, so it is corrected twice per sweep.
func Sweep(nodes []cloth.Node, rest, stiffness float64) {
	for i := range nodes {
		n := &nodes[i]
		if n.Pin != nil {
			n.Position = n.Pin.Position()
		}

		for _, j := range n.Neighbors {
			m := &nodes[j]
			move := correction(n.Position, m.Position, rest, stiffness)
			if n.Pin == nil {
				n.Position = n.Position.Sub(move)
			}
			if m.Pin == nil {
				m.Position = m.Position.Add(move)
			}
		}
	}
}
