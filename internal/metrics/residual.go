package metrics

import (
	"math"

	"github.com/san-kum/verletnet/internal/sim"
)

// Residual is the largest constraint violation |len - rest| over all edges
// after the last tick.
type Residual struct {
	name  string
	value float64
}

func NewResidual() *Residual {
	return &Residual{name: "residual"}
}

func (r *Residual) Name() string { return r.name }

func (r *Residual) Observe(f sim.Frame) {
	worst := 0.0
	for _, e := range f.Edges {
		l := f.Positions[e.A].Sub(f.Positions[e.B]).Len()
		worst = math.Max(worst, math.Abs(l-f.Params.RestDistance))
	}
	r.value = worst
}

func (r *Residual) Value() float64 { return r.value }

func (r *Residual) Reset() { r.value = 0 }

// Sag is how far the lowest node hangs below the lowest pinned node, measured
// against gravity. Zero while nothing is pinned.
type Sag struct {
	name  string
	value float64
}

func NewSag() *Sag {
	return &Sag{name: "sag"}
}

func (s *Sag) Name() string { return s.name }

func (s *Sag) Observe(f sim.Frame) {
	g := f.Params.Gravity
	if g.Len() == 0 {
		s.value = 0
		return
	}
	down := g.Normalize()

	pinned := false
	lowestPin := math.Inf(-1)
	lowest := math.Inf(-1)
	for i := range f.Nodes {
		depth := f.Positions[i].Dot(down)
		if f.Nodes[i].Pinned() {
			pinned = true
			lowestPin = math.Max(lowestPin, depth)
		}
		lowest = math.Max(lowest, depth)
	}
	if !pinned {
		s.value = 0
		return
	}
	s.value = math.Max(0, lowest-lowestPin)
}

func (s *Sag) Value() float64 { return s.value }

func (s *Sag) Reset() { s.value = 0 }

// Default returns the metric set recorded by the CLI.
func Default() []sim.Metric {
	return []sim.Metric{
		NewResidual(),
		NewMotion(),
		NewKinetic(),
		NewSag(),
		NewIntact(3),
	}
}
