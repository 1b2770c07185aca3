package metrics

import (
	"github.com/san-kum/verletnet/internal/sim"
)

// Kinetic is the kinetic energy of the net in per-frame units, with unit
// mass per node: sum of 0.5*|p - prev|^2.
type Kinetic struct {
	name  string
	value float64
}

func NewKinetic() *Kinetic {
	return &Kinetic{name: "kinetic"}
}

func (k *Kinetic) Name() string { return k.name }

func (k *Kinetic) Observe(f sim.Frame) {
	total := 0.0
	for i := range f.Nodes {
		v := f.Nodes[i].Velocity()
		total += 0.5 * v.Dot(v)
	}
	k.value = total
}

func (k *Kinetic) Value() float64 { return k.value }

func (k *Kinetic) Reset() { k.value = 0 }

// Motion tracks how far the fastest node moved during the last tick. It drops
// toward zero as the net settles.
type Motion struct {
	name  string
	last  float64
	peak  float64
	ticks int
}

func NewMotion() *Motion {
	return &Motion{name: "motion"}
}

func (m *Motion) Name() string { return m.name }

func (m *Motion) Observe(f sim.Frame) {
	worst := 0.0
	for i := range f.Nodes {
		if d := f.Nodes[i].Velocity().Len(); d > worst {
			worst = d
		}
	}
	m.last = worst
	if worst > m.peak {
		m.peak = worst
	}
	m.ticks++
}

func (m *Motion) Value() float64 { return m.last }

// Peak returns the largest per-tick motion seen since the last Reset.
func (m *Motion) Peak() float64 { return m.peak }

// Settled reports whether the last tick moved no node further than tol.
func (m *Motion) Settled(tol float64) bool {
	return m.ticks > 0 && m.last <= tol
}

func (m *Motion) Reset() {
	m.last = 0
	m.peak = 0
	m.ticks = 0
}
