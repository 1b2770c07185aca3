package metrics

import (
	"github.com/san-kum/verletnet/internal/sim"
)

// Intact is the fraction of ticks on which no edge stretched past factor
// times the rest distance. A net the solver cannot hold together drops
// toward zero.
type Intact struct {
	name     string
	factor   float64
	torn     int
	samples  int
	maxRatio float64
}

func NewIntact(factor float64) *Intact {
	return &Intact{
		name:   "intact",
		factor: factor,
	}
}

func (m *Intact) Name() string {
	return m.name
}

func (m *Intact) Observe(f sim.Frame) {
	m.samples++
	rest := f.Params.RestDistance
	worst := 0.0
	for _, e := range f.Edges {
		if r := f.Positions[e.A].Sub(f.Positions[e.B]).Len() / rest; r > worst {
			worst = r
		}
	}
	if worst > m.maxRatio {
		m.maxRatio = worst
	}
	if worst > m.factor {
		m.torn++
	}
}

func (m *Intact) Value() float64 {
	if m.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(m.torn)/float64(m.samples)
}

// MaxStretch is the largest edge length seen so far, in rest distances.
func (m *Intact) MaxStretch() float64 { return m.maxRatio }

func (m *Intact) Reset() {
	m.torn = 0
	m.samples = 0
	m.maxRatio = 0
}
