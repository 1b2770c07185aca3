package sim

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/verletnet/internal/cloth"
)

// Event is a discrete host request consumed at the start of the next tick.
type Event int

const (
	// EventReleasePins drops every pin binding.
	EventReleasePins Event = iota + 1
)

func (e Event) String() string {
	switch e {
	case EventReleasePins:
		return "release-pins"
	}
	return "unknown"
}

// Frame is a read-only view of the net after a tick. Nodes and Positions are
// only valid for the duration of the call they are passed to.
type Frame struct {
	Tick      int
	Time      float64
	Nodes     []cloth.Node
	Positions []mgl64.Vec3
	Edges     []cloth.Edge
	Params    cloth.Params
}

type Metric interface {
	Name() string
	Observe(f Frame)
	Value() float64
	Reset()
}

type Observer interface {
	OnTick(f Frame)
}

// ObserverFunc adapts a function to an Observer.
type ObserverFunc func(f Frame)

func (fn ObserverFunc) OnTick(f Frame) { fn(f) }

type Result struct {
	Ticks   int
	Times   []float64
	Series  map[string][]float64
	Metrics map[string]float64
}
