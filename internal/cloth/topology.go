package cloth

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// Build creates the node arena for lat. Every node starts at rest at start,
// adjacency is wired in left, up, right, down order and the four lattice
// corners are pinned to anchors[0..3].
func Build(lat Lattice, factory Factory, start mgl64.Vec3, anchors []Anchor) ([]Node, error) {
	if err := lat.Validate(); err != nil {
		return nil, err
	}
	if len(anchors) < 4 {
		return nil, fmt.Errorf("%w: got %d", ErrTooFewAnchors, len(anchors))
	}
	for i, a := range anchors[:4] {
		if a == nil {
			return nil, fmt.Errorf("%w: anchor %d is nil", ErrTooFewAnchors, i)
		}
	}
	if factory == nil {
		return nil, ErrNilFactory
	}

	nodes := make([]Node, lat.Count())
	for i := range nodes {
		n := factory(start)
		n.Position = start
		n.PrevPosition = start
		n.Pin = nil
		n.Neighbors = lat.Neighbors(i)
		nodes[i] = n
	}

	for k, idx := range lat.Corners() {
		nodes[idx].Pin = anchors[k]
	}

	return nodes, nil
}

// Edge is an undirected constraint between two arena indices, A < B.
type Edge struct {
	A, B int
}

// Edges lists every undirected adjacency once, ordered by the lower index.
func Edges(nodes []Node) []Edge {
	edges := make([]Edge, 0, len(nodes)*2)
	for i := range nodes {
		for _, j := range nodes[i].Neighbors {
			if i < j {
				edges = append(edges, Edge{A: i, B: j})
			}
		}
	}
	return edges
}

// ReleasePins clears every pin in place. Anchors are left untouched.
func ReleasePins(nodes []Node) {
	for i := range nodes {
		nodes[i].Pin = nil
	}
}

// Shift translates every node and its previous position by d, preserving the
// implicit velocities and all pairwise distances.
func Shift(nodes []Node, d mgl64.Vec3) {
	for i := range nodes {
		nodes[i].Position = nodes[i].Position.Add(d)
		nodes[i].PrevPosition = nodes[i].PrevPosition.Add(d)
	}
}
