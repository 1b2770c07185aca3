package cloth

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// MaxNeighbors bounds the adjacency of a lattice node.
const MaxNeighbors = 4

// Node is a single point mass. Velocity is implicit: Position - PrevPosition.
type Node struct {
	Position     mgl64.Vec3
	PrevPosition mgl64.Vec3

	// Pin forces Position to the anchor on every relaxation pass. Not owned.
	Pin Anchor

	// Neighbors are arena indices ordered left, up, right, down.
	Neighbors []int
}

// Pinned reports whether the node is bound to an anchor.
func (n *Node) Pinned() bool { return n.Pin != nil }

// Velocity returns the implicit per-frame velocity.
func (n *Node) Velocity() mgl64.Vec3 { return n.Position.Sub(n.PrevPosition) }

// Factory produces a default node located at pos.
type Factory func(pos mgl64.Vec3) Node

// DefaultFactory returns an unpinned node at rest at pos.
func DefaultFactory(pos mgl64.Vec3) Node {
	return Node{
		Position:     pos,
		PrevPosition: pos,
		Neighbors:    make([]int, 0, MaxNeighbors),
	}
}

// Finite reports whether every component of v is a real number.
func Finite(v mgl64.Vec3) bool {
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}
