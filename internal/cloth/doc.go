// Package cloth provides the data model of a grid-connected point-mass net.
//
// The package defines the node arena and the inputs a solver consumes:
//
//   - [Node]: a point mass with current and previous position, an optional pin
//     and up to four neighbor indices into the same arena
//   - [Anchor]: an external position provider a node can be pinned to
//   - [Rig]: a movable reference frame whose anchors follow its origin
//   - [Lattice]: grid dimensions and the index convention
//   - [Params]: global constraint and integration parameters
//
// # Topology
//
// [Build] lays out a rectangular lattice once, wires four-directional
// adjacency and binds the four lattice corners to the first four anchors:
//
//	rig := cloth.NewRig(mgl64.Vec3{})
//	anchors := rig.Anchors(corners...)
//	nodes, err := cloth.Build(cloth.Lattice{Width: 20, Height: 20}, cloth.DefaultFactory, start, anchors)
//
// Neighbor lists hold arena indices rather than pointers so the same arena can
// be uploaded to a data-parallel solver without translation.
package cloth
