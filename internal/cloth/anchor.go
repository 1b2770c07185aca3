package cloth

import "github.com/go-gl/mathgl/mgl64"

// Anchor provides the current position of an external pin point.
type Anchor interface {
	Position() mgl64.Vec3
}

// Fixed is an anchor that never moves.
type Fixed mgl64.Vec3

func (f Fixed) Position() mgl64.Vec3 { return mgl64.Vec3(f) }

// Rig is a movable reference frame. Anchors created from a rig are offsets from
// its origin, so moving the rig moves every pin at once; the rig itself is the
// usual reference anchor for bulk displacement correction.
type Rig struct {
	origin mgl64.Vec3
}

func NewRig(origin mgl64.Vec3) *Rig {
	return &Rig{origin: origin}
}

func (r *Rig) Position() mgl64.Vec3 { return r.origin }

// MoveTo places the rig origin at p.
func (r *Rig) MoveTo(p mgl64.Vec3) { r.origin = p }

// Translate shifts the rig origin by d.
func (r *Rig) Translate(d mgl64.Vec3) { r.origin = r.origin.Add(d) }

// Anchor returns a pin point fixed at offset relative to the rig origin.
func (r *Rig) Anchor(offset mgl64.Vec3) *RigAnchor {
	return &RigAnchor{rig: r, Offset: offset}
}

// Anchors returns one rig anchor per offset, in order.
func (r *Rig) Anchors(offsets ...mgl64.Vec3) []Anchor {
	out := make([]Anchor, len(offsets))
	for i, off := range offsets {
		out[i] = r.Anchor(off)
	}
	return out
}

// RigAnchor is a pin point attached to a Rig.
type RigAnchor struct {
	rig    *Rig
	Offset mgl64.Vec3
}

func (a *RigAnchor) Position() mgl64.Vec3 { return a.rig.origin.Add(a.Offset) }
