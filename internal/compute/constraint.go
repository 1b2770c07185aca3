package compute

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// correction returns the movement m of one visit of the pair (a, b); the
// caller applies a -= m and b += m. When the pair is too far apart m points
// from b to a so a is pulled toward b, when too close it points from a to b so
// a is pushed away. Coincident or satisfied pairs yield the zero vector.
func correction(a, b mgl64.Vec3, rest, stiffness float64) mgl64.Vec3 {
	delta := a.Sub(b)
	dist := delta.Len()
	if dist == 0 || dist == rest {
		return mgl64.Vec3{}
	}

	diff := math.Abs(dist - rest)
	dir := delta.Mul(1 / dist)
	if dist < rest {
		dir = dir.Mul(-1)
	}

	return dir.Mul(diff * stiffness)
}

// verlet advances one position by its implicit velocity plus gravity*dt and
// returns the new (prev, cur) pair.
func verlet(prev, cur, accel mgl64.Vec3) (mgl64.Vec3, mgl64.Vec3) {
	velocity := cur.Sub(prev)
	return cur, cur.Add(velocity).Add(accel)
}
