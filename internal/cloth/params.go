package cloth

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	DefaultRestDistance      = 0.5
	DefaultIterations        = 80
	DefaultStiffness         = 0.5
	DefaultDisplacementLimit = 1.0
)

// Params are the global parameters shared by every constraint and node.
type Params struct {
	RestDistance float64
	Gravity      mgl64.Vec3
	Iterations   int
	// Stiffness is the fraction of the positional correction applied to each
	// endpoint per pair visit, in (0, 1].
	Stiffness float64
	// DisplacementLimit is the largest per-frame reference movement that is
	// integrated normally; anything larger is applied as a rigid shift.
	DisplacementLimit float64
}

func DefaultParams() Params {
	return Params{
		RestDistance:      DefaultRestDistance,
		Gravity:           mgl64.Vec3{0, -0.5, 0},
		Iterations:        DefaultIterations,
		Stiffness:         DefaultStiffness,
		DisplacementLimit: DefaultDisplacementLimit,
	}
}

// Validate rejects values that would corrupt node state. Nothing downstream
// recovers from a non-finite position once it is written.
func (p Params) Validate() error {
	switch {
	case !(p.RestDistance > 0) || math.IsInf(p.RestDistance, 0):
		return fmt.Errorf("%w: rest distance %v", ErrInvalidParams, p.RestDistance)
	case !Finite(p.Gravity):
		return fmt.Errorf("%w: gravity %v", ErrInvalidParams, p.Gravity)
	case p.Iterations < 1:
		return fmt.Errorf("%w: iterations %d", ErrInvalidParams, p.Iterations)
	case !(p.Stiffness > 0 && p.Stiffness <= 1):
		return fmt.Errorf("%w: stiffness %v not in (0, 1]", ErrInvalidParams, p.Stiffness)
	case !(p.DisplacementLimit >= 0) || math.IsInf(p.DisplacementLimit, 0):
		return fmt.Errorf("%w: displacement limit %v", ErrInvalidParams, p.DisplacementLimit)
	}
	return nil
}
