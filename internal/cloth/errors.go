package cloth

import "errors"

// Configuration errors surfaced while building a net.
var (
	// ErrInvalidDimensions indicates a non-positive lattice width or height.
	ErrInvalidDimensions = errors.New("cloth: lattice dimensions must be positive")

	// ErrTooFewAnchors indicates fewer than four anchors for the lattice corners.
	ErrTooFewAnchors = errors.New("cloth: at least 4 anchors are required")

	// ErrNilFactory indicates a missing node factory.
	ErrNilFactory = errors.New("cloth: node factory is nil")

	// ErrInvalidParams indicates a parameter outside its valid range or non-finite.
	ErrInvalidParams = errors.New("cloth: parameter out of valid bounds")
)
