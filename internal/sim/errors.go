package sim

import (
	"errors"
	"fmt"
)

// Controller errors.
var (
	// ErrInvalidTimestep indicates a negative or non-finite frame time.
	ErrInvalidTimestep = errors.New("sim: invalid timestep")

	// ErrNotInitialized indicates Tick was called before Init.
	ErrNotInitialized = errors.New("sim: simulator not initialized")

	// ErrAlreadyInitialized indicates a second Init on the same simulator.
	ErrAlreadyInitialized = errors.New("sim: simulator already initialized")

	// ErrInvalidState indicates a node position became NaN or Inf.
	ErrInvalidState = errors.New("sim: invalid state (NaN or Inf detected)")
)

// SimulationError wraps an error with the tick it occurred on.
type SimulationError struct {
	Tick    int
	Time    float64
	Node    int
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("tick %d (t=%.4f) node %d: %v", e.Tick, e.Time, e.Node, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
