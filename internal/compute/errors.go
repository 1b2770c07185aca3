package compute

import "errors"

var (
	// ErrCapacityExceeded indicates more nodes than the record buffer holds.
	ErrCapacityExceeded = errors.New("compute: node count exceeds record capacity")

	// ErrUnknownMode indicates an unrecognised solver mode.
	ErrUnknownMode = errors.New("compute: unknown solver mode")

	// ErrInvalidParallelConfig indicates a non-positive block size, capacity or pass count.
	ErrInvalidParallelConfig = errors.New("compute: invalid parallel configuration")
)
