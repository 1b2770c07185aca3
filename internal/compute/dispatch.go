package compute

import (
	"fmt"
	"strings"
)

// DefaultBlockSize is the number of records per work group.
const DefaultBlockSize = 256

// DispatchPolicy decides how a node count is cut into work groups.
type DispatchPolicy int

const (
	// DispatchCover schedules ceil(n/block) groups so every node is updated.
	DispatchCover DispatchPolicy = iota
	// DispatchTruncate schedules n/block groups; a trailing partial group
	// receives no update in that dispatch.
	DispatchTruncate
)

func (p DispatchPolicy) String() string {
	switch p {
	case DispatchCover:
		return "cover"
	case DispatchTruncate:
		return "truncate"
	}
	return fmt.Sprintf("dispatch(%d)", int(p))
}

func ParseDispatchPolicy(s string) (DispatchPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "cover", "ceil":
		return DispatchCover, nil
	case "truncate", "floor":
		return DispatchTruncate, nil
	}
	return 0, fmt.Errorf("%w: dispatch policy %q", ErrInvalidParallelConfig, s)
}

// Groups returns the number of work groups scheduled for n records.
func Groups(n, block int, policy DispatchPolicy) int {
	if n <= 0 || block <= 0 {
		return 0
	}
	if policy == DispatchTruncate {
		return n / block
	}
	return (n + block - 1) / block
}

// Covered returns how many of the first n records a dispatch updates.
func Covered(n, block int, policy DispatchPolicy) int {
	covered := Groups(n, block, policy) * block
	if covered > n {
		covered = n
	}
	return covered
}
