package compute

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/verletnet/internal/cloth"
)

// NoNeighbor marks an unused neighbor slot.
const NoNeighbor int32 = -1

// NodeRecord is the fixed-shape form of a node handed to the kernels. Pins
// are resolved to a concrete position at upload time.
type NodeRecord struct {
	Prev      mgl64.Vec3
	Cur       mgl64.Vec3
	Pinned    bool
	Pin       mgl64.Vec3
	Neighbors [cloth.MaxNeighbors]int32
}

// NewRecordBuffer allocates capacity empty records.
func NewRecordBuffer(capacity int) []NodeRecord {
	records := make([]NodeRecord, capacity)
	for i := range records {
		records[i].Neighbors = emptyNeighbors()
	}
	return records
}

func emptyNeighbors() [cloth.MaxNeighbors]int32 {
	return [cloth.MaxNeighbors]int32{NoNeighbor, NoNeighbor, NoNeighbor, NoNeighbor}
}

// Upload copies the arena into records, resolving every pin once.
func Upload(records []NodeRecord, nodes []cloth.Node) error {
	if len(nodes) > len(records) {
		return ErrCapacityExceeded
	}

	for i := range nodes {
		n := &nodes[i]
		r := NodeRecord{
			Prev:      n.PrevPosition,
			Cur:       n.Position,
			Neighbors: emptyNeighbors(),
		}
		if n.Pin != nil {
			r.Pinned = true
			r.Pin = n.Pin.Position()
		}
		for k, j := range n.Neighbors {
			if k >= cloth.MaxNeighbors {
				break
			}
			r.Neighbors[k] = int32(j)
		}
		records[i] = r
	}
	return nil
}

// Download copies kernel results back into the arena.
func Download(records []NodeRecord, nodes []cloth.Node) {
	for i := range nodes {
		nodes[i].Position = records[i].Cur
		nodes[i].PrevPosition = records[i].Prev
	}
}
