package sim

import (
	"sync"

	"github.com/go-gl/mathgl/mgl64"
)

// PositionPool recycles position buffers of a fixed node count.
type PositionPool struct {
	pool sync.Pool
	size int
}

func NewPositionPool(nodeCount int) *PositionPool {
	return &PositionPool{
		size: nodeCount,
		pool: sync.Pool{
			New: func() interface{} {
				buf := make([]mgl64.Vec3, nodeCount)
				return &buf
			},
		},
	}
}

func (p *PositionPool) Get() []mgl64.Vec3 {
	return *p.pool.Get().(*[]mgl64.Vec3)
}

func (p *PositionPool) Put(buf []mgl64.Vec3) {
	if len(buf) != p.size {
		return
	}
	clear(buf)
	p.pool.Put(&buf)
}
