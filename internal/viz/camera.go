package viz

import (
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
)

// Camera is an orthographic view of world space onto a canvas. Yaw turns
// around the world Y axis, Pitch tilts around the view X axis afterwards.
type Camera struct {
	Center     mgl64.Vec3
	Span       float64
	Yaw, Pitch float64
	Zoom       float64
}

func NewCamera() *Camera {
	return &Camera{Span: 10, Pitch: 0.35, Yaw: 0.6, Zoom: 1}
}

func (c *Camera) RotateYaw(a float64)   { c.Yaw += a }
func (c *Camera) RotatePitch(a float64) { c.Pitch = mgl64.Clamp(c.Pitch+a, -math.Pi/2, math.Pi/2) }
func (c *Camera) ZoomIn()               { c.Zoom = math.Min(10, c.Zoom*1.2) }
func (c *Camera) ZoomOut()              { c.Zoom = math.Max(0.1, c.Zoom/1.2) }

// Fit centers the camera on the bounding box of points and sizes Span so the
// box fits with a margin. Empty input leaves the camera unchanged.
func (c *Camera) Fit(points []mgl64.Vec3, margin float64) {
	if len(points) == 0 {
		return
	}
	lo, hi := points[0], points[0]
	for _, p := range points[1:] {
		for k := 0; k < 3; k++ {
			lo[k] = math.Min(lo[k], p[k])
			hi[k] = math.Max(hi[k], p[k])
		}
	}
	c.Center = lo.Add(hi).Mul(0.5)
	c.Span = math.Max(hi.Sub(lo).Len()*margin, 1)
}

func (c *Camera) rotation() mgl64.Mat3 {
	return mgl64.Rotate3DX(c.Pitch).Mul3(mgl64.Rotate3DY(c.Yaw))
}

func (c *Camera) view(p mgl64.Vec3) mgl64.Vec3 {
	return c.rotation().Mul3x1(p.Sub(c.Center))
}

func (c *Camera) scale(sw, sh float64) float64 {
	return c.Zoom * math.Min(sw, sh) / c.Span
}

// Project maps p to dot coordinates on a sw x sh surface. It returns the view
// depth and whether the point lands inside the surface.
func (c *Camera) Project(p mgl64.Vec3, sw, sh int) (int, int, float64, bool) {
	q := c.view(p)
	scale := c.scale(float64(sw), float64(sh))
	x := int(math.Round(q.X()*scale)) + sw/2
	y := int(math.Round(-q.Y()*scale)) + sh/2
	return x, y, q.Z(), x >= 0 && x < sw && y >= 0 && y < sh
}

// Screen is Project without rounding or clipping, for vector output.
func (c *Camera) Screen(p mgl64.Vec3, sw, sh float64) (float64, float64) {
	q := c.view(p)
	scale := c.scale(sw, sh)
	return q.X()*scale + sw/2, -q.Y()*scale + sh/2
}

type projectedEdge struct {
	x1, y1, x2, y2 int
	depth          float64
}

// RenderEdges draws every segment that has at least one visible endpoint,
// far segments first. Segments whose projection is absurdly long are skipped
// so a diverged net cannot stall the frame.
func RenderEdges(c *Canvas, cam *Camera, edges [][2]mgl64.Vec3) int {
	if c == nil || cam == nil {
		return 0
	}
	sw, sh := c.Dots()
	limit := 4 * (sw + sh)
	proj := make([]projectedEdge, 0, len(edges))
	for _, e := range edges {
		x1, y1, d1, v1 := cam.Project(e[0], sw, sh)
		x2, y2, d2, v2 := cam.Project(e[1], sw, sh)
		if !v1 && !v2 {
			continue
		}
		if absInt(x2-x1)+absInt(y2-y1) > limit {
			continue
		}
		proj = append(proj, projectedEdge{x1, y1, x2, y2, (d1 + d2) / 2})
	}
	sort.Slice(proj, func(i, j int) bool { return proj[i].depth < proj[j].depth })
	for _, e := range proj {
		c.DrawLine(e.x1, e.y1, e.x2, e.y2)
	}
	return len(proj)
}

// RenderMarks draws a Mark at each visible point.
func RenderMarks(c *Canvas, cam *Camera, points []mgl64.Vec3) {
	sw, sh := c.Dots()
	for _, p := range points {
		if x, y, _, ok := cam.Project(p, sw, sh); ok {
			c.Mark(x, y)
		}
	}
}
