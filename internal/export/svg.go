package export

import (
	"bufio"
	"fmt"
	"io"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/verletnet/internal/sim"
	"github.com/san-kum/verletnet/internal/viz"
)

// SVGOptions controls NetSVG. A nil Camera is fitted to the net.
type SVGOptions struct {
	Width, Height int
	Camera        *viz.Camera
	Background    string
	Stroke        string
	Pin           string
}

func DefaultSVGOptions() SVGOptions {
	return SVGOptions{
		Width:      800,
		Height:     600,
		Background: "#0a0a0a",
		Stroke:     "#e8c07d",
		Pin:        "#ff4444",
	}
}

// NetSVG draws the current edges of s as line segments and its pinned nodes
// as dots.
func NetSVG(w io.Writer, s *sim.Simulator, opts SVGOptions) error {
	if !s.Initialized() {
		return sim.ErrNotInitialized
	}
	cam := opts.Camera
	if cam == nil {
		cam = viz.NewCamera()
		cam.Fit(s.Positions(), 1.1)
	}
	sw, sh := float64(opts.Width), float64(opts.Height)

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
<g stroke="%s" stroke-width="1.5" stroke-linecap="round">
`, opts.Width, opts.Height, opts.Width, opts.Height, opts.Background, opts.Stroke)

	for _, e := range s.Edges() {
		x1, y1 := cam.Screen(e[0], sw, sh)
		x2, y2 := cam.Screen(e[1], sw, sh)
		fmt.Fprintf(bw, "<line x1=\"%.2f\" y1=\"%.2f\" x2=\"%.2f\" y2=\"%.2f\"/>\n", x1, y1, x2, y2)
	}
	fmt.Fprintf(bw, "</g>\n<g fill=\"%s\">\n", opts.Pin)

	for _, p := range pinnedPositions(s) {
		x, y := cam.Screen(p, sw, sh)
		fmt.Fprintf(bw, "<circle cx=\"%.2f\" cy=\"%.2f\" r=\"4\"/>\n", x, y)
	}
	bw.WriteString("</g>\n</svg>\n")
	return bw.Flush()
}

func pinnedPositions(s *sim.Simulator) []mgl64.Vec3 {
	var out []mgl64.Vec3
	for _, n := range s.Nodes() {
		if n.Pinned() {
			out = append(out, n.Position)
		}
	}
	return out
}

// CanvasSVG converts a braille canvas to SVG, one circle per lit dot.
func CanvasSVG(w io.Writer, canvas *viz.Canvas, scale float64) error {
	if canvas == nil {
		return fmt.Errorf("export: nil canvas")
	}
	dw, dh := canvas.Dots()
	width, height := float64(dw)*scale, float64(dh)*scale

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<g fill="#00ff00">
`, width, height, width, height)

	r := scale * 0.4
	for y := 0; y < dh; y++ {
		for x := 0; x < dw; x++ {
			if canvas.Lit(x, y) {
				fmt.Fprintf(bw, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n",
					float64(x)*scale+scale/2, float64(y)*scale+scale/2, r)
			}
		}
	}
	bw.WriteString("</g>\n</svg>\n")
	return bw.Flush()
}
