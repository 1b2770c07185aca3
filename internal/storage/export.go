package storage

import (
	"encoding/json"
	"io"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/verletnet/internal/cloth"
	"github.com/san-kum/verletnet/internal/sim"
)

type ExportData struct {
	Width     int                  `json:"width"`
	Height    int                  `json:"height"`
	Mode      string               `json:"mode"`
	Dt        float64              `json:"dt"`
	Ticks     int                  `json:"ticks"`
	Times     []float64            `json:"times"`
	Series    map[string][]float64 `json:"series"`
	Metrics   map[string]float64   `json:"metrics"`
	Positions [][3]float64         `json:"positions"`
	Edges     [][2]int             `json:"edges"`
}

// ExportJSON writes a self-contained snapshot of a run: metric series plus the
// final geometry of the net.
func ExportJSON(w io.Writer, s *sim.Simulator, dt float64, result *sim.Result) error {
	lat := s.Lattice()
	data := ExportData{
		Width:     lat.Width,
		Height:    lat.Height,
		Mode:      s.Mode().String(),
		Dt:        dt,
		Ticks:     s.Ticks(),
		Positions: toArrays(s.Positions()),
		Edges:     toPairs(s.Adjacency()),
	}
	if result != nil {
		data.Times = result.Times
		data.Series = result.Series
		data.Metrics = result.Metrics
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func toArrays(ps []mgl64.Vec3) [][3]float64 {
	out := make([][3]float64, len(ps))
	for i, p := range ps {
		out[i] = [3]float64(p)
	}
	return out
}

func toPairs(edges []cloth.Edge) [][2]int {
	out := make([][2]int, len(edges))
	for i, e := range edges {
		out[i] = [2]int{e.A, e.B}
	}
	return out
}
