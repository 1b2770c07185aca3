package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/verletnet/internal/sim"
)

const (
	metadataFile  = "metadata.json"
	seriesFile    = "series.csv"
	positionsFile = "positions.csv"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID                string             `json:"id"`
	Name              string             `json:"name"`
	Timestamp         time.Time          `json:"timestamp"`
	Width             int                `json:"width"`
	Height            int                `json:"height"`
	Mode              string             `json:"mode"`
	Solver            string             `json:"solver"`
	Dt                float64            `json:"dt"`
	Frames            int                `json:"frames"`
	Ticks             int                `json:"ticks"`
	RestDistance      float64            `json:"rest_distance"`
	Gravity           []float64          `json:"gravity"`
	Iterations        int                `json:"iterations"`
	Stiffness         float64            `json:"stiffness"`
	DisplacementLimit float64            `json:"displacement_limit"`
	Metrics           map[string]float64 `json:"metrics"`
}

// Describe fills the run parameters of a metadata record from s.
func Describe(name string, s *sim.Simulator, dt float64, frames int) RunMetadata {
	lat, p := s.Lattice(), s.Params()
	return RunMetadata{
		Name:              name,
		Width:             lat.Width,
		Height:            lat.Height,
		Mode:              s.Mode().String(),
		Solver:            s.SolverName(),
		Dt:                dt,
		Frames:            frames,
		RestDistance:      p.RestDistance,
		Gravity:           []float64{p.Gravity[0], p.Gravity[1], p.Gravity[2]},
		Iterations:        p.Iterations,
		Stiffness:         p.Stiffness,
		DisplacementLimit: p.DisplacementLimit,
	}
}

// Save writes one run: metadata, the per-tick metric series and the final
// node positions. meta.ID and meta.Timestamp are filled in.
func (s *Store) Save(meta RunMetadata, result *sim.Result, positions []mgl64.Vec3) (string, error) {
	name := meta.Name
	if name == "" {
		name = "net"
	}
	now := time.Now()
	runID := fmt.Sprintf("%s_%d", name, now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta.ID = runID
	meta.Name = name
	meta.Timestamp = now
	if result != nil {
		meta.Ticks = result.Ticks
		meta.Metrics = result.Metrics
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeSeries(filepath.Join(runDir, seriesFile), result); err != nil {
		return "", err
	}
	if err := writePositions(filepath.Join(runDir, positionsFile), positions); err != nil {
		return "", err
	}

	return runID, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func seriesNames(result *sim.Result) []string {
	names := make([]string, 0, len(result.Series))
	for name := range result.Series {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func writeSeries(path string, result *sim.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if result == nil {
		w.Flush()
		return w.Error()
	}

	names := seriesNames(result)
	header := append([]string{"tick", "time"}, names...)
	if err := w.Write(header); err != nil {
		return err
	}

	for i, t := range result.Times {
		row := []string{strconv.Itoa(i + 1), strconv.FormatFloat(t, 'f', 6, 64)}
		for _, name := range names {
			val := 0.0
			if series := result.Series[name]; i < len(series) {
				val = series[i]
			}
			row = append(row, strconv.FormatFloat(val, 'g', -1, 64))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func writePositions(path string, positions []mgl64.Vec3) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"index", "x", "y", "z"}); err != nil {
		return err
	}
	for i, p := range positions {
		row := []string{
			strconv.Itoa(i),
			strconv.FormatFloat(p[0], 'g', -1, 64),
			strconv.FormatFloat(p[1], 'g', -1, 64),
			strconv.FormatFloat(p[2], 'g', -1, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1
	return r.ReadAll()
}

// LoadSeries returns the metric series of a run keyed by metric name, plus
// the time of each tick.
func (s *Store) LoadSeries(runID string) (map[string][]float64, []float64, error) {
	records, err := readCSV(filepath.Join(s.baseDir, runID, seriesFile))
	if err != nil {
		return nil, nil, err
	}

	series := make(map[string][]float64)
	if len(records) < 2 {
		return series, []float64{}, nil
	}

	names := records[0][2:]
	times := make([]float64, 0, len(records)-1)
	for _, name := range names {
		series[name] = make([]float64, 0, len(records)-1)
	}

	for _, record := range records[1:] {
		if len(record) < 2 {
			continue
		}
		t, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			continue
		}
		times = append(times, t)

		for j, name := range names {
			val := 0.0
			if j+2 < len(record) {
				val, _ = strconv.ParseFloat(record[j+2], 64)
			}
			series[name] = append(series[name], val)
		}
	}

	return series, times, nil
}

// LoadPositions returns the final node positions of a run in index order.
func (s *Store) LoadPositions(runID string) ([]mgl64.Vec3, error) {
	records, err := readCSV(filepath.Join(s.baseDir, runID, positionsFile))
	if err != nil {
		return nil, err
	}

	positions := make([]mgl64.Vec3, 0, len(records))
	for i := 1; i < len(records); i++ {
		record := records[i]
		if len(record) < 4 {
			continue
		}

		var p mgl64.Vec3
		for k := 0; k < 3; k++ {
			v, err := strconv.ParseFloat(record[k+1], 64)
			if err != nil {
				return nil, fmt.Errorf("positions.csv line %d: %w", i+1, err)
			}
			p[k] = v
		}
		positions = append(positions, p)
	}

	return positions, nil
}
