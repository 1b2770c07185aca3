package optim

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/verletnet/internal/config"
	"github.com/san-kum/verletnet/internal/metrics"
	"github.com/san-kum/verletnet/internal/sim"
)

// Axis is one swept configuration value.
type Axis struct {
	Name   string
	Values []float64
	Apply  func(c *config.Config, v float64)
}

func IterationsAxis(values ...float64) Axis {
	return Axis{Name: "iterations", Values: values, Apply: func(c *config.Config, v float64) {
		c.Physics.Iterations = int(v)
	}}
}

func StiffnessAxis(values ...float64) Axis {
	return Axis{Name: "stiffness", Values: values, Apply: func(c *config.Config, v float64) {
		c.Physics.Stiffness = v
	}}
}

func PassesAxis(values ...float64) Axis {
	return Axis{Name: "passes", Values: values, Apply: func(c *config.Config, v float64) {
		c.Parallel.Passes = int(v)
	}}
}

// Objective scores a configuration; lower is better.
type Objective func(ctx context.Context, cfg *config.Config) (float64, error)

// Trial is one evaluated grid point. Failed trials keep their error and score
// +Inf.
type Trial struct {
	Params map[string]float64
	Score  float64
	Err    error
}

type GridSearch struct {
	axes    []Axis
	workers int
}

func NewGridSearch(axes ...Axis) *GridSearch {
	return &GridSearch{axes: axes, workers: runtime.GOMAXPROCS(0)}
}

// WithWorkers bounds how many trials run at once.
func (g *GridSearch) WithWorkers(n int) *GridSearch {
	if n > 0 {
		g.workers = n
	}
	return g
}

// Search evaluates objective on every combination of axis values applied to a
// copy of base. Trials are returned in ascending score order, best first.
func (g *GridSearch) Search(ctx context.Context, base *config.Config, objective Objective) ([]Trial, error) {
	if len(g.axes) == 0 {
		return nil, fmt.Errorf("optim: no axes to search")
	}

	var points []map[string]float64
	g.enumerate(0, map[string]float64{}, &points)

	trials := make([]Trial, len(points))

	grp, ctx := errgroup.WithContext(ctx)
	grp.SetLimit(g.workers)
	for i, p := range points {
		grp.Go(func() error {
			cfg := base.Clone()
			for _, a := range g.axes {
				a.Apply(cfg, p[a.Name])
			}
			score, err := objective(ctx, cfg)
			if err != nil {
				score = math.Inf(1)
			}
			trials[i] = Trial{Params: p, Score: score, Err: err}
			return ctx.Err()
		})
	}
	if err := grp.Wait(); err != nil {
		return nil, err
	}

	sort.SliceStable(trials, func(i, j int) bool { return trials[i].Score < trials[j].Score })
	return trials, nil
}

func (g *GridSearch) enumerate(depth int, current map[string]float64, out *[]map[string]float64) {
	if depth == len(g.axes) {
		*out = append(*out, current)
		return
	}

	axis := g.axes[depth]
	for _, val := range axis.Values {
		next := make(map[string]float64, len(current)+1)
		for k, v := range current {
			next[k] = v
		}
		next[axis.Name] = val
		g.enumerate(depth+1, next, out)
	}
}

// FinalResidual runs the configured net for cfg.Frames ticks and scores it by
// the constraint residual after the last tick.
func FinalResidual(ctx context.Context, cfg *config.Config) (float64, error) {
	residual := metrics.NewResidual()
	s, _, err := cfg.NewSimulator(sim.WithMetrics(residual))
	if err != nil {
		return 0, err
	}
	defer s.Close()

	if _, err := s.Run(ctx, cfg.Dt, cfg.Frames, nil); err != nil {
		return 0, err
	}
	return residual.Value(), nil
}
