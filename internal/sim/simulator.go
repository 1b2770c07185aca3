package sim

import (
	"context"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/go-logr/logr"
	"github.com/san-kum/verletnet/internal/cloth"
	"github.com/san-kum/verletnet/internal/compute"
)

// Simulator owns one net: its node arena, the solver strategy chosen at
// construction and the bookkeeping for bulk displacement correction. It is
// frame-synchronous and not safe for concurrent use.
type Simulator struct {
	lat       cloth.Lattice
	params    cloth.Params
	anchors   []cloth.Anchor
	reference cloth.Anchor
	factory   cloth.Factory
	start     mgl64.Vec3

	mode     compute.Mode
	parallel compute.ParallelConfig
	solver   compute.Solver

	log       logr.Logger
	validate  bool
	metrics   []Metric
	observers []Observer

	nodes   []cloth.Node
	edges   []cloth.Edge
	pool    *PositionPool
	lastRef mgl64.Vec3
	events  []Event

	initialized bool
	ticks       int
	time        float64
}

func New(lat cloth.Lattice, params cloth.Params, anchors []cloth.Anchor, opts ...Option) (*Simulator, error) {
	s := &Simulator{
		lat:      lat,
		params:   params,
		anchors:  anchors,
		factory:  cloth.DefaultFactory,
		mode:     compute.Sequential,
		parallel: compute.DefaultParallelConfig(),
		log:      logr.Discard(),
		validate: true,
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.validateConfig(); err != nil {
		return nil, err
	}

	if s.reference == nil {
		s.reference = anchors[0]
	}
	if s.solver == nil {
		solver, err := compute.NewSolver(s.mode, lat.Count(), s.parallel)
		if err != nil {
			return nil, err
		}
		s.solver = solver
	} else if _, ok := s.solver.(*compute.ParallelSolver); ok {
		s.mode = compute.Parallel
	}

	s.log.V(1).Info("simulator created",
		"width", lat.Width, "height", lat.Height,
		"mode", s.mode.String(), "solver", s.solver.Name())
	return s, nil
}

func (s *Simulator) validateConfig() error {
	if err := s.lat.Validate(); err != nil {
		return err
	}
	if len(s.anchors) < 4 {
		return fmt.Errorf("%w: got %d", cloth.ErrTooFewAnchors, len(s.anchors))
	}
	for i, a := range s.anchors[:4] {
		if a == nil {
			return fmt.Errorf("%w: anchor %d is nil", cloth.ErrTooFewAnchors, i)
		}
	}
	if s.factory == nil {
		return cloth.ErrNilFactory
	}
	if err := s.params.Validate(); err != nil {
		return err
	}
	if !cloth.Finite(s.start) {
		return fmt.Errorf("%w: start position %v", cloth.ErrInvalidParams, s.start)
	}
	if s.solver == nil && s.mode == compute.Parallel {
		if err := s.parallel.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Init builds the topology. It runs exactly once per simulator.
func (s *Simulator) Init() error {
	if s.initialized {
		return ErrAlreadyInitialized
	}

	nodes, err := cloth.Build(s.lat, s.factory, s.start, s.anchors)
	if err != nil {
		return err
	}

	s.nodes = nodes
	s.edges = cloth.Edges(nodes)
	s.pool = NewPositionPool(len(nodes))
	s.lastRef = s.reference.Position()
	s.initialized = true

	s.log.V(1).Info("topology built", "nodes", len(nodes), "edges", len(s.edges))
	return nil
}

// Tick advances the net by one frame of length dt.
func (s *Simulator) Tick(dt float64) error {
	if !s.initialized {
		return ErrNotInitialized
	}
	if dt < 0 || math.IsNaN(dt) || math.IsInf(dt, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidTimestep, dt)
	}

	s.drainEvents()
	s.correctDisplacement()

	if err := s.solver.RunTick(s.nodes, s.params, dt); err != nil {
		return &SimulationError{Tick: s.ticks, Time: s.time, Node: -1, Wrapped: err}
	}

	s.ticks++
	s.time += dt

	if s.validate {
		for i := range s.nodes {
			if !cloth.Finite(s.nodes[i].Position) || !cloth.Finite(s.nodes[i].PrevPosition) {
				err := &SimulationError{Tick: s.ticks, Time: s.time, Node: i, Wrapped: ErrInvalidState}
				s.log.Error(err, "aborting tick", "node", i)
				return err
			}
		}
	}

	if len(s.metrics) > 0 || len(s.observers) > 0 {
		f := s.frame()
		for _, m := range s.metrics {
			m.Observe(f)
		}
		for _, obs := range s.observers {
			obs.OnTick(f)
		}
		s.pool.Put(f.Positions)
	}

	return nil
}

// correctDisplacement shifts the whole net, current and previous positions
// alike, when the reference anchor jumped further than the displacement limit
// since the last tick. The reference is recorded every tick.
func (s *Simulator) correctDisplacement() {
	ref := s.reference.Position()
	delta := ref.Sub(s.lastRef)
	if dist := delta.Len(); dist > s.params.DisplacementLimit {
		cloth.Shift(s.nodes, delta)
		s.log.V(1).Info("bulk displacement corrected", "tick", s.ticks, "distance", dist)
	}
	s.lastRef = ref
}

func (s *Simulator) drainEvents() {
	for _, ev := range s.events {
		switch ev {
		case EventReleasePins:
			s.ReleaseAllPins()
		}
	}
	s.events = s.events[:0]
}

// Post queues ev for the next tick.
func (s *Simulator) Post(ev Event) {
	s.events = append(s.events, ev)
}

// ReleaseAllPins unbinds every pinned node immediately. Anchors are not
// affected and nodes never re-pin.
func (s *Simulator) ReleaseAllPins() {
	released := 0
	for i := range s.nodes {
		if s.nodes[i].Pinned() {
			released++
		}
	}
	cloth.ReleasePins(s.nodes)
	if released > 0 {
		s.log.Info("pins released", "count", released, "tick", s.ticks)
	}
}

func (s *Simulator) frame() Frame {
	buf := s.pool.Get()
	for i := range s.nodes {
		buf[i] = s.nodes[i].Position
	}
	return Frame{
		Tick:      s.ticks,
		Time:      s.time,
		Nodes:     s.nodes,
		Positions: buf,
		Edges:     s.edges,
		Params:    s.params,
	}
}

// Positions returns the node positions in index order.
func (s *Simulator) Positions() []mgl64.Vec3 {
	out := make([]mgl64.Vec3, len(s.nodes))
	for i := range s.nodes {
		out[i] = s.nodes[i].Position
	}
	return out
}

// Edges returns the endpoint positions of each undirected edge once.
func (s *Simulator) Edges() [][2]mgl64.Vec3 {
	out := make([][2]mgl64.Vec3, len(s.edges))
	for i, e := range s.edges {
		out[i] = [2]mgl64.Vec3{s.nodes[e.A].Position, s.nodes[e.B].Position}
	}
	return out
}

// Adjacency returns the undirected edges as index pairs.
func (s *Simulator) Adjacency() []cloth.Edge {
	out := make([]cloth.Edge, len(s.edges))
	copy(out, s.edges)
	return out
}

// Nodes returns a deep copy of the arena.
func (s *Simulator) Nodes() []cloth.Node {
	out := make([]cloth.Node, len(s.nodes))
	for i, n := range s.nodes {
		n.Neighbors = append([]int(nil), n.Neighbors...)
		out[i] = n
	}
	return out
}

// Anchors returns the anchors in corner binding order.
func (s *Simulator) Anchors() []cloth.Anchor {
	return append([]cloth.Anchor(nil), s.anchors...)
}

// Pinned returns the number of nodes still bound to an anchor.
func (s *Simulator) Pinned() int {
	count := 0
	for i := range s.nodes {
		if s.nodes[i].Pinned() {
			count++
		}
	}
	return count
}

func (s *Simulator) Ticks() int               { return s.ticks }
func (s *Simulator) Time() float64            { return s.time }
func (s *Simulator) Lattice() cloth.Lattice   { return s.lat }
func (s *Simulator) Mode() compute.Mode       { return s.mode }
func (s *Simulator) Params() cloth.Params     { return s.params }
func (s *Simulator) SolverName() string       { return s.solver.Name() }
func (s *Simulator) Reference() cloth.Anchor  { return s.reference }
func (s *Simulator) Initialized() bool        { return s.initialized }
func (s *Simulator) AddMetric(m Metric)       { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(obs Observer) { s.observers = append(s.observers, obs) }
func (s *Simulator) PendingEvents() int       { return len(s.events) }

// Close releases solver resources.
func (s *Simulator) Close() {
	if c, ok := s.solver.(interface{ Close() }); ok {
		c.Close()
	}
}

// Run ticks frames times with a fixed dt, initializing the simulator first if
// needed. A callback returning false stops the run early.
func (s *Simulator) Run(ctx context.Context, dt float64, frames int, callback func(Frame) bool) (*Result, error) {
	if frames < 0 {
		return nil, fmt.Errorf("frames must be non-negative, got %d", frames)
	}
	if !s.initialized {
		if err := s.Init(); err != nil {
			return nil, err
		}
	}

	result := &Result{
		Times:   make([]float64, 0, frames),
		Series:  make(map[string][]float64, len(s.metrics)),
		Metrics: make(map[string]float64, len(s.metrics)),
	}
	for _, m := range s.metrics {
		m.Reset()
		result.Series[m.Name()] = make([]float64, 0, frames)
	}

	for i := 0; i < frames; i++ {
		select {
		case <-ctx.Done():
			s.collect(result)
			return result, ctx.Err()
		default:
		}

		if err := s.Tick(dt); err != nil {
			s.collect(result)
			return result, err
		}

		result.Ticks++
		result.Times = append(result.Times, s.time)
		for _, m := range s.metrics {
			result.Series[m.Name()] = append(result.Series[m.Name()], m.Value())
		}

		if callback != nil {
			f := s.frame()
			cont := callback(f)
			s.pool.Put(f.Positions)
			if !cont {
				break
			}
		}
	}

	s.collect(result)
	return result, nil
}

func (s *Simulator) collect(result *Result) {
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
}
