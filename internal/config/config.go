package config

import (
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/verletnet/internal/cloth"
	"github.com/san-kum/verletnet/internal/compute"
	"github.com/san-kum/verletnet/internal/sim"
)

const (
	DefaultWidth  = 20
	DefaultHeight = 20
	DefaultDt     = 0.016
	DefaultFrames = 600
	DefaultSpan   = 9.5
)

// ErrInvalidConfig indicates a configuration that cannot produce a net.
var ErrInvalidConfig = errors.New("config: invalid configuration")

type Config struct {
	Width         int            `yaml:"width"`
	Height        int            `yaml:"height"`
	Mode          string         `yaml:"mode"`
	Dt            float64        `yaml:"dt"`
	Frames        int            `yaml:"frames"`
	Start         Vector         `yaml:"start"`
	ValidateState bool           `yaml:"validate_state"`
	Physics       PhysicsConfig  `yaml:"physics"`
	Anchors       AnchorConfig   `yaml:"anchors"`
	Parallel      ParallelConfig `yaml:"parallel"`
}

type PhysicsConfig struct {
	RestDistance      float64 `yaml:"rest_distance"`
	Gravity           Vector  `yaml:"gravity"`
	Iterations        int     `yaml:"iterations"`
	Stiffness         float64 `yaml:"stiffness"`
	DisplacementLimit float64 `yaml:"displacement_limit"`
}

// AnchorConfig places the four corner anchors relative to a movable rig.
// Offsets bind to the lattice corners in order.
type AnchorConfig struct {
	Origin  Vector   `yaml:"origin"`
	Offsets []Vector `yaml:"offsets"`
}

type ParallelConfig struct {
	Capacity  int    `yaml:"capacity"`
	BlockSize int    `yaml:"block_size"`
	Passes    int    `yaml:"passes"`
	Workers   int    `yaml:"workers"`
	Dispatch  string `yaml:"dispatch"`
	Resolve   string `yaml:"resolve"`
}

// Vector is a 3-component vector written as a yaml sequence.
type Vector []float64

func (v Vector) Vec3() (mgl64.Vec3, error) {
	if len(v) != 3 {
		return mgl64.Vec3{}, fmt.Errorf("%w: vector needs 3 components, got %d", ErrInvalidConfig, len(v))
	}
	out := mgl64.Vec3{v[0], v[1], v[2]}
	if !cloth.Finite(out) {
		return mgl64.Vec3{}, fmt.Errorf("%w: vector %v is not finite", ErrInvalidConfig, []float64(v))
	}
	return out, nil
}

func squareOffsets(span float64) []Vector {
	return []Vector{
		{0, 0, 0},
		{0, 0, span},
		{span, 0, 0},
		{span, 0, span},
	}
}

func DefaultConfig() *Config {
	params := cloth.DefaultParams()
	par := compute.DefaultParallelConfig()
	return &Config{
		Width:         DefaultWidth,
		Height:        DefaultHeight,
		Mode:          compute.Sequential.String(),
		Dt:            DefaultDt,
		Frames:        DefaultFrames,
		Start:         Vector{0, 0, 0},
		ValidateState: true,
		Physics: PhysicsConfig{
			RestDistance:      params.RestDistance,
			Gravity:           Vector{params.Gravity[0], params.Gravity[1], params.Gravity[2]},
			Iterations:        params.Iterations,
			Stiffness:         params.Stiffness,
			DisplacementLimit: params.DisplacementLimit,
		},
		Anchors: AnchorConfig{
			Origin:  Vector{0, 0, 0},
			Offsets: squareOffsets(DefaultSpan),
		},
		Parallel: ParallelConfig{
			Capacity:  par.Capacity,
			BlockSize: par.BlockSize,
			Passes:    par.Passes,
			Dispatch:  par.Dispatch.String(),
			Resolve:   par.Resolve.String(),
		},
	}
}

func Load(path string) (*Config, error) {
	return LoadOver(path, DefaultConfig())
}

// LoadOver reads path on top of a copy of base: keys present in the file
// replace base values, everything else is kept.
func LoadOver(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := base.Clone()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	out.Start = append(Vector(nil), c.Start...)
	out.Physics.Gravity = append(Vector(nil), c.Physics.Gravity...)
	out.Anchors.Origin = append(Vector(nil), c.Anchors.Origin...)
	out.Anchors.Offsets = make([]Vector, len(c.Anchors.Offsets))
	for i, off := range c.Anchors.Offsets {
		out.Anchors.Offsets[i] = append(Vector(nil), off...)
	}
	return &out
}

func (c *Config) Lattice() cloth.Lattice {
	return cloth.Lattice{Width: c.Width, Height: c.Height}
}

func (c *Config) Params() (cloth.Params, error) {
	g, err := c.Physics.Gravity.Vec3()
	if err != nil {
		return cloth.Params{}, fmt.Errorf("gravity: %w", err)
	}
	p := cloth.Params{
		RestDistance:      c.Physics.RestDistance,
		Gravity:           g,
		Iterations:        c.Physics.Iterations,
		Stiffness:         c.Physics.Stiffness,
		DisplacementLimit: c.Physics.DisplacementLimit,
	}
	if err := p.Validate(); err != nil {
		return cloth.Params{}, err
	}
	return p, nil
}

func (c *Config) ParallelConfig() (compute.ParallelConfig, error) {
	dispatch, err := compute.ParseDispatchPolicy(c.Parallel.Dispatch)
	if err != nil {
		return compute.ParallelConfig{}, err
	}
	resolve, err := compute.ParseResolvePolicy(c.Parallel.Resolve)
	if err != nil {
		return compute.ParallelConfig{}, err
	}
	pc := compute.ParallelConfig{
		Capacity:  c.Parallel.Capacity,
		BlockSize: c.Parallel.BlockSize,
		Passes:    c.Parallel.Passes,
		Workers:   c.Parallel.Workers,
		Dispatch:  dispatch,
		Resolve:   resolve,
	}
	return pc, pc.Validate()
}

// Validate checks every field that New would otherwise reject later, so a bad
// file fails at startup with the offending key in the message.
func (c *Config) Validate() error {
	if err := c.Lattice().Validate(); err != nil {
		return err
	}
	if !(c.Dt > 0) || math.IsInf(c.Dt, 0) {
		return fmt.Errorf("%w: dt must be positive, got %v", ErrInvalidConfig, c.Dt)
	}
	if c.Frames < 0 {
		return fmt.Errorf("%w: frames must be non-negative, got %d", ErrInvalidConfig, c.Frames)
	}
	if _, err := compute.ParseMode(c.Mode); err != nil {
		return err
	}
	if _, err := c.Start.Vec3(); err != nil {
		return fmt.Errorf("start: %w", err)
	}
	if _, err := c.Anchors.Origin.Vec3(); err != nil {
		return fmt.Errorf("anchors.origin: %w", err)
	}
	if len(c.Anchors.Offsets) < 4 {
		return fmt.Errorf("%w: got %d offsets", cloth.ErrTooFewAnchors, len(c.Anchors.Offsets))
	}
	for i, off := range c.Anchors.Offsets {
		if _, err := off.Vec3(); err != nil {
			return fmt.Errorf("anchors.offsets[%d]: %w", i, err)
		}
	}
	if _, err := c.Params(); err != nil {
		return err
	}
	if _, err := c.ParallelConfig(); err != nil {
		return err
	}
	return nil
}

// Net is a configuration resolved into simulator inputs. Rig moves every
// anchor at once and is also the reference for displacement correction.
type Net struct {
	Lattice cloth.Lattice
	Params  cloth.Params
	Rig     *cloth.Rig
	Anchors []cloth.Anchor
	Mode    compute.Mode
	Options []sim.Option
}

func (c *Config) Resolve() (*Net, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	params, _ := c.Params()
	par, _ := c.ParallelConfig()
	mode, _ := compute.ParseMode(c.Mode)
	start, _ := c.Start.Vec3()
	origin, _ := c.Anchors.Origin.Vec3()

	rig := cloth.NewRig(origin)
	offsets := make([]mgl64.Vec3, len(c.Anchors.Offsets))
	for i, off := range c.Anchors.Offsets {
		offsets[i], _ = off.Vec3()
	}

	return &Net{
		Lattice: c.Lattice(),
		Params:  params,
		Rig:     rig,
		Anchors: rig.Anchors(offsets...),
		Mode:    mode,
		Options: []sim.Option{
			sim.WithMode(mode),
			sim.WithStart(start),
			sim.WithReference(rig),
			sim.WithParallel(par),
			sim.WithValidateState(c.ValidateState),
		},
	}, nil
}

// NewSimulator resolves c and constructs an uninitialized simulator. extra
// options are applied after the configured ones.
func (c *Config) NewSimulator(extra ...sim.Option) (*sim.Simulator, *Net, error) {
	net, err := c.Resolve()
	if err != nil {
		return nil, nil, err
	}
	opts := append(append([]sim.Option(nil), net.Options...), extra...)
	s, err := sim.New(net.Lattice, net.Params, net.Anchors, opts...)
	if err != nil {
		return nil, nil, err
	}
	return s, net, nil
}
