package config

import "sort"

func preset(mutate func(c *Config)) *Config {
	c := DefaultConfig()
	mutate(c)
	return c
}

var Presets = map[string]*Config{
	"curtain": preset(func(c *Config) {
		c.Anchors.Offsets = []Vector{
			{0, 9.5, 0},
			{9.5, 9.5, 0},
			{0, 0, 0},
			{9.5, 0, 0},
		}
	}),
	"scenario": preset(func(c *Config) {
		c.Width, c.Height = 5, 5
		c.Frames = 500
		c.Anchors.Offsets = []Vector{
			{0, 0, 0},
			{0, 2, 0},
			{2, 0, 0},
			{2, 2, 0},
		}
	}),
	"hammock": preset(func(c *Config) {
		c.Width, c.Height = 20, 4
		c.Physics.Iterations = 40
		c.Anchors.Offsets = []Vector{
			{0, 0, 0},
			{8, 0, 0},
			{0, 0, 1.5},
			{8, 0, 1.5},
		}
	}),
	"banner": preset(func(c *Config) {
		c.Width, c.Height = 16, 6
		c.Mode = "parallel"
		c.Parallel.Passes = 8
		c.Anchors.Offsets = []Vector{
			{0, 2.5, 0},
			{7.5, 2.5, 0},
			{0, 0, 0},
			{7.5, 0, 0},
		}
	}),
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
