package automation

import (
	"fmt"
	"os"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/verletnet/internal/cloth"
	"github.com/san-kum/verletnet/internal/sim"
)

// Script is a timed sequence of actions applied to a running net, the
// headless stand-in for a user dragging the rig around.
type Script struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Steps       []Step `yaml:"steps"`
}

// Step fires once, right after tick At completes.
type Step struct {
	At     int       `yaml:"at"`
	Action Action    `yaml:"action"`
	Vector []float64 `yaml:"vector,omitempty"`
}

type Action string

const (
	ActionRelease   Action = "release"
	ActionTranslate Action = "translate"
	ActionMove      Action = "move"
	ActionStop      Action = "stop"
)

func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScript(data)
}

func ParseScript(data []byte) (*Script, error) {
	var script Script
	if err := yaml.Unmarshal(data, &script); err != nil {
		return nil, err
	}
	if err := script.Validate(); err != nil {
		return nil, err
	}
	sort.SliceStable(script.Steps, func(i, j int) bool { return script.Steps[i].At < script.Steps[j].At })
	return &script, nil
}

func (s *Script) Validate() error {
	for i, step := range s.Steps {
		if step.At < 1 {
			return fmt.Errorf("step %d: tick must be at least 1, got %d", i+1, step.At)
		}
		switch step.Action {
		case ActionRelease, ActionStop:
		case ActionTranslate, ActionMove:
			if _, err := step.vec(); err != nil {
				return fmt.Errorf("step %d: %w", i+1, err)
			}
		default:
			return fmt.Errorf("step %d: unknown action %q", i+1, step.Action)
		}
	}
	return nil
}

func (st Step) vec() (mgl64.Vec3, error) {
	if len(st.Vector) != 3 {
		return mgl64.Vec3{}, fmt.Errorf("%s needs a 3 component vector, got %d", st.Action, len(st.Vector))
	}
	v := mgl64.Vec3{st.Vector[0], st.Vector[1], st.Vector[2]}
	if !cloth.Finite(v) {
		return mgl64.Vec3{}, fmt.Errorf("%s vector %v is not finite", st.Action, st.Vector)
	}
	return v, nil
}

// Callback returns a sim.Run callback that applies the script to sm and rig.
// Rig actions are skipped when rig is nil. The callback stops the run on a
// stop step.
func (s *Script) Callback(sm *sim.Simulator, rig *cloth.Rig) func(sim.Frame) bool {
	next := 0
	return func(f sim.Frame) bool {
		for next < len(s.Steps) && s.Steps[next].At <= f.Tick {
			step := s.Steps[next]
			next++
			if step.At < f.Tick {
				continue
			}

			switch step.Action {
			case ActionRelease:
				sm.Post(sim.EventReleasePins)
			case ActionTranslate:
				if v, err := step.vec(); err == nil && rig != nil {
					rig.Translate(v)
				}
			case ActionMove:
				if v, err := step.vec(); err == nil && rig != nil {
					rig.MoveTo(v)
				}
			case ActionStop:
				return false
			}
		}
		return true
	}
}
