package viz

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/verletnet/internal/config"
	"github.com/san-kum/verletnet/internal/sim"
)

var presetInfo = map[string]string{
	"curtain":  "hangs from a vertical rig",
	"scenario": "small 5x5 reference net",
	"hammock":  "long strip between two bars",
	"banner":   "parallel kernels, 8 passes",
}

const (
	stateMenu = iota
	stateConfig
	stateSim
)

// field is one editable configuration value on the config screen.
type field struct {
	name string
	get  func(*config.Config) float64
	set  func(*config.Config, float64)
	step float64
}

var fields = []field{
	{"width", func(c *config.Config) float64 { return float64(c.Width) }, func(c *config.Config, v float64) { c.Width = int(v) }, 1},
	{"height", func(c *config.Config) float64 { return float64(c.Height) }, func(c *config.Config, v float64) { c.Height = int(v) }, 1},
	{"iterations", func(c *config.Config) float64 { return float64(c.Physics.Iterations) }, func(c *config.Config, v float64) { c.Physics.Iterations = int(v) }, 5},
	{"stiffness", func(c *config.Config) float64 { return c.Physics.Stiffness }, func(c *config.Config, v float64) { c.Physics.Stiffness = v }, 0.05},
	{"rest", func(c *config.Config) float64 { return c.Physics.RestDistance }, func(c *config.Config, v float64) { c.Physics.RestDistance = v }, 0.05},
	{"limit", func(c *config.Config) float64 { return c.Physics.DisplacementLimit }, func(c *config.Config, v float64) { c.Physics.DisplacementLimit = v }, 0.25},
	{"dt", func(c *config.Config) float64 { return c.Dt }, func(c *config.Config, v float64) { c.Dt = v }, 0.002},
}

// App picks a preset, lets the user tweak it, then hands over to the live
// view.
type App struct {
	state   int
	cursor  int
	presets []string
	cfg     *config.Config
	field   int
	editing bool
	editBuf string
	err     error
	opts    []sim.Option
	theme   Theme
	live    Model
}

// NewApp returns the preset picker. opts are applied to every simulator it
// builds, after the preset's own options.
func NewApp(opts ...sim.Option) App {
	return App{presets: config.ListPresets(), opts: opts, theme: Themes[0]}
}

func (a App) Init() tea.Cmd { return nil }

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if a.state == stateSim {
		next, cmd := a.live.Update(msg)
		a.live = next.(Model)
		return a, cmd
	}
	if key, ok := msg.(tea.KeyMsg); ok {
		switch a.state {
		case stateMenu:
			return a.menuKey(key)
		case stateConfig:
			return a.configKey(key)
		}
	}
	return a, nil
}

func (a App) menuKey(msg tea.KeyMsg) (App, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return a, tea.Quit
	case "up", "k":
		if a.cursor > 0 {
			a.cursor--
		}
	case "down", "j":
		if a.cursor < len(a.presets)-1 {
			a.cursor++
		}
	case "enter", " ":
		if len(a.presets) == 0 {
			return a, nil
		}
		a.cfg = config.GetPreset(a.presets[a.cursor])
		a.state, a.field, a.err = stateConfig, 0, nil
	}
	return a, nil
}

func (a App) configKey(msg tea.KeyMsg) (App, tea.Cmd) {
	f := fields[a.field]
	if a.editing {
		switch msg.String() {
		case "enter":
			if v, err := strconv.ParseFloat(a.editBuf, 64); err == nil {
				f.set(a.cfg, v)
			}
			a.editing, a.editBuf = false, ""
		case "esc":
			a.editing, a.editBuf = false, ""
		case "backspace":
			if len(a.editBuf) > 0 {
				a.editBuf = a.editBuf[:len(a.editBuf)-1]
			}
		default:
			if s := msg.String(); len(s) == 1 && strings.ContainsAny(s, "0123456789.-") {
				a.editBuf += s
			}
		}
		return a, nil
	}

	switch msg.String() {
	case "ctrl+c":
		return a, tea.Quit
	case "q", "esc":
		a.state = stateMenu
	case "up", "k":
		if a.field > 0 {
			a.field--
		}
	case "down", "j":
		if a.field < len(fields)-1 {
			a.field++
		}
	case "left", "h":
		f.set(a.cfg, f.get(a.cfg)-f.step)
	case "right", "l":
		f.set(a.cfg, f.get(a.cfg)+f.step)
	case "enter", " ":
		a.editing, a.editBuf = true, strconv.FormatFloat(f.get(a.cfg), 'f', -1, 64)
	case "m":
		if a.cfg.Mode == "parallel" {
			a.cfg.Mode = "sequential"
		} else {
			a.cfg.Mode = "parallel"
		}
	case "s":
		return a.start()
	}
	return a, nil
}

func (a App) start() (App, tea.Cmd) {
	s, net, err := a.cfg.NewSimulator(a.opts...)
	if err != nil {
		a.err = err
		return a, nil
	}
	live, err := NewModel(s, net.Rig, a.cfg.Dt, a.presets[a.cursor])
	if err != nil {
		a.err = err
		return a, nil
	}
	live.theme = a.theme
	a.live, a.state, a.err = live, stateSim, nil
	return a, a.live.Init()
}

func (a App) View() string {
	switch a.state {
	case stateMenu:
		return a.viewMenu()
	case stateConfig:
		return a.viewConfig()
	case stateSim:
		return a.live.View()
	}
	return ""
}

func (a App) viewMenu() string {
	st := a.theme.Styles()
	var b strings.Builder
	b.WriteString("\n\n    " + st.Header.Render("VERLETNET") + "\n    " + st.Hint.Render("cloth and net simulator") + "\n\n")
	for i, name := range a.presets {
		cursor, nameStyle := "  ", st.Label
		if i == a.cursor {
			cursor, nameStyle = st.Key.Render("▸ "), st.Value.Bold(true)
		}
		b.WriteString(fmt.Sprintf("    %s%s  %s\n", cursor, nameStyle.Render(fmt.Sprintf("%-10s", name)), st.Hint.Render(presetInfo[name])))
	}
	b.WriteString("\n    " + st.Keys("j/k", "navigate", "enter", "select", "q", "quit") + "\n")
	return b.String()
}

func (a App) viewConfig() string {
	st := a.theme.Styles()
	var b strings.Builder
	name := a.presets[a.cursor]
	b.WriteString("\n\n    " + st.Header.Render(strings.ToUpper(name)) + "\n    " + st.Hint.Render(presetInfo[name]) + "\n\n")
	for i, f := range fields {
		val := fmt.Sprintf("%8.3f", f.get(a.cfg))
		if a.editing && i == a.field {
			val = fmt.Sprintf("%8s", a.editBuf+"_")
		}
		if i == a.field {
			b.WriteString("    " + st.Key.Render("▸ "+fmt.Sprintf("%-10s", f.name)) + " " + st.Value.Bold(true).Render(val) + "\n")
		} else {
			b.WriteString("      " + st.Label.Render(fmt.Sprintf("%-10s", f.name)) + " " + st.Hint.Render(val) + "\n")
		}
	}
	b.WriteString("      " + st.Label.Render(fmt.Sprintf("%-10s", "mode")) + " " + st.Value.Render(a.cfg.Mode) + "\n")
	if a.err != nil {
		b.WriteString("\n    " + st.Failed.Render(a.err.Error()) + "\n")
	}
	b.WriteString("\n    " + st.Keys("j/k", "select", "h/l", "adjust", "m", "mode", "s", "start", "esc", "back") + "\n")
	return b.String()
}

// RunInteractive runs the preset picker in the alternate screen.
func RunInteractive(opts ...sim.Option) error {
	_, err := tea.NewProgram(NewApp(opts...), tea.WithAltScreen()).Run()
	return err
}
