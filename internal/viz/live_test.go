package viz

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/verletnet/internal/config"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newTestModel(t *testing.T) Model {
	t.Helper()
	cfg := config.GetPreset("scenario")
	s, net, err := cfg.NewSimulator()
	if err != nil {
		t.Fatalf("simulator: %v", err)
	}
	m, err := NewModel(s, net.Rig, cfg.Dt, "scenario")
	if err != nil {
		t.Fatalf("model: %v", err)
	}
	return m
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	out, ok := next.(Model)
	if !ok {
		t.Fatalf("update returned %T", next)
	}
	return out, cmd
}

func TestModelTick(t *testing.T) {
	m := newTestModel(t)
	if m.Init() == nil {
		t.Fatal("Init should schedule the first tick")
	}

	m, cmd := update(t, m, TickMsg{})
	if cmd == nil {
		t.Error("tick should schedule the next tick")
	}
	if m.sim.Ticks() != 1 {
		t.Errorf("expected 1 tick, got %d", m.sim.Ticks())
	}
	if len(m.residualHistory) != 1 || len(m.motionHistory) != 1 {
		t.Error("histories should record one sample per tick")
	}
	if m.canvas.Count() == 0 {
		t.Error("net was not drawn")
	}
}

func TestModelPause(t *testing.T) {
	m := newTestModel(t)
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeySpace})
	if m.running {
		t.Fatal("space should pause")
	}

	m, _ = update(t, m, TickMsg{})
	if m.sim.Ticks() != 0 {
		t.Error("paused model should not tick")
	}

	m, _ = update(t, m, runes("n"))
	if m.sim.Ticks() != 1 {
		t.Errorf("n should single step, got %d ticks", m.sim.Ticks())
	}
	if !strings.Contains(m.View(), "PAUSED") {
		t.Error("view should show paused status")
	}
}

func TestModelReleasePins(t *testing.T) {
	m := newTestModel(t)
	m, _ = update(t, m, runes("a"))
	if m.sim.PendingEvents() != 1 {
		t.Fatalf("expected a queued event, got %d", m.sim.PendingEvents())
	}
	m, _ = update(t, m, TickMsg{})
	if m.sim.Pinned() != 0 {
		t.Errorf("expected all pins released, %d remain", m.sim.Pinned())
	}
}

func TestModelMovesRig(t *testing.T) {
	m := newTestModel(t)
	rest := m.sim.Params().RestDistance

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRight})
	if got := m.rig.Position(); got != (mgl64.Vec3{rest * 0.5, 0, 0}) {
		t.Errorf("rig after nudge = %v", got)
	}

	m, _ = update(t, m, runes("t"))
	want := rest*0.5 + 5
	if got := m.rig.Position().X(); got != want {
		t.Errorf("rig after teleport x = %v, want %v", got, want)
	}

	m, _ = update(t, m, TickMsg{})
	corner := m.sim.Positions()[0]
	if corner != m.rig.Position() {
		t.Errorf("corner should sit on its anchor at the rig origin, got %v", corner)
	}
}

func TestModelQuit(t *testing.T) {
	m := newTestModel(t)
	_, cmd := update(t, m, runes("q"))
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestModelView(t *testing.T) {
	m := newTestModel(t)
	m, _ = update(t, m, TickMsg{})
	view := m.View()
	for _, want := range []string{"SCENARIO", "RUNNING", "Residual", "sequential"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}

	m, _ = update(t, m, runes("c"))
	if m.theme.Name != Themes[1].Name {
		t.Errorf("theme = %s, want %s", m.theme.Name, Themes[1].Name)
	}
}

func TestAppFlow(t *testing.T) {
	app := NewApp()
	step := func(msg tea.Msg) tea.Cmd {
		next, cmd := app.Update(msg)
		app = next.(App)
		return cmd
	}

	for app.presets[app.cursor] != "scenario" {
		step(tea.KeyMsg{Type: tea.KeyDown})
	}
	step(tea.KeyMsg{Type: tea.KeyEnter})
	if app.state != stateConfig {
		t.Fatalf("enter should open the config screen, state %d", app.state)
	}

	step(tea.KeyMsg{Type: tea.KeyRight})
	if app.cfg.Width != 6 {
		t.Errorf("right should widen the net, width %d", app.cfg.Width)
	}
	if config.GetPreset("scenario").Width != 5 {
		t.Error("editing must not mutate the preset")
	}

	if cmd := step(runes("s")); cmd == nil {
		t.Error("start should schedule the first tick")
	}
	if app.state != stateSim {
		t.Fatalf("s should start the simulation, state %d", app.state)
	}
	if app.live.sim.Lattice().Width != 6 {
		t.Errorf("simulator width %d, want 6", app.live.sim.Lattice().Width)
	}
	if !strings.Contains(app.View(), "SCENARIO") {
		t.Error("app should render the live view")
	}
}

func TestAppRejectsInvalidConfig(t *testing.T) {
	app := NewApp()
	next, _ := app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	app = next.(App)
	for i := 0; i < 100; i++ {
		next, _ = app.Update(tea.KeyMsg{Type: tea.KeyLeft})
		app = next.(App)
	}
	next, _ = app.Update(runes("s"))
	app = next.(App)
	if app.state != stateConfig || app.err == nil {
		t.Error("a zero width net should stay on the config screen with an error")
	}
}
