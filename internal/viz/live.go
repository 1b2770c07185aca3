package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/verletnet/internal/cloth"
	"github.com/san-kum/verletnet/internal/metrics"
	"github.com/san-kum/verletnet/internal/sim"
)

const (
	canvasWidth     = 60
	canvasHeight    = 24
	historyCapacity = 600
	frameInterval   = time.Second / 60
)

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Model is the live view of one simulator. The rig, when present, is moved by
// the arrow keys and teleported with t to exercise displacement correction.
type Model struct {
	sim  *sim.Simulator
	rig  *cloth.Rig
	dt   float64
	name string

	canvas *Canvas
	camera *Camera
	follow mgl64.Vec3
	theme  Theme

	residual *metrics.Residual
	motion   *metrics.Motion
	sag      *metrics.Sag

	residualHistory []float64
	motionHistory   []float64

	running  bool
	showHelp bool
	err      error
	status   string
}

// NewModel initializes s if needed and attaches the metrics shown in the side
// panel. rig may be nil, in which case the movement keys do nothing.
func NewModel(s *sim.Simulator, rig *cloth.Rig, dt float64, name string) (Model, error) {
	if !s.Initialized() {
		if err := s.Init(); err != nil {
			return Model{}, err
		}
	}

	m := Model{
		sim:             s,
		rig:             rig,
		dt:              dt,
		name:            name,
		canvas:          NewCanvas(canvasWidth, canvasHeight),
		camera:          NewCamera(),
		theme:           Themes[0],
		residual:        metrics.NewResidual(),
		motion:          metrics.NewMotion(),
		sag:             metrics.NewSag(),
		residualHistory: make([]float64, 0, historyCapacity),
		motionHistory:   make([]float64, 0, historyCapacity),
		running:         true,
	}
	s.AddMetric(m.residual)
	s.AddMetric(m.motion)
	s.AddMetric(m.sag)

	// Nodes start collapsed at one point, so frame the anchors instead and
	// leave room below them for the sag.
	anchors := s.Anchors()
	pos := make([]mgl64.Vec3, 0, len(anchors))
	for _, a := range anchors {
		pos = append(pos, a.Position())
	}
	m.camera.Fit(pos, 1.6)
	lat := s.Lattice()
	m.camera.Span = math.Max(m.camera.Span, float64(max(lat.Width, lat.Height))*s.Params().RestDistance*1.6)
	if g := s.Params().Gravity; g.Len() > 0 {
		m.camera.Center = m.camera.Center.Add(g.Normalize().Mul(m.camera.Span / 5))
	}
	m.follow = m.camera.Center.Sub(s.Reference().Position())
	return m, nil
}

func (m Model) Init() tea.Cmd { return tick() }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		w := max(msg.Width-50, 20)
		h := max(msg.Height-4, 10)
		m.canvas = NewCanvas(w, h)
	case TickMsg:
		if m.running && m.err == nil {
			m.step()
		}
		m.draw()
		return m, tick()
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case " ":
		m.running = !m.running
	case "n":
		if !m.running && m.err == nil {
			m.step()
		}
	case "a":
		m.sim.Post(sim.EventReleasePins)
		m.status = "pins released"
	case "left", "h":
		m.nudge(mgl64.Vec3{-1, 0, 0})
	case "right", "l":
		m.nudge(mgl64.Vec3{1, 0, 0})
	case "up", "k":
		m.nudge(mgl64.Vec3{0, 1, 0})
	case "down", "j":
		m.nudge(mgl64.Vec3{0, -1, 0})
	case "w":
		m.nudge(mgl64.Vec3{0, 0, -1})
	case "s":
		m.nudge(mgl64.Vec3{0, 0, 1})
	case "t":
		m.teleport()
	case "x":
		m.camera.RotateYaw(0.1)
	case "X":
		m.camera.RotateYaw(-0.1)
	case "y":
		m.camera.RotatePitch(0.1)
	case "Y":
		m.camera.RotatePitch(-0.1)
	case "+", "=":
		m.camera.ZoomIn()
	case "-", "_":
		m.camera.ZoomOut()
	case "c":
		m.theme = m.theme.Next()
	case "?":
		m.showHelp = !m.showHelp
	}
	m.draw()
	return m, nil
}

// nudge moves the rig by a fraction of the rest distance, small enough that
// the pins drag the net rather than trigger a bulk correction.
func (m *Model) nudge(dir mgl64.Vec3) {
	if m.rig == nil {
		return
	}
	m.rig.Translate(dir.Mul(m.sim.Params().RestDistance * 0.5))
}

// teleport jumps the rig well past the displacement limit. The next tick
// shifts the whole net along with it.
func (m *Model) teleport() {
	if m.rig == nil {
		return
	}
	p := m.sim.Params()
	dist := math.Max(4*p.DisplacementLimit, 10*p.RestDistance)
	m.rig.Translate(mgl64.Vec3{dist, 0, 0})
	m.status = fmt.Sprintf("teleported %.2f", dist)
}

func (m *Model) step() {
	if err := m.sim.Tick(m.dt); err != nil {
		m.err = err
		m.running = false
		return
	}
	m.residualHistory = appendCapped(m.residualHistory, m.residual.Value())
	m.motionHistory = appendCapped(m.motionHistory, m.motion.Value())
}

func appendCapped(s []float64, v float64) []float64 {
	s = append(s, v)
	if len(s) > historyCapacity {
		s = s[1:]
	}
	return s
}

func (m *Model) draw() {
	m.canvas.Clear()
	m.camera.Center = m.sim.Reference().Position().Add(m.follow)
	RenderEdges(m.canvas, m.camera, m.sim.Edges())

	nodes := m.sim.Nodes()
	pins := make([]mgl64.Vec3, 0, 4)
	for i := range nodes {
		if nodes[i].Pinned() {
			pins = append(pins, nodes[i].Position)
		}
	}
	RenderMarks(m.canvas, m.camera, pins)
}

func (m Model) View() string {
	st := m.theme.Styles()
	var s strings.Builder

	s.WriteString(st.Header.Render(strings.ToUpper(m.name)) + "\n\n")
	switch {
	case m.err != nil:
		s.WriteString(st.Failed.Render("FAILED") + "\n")
		s.WriteString(st.Hint.Render(m.err.Error()) + "\n\n")
	case m.running:
		s.WriteString(st.Running.Render("RUNNING") + "\n\n")
	default:
		s.WriteString(st.Paused.Render("PAUSED") + "\n\n")
	}

	s.WriteString(st.Row("Tick", fmt.Sprintf("%d", m.sim.Ticks())))
	s.WriteString(st.Row("Time", fmt.Sprintf("%.2fs", m.sim.Time())))
	s.WriteString(st.Row("Solver", m.sim.SolverName()))
	s.WriteString(st.Row("Pinned", fmt.Sprintf("%d", m.sim.Pinned())))
	s.WriteString(st.Row("Residual", fmt.Sprintf("%.5f", m.residual.Value())))
	s.WriteString(st.Row("Motion", fmt.Sprintf("%.5f", m.motion.Value())))
	s.WriteString(st.Row("Sag", fmt.Sprintf("%.3f", m.sag.Value())))
	if m.rig != nil {
		r := m.rig.Position()
		s.WriteString(st.Row("Rig", fmt.Sprintf("%.1f %.1f %.1f", r.X(), r.Y(), r.Z())))
	}
	if m.status != "" {
		s.WriteString(st.Hint.Render(m.status) + "\n")
	}

	s.WriteString("\n" + st.Label.Render("residual") + "\n")
	s.WriteString(st.Sparkline(m.residualHistory, 36) + "\n")
	if len(m.motionHistory) > 1 {
		chart := asciigraph.Plot(m.motionHistory,
			asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("motion"))
		s.WriteString(st.Graph.Render(chart) + "\n")
	}

	s.WriteString("\n" + st.Keys("spc", "pause", "n", "step", "a", "release", "q", "quit") + "\n")
	s.WriteString(st.Keys("arrows", "move", "t", "teleport", "?", "help") + "\n")

	panel := st.Panel.Render(s.String())
	view := lipgloss.JoinHorizontal(lipgloss.Top, st.Canvas.Render(m.canvas.String()), panel)
	if m.showHelp {
		return helpText(st) + "\n\n" + view
	}
	return view
}

func helpText(st Styles) string {
	lines := [][2]string{
		{"space", "pause or resume"},
		{"n", "single tick while paused"},
		{"a", "release all pins"},
		{"arrows h/j/k/l", "move the rig in x and y"},
		{"w/s", "move the rig in z"},
		{"t", "teleport the rig"},
		{"x/X y/Y", "orbit the camera"},
		{"+/-", "zoom"},
		{"c", "cycle color theme"},
		{"q", "quit"},
	}
	var b strings.Builder
	for _, l := range lines {
		b.WriteString(st.Key.Render(fmt.Sprintf("  %-16s", l[0])) + st.Hint.Render(l[1]) + "\n")
	}
	return b.String()
}

// Run starts the live view in the alternate screen and blocks until it quits.
func Run(m Model) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
