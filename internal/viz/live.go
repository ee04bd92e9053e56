package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/metrics"
	"github.com/san-kum/gravsim/internal/physics"
	"github.com/san-kum/gravsim/internal/vector"
)

const (
	width           = 60
	height          = 20
	historyCapacity = 600
	trailCapacity   = 200
	maxSpeed        = 1024
	frameInterval   = time.Second / 30
)

// Plane selects the two coordinates projected onto the canvas.
type Plane int

const (
	PlaneXY Plane = iota
	PlaneXZ
	PlaneYZ
)

func (p Plane) String() string {
	switch p {
	case PlaneXZ:
		return "XZ"
	case PlaneYZ:
		return "YZ"
	default:
		return "XY"
	}
}

func (p Plane) project(v vector.Vector3) (float64, float64) {
	switch p {
	case PlaneXZ:
		return v.X, v.Z
	case PlaneYZ:
		return v.Y, v.Z
	default:
		return v.X, v.Y
	}
}

type TickMsg time.Time

// Builder constructs a fresh engine. The live view calls it again on reset.
type Builder func() (*physics.System, error)

// Model is the bubbletea model of the live view. It owns its engine and
// advances it through a dynamo.Simulator on every tick.
type Model struct {
	name   string
	build  Builder
	cfg    dynamo.Config
	sys    *physics.System
	sim    *dynamo.Simulator
	drift  *metrics.EnergyDrift
	canvas *Canvas

	frame      dynamo.Frame
	trails     [][]vector.Vector3
	energy     []float64
	drifts     []float64
	speed      int
	plane      Plane
	running    bool
	showTrails bool
	err        error
}

// NewModel builds the engine and a simulator around it. cfg.Steps and
// cfg.Pace are ignored; the view paces itself with tea ticks and runs
// until quit.
func NewModel(name string, build Builder, cfg dynamo.Config) (Model, error) {
	m := Model{
		name:       name,
		build:      build,
		cfg:        dynamo.Config{Dt: cfg.Dt, ValidateState: cfg.ValidateState},
		canvas:     NewCanvas(width, height),
		speed:      1,
		running:    true,
		showTrails: true,
	}
	if err := m.init(); err != nil {
		return Model{}, err
	}
	return m, nil
}

func (m *Model) init() error {
	sys, err := m.build()
	if err != nil {
		return err
	}
	sim, err := dynamo.New(sys, m.cfg)
	if err != nil {
		return err
	}
	m.drift = metrics.NewEnergyDrift(sys)
	sim.AddMetric(m.drift)

	m.sys = sys
	m.sim = sim
	m.frame = dynamo.Frame{Bodies: sys.Snapshot()}
	m.trails = make([][]vector.Vector3, sys.Len())
	m.energy = make([]float64, 0, historyCapacity)
	m.drifts = make([]float64, 0, historyCapacity)
	m.err = nil
	m.record()
	return nil
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Update handles input events and steps the simulation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			if m.err == nil {
				m.running = !m.running
			}
		case "r":
			if err := m.init(); err != nil {
				m.err = err
				m.running = false
			}
		case "+", "=":
			m.speed = min(m.speed*2, maxSpeed)
		case "-", "_":
			m.speed = max(m.speed/2, 1)
		case "p":
			m.plane = (m.plane + 1) % 3
		case "t":
			m.showTrails = !m.showTrails
		case "n":
			if !m.running && m.err == nil {
				m.advance(1)
			}
		}
	case TickMsg:
		if m.running {
			m.advance(m.speed)
		}
		return m, tick()
	}
	return m, nil
}

// advance ticks the simulator n times and records history once.
func (m *Model) advance(n int) {
	for i := 0; i < n; i++ {
		frame, err := m.sim.Tick()
		if err != nil {
			m.err = err
			m.running = false
			break
		}
		m.frame = frame
	}
	m.record()
}

func (m *Model) record() {
	m.energy = appendCapped(m.energy, m.sys.Energy())
	m.drifts = appendCapped(m.drifts, m.drift.Relative())

	for i, b := range m.frame.Bodies {
		if i >= len(m.trails) {
			break
		}
		m.trails[i] = append(m.trails[i], b.Pos)
		if len(m.trails[i]) > trailCapacity {
			m.trails[i] = m.trails[i][1:]
		}
	}
}

// Frame returns the most recent frame.
func (m Model) Frame() dynamo.Frame { return m.frame }

// Err returns the error that stopped the simulation, if any.
func (m Model) Err() error { return m.err }

// View renders the TUI interface.
func (m Model) View() string {
	m.draw()

	var s strings.Builder
	s.WriteString(headerStyle.Render(strings.ToUpper(m.name)) + "\n")
	s.WriteString(m.status() + "\n\n")

	if len(m.energy) > 1 {
		chart := asciigraph.Plot(m.energy, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Energy"))
		s.WriteString(graphStyle.Render(chart) + "\n")
	}

	row := func(label, value string) {
		s.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}
	row("Step", fmt.Sprintf("%d", m.frame.Step))
	row("Time", fmt.Sprintf("%g", m.frame.Time))
	row("Bodies", fmt.Sprintf("%d", len(m.frame.Bodies)))
	if len(m.energy) > 0 {
		row("Energy", fmt.Sprintf("%.6g", m.energy[len(m.energy)-1]))
	}
	row("Drift", fmt.Sprintf("%.3e", m.drift.Value()))
	row("Momentum", fmt.Sprintf("%.6g", m.sys.Momentum().Magnitude()))
	row("Speed", fmt.Sprintf("%dx", m.speed))
	row("Plane", m.plane.String())
	s.WriteString(Sparkline(m.drifts, 30) + "\n")

	if m.err != nil {
		s.WriteString("\n" + statusError.Render(m.err.Error()) + "\n")
	}

	s.WriteString(keyHint.Render("\nSP:Pause R:Reset Q:Quit\nN:Step  +/-:Speed P:Plane T:Trails"))

	canvasView := canvasStyle.Render(m.canvas.String())
	statsView := statsStyle.Render(s.String())
	return lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsView)
}

func (m Model) status() string {
	switch {
	case m.err != nil:
		return statusError.Render("STOPPED")
	case m.running:
		return statusRunning.Render("RUNNING")
	default:
		return statusPaused.Render("PAUSED")
	}
}

// viewport returns the projected centre and half-extent that fit every
// body and trail point.
func (m *Model) viewport() (cu, cv, extent float64) {
	com := m.sys.CenterOfMass()
	cu, cv = m.plane.project(com)
	if !isFinite(cu) || !isFinite(cv) {
		cu, cv = 0, 0
	}

	grow := func(p vector.Vector3) {
		u, v := m.plane.project(p)
		if d := math.Max(math.Abs(u-cu), math.Abs(v-cv)); isFinite(d) {
			extent = math.Max(extent, d)
		}
	}
	for _, b := range m.frame.Bodies {
		grow(b.Pos)
	}
	if m.showTrails {
		for _, trail := range m.trails {
			for _, p := range trail {
				grow(p)
			}
		}
	}
	if extent == 0 {
		extent = 1
	}
	return cu, cv, extent * 1.1
}

// toScreen maps a world position to canvas sub-pixels. Both axes share one
// scale so orbits keep their shape.
func (m *Model) toScreen(p vector.Vector3, cu, cv, extent float64) (int, int, bool) {
	cw, ch := m.canvas.PixelSize()
	half := float64(min(cw, ch))/2 - 2
	u, v := m.plane.project(p)
	if !isFinite(u) || !isFinite(v) {
		return 0, 0, false
	}
	x := cw/2 + int(math.Round((u-cu)/extent*half))
	y := ch/2 - int(math.Round((v-cv)/extent*half))
	return x, y, true
}

func (m *Model) draw() {
	m.canvas.Clear()
	cu, cv, extent := m.viewport()

	if m.showTrails {
		for _, trail := range m.trails {
			for _, p := range trail {
				if x, y, ok := m.toScreen(p, cu, cv, extent); ok {
					m.canvas.Set(x, y)
				}
			}
		}
	}
	for _, b := range m.frame.Bodies {
		if x, y, ok := m.toScreen(b.Pos, cu, cv, extent); ok {
			m.canvas.Dot(x, y, 1)
		}
	}
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func appendCapped(s []float64, v float64) []float64 {
	s = append(s, v)
	if len(s) > historyCapacity {
		s = s[1:]
	}
	return s
}
