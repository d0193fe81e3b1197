package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/seralo/diffsim/internal/brownian"
	"github.com/seralo/diffsim/internal/diffusion"
)

const (
	canvasWidth     = 72
	canvasHeight    = 20
	trailCapacity   = 200
	historyCapacity = 600
	sparkWindow     = 120

	minStepsPerFrame = 1
	maxStepsPerFrame = 4096
)

var (
	canvasStyle = lipgloss.NewStyle().Padding(1, 2)
	statsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(44)
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(14)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(2)
)

type TickMsg time.Time

// Model drives the live view. Every frame advances the walk by a
// tunable number of steps and renders the x-y projection of the box.
type Model struct {
	stepper *brownian.Stepper
	parts   []brownian.Particle
	box     brownian.Box
	name    string
	tstep   float64
	fps     int

	canvas        *Canvas
	tracked       int
	trail         []brownian.Vec
	emission      []float64
	stepsPerFrame int
	running       bool
}

// NewModel builds the live view around a prepared simulator.
func NewModel(sim *brownian.Simulator, tstep float64, seed int64, name string, fps int) Model {
	if fps <= 0 {
		fps = 30
	}
	return Model{
		stepper:       brownian.NewStepper(sim, tstep, seed),
		parts:         sim.Population().Particles(),
		box:           sim.Box(),
		name:          name,
		tstep:         tstep,
		fps:           fps,
		canvas:        NewCanvas(canvasWidth, canvasHeight),
		trail:         make([]brownian.Vec, 0, trailCapacity),
		emission:      make([]float64, 0, historyCapacity),
		stepsPerFrame: 32,
		running:       true,
	}
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.fps), func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Update handles input events and steps the simulation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.reset()
		case "tab":
			m.tracked = (m.tracked + 1) % len(m.parts)
			m.trail = m.trail[:0]
		case "+", "=":
			if m.stepsPerFrame < maxStepsPerFrame {
				m.stepsPerFrame *= 2
			}
		case "-", "_":
			if m.stepsPerFrame > minStepsPerFrame {
				m.stepsPerFrame /= 2
			}
		}
	case TickMsg:
		if m.running {
			m.step()
		}
		return m, m.tick()
	}
	return m, nil
}

func (m *Model) step() {
	var total float64
	for i := 0; i < m.stepsPerFrame; i++ {
		_, em := m.stepper.Step()
		total = 0
		for _, e := range em {
			total += e
		}
	}

	m.emission = append(m.emission, total)
	if len(m.emission) > historyCapacity {
		m.emission = m.emission[1:]
	}

	m.trail = append(m.trail, m.stepper.Positions()[m.tracked])
	if len(m.trail) > trailCapacity {
		m.trail = m.trail[1:]
	}
}

// reset replays the walk from the start positions.
func (m *Model) reset() {
	m.stepper.Reset()
	m.trail = m.trail[:0]
	m.emission = m.emission[:0]
}

func (m *Model) toScreen(v brownian.Vec) (int, int) {
	cw, ch := m.canvas.SubWidth(), m.canvas.SubHeight()
	fx := (v.X - m.box.X1) / (m.box.X2 - m.box.X1)
	fy := (v.Y - m.box.Y1) / (m.box.Y2 - m.box.Y1)
	return int(fx * float64(cw-1)), (ch - 1) - int(fy*float64(ch-1))
}

func (m *Model) draw() {
	m.canvas.Clear()
	m.canvas.Rect(0, 0, m.canvas.SubWidth()-1, m.canvas.SubHeight()-1)

	for _, v := range m.trail {
		x, y := m.toScreen(v)
		m.canvas.Set(x, y)
	}
	for i, v := range m.stepper.Positions() {
		x, y := m.toScreen(v)
		if i == m.tracked {
			m.canvas.Dot(x, y)
		} else {
			m.canvas.Set(x, y)
		}
	}
}

// View renders the canvas and the stats panel side by side.
func (m Model) View() string {
	m.draw()

	var s strings.Builder
	s.WriteString(headerStyle.Render(strings.ToUpper(m.name)) + "\n")
	status := "RUNNING"
	if !m.running {
		status = "PAUSED"
	}
	s.WriteString(status + "\n")

	if len(m.emission) > 1 {
		start := len(m.emission) - sparkWindow
		if start < 0 {
			start = 0
		}
		chart := asciigraph.Plot(m.emission[start:],
			asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Detected emission"))
		s.WriteString(graphStyle.Render(chart) + "\n")
	}

	d := m.parts[m.tracked].D
	var em float64
	if len(m.emission) > 0 {
		em = m.emission[len(m.emission)-1]
	}

	s.WriteString(labelStyle.Render("Time") + valueStyle.Render(fmt.Sprintf("%.3f ms", m.stepper.Time()*1e3)) + "\n")
	s.WriteString(labelStyle.Render("Particles") + valueStyle.Render(fmt.Sprintf("%d", len(m.parts))) + "\n")
	s.WriteString(labelStyle.Render("Tracked") + valueStyle.Render(fmt.Sprintf("#%d", m.tracked)) + "\n")
	s.WriteString(labelStyle.Render("D") + valueStyle.Render(fmt.Sprintf("%.3g m²/s", d)) + "\n")
	s.WriteString(labelStyle.Render("Step σ") + valueStyle.Render(fmt.Sprintf("%.1f nm", diffusion.SigmaStep(d, m.tstep)*1e9)) + "\n")
	s.WriteString(labelStyle.Render("Concentration") + valueStyle.Render(fmt.Sprintf("%.2f pM", brownian.ConcentrationPM(len(m.parts), m.box))) + "\n")
	s.WriteString(labelStyle.Render("Emission") + valueStyle.Render(fmt.Sprintf("%.4f", em)) + "\n")
	s.WriteString(labelStyle.Render("Speed") + valueStyle.Render(fmt.Sprintf("%d steps/frame", m.stepsPerFrame)) + "\n")
	s.WriteString(helpStyle.Render("SP:Pause R:Reset TAB:Track\n+/-:Speed Q:Quit"))

	canvasView := canvasStyle.Render(m.canvas.String())
	statsView := statsStyle.Render(s.String())
	return lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsView)
}
