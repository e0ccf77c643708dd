package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/jointsim/internal/dynamo"
	"github.com/san-kum/jointsim/internal/sim"
)

const (
	canvasWidth     = 40
	canvasHeight    = 20
	historyCapacity = 600
	maxStepsFrame   = 1024
	frameInterval   = time.Second / 30
)

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Live steps a session a few control updates per frame and draws the arm
// together with the target direction.
type Live struct {
	session       *sim.Session
	stepsPerFrame int
	running       bool
	last          dynamo.Sample
	angles        []float64
	canvas        *Canvas
	err           error
}

// NewLive builds a live view for cfg. stepsPerFrame below 1 is treated as 1.
func NewLive(cfg dynamo.Config, stepsPerFrame int) (Live, error) {
	s, err := sim.NewSession(cfg)
	if err != nil {
		return Live{}, err
	}
	if stepsPerFrame < 1 {
		stepsPerFrame = 1
	}
	return Live{
		session:       s,
		stepsPerFrame: stepsPerFrame,
		running:       true,
		angles:        make([]float64, 0, historyCapacity),
		canvas:        NewCanvas(canvasWidth, canvasHeight),
	}, nil
}

func (m Live) Init() tea.Cmd { return tick() }

func (m Live) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.reset()
		case "+", "=":
			if m.stepsPerFrame < maxStepsFrame {
				m.stepsPerFrame *= 2
			}
		case "-", "_":
			if m.stepsPerFrame > 1 {
				m.stepsPerFrame /= 2
			}
		}
	case TickMsg:
		if m.running {
			m.advance()
		}
		return m, tick()
	}
	return m, nil
}

func (m *Live) advance() {
	for i := 0; i < m.stepsPerFrame && m.err == nil; i++ {
		sample, ok, err := m.session.Step()
		if err != nil {
			m.err = err
			return
		}
		if !ok {
			m.running = false
			return
		}
		m.last = sample
		m.angles = append(m.angles, sample.Angle*180/math.Pi)
		if len(m.angles) > historyCapacity {
			m.angles = m.angles[1:]
		}
	}
}

func (m *Live) reset() {
	m.session.Reset()
	m.last = dynamo.Sample{}
	m.angles = m.angles[:0]
	m.err = nil
	m.running = true
}

// Sample returns the most recent sample.
func (m Live) Sample() dynamo.Sample { return m.last }

func (m Live) Running() bool { return m.running }

func (m Live) StepsPerFrame() int { return m.stepsPerFrame }

func (m Live) status() string {
	switch {
	case m.err != nil:
		return StatusError.Render("ERROR: " + m.err.Error())
	case m.session.Done():
		return StatusDone.Render("DONE")
	case !m.running:
		return StatusPaused.Render("PAUSED")
	}
	return StatusRunning.Render("RUNNING")
}

func (m Live) View() string {
	cfg := m.session.Config()

	m.canvas.Clear()
	m.canvas.DrawArm(cfg.Target, 2)
	m.canvas.DrawArm(m.last.Angle, 0)
	arm := Panel.Render(m.canvas.String())

	terms := m.session.Terms()
	var s strings.Builder
	s.WriteString(Title.Render("JOINT PID") + "\n")
	s.WriteString(m.status() + "\n\n")
	s.WriteString(ProgressBar(m.session.Progress(), 24) + "\n\n")
	s.WriteString(metricRow("Time", fmt.Sprintf("%.3f s", m.last.Time)) + "\n")
	s.WriteString(metricRow("Angle", fmt.Sprintf("%.2f deg", m.last.Angle*180/math.Pi)) + "\n")
	s.WriteString(metricRow("Target", fmt.Sprintf("%.2f deg", cfg.Target*180/math.Pi)) + "\n")
	s.WriteString(metricRow("Velocity", fmt.Sprintf("%.2f deg/s", m.last.AngularVelocity*180/math.Pi)) + "\n")
	s.WriteString(metricRow("Torque", fmt.Sprintf("%.3f Nm", m.last.Control)) + "\n")
	s.WriteString(metricRow("P / I / D", fmt.Sprintf("%.2f / %.2f / %.2f", terms.P, terms.I, terms.D)) + "\n")
	s.WriteString(metricRow("Steps/frame", fmt.Sprintf("%d", m.stepsPerFrame)) + "\n")
	if len(m.angles) > 1 {
		s.WriteString("\n" + Chart(m.angles, "angle [deg]", 36, 5) + "\n")
	}
	s.WriteString("\n" + KeyHint.Render("space:pause r:restart +/-:speed q:quit"))

	return lipgloss.JoinHorizontal(lipgloss.Top, arm, lipgloss.NewStyle().PaddingLeft(2).Render(s.String()))
}
