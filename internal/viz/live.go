package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/cfar/internal/sim"
)

const liveHistoryCap = 600

type TickMsg time.Time

// Model is the bubbletea model for the live day-by-day view. It owns a
// simulator and a factory to rebuild one on reset.
type Model struct {
	simulator *sim.Simulator
	rebuild   func() (*sim.Simulator, error)

	scenario   string
	daysPerSec int
	running    bool
	err        error

	outcomes []float64
	lastRec  sim.StepRecord
	haveRec  bool
}

// NewModel wraps a simulator for live viewing. rebuild is invoked on the
// reset key and must produce a fresh simulator with fresh controllers.
func NewModel(scenario string, s *sim.Simulator, daysPerSec int, rebuild func() (*sim.Simulator, error)) Model {
	if daysPerSec <= 0 {
		daysPerSec = 10
	}
	return Model{
		simulator:  s,
		rebuild:    rebuild,
		scenario:   scenario,
		daysPerSec: daysPerSec,
		running:    true,
		outcomes:   make([]float64, 0, liveHistoryCap),
	}
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.daysPerSec), func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			fresh, err := m.rebuild()
			if err != nil {
				m.err = err
				return m, nil
			}
			m.simulator = fresh
			m.outcomes = m.outcomes[:0]
			m.haveRec = false
			m.running = true
		}
		return m, nil

	case TickMsg:
		if m.running && !m.simulator.Done() {
			rec, err := m.simulator.Step()
			if err != nil {
				m.err = err
				m.running = false
			} else {
				m.lastRec = rec
				m.haveRec = true
				m.outcomes = append(m.outcomes, rec.State.Outcome)
				if len(m.outcomes) > liveHistoryCap {
					m.outcomes = m.outcomes[1:]
				}
			}
		}
		return m, m.tick()
	}
	return m, nil
}

func (m Model) View() string {
	var sb strings.Builder
	sb.WriteString(headerStyle.Render(fmt.Sprintf("cfar live: %s", m.scenario)))
	sb.WriteString("\n")

	if m.err != nil {
		sb.WriteString(fmt.Sprintf("error: %v\n", m.err))
		return sb.String()
	}

	graph := "waiting for first day..."
	if len(m.outcomes) >= 2 {
		graph = PlotSeries("outcome Y", m.outcomes)
	}

	stats := m.renderStats()
	sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, graphStyle.Render(graph), statsStyle.Render(stats)))
	sb.WriteString(helpStyle.Render("space pause · r reset · q quit"))
	sb.WriteString("\n")
	return sb.String()
}

func (m Model) renderStats() string {
	row := func(label, value string) string {
		return labelStyle.Render(label) + valueStyle.Render(value) + "\n"
	}

	var sb strings.Builder
	sb.WriteString(row("day", fmt.Sprintf("%d / %d", m.simulator.Day(), m.simulator.Horizon())))
	if !m.haveRec {
		return sb.String()
	}

	rec := m.lastRec
	mode := precisionStyle.Render(string(rec.Mode))
	if rec.Mode == sim.ModeFluctuation {
		mode = fluctuationStyle.Render(string(rec.Mode))
	}
	sb.WriteString(row("mode", mode))
	sb.WriteString(row("Y / target", fmt.Sprintf("%.3f / %.3f", rec.State.Outcome, m.simulator.Target())))
	sb.WriteString(row("error", fmt.Sprintf("%+.3f", rec.Error)))
	sb.WriteString(row("floor", fmt.Sprintf("%.3f", rec.Resolution.Floor)))
	sb.WriteString(row("norm", fmt.Sprintf("%.3f", rec.State.Norm)))
	sb.WriteString(row("attention", fmt.Sprintf("%.3f", rec.State.Attention)))
	sb.WriteString(row("constraint", fmt.Sprintf("%.3f", rec.State.Constraint)))
	sb.WriteString(row("burden", fmt.Sprintf("%.3f", rec.State.Burden)))
	sb.WriteString(row("arm", fmt.Sprintf("%d (%s)", rec.Arm, rec.ArmName)))
	if rec.Pulse > 0 {
		sb.WriteString(row("pulse", pulseStyle.Render(fmt.Sprintf("%.3f", rec.Pulse))))
	}
	if m.simulator.Done() {
		sb.WriteString("\nrun complete\n")
	}
	return sb.String()
}
