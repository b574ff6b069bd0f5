package cmd

import (
	"context"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/bnema/session-guard/internal/application"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const progressPollInterval = 100 * time.Millisecond

// simulationProgress is written by the simulation goroutine and read by the
// spinner.
type simulationProgress struct {
	guard atomic.Pointer[application.Guard]
}

func (p *simulationProgress) attach(g *application.Guard) {
	p.guard.Store(g)
}

func (p *simulationProgress) status() string {
	g := p.guard.Load()
	if g == nil {
		return "starting"
	}
	return fmt.Sprintf("targets: %d, noop messages: %d", len(g.Engine.TargetedActorIDs()), g.Engine.MessagesSent())
}

type simulationDoneMsg struct{ err error }

type progressPollMsg struct{}

type simulationSpinnerModel struct {
	spinner  spinner.Model
	label    string
	progress *simulationProgress
	status   string
	run      tea.Cmd
	err      error
	done     bool
}

func pollProgress() tea.Cmd {
	return tea.Tick(progressPollInterval, func(time.Time) tea.Msg { return progressPollMsg{} })
}

func (m simulationSpinnerModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.run, pollProgress())
}

func (m simulationSpinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case progressPollMsg:
		if m.done {
			return m, nil
		}
		m.status = m.progress.status()
		return m, pollProgress()
	case simulationDoneMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Quit
	}
	return m, nil
}

func (m simulationSpinnerModel) View() string {
	if m.done {
		return ""
	}
	line := m.spinner.View() + " " + m.label
	if m.status != "" {
		line += " " + lipgloss.NewStyle().Faint(true).Render("("+m.status+")")
	}
	return line
}

// runSimulationSpinner runs run in the background and shows live target and
// message counts until it returns.
func runSimulationSpinner(ctx context.Context, output io.Writer, label string, progress *simulationProgress, run func(context.Context) error) error {
	m := simulationSpinnerModel{
		spinner: spinner.New(
			spinner.WithSpinner(spinner.MiniDot),
			spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("203"))),
		),
		label:    label,
		progress: progress,
		run: func() tea.Msg {
			return simulationDoneMsg{err: run(ctx)}
		},
	}

	final, err := tea.NewProgram(m, tea.WithInput(nil), tea.WithOutput(output), tea.WithContext(ctx)).Run()
	if err != nil {
		return err
	}
	result, ok := final.(simulationSpinnerModel)
	if !ok {
		return fmt.Errorf("unexpected final spinner model type %T", final)
	}
	return result.err
}
