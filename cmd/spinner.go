package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type callDoneMsg struct {
	err error
}

// callSpinnerModel draws one backend call in flight. The hint counts up
// against the fetch budget so a slow backend reads as retrying, not hung.
type callSpinnerModel struct {
	spinner spinner.Model
	label   string
	budget  time.Duration
	started time.Time
	elapsed time.Duration
	call    tea.Cmd
	err     error
	done    bool
}

var (
	spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("69"))
	hintStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	slowStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

func newCallSpinnerModel(label string, budget time.Duration, started time.Time, call tea.Cmd) callSpinnerModel {
	return callSpinnerModel{
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(spinnerStyle)),
		label:   label,
		budget:  budget,
		started: started,
		call:    call,
	}
}

func (m callSpinnerModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.call)
}

func (m callSpinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if !m.started.IsZero() && msg.Time.After(m.started) {
			m.elapsed = msg.Time.Sub(m.started)
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case callDoneMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Quit
	default:
		return m, nil
	}
}

func (m callSpinnerModel) View() string {
	if m.done {
		return ""
	}

	line := fmt.Sprintf("%s %s", m.spinner.View(), m.label)
	if m.budget <= 0 {
		return line
	}

	hint := fmt.Sprintf("%.1fs of %s", m.elapsed.Seconds(), m.budget.Round(time.Second))
	if m.elapsed > m.budget/2 {
		return line + " " + slowStyle.Render(hint+", retrying")
	}
	return line + " " + hintStyle.Render(hint)
}

// withSpinner runs call while a spinner is drawn on output. JSON mode skips
// the spinner so stdout stays machine readable.
func withSpinner(ctx context.Context, output io.Writer, label string, budget time.Duration, asJSON bool, call func(context.Context) error) error {
	if asJSON {
		return call(ctx)
	}

	callCmd := func() tea.Msg {
		return callDoneMsg{err: call(ctx)}
	}

	p := tea.NewProgram(
		newCallSpinnerModel(label, budget, time.Now(), callCmd),
		tea.WithInput(nil),
		tea.WithOutput(output),
		tea.WithContext(ctx),
	)

	finalModel, err := p.Run()
	if err != nil {
		return err
	}

	result, ok := finalModel.(callSpinnerModel)
	if !ok {
		return fmt.Errorf("unexpected final spinner model type %T", finalModel)
	}

	return result.err
}
