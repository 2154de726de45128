// Package tui provides a progress spinner shown while the model or
// Maven is working, using Bubble Tea.
package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	activeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	stepStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

// StepMsg updates the status line, for example "generating test" or
// "compile attempt 2/3".
type StepMsg string

// DoneMsg ends the program.
type DoneMsg struct{}

// Model is the spinner-with-status program model.
type Model struct {
	spinner spinner.Model
	step    string
	done    bool
}

// NewModel creates a progress model with an initial status line.
func NewModel(step string) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = activeStyle
	return Model{spinner: s, step: step}
}

// Init starts the spinner ticking.
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles spinner ticks, step changes, and termination.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case StepMsg:
		m.step = string(msg)
		return m, nil
	case DoneMsg:
		m.done = true
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.done = true
			return m, tea.Quit
		}
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View renders the spinner and current step.
func (m Model) View() string {
	if m.done {
		return ""
	}
	return fmt.Sprintf("%s %s\n", m.spinner.View(), stepStyle.Render(m.step))
}

// Progress drives a spinner program from non-UI code. Safe to use as
// a no-op when nil, so callers can disable it with --quiet.
type Progress struct {
	program *tea.Program
}

// Start launches the spinner program in the background.
func Start(step string) *Progress {
	p := tea.NewProgram(NewModel(step))
	go p.Run()
	return &Progress{program: p}
}

// Step updates the status line.
func (p *Progress) Step(text string) {
	if p == nil || p.program == nil {
		return
	}
	p.program.Send(StepMsg(text))
}

// Stop terminates the spinner and waits for teardown.
func (p *Progress) Stop() {
	if p == nil || p.program == nil {
		return
	}
	p.program.Send(DoneMsg{})
	p.program.Wait()
}
