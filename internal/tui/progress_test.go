package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
)

func TestModelStepUpdates(t *testing.T) {
	m := NewModel("scanning project")
	assert.Contains(t, m.View(), "scanning project")

	updated, _ := m.Update(StepMsg("generating test"))
	assert.Contains(t, updated.View(), "generating test")
}

func TestModelDoneQuits(t *testing.T) {
	m := NewModel("working")

	updated, cmd := m.Update(DoneMsg{})
	assert.Equal(t, "", updated.View())
	assert.NotNil(t, cmd)
}

func TestModelCtrlCQuits(t *testing.T) {
	m := NewModel("working")

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	assert.Equal(t, "", updated.View())
	assert.NotNil(t, cmd)
}

func TestNilProgressIsSafe(t *testing.T) {
	var p *Progress
	p.Step("x")
	p.Stop()
}
