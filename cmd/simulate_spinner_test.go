package cmd

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulationSpinnerShowsProgressUntilDone(t *testing.T) {
	m := simulationSpinnerModel{label: "Simulating session...", progress: &simulationProgress{}}

	next, cmd := m.Update(progressPollMsg{})
	require.NotNil(t, cmd)
	m = next.(simulationSpinnerModel)
	assert.Contains(t, m.View(), "Simulating session...")
	assert.Contains(t, m.View(), "starting")

	next, cmd = m.Update(simulationDoneMsg{})
	m = next.(simulationSpinnerModel)
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Empty(t, m.View())

	_, cmd = m.Update(progressPollMsg{})
	assert.Nil(t, cmd)
}
