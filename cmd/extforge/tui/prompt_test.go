package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"extforge/cmd/extforge/ui"
)

func newTestModel() Model {
	return New(ui.NewStyles(ui.LightTheme()))
}

func typeText(m Model, text string) Model {
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
	return next.(Model)
}

func pressKey(m Model, key tea.KeyType) (Model, tea.Cmd) {
	next, cmd := m.Update(tea.KeyMsg{Type: key})
	return next.(Model), cmd
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func TestSubmitTrimsAndQuits(t *testing.T) {
	m := typeText(newTestModel(), "  make a popup with the date  ")

	m, cmd := pressKey(m, tea.KeyEnter)

	require.True(t, m.submitted)
	assert.Equal(t, "make a popup with the date", m.value)
	assert.True(t, isQuit(cmd), "enter with input must quit the prompt")
}

func TestEmptySubmitRePrompts(t *testing.T) {
	m, cmd := pressKey(newTestModel(), tea.KeyEnter)

	assert.False(t, m.submitted)
	assert.Nil(t, cmd, "empty submit must not quit")
	assert.Contains(t, m.View(), "Error: Please provide a description.")
}

func TestErrorNoteClearsOnNextKeypress(t *testing.T) {
	m, _ := pressKey(newTestModel(), tea.KeyEnter)
	require.NotEmpty(t, m.errNote)

	m = typeText(m, "b")
	assert.Empty(t, m.errNote)
	assert.NotContains(t, m.View(), "Please provide a description.")
}

func TestCtrlCCancelsWithoutSubmitting(t *testing.T) {
	m := typeText(newTestModel(), "half typed thou")

	m, cmd := pressKey(m, tea.KeyCtrlC)

	assert.False(t, m.submitted)
	assert.True(t, isQuit(cmd))
}

func TestViewShowsPromptAndHelp(t *testing.T) {
	view := newTestModel().View()

	assert.Contains(t, view, "Describe the Chrome Extension you want to generate:")
	assert.Contains(t, view, "Ctrl+C: quit")
}

func TestWindowSizeResizesInput(t *testing.T) {
	next, _ := newTestModel().Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m := next.(Model)

	assert.Equal(t, 120, m.width)
	assert.Equal(t, 116, m.input.Width)
}

func TestSubmittedViewKeepsValue(t *testing.T) {
	m := typeText(newTestModel(), "extract emails and display them")
	m, _ = pressKey(m, tea.KeyEnter)

	require.True(t, m.submitted)
	assert.True(t, strings.Contains(m.input.Value(), "extract emails"))
}
