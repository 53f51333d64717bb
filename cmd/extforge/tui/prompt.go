// Package tui implements the interactive description prompt using bubbletea.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"extforge/cmd/extforge/ui"
)

// Model is the bubbletea model for the one-line description prompt. An
// empty submission re-prompts with an error note instead of quitting.
type Model struct {
	input     textinput.Model
	styles    ui.Styles
	errNote   string
	value     string
	submitted bool
	width     int
}

// New creates the prompt model.
func New(styles ui.Styles) Model {
	ti := textinput.New()
	ti.Placeholder = "e.g. show today's date in a popup"
	ti.Prompt = "> "
	ti.PromptStyle = styles.Prompt
	ti.TextStyle = styles.UserInput
	ti.CharLimit = 4096
	ti.Width = 72
	ti.Focus()

	return Model{
		input:  ti,
		styles: styles,
	}
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit

		case tea.KeyEnter:
			value := strings.TrimSpace(m.input.Value())
			if value == "" {
				m.errNote = "Please provide a description."
				return m, nil
			}
			m.value = value
			m.submitted = true
			return m, tea.Quit
		}
		// Any other keypress clears a previous empty-submit note.
		m.errNote = ""

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = msg.Width - 4
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.styles.Bold.Render("Describe the Chrome Extension you want to generate:"))
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")

	if m.errNote != "" {
		b.WriteString(m.styles.Error.Render("Error: " + m.errNote))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.styles.Muted.Render("Enter: generate • Ctrl+C: quit"))
	b.WriteString("\n")

	return b.String()
}

// Run shows the prompt and returns the submitted description. An empty
// string with a nil error means the user cancelled.
func Run(styles ui.Styles) (string, error) {
	final, err := tea.NewProgram(New(styles)).Run()
	if err != nil {
		return "", fmt.Errorf("prompt failed: %w", err)
	}

	m, ok := final.(Model)
	if !ok {
		return "", fmt.Errorf("unexpected prompt model %T", final)
	}
	if !m.submitted {
		return "", nil
	}
	return m.value, nil
}
