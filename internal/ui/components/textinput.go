package components

import (
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
)

// TextInput wraps bubbles/textinput for single-line prompts.
type TextInput struct {
	Model    textinput.Model
	disabled bool
}

// NewTextInput creates a focused text input.
func NewTextInput(placeholder string, charLimit, width int) TextInput {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Prompt = "› "
	if charLimit > 0 {
		ti.CharLimit = charLimit
	}
	if width > 0 {
		ti.SetWidth(width)
	}
	ti.Focus()
	return TextInput{Model: ti}
}

// Init returns the initial command.
func (t TextInput) Init() tea.Cmd {
	return t.Model.Focus()
}

// Update handles messages. A disabled input ignores keys.
func (t TextInput) Update(msg tea.Msg) (TextInput, tea.Cmd) {
	if _, ok := msg.(tea.KeyPressMsg); ok && t.disabled {
		return t, nil
	}
	var cmd tea.Cmd
	t.Model, cmd = t.Model.Update(msg)
	return t, cmd
}

// View renders the text input.
func (t TextInput) View() string {
	return t.Model.View()
}

// Value returns the current input value.
func (t TextInput) Value() string {
	return t.Model.Value()
}

// Trimmed returns the value without surrounding whitespace.
func (t TextInput) Trimmed() string {
	return strings.TrimSpace(t.Model.Value())
}

// SetDisabled blocks or restores editing.
func (t *TextInput) SetDisabled(disabled bool) {
	t.disabled = disabled
	if disabled {
		t.Model.Blur()
	} else {
		t.Model.Focus()
	}
}

func (t TextInput) Disabled() bool { return t.disabled }

// Reset clears the value.
func (t *TextInput) Reset() {
	t.Model.Reset()
}
