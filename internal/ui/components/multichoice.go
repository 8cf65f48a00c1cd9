package components

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/lumen/internal/ui/theme"
)

// OptionLabels letters the options of a question.
var OptionLabels = []string{"A", "B", "C", "D"}

// MultiChoice is a multiple-choice selector. The cursor moves with up/down;
// Enter or a letter key records the choice. Reveal switches to a read-only
// view marking the correct and chosen options.
type MultiChoice struct {
	Question string
	Options  []string
	Cursor   int
	Chosen   int
	Correct  int
	Reveal   bool
}

// NewMultiChoice creates a selector with no choice recorded. chosen is the
// index of a previous answer, or -1.
func NewMultiChoice(question string, options []string, chosen int) MultiChoice {
	cursor := 0
	if chosen >= 0 && chosen < len(options) {
		cursor = chosen
	}
	return MultiChoice{
		Question: question,
		Options:  options,
		Cursor:   cursor,
		Chosen:   chosen,
		Correct:  -1,
	}
}

// Update handles keyboard navigation and selection.
func (m MultiChoice) Update(msg tea.Msg) (MultiChoice, tea.Cmd) {
	if m.Reveal {
		return m, nil
	}

	kmsg, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return m, nil
	}

	switch key := kmsg.String(); key {
	case "up", "k":
		if m.Cursor > 0 {
			m.Cursor--
		}
	case "down", "j":
		if m.Cursor < len(m.Options)-1 {
			m.Cursor++
		}
	case "enter", "space":
		if len(m.Options) > 0 {
			m.Chosen = m.Cursor
		}
	default:
		if i := labelIndex(key); i >= 0 && i < len(m.Options) {
			m.Cursor = i
			m.Chosen = i
		}
	}

	return m, nil
}

func labelIndex(key string) int {
	for i, l := range OptionLabels {
		if strings.EqualFold(key, l) {
			return i
		}
	}
	return -1
}

// View renders the question and its options.
func (m MultiChoice) View() string {
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render(m.Question))
	b.WriteString("\n\n")

	for i, opt := range m.Options {
		label := "?"
		if i < len(OptionLabels) {
			label = OptionLabels[i]
		}
		prefix := "  "
		if i == m.Cursor && !m.Reveal {
			prefix = "▸ "
		}
		mark := ""
		if i == m.Chosen {
			mark = "  ●"
		}
		line := fmt.Sprintf("%s%s)  %s%s", prefix, label, opt, mark)

		var style lipgloss.Style
		switch {
		case m.Reveal && i == m.Correct:
			style = theme.Correct
		case m.Reveal && i == m.Chosen:
			style = theme.Incorrect
		case m.Reveal:
			style = lipgloss.NewStyle().Foreground(theme.TextDim)
		case i == m.Cursor:
			style = theme.Selected
		case i == m.Chosen:
			style = theme.Chosen
		default:
			style = theme.Unselected
		}
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}

	return b.String()
}

// ChosenOption returns the chosen option text.
func (m MultiChoice) ChosenOption() (string, bool) {
	if m.Chosen < 0 || m.Chosen >= len(m.Options) {
		return "", false
	}
	return m.Options[m.Chosen], true
}
