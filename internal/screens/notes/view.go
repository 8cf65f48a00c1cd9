package notes

import (
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/lumen/internal/narration"
	"github.com/abhisek/lumen/internal/shell"
	"github.com/abhisek/lumen/internal/ui/theme"
)

func (s *NotesScreen) View(width, height int) string {
	top := s.renderNarration()
	bottom := s.renderQuizStatus()
	if s.flash != "" {
		bottom += "\n" + theme.Hint.Render(s.flash)
	}

	vpHeight := max(height-lipgloss.Height(top)-lipgloss.Height(bottom)-2, 1)
	s.viewport.SetWidth(width)
	s.viewport.SetHeight(vpHeight)
	s.viewport.SetContent(s.renderSections(width - 2))

	return top + "\n" + s.viewport.View() + "\n" + bottom
}

func (s *NotesScreen) renderNarration() string {
	if !s.narrator.Available() {
		msg := "Narration unavailable"
		if err := s.narrator.Err(); err != nil {
			msg += ": " + err.Error()
		}
		return theme.Hint.Render(msg)
	}

	line := "Narration: " + s.narrator.State().String()
	if v, ok := s.narrator.Voice(); ok {
		line += "  ·  voice " + v.Name
	}
	return theme.Status.Render(line)
}

func (s *NotesScreen) renderQuizStatus() string {
	switch q := s.state.Quiz.(type) {
	case shell.QuizGenerating:
		return s.spinner.View() + " " + theme.Status.Render("Generating your quiz...")
	case shell.QuizIdle:
		if q.Err != nil {
			return theme.Banner.Render("Could not generate quiz: "+q.Err.Error()) +
				"\n" + theme.Hint.Render("Press Q to try again.")
		}
	}
	return ""
}

// renderSections draws every section as a card and records where each
// starts so narration can scroll to it.
func (s *NotesScreen) renderSections(width int) string {
	speaking := -1
	if s.narrator.State() != narration.Stopped {
		speaking = s.narrator.Speaking()
	}

	s.offsets = make([]int, len(s.notes))
	var b strings.Builder
	line := 0
	for i, section := range s.notes {
		s.offsets[i] = line

		heading := theme.Heading.Render(section.Heading)
		if i == s.cursor {
			heading = theme.Selected.Render("▸ " + section.Heading)
		}

		var body strings.Builder
		body.WriteString(heading)
		body.WriteString("\n\n")
		for _, p := range section.Paragraphs() {
			body.WriteString(theme.Body.Render(p))
			body.WriteString("\n\n")
		}
		body.WriteString(theme.Hint.Render("🖼 " + s.images[i]))

		style := theme.Card
		if i == speaking {
			style = theme.SpeakingCard
		}
		card := style.Width(max(width, 20)).Render(body.String())

		b.WriteString(card)
		b.WriteString("\n")
		line += lipgloss.Height(card) + 1
	}
	return b.String()
}
