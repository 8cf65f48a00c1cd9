package quiz

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/lumen/internal/quiz"
	"github.com/abhisek/lumen/internal/ui/components"
	"github.com/abhisek/lumen/internal/ui/theme"
)

func (s *QuizScreen) View(width, height int) string {
	if s.attempt.Submitted() {
		return s.renderResults(width, height)
	}
	return s.renderQuestion(width, height)
}

func (s *QuizScreen) renderQuestion(width, height int) string {
	cw := min(width-4, 80)

	var b strings.Builder
	b.WriteString(theme.Subtitle.Render(fmt.Sprintf("Question %d/%d", s.attempt.Index()+1, s.attempt.Len())))
	b.WriteString("\n\n")
	b.WriteString(theme.Card.Width(cw).Render(s.choice.View()))
	b.WriteString("\n\n")
	b.WriteString(components.NewProgressBar("Answered", s.attempt.Answered(), s.attempt.Len(), cw).View())
	b.WriteString("\n\n")
	b.WriteString(components.NewButton("Submit answers", "S", s.attempt.CanSubmit()).View())
	if !s.attempt.CanSubmit() {
		b.WriteString("\n")
		b.WriteString(theme.Hint.Render("Answer every question to submit."))
	}

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, b.String())
}

func (s *QuizScreen) renderResults(width, height int) string {
	score, total := s.attempt.Score(), s.attempt.Len()
	tier := quiz.TierFor(score, total)

	var head strings.Builder
	head.WriteString(theme.Title.Render(fmt.Sprintf("%s  You scored %d/%d", tier.Title(), score, total)))
	head.WriteString("\n")
	head.WriteString(theme.Subtitle.Render(tier.Message()))
	head.WriteString("\n")
	header := head.String()

	menu := s.menu.View()

	s.results.SetWidth(width)
	s.results.SetHeight(max(height-lipgloss.Height(header)-lipgloss.Height(menu)-1, 1))
	s.results.SetContent(renderReview(s.attempt.Review(), width-2))

	return header + "\n" + s.results.View() + "\n" + menu
}

func renderReview(items []quiz.ReviewItem, width int) string {
	var b strings.Builder
	for _, it := range items {
		var body strings.Builder
		body.WriteString(theme.Body.Bold(true).Render(fmt.Sprintf("%d. %s", it.Number, it.Question)))
		body.WriteString("\n")
		if it.IsCorrect {
			body.WriteString(theme.Correct.Render("✓ Your answer: " + it.Chosen))
		} else {
			body.WriteString(theme.Incorrect.Render("✗ Your answer: " + it.Chosen))
			body.WriteString("\n")
			body.WriteString(theme.Correct.Render("  Correct answer: " + it.Correct))
		}
		if it.Explanation != "" {
			body.WriteString("\n")
			body.WriteString(theme.Hint.Render(it.Explanation))
		}
		b.WriteString(theme.Card.Width(max(width, 20)).Render(body.String()))
		b.WriteString("\n")
	}
	return b.String()
}
