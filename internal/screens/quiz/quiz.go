// Package quiz is the quiz-taking screen: one question at a time, then a
// results view with score, tier and per-question review.
package quiz

import (
	"fmt"
	"slices"

	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/lumen/internal/generation"
	"github.com/abhisek/lumen/internal/logger"
	"github.com/abhisek/lumen/internal/quiz"
	"github.com/abhisek/lumen/internal/screen"
	"github.com/abhisek/lumen/internal/shell"
	"github.com/abhisek/lumen/internal/ui/components"
	"github.com/abhisek/lumen/internal/ui/layout"
)

// QuizScreen implements screen.Screen for an active quiz.
type QuizScreen struct {
	topic   string
	attempt *quiz.Attempt
	choice  components.MultiChoice
	results viewport.Model
	menu    components.Menu
	log     *logger.Logger
}

var _ screen.Screen = (*QuizScreen)(nil)
var _ screen.KeyHintProvider = (*QuizScreen)(nil)
var _ screen.StatusProvider = (*QuizScreen)(nil)

// New creates the quiz screen for q.
func New(topic string, q generation.Quiz, log *logger.Logger) *QuizScreen {
	if log == nil {
		log = logger.Nop()
	}
	s := &QuizScreen{
		topic:   topic,
		attempt: quiz.NewAttempt(q),
		results: viewport.New(),
		menu: components.NewMenu([]components.MenuItem{
			{Label: "Retake quiz", Msg: retakeMsg{}},
			{Label: "Back to notes", Msg: shell.BackToNotesMsg{}},
			{Label: "New topic", Msg: shell.NewTopicMsg{}},
		}),
		log: log,
	}
	s.syncChoice()
	return s
}

// retakeMsg is emitted by the results menu.
type retakeMsg struct{}

func (s *QuizScreen) Init() tea.Cmd {
	return nil
}

// Attempt exposes the answer sheet.
func (s *QuizScreen) Attempt() *quiz.Attempt { return s.attempt }

func (s *QuizScreen) Title() string {
	return "Quiz: " + s.topic
}

func (s *QuizScreen) Status() string {
	if s.attempt.Submitted() {
		return fmt.Sprintf("Score %d/%d", s.attempt.Score(), s.attempt.Len())
	}
	return fmt.Sprintf("Answered %d/%d", s.attempt.Answered(), s.attempt.Len())
}

func (s *QuizScreen) KeyHints() []layout.KeyHint {
	if s.attempt.Submitted() {
		return []layout.KeyHint{
			{Key: "PgUp/PgDn", Description: "Scroll"},
			{Key: "R", Description: "Retake"},
			{Key: "B", Description: "Back to notes"},
			{Key: "N", Description: "New topic"},
		}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Option"},
		{Key: "Enter/A-D", Description: "Select"},
		{Key: "←→", Description: "Question"},
		{Key: "S", Description: "Submit"},
		{Key: "Esc", Description: "Back to notes"},
	}
}

func (s *QuizScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case retakeMsg:
		s.retake()
		return s, nil

	case tea.KeyPressMsg:
		if s.attempt.Submitted() {
			return s.handleResultsKey(msg)
		}
		return s.handleQuestionKey(msg)
	}

	if s.attempt.Submitted() {
		var cmd tea.Cmd
		s.results, cmd = s.results.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *QuizScreen) handleQuestionKey(msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "right", "l":
		s.attempt.Next()
		s.syncChoice()
		return s, nil

	case "left", "h":
		s.attempt.Prev()
		s.syncChoice()
		return s, nil

	case "S", "ctrl+s":
		if err := s.attempt.Submit(); err != nil {
			return s, nil
		}
		s.log.Info("quiz submitted", "topic", s.topic, "score", s.attempt.Score(), "total", s.attempt.Len())
		s.results.GotoTop()
		return s, nil

	case "esc":
		return s, func() tea.Msg { return shell.BackToNotesMsg{} }
	}

	var cmd tea.Cmd
	s.choice, cmd = s.choice.Update(msg)
	if opt, ok := s.choice.ChosenOption(); ok {
		if prev, _ := s.attempt.Answer(s.attempt.Index()); prev != opt {
			s.attempt.Select(opt)
		}
	}
	return s, cmd
}

func (s *QuizScreen) handleResultsKey(msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "r":
		s.retake()
		return s, nil
	case "b", "esc":
		return s, func() tea.Msg { return shell.BackToNotesMsg{} }
	case "n":
		return s, func() tea.Msg { return shell.NewTopicMsg{} }
	case "up", "down", "k", "j", "enter":
		var cmd tea.Cmd
		s.menu, cmd = s.menu.Update(msg)
		return s, cmd
	}

	var cmd tea.Cmd
	s.results, cmd = s.results.Update(msg)
	return s, cmd
}

func (s *QuizScreen) retake() {
	s.attempt.Retake()
	s.syncChoice()
	s.results.GotoTop()
}

// syncChoice rebuilds the option selector for the current question.
func (s *QuizScreen) syncChoice() {
	q := s.attempt.Current()
	chosen := -1
	if ans, ok := s.attempt.Answer(s.attempt.Index()); ok {
		chosen = slices.Index(q.Options, ans)
	}
	s.choice = components.NewMultiChoice(q.Question, q.Options, chosen)
}
