// Package topic is the start screen: a single topic field with the notes
// loading status and error banner.
package topic

import (
	"strings"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/lumen/internal/screen"
	"github.com/abhisek/lumen/internal/shell"
	"github.com/abhisek/lumen/internal/ui/components"
	"github.com/abhisek/lumen/internal/ui/layout"
	"github.com/abhisek/lumen/internal/ui/theme"
)

const topicCharLimit = 200

// TopicScreen implements screen.Screen for topic entry.
type TopicScreen struct {
	input   components.TextInput
	spinner spinner.Model
	state   shell.State
}

var _ screen.Screen = (*TopicScreen)(nil)
var _ screen.KeyHintProvider = (*TopicScreen)(nil)

// New creates the topic screen for state.
func New(state shell.State) *TopicScreen {
	s := &TopicScreen{
		input: components.NewTextInput("What do you want to learn about?", topicCharLimit, 50),
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(lipgloss.NewStyle().Foreground(theme.Accent)),
		),
	}
	s.apply(state)
	return s
}

func (s *TopicScreen) Init() tea.Cmd {
	cmds := []tea.Cmd{s.input.Init()}
	if s.state.Loading() {
		cmds = append(cmds, s.spinner.Tick)
	}
	return tea.Batch(cmds...)
}

func (s *TopicScreen) Title() string {
	return "New Topic"
}

func (s *TopicScreen) KeyHints() []layout.KeyHint {
	if s.state.Loading() {
		return []layout.KeyHint{{Key: "Ctrl+C", Description: "Quit"}}
	}
	return []layout.KeyHint{
		{Key: "Enter", Description: "Generate notes"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

func (s *TopicScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case shell.StateMsg:
		wasLoading := s.state.Loading()
		s.apply(msg.State)
		if s.state.Loading() && !wasLoading {
			return s, s.spinner.Tick
		}
		return s, nil

	case spinner.TickMsg:
		if !s.state.Loading() {
			return s, nil
		}
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return s, cmd

	case tea.KeyPressMsg:
		if msg.String() == "enter" {
			return s, s.submit()
		}
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

func (s *TopicScreen) submit() tea.Cmd {
	topic := s.input.Trimmed()
	if topic == "" || s.state.Loading() {
		return nil
	}
	return func() tea.Msg { return shell.SubmitTopicMsg{Topic: topic} }
}

func (s *TopicScreen) apply(state shell.State) {
	s.state = state
	s.input.SetDisabled(state.Loading())
}

func (s *TopicScreen) View(width, height int) string {
	var b strings.Builder
	b.WriteString(theme.Title.Width(width).Render("What would you like to learn today?"))
	b.WriteString("\n")
	b.WriteString(theme.Subtitle.Width(width).Render("Notes, illustrations, narration and a quiz on any topic."))
	b.WriteString("\n\n")

	b.WriteString(theme.Card.Width(min(width-4, 60)).Render(s.input.View()))
	b.WriteString("\n\n")

	if l, ok := s.state.Notes.(shell.NotesLoading); ok {
		b.WriteString(s.spinner.View() + " " + theme.Status.Render(l.Message))
		b.WriteString("\n")
	}
	if err := s.state.NotesErr(); err != nil {
		b.WriteString(theme.Banner.Render("Could not generate notes: " + err.Error()))
		b.WriteString("\n")
		b.WriteString(theme.Hint.Render("Edit the topic and press Enter to try again."))
		b.WriteString("\n")
	}

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, b.String())
}
