package topic

import (
	"errors"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/lumen/internal/shell"
)

func typeText(s *TopicScreen, text string) {
	for _, r := range text {
		s.Update(tea.KeyPressMsg{Code: r, Text: string(r)})
	}
}

func enter(s *TopicScreen) tea.Cmd {
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	return cmd
}

func TestSubmitTrimmedTopic(t *testing.T) {
	s := New(shell.New())
	typeText(s, "  Plate tectonics ")

	cmd := enter(s)
	require.NotNil(t, cmd)
	assert.Equal(t, shell.SubmitTopicMsg{Topic: "Plate tectonics"}, cmd())
}

func TestBlankTopicIsIgnored(t *testing.T) {
	s := New(shell.New())
	typeText(s, "   ")
	assert.Nil(t, enter(s))
}

func TestLoadingDisablesForm(t *testing.T) {
	s := New(shell.New())
	typeText(s, "Tides")
	st, err := shell.New().Submit("Tides")
	require.NoError(t, err)

	_, cmd := s.Update(shell.StateMsg{State: st})
	assert.NotNil(t, cmd, "spinner starts")

	typeText(s, "xyz")
	assert.Equal(t, "Tides", s.input.Value())
	assert.Nil(t, enter(s))
	assert.Contains(t, s.View(80, 20), "Crafting your learning notes...")
}

func TestErrorBanner(t *testing.T) {
	st, _ := shell.New().Submit("Tides")
	st, err := st.NotesFailed(errors.New("failed to generate notes"))
	require.NoError(t, err)

	s := New(st)
	view := s.View(100, 20)
	assert.Contains(t, view, "Could not generate notes")
	assert.False(t, s.input.Disabled(), "form is re-enabled")
}
