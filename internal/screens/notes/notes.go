// Package notes displays generated learning notes with narration controls.
package notes

import (
	"errors"
	"fmt"

	"charm.land/bubbles/v2/spinner"
	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/lumen/internal/generation"
	"github.com/abhisek/lumen/internal/narration"
	"github.com/abhisek/lumen/internal/screen"
	"github.com/abhisek/lumen/internal/shell"
	"github.com/abhisek/lumen/internal/ui/layout"
	"github.com/abhisek/lumen/internal/ui/theme"
)

// NotesScreen implements screen.Screen for the notes view.
type NotesScreen struct {
	topic    string
	notes    generation.LearningNotes
	images   []string
	narrator *narration.Narrator
	engine   narration.Engine
	state    shell.State

	viewport viewport.Model
	spinner  spinner.Model
	offsets  []int
	cursor   int
	flash    string
	imageDir string
}

var _ screen.Screen = (*NotesScreen)(nil)
var _ screen.KeyHintProvider = (*NotesScreen)(nil)
var _ screen.StatusProvider = (*NotesScreen)(nil)
var _ screen.Releaser = (*NotesScreen)(nil)

// Options configure a NotesScreen.
type Options struct {
	Narration narration.Config
	Engine    narration.Engine

	// ImageDir receives saved illustrations. Empty means the system temp
	// dir.
	ImageDir string
}

// New creates the notes screen for a loaded state.
func New(state shell.State, opts Options) *NotesScreen {
	notes, _ := state.LoadedNotes()
	engine := opts.Engine
	if engine == nil {
		engine = narration.NoopEngine{}
	}
	return &NotesScreen{
		topic:    state.Topic,
		notes:    notes,
		images:   imageStatuses(notes),
		narrator: narration.NewNarrator(opts.Narration),
		engine:   engine,
		state:    state,
		viewport: viewport.New(),
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(lipgloss.NewStyle().Foreground(theme.Accent)),
		),
		imageDir: opts.ImageDir,
	}
}

func (s *NotesScreen) Init() tea.Cmd {
	_ = s.narrator.Acquire(s.engine)
	s.narrator.SetSections(s.notes)
	if !s.narrator.Available() {
		return nil
	}
	return s.narrator.Listen()
}

// Release stops narration and frees the engine.
func (s *NotesScreen) Release() {
	s.narrator.Release()
}

// Narrator exposes the narrator for inspection.
func (s *NotesScreen) Narrator() *narration.Narrator { return s.narrator }

// Cursor returns the selected section index.
func (s *NotesScreen) Cursor() int { return s.cursor }

// Flash returns the one-line message shown under the notes.
func (s *NotesScreen) Flash() string { return s.flash }

func (s *NotesScreen) Title() string {
	return s.topic
}

func (s *NotesScreen) Status() string {
	if !s.narrator.Available() {
		return ""
	}
	switch s.narrator.State() {
	case narration.Playing:
		if i := s.narrator.Speaking(); i >= 0 {
			return fmt.Sprintf("♪ %d/%d", i+1, len(s.notes))
		}
		return "♪ playing"
	case narration.Paused:
		return "♪ paused"
	}
	return ""
}

func (s *NotesScreen) KeyHints() []layout.KeyHint {
	hints := []layout.KeyHint{{Key: "↑↓", Description: "Scroll"}, {Key: "Tab", Description: "Section"}}
	if s.narrator.Available() {
		play := "Play"
		if s.narrator.State() == narration.Playing {
			play = "Pause"
		}
		hints = append(hints, layout.KeyHint{Key: "P", Description: play}, layout.KeyHint{Key: "S", Description: "Stop"})
	}
	hints = append(hints,
		layout.KeyHint{Key: "O", Description: "Save image"},
		layout.KeyHint{Key: "Q", Description: "Take quiz"},
		layout.KeyHint{Key: "N", Description: "New topic"},
	)
	return hints
}

func (s *NotesScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case narration.EventMsg:
		return s.handleNarration(msg)

	case shell.StateMsg:
		return s.handleState(msg.State)

	case spinner.TickMsg:
		if _, ok := s.state.Quiz.(shell.QuizGenerating); !ok {
			return s, nil
		}
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return s, cmd

	case tea.KeyPressMsg:
		return s.handleKey(msg)
	}

	var cmd tea.Cmd
	s.viewport, cmd = s.viewport.Update(msg)
	return s, cmd
}

func (s *NotesScreen) handleNarration(msg narration.EventMsg) (screen.Screen, tea.Cmd) {
	if s.narrator.Handle(msg) {
		switch msg.Kind {
		case narration.EventStart:
			s.cursor = msg.Index
			s.scrollTo(msg.Index)
		case narration.EventError:
			s.flash = "Narration stopped: " + msg.Err.Error()
		}
	}
	return s, s.narrator.Listen()
}

func (s *NotesScreen) handleState(state shell.State) (screen.Screen, tea.Cmd) {
	prev := s.state.Quiz
	s.state = state
	switch state.Quiz.(type) {
	case shell.QuizGenerating:
		if _, was := prev.(shell.QuizGenerating); !was {
			return s, s.spinner.Tick
		}
	case shell.QuizActive:
		s.narrator.Stop()
	}
	return s, nil
}

func (s *NotesScreen) handleKey(msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "p", "space":
		s.flash = ""
		if err := s.narrator.Toggle(); err != nil {
			s.flash = narrationError(err)
		}
		return s, nil

	case "s":
		s.narrator.Stop()
		return s, nil

	case "tab":
		if s.cursor < len(s.notes)-1 {
			s.cursor++
			s.scrollTo(s.cursor)
		}
		return s, nil

	case "shift+tab":
		if s.cursor > 0 {
			s.cursor--
			s.scrollTo(s.cursor)
		}
		return s, nil

	case "o":
		s.flash = s.saveImage()
		return s, nil

	case "q":
		switch s.state.Quiz.(type) {
		case shell.QuizIdle:
			return s, func() tea.Msg { return shell.StartQuizMsg{} }
		}
		return s, nil

	case "n":
		return s, func() tea.Msg { return shell.NewTopicMsg{} }
	}

	var cmd tea.Cmd
	s.viewport, cmd = s.viewport.Update(msg)
	return s, cmd
}

func (s *NotesScreen) saveImage() string {
	if s.cursor < 0 || s.cursor >= len(s.notes) {
		return ""
	}
	url := s.notes[s.cursor].ImageURL
	if !generation.IsDataURI(url) {
		return "Section has no illustration, only a placeholder."
	}
	path, err := generation.SaveImage(s.imageDir, fmt.Sprintf("lumen-section-%d", s.cursor+1), url)
	if err != nil {
		return "Could not save illustration: " + err.Error()
	}
	return "Saved illustration to " + path
}

func (s *NotesScreen) scrollTo(section int) {
	if section >= 0 && section < len(s.offsets) {
		s.viewport.SetYOffset(s.offsets[section])
	}
}

func narrationError(err error) string {
	switch {
	case errors.Is(err, narration.ErrUnavailable):
		return "Narration is not available on this system."
	case errors.Is(err, narration.ErrPauseUnsupported):
		return "Pausing is not supported here; press S to stop."
	default:
		return "Narration failed: " + err.Error()
	}
}

// imageStatuses describes each section's illustration.
func imageStatuses(notes generation.LearningNotes) []string {
	out := make([]string, len(notes))
	for i, n := range notes {
		out[i] = ImageStatus(n.ImageURL)
	}
	return out
}

// ImageStatus summarizes an illustration URL for display.
func ImageStatus(url string) string {
	if !generation.IsDataURI(url) {
		return "placeholder"
	}
	w, h, format, err := generation.ImageInfo(url)
	if err != nil {
		return "illustration ready"
	}
	return fmt.Sprintf("illustration ready (%dx%d %s)", w, h, format)
}
