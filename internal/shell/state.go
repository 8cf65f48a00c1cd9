// Package shell holds the top-level view state of the app as a tagged union
// of notes and quiz phases, and the transitions between them.
package shell

import (
	"errors"
	"fmt"
	"strings"

	"github.com/abhisek/lumen/internal/generation"
)

// ErrTransition is returned when a transition is not legal from the
// current phase.
var ErrTransition = errors.New("invalid state transition")

// NotesPhase is one of NotesIdle, NotesLoading, NotesLoaded, NotesFailed.
type NotesPhase interface{ notesPhase() }

// NotesIdle shows the topic form.
type NotesIdle struct{}

// Stage is a loading sub-phase.
type Stage int

const (
	StageCrafting Stage = iota
	StageIllustrating
)

// NotesLoading is generation in flight.
type NotesLoading struct {
	Stage   Stage
	Message string
}

// NotesLoaded holds displayed notes.
type NotesLoaded struct {
	Notes generation.LearningNotes
}

// NotesFailed shows the error banner over the topic form.
type NotesFailed struct {
	Err error
}

func (NotesIdle) notesPhase()    {}
func (NotesLoading) notesPhase() {}
func (NotesLoaded) notesPhase()  {}
func (NotesFailed) notesPhase()  {}

// QuizPhase is one of QuizIdle, QuizGenerating, QuizActive.
type QuizPhase interface{ quizPhase() }

// QuizIdle has no quiz. Err is the banner from the last failed attempt.
type QuizIdle struct {
	Err error
}

type QuizGenerating struct{}

type QuizActive struct {
	Quiz generation.Quiz
}

func (QuizIdle) quizPhase()       {}
func (QuizGenerating) quizPhase() {}
func (QuizActive) quizPhase()     {}

const craftingMessage = "Crafting your learning notes..."

// State is the whole view state. The zero value is not ready; use New.
type State struct {
	Topic string
	Notes NotesPhase
	Quiz  QuizPhase

	// Epoch changes on every Submit and Reset; async results tagged with
	// an older epoch are stale.
	Epoch uint64
}

// New returns the idle state.
func New() State {
	return State{Notes: NotesIdle{}, Quiz: QuizIdle{}}
}

// Current reports whether epoch belongs to this state.
func (s State) Current(epoch uint64) bool { return s.Epoch == epoch }

// Submit clears notes, quiz and errors and starts crafting notes on topic.
func (s State) Submit(topic string) (State, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return s, fmt.Errorf("%w: empty topic", ErrTransition)
	}
	if _, busy := s.Notes.(NotesLoading); busy {
		return s, fmt.Errorf("%w: notes already loading", ErrTransition)
	}
	return State{
		Topic: topic,
		Notes: NotesLoading{Stage: StageCrafting, Message: craftingMessage},
		Quiz:  QuizIdle{},
		Epoch: s.Epoch + 1,
	}, nil
}

// NotesGenerated moves to the illustration stage for n sections.
func (s State) NotesGenerated(n int) (State, error) {
	if l, ok := s.Notes.(NotesLoading); !ok || l.Stage != StageCrafting {
		return s, fmt.Errorf("%w: notes not being crafted", ErrTransition)
	}
	s.Notes = NotesLoading{Stage: StageIllustrating, Message: ImagesMessage(0, n)}
	return s, nil
}

// ImagesProgress updates the illustration message.
func (s State) ImagesProgress(done, total int) (State, error) {
	if l, ok := s.Notes.(NotesLoading); !ok || l.Stage != StageIllustrating {
		return s, fmt.Errorf("%w: notes not being illustrated", ErrTransition)
	}
	s.Notes = NotesLoading{Stage: StageIllustrating, Message: ImagesMessage(done, total)}
	return s, nil
}

// ImagesMessage is the loading text for the illustration stage.
func ImagesMessage(done, total int) string {
	noun := "images"
	if total == 1 {
		noun = "image"
	}
	if done == 0 {
		return fmt.Sprintf("Generating %d %s...", total, noun)
	}
	return fmt.Sprintf("Generating %d %s... (%d/%d)", total, noun, done, total)
}

// NotesIllustrated displays the finished notes.
func (s State) NotesIllustrated(notes generation.LearningNotes) (State, error) {
	if _, ok := s.Notes.(NotesLoading); !ok {
		return s, fmt.Errorf("%w: notes not loading", ErrTransition)
	}
	s.Notes = NotesLoaded{Notes: notes}
	return s, nil
}

// NotesFailed shows err over the topic form.
func (s State) NotesFailed(err error) (State, error) {
	if _, ok := s.Notes.(NotesLoading); !ok {
		return s, fmt.Errorf("%w: notes not loading", ErrTransition)
	}
	s.Notes = NotesFailed{Err: err}
	s.Quiz = QuizIdle{}
	return s, nil
}

// StartQuiz begins quiz generation. Notes stay visible.
func (s State) StartQuiz() (State, error) {
	if _, ok := s.Notes.(NotesLoaded); !ok {
		return s, fmt.Errorf("%w: no notes", ErrTransition)
	}
	if _, ok := s.Quiz.(QuizIdle); !ok {
		return s, fmt.Errorf("%w: quiz already started", ErrTransition)
	}
	s.Quiz = QuizGenerating{}
	return s, nil
}

// QuizReady activates q.
func (s State) QuizReady(q generation.Quiz) (State, error) {
	if _, ok := s.Quiz.(QuizGenerating); !ok {
		return s, fmt.Errorf("%w: quiz not generating", ErrTransition)
	}
	s.Quiz = QuizActive{Quiz: q}
	return s, nil
}

// QuizFailed returns to quiz idle with err as the banner. Notes are left
// untouched.
func (s State) QuizFailed(err error) (State, error) {
	if _, ok := s.Quiz.(QuizGenerating); !ok {
		return s, fmt.Errorf("%w: quiz not generating", ErrTransition)
	}
	s.Quiz = QuizIdle{Err: err}
	return s, nil
}

// BackToNotes discards the quiz.
func (s State) BackToNotes() State {
	s.Quiz = QuizIdle{}
	return s
}

// Reset clears everything and returns to the topic form.
func (s State) Reset() State {
	return State{Notes: NotesIdle{}, Quiz: QuizIdle{}, Epoch: s.Epoch + 1}
}

// LoadedNotes returns the displayed notes, if any.
func (s State) LoadedNotes() (generation.LearningNotes, bool) {
	l, ok := s.Notes.(NotesLoaded)
	return l.Notes, ok
}

// Loading reports whether notes are being generated.
func (s State) Loading() bool {
	_, ok := s.Notes.(NotesLoading)
	return ok
}

// NotesErr returns the notes banner, if any.
func (s State) NotesErr() error {
	if f, ok := s.Notes.(NotesFailed); ok {
		return f.Err
	}
	return nil
}

// QuizErr returns the quiz banner, if any.
func (s State) QuizErr() error {
	if q, ok := s.Quiz.(QuizIdle); ok {
		return q.Err
	}
	return nil
}
