package narration

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"github.com/abhisek/lumen/internal/generation"
	"github.com/google/uuid"
)

// State is the playback state.
type State int

const (
	Stopped State = iota
	Playing
	Paused
)

func (s State) String() string {
	switch s {
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	default:
		return "stopped"
	}
}

// EventKind identifies an utterance callback.
type EventKind int

const (
	EventStart EventKind = iota
	EventEnd
	EventError
)

// EventMsg carries an engine callback onto the Bubble Tea event loop.
type EventMsg struct {
	Generation uint64
	Index      int
	Kind       EventKind
	Err        error
}

const eventBuffer = 64

// Narrator reads a list of note sections aloud. All methods must be called
// from the UI event loop; engine callbacks arrive as EventMsg through
// Listen and are applied with Handle.
type Narrator struct {
	cfg    Config
	engine Engine

	voice       Voice
	hasVoice    bool
	unavailable error
	lastErr     error

	sections   []generation.NoteSection
	state      State
	speaking   int
	generation uint64

	events chan EventMsg
	done   chan struct{}
}

// NewNarrator creates a narrator with no engine attached.
func NewNarrator(cfg Config) *Narrator {
	return &Narrator{cfg: cfg, speaking: -1}
}

// Acquire attaches engine and picks a voice. A previous engine is released
// first. The returned error means narration is unavailable; the narrator
// stays usable and every control becomes a no-op.
func (n *Narrator) Acquire(engine Engine) error {
	if n.engine != nil {
		n.Release()
	}
	n.engine = engine
	n.events = make(chan EventMsg, eventBuffer)
	n.done = make(chan struct{})
	n.state = Stopped
	n.speaking = -1
	n.unavailable = nil
	n.lastErr = nil

	voices, err := engine.Voices()
	if err != nil {
		n.unavailable = err
		return err
	}
	n.voice, n.hasVoice = SelectVoice(voices, n.cfg.PreferredVoices)
	return nil
}

// Release cancels speech and detaches the engine. Pending Listen commands
// return nil.
func (n *Narrator) Release() {
	if n.engine == nil {
		return
	}
	n.engine.Cancel()
	n.generation++
	close(n.done)
	n.engine = nil
	n.events = nil
	n.done = nil
	n.state = Stopped
	n.speaking = -1
}

// Available reports whether an engine is attached and working.
func (n *Narrator) Available() bool {
	return n.engine != nil && n.unavailable == nil
}

// Err returns why narration is unavailable, or the last playback error.
func (n *Narrator) Err() error {
	if n.unavailable != nil {
		return n.unavailable
	}
	return n.lastErr
}

// Voice returns the selected voice.
func (n *Narrator) Voice() (Voice, bool) {
	return n.voice, n.hasVoice
}

func (n *Narrator) State() State { return n.state }

// Speaking returns the index of the section being read, or -1.
func (n *Narrator) Speaking() int { return n.speaking }

// SetSections replaces the sections, cancelling any speech from the
// previous set.
func (n *Narrator) SetSections(sections []generation.NoteSection) {
	if n.engine != nil {
		n.engine.Cancel()
	}
	n.generation++
	n.sections = append([]generation.NoteSection(nil), sections...)
	n.state = Stopped
	n.speaking = -1
}

// Play starts reading from the first section when stopped, or resumes
// when paused.
func (n *Narrator) Play() error {
	if !n.Available() {
		return ErrUnavailable
	}
	switch n.state {
	case Paused:
		if err := n.engine.Resume(); err != nil {
			return err
		}
		n.state = Playing
		return nil
	case Playing:
		return nil
	}

	if len(n.sections) == 0 {
		return nil
	}

	n.engine.Cancel()
	n.generation++
	n.lastErr = nil
	gen := n.generation
	for i, s := range n.sections {
		if err := n.engine.Speak(n.utterance(gen, i, s)); err != nil {
			n.engine.Cancel()
			n.generation++
			return fmt.Errorf("queue section %d: %w", i, err)
		}
	}
	n.state = Playing
	return nil
}

// Pause suspends playback, keeping the queue.
func (n *Narrator) Pause() error {
	if !n.Available() || n.state != Playing {
		return nil
	}
	if err := n.engine.Pause(); err != nil {
		return err
	}
	n.state = Paused
	return nil
}

// Toggle plays when stopped or paused and pauses when playing.
func (n *Narrator) Toggle() error {
	if n.state == Playing {
		return n.Pause()
	}
	return n.Play()
}

// Stop cancels playback and clears the speaking indicator.
func (n *Narrator) Stop() {
	if !n.Available() || n.state == Stopped {
		return
	}
	n.engine.Cancel()
	n.generation++
	n.state = Stopped
	n.speaking = -1
}

// Handle applies an engine event. Events from a superseded queue are
// ignored; it reports whether ev was applied.
func (n *Narrator) Handle(ev EventMsg) bool {
	if n.engine == nil || ev.Generation != n.generation {
		return false
	}
	switch ev.Kind {
	case EventStart:
		n.speaking = ev.Index
	case EventEnd:
		if ev.Index == len(n.sections)-1 {
			n.state = Stopped
			n.speaking = -1
		}
	case EventError:
		n.engine.Cancel()
		n.generation++
		n.state = Stopped
		n.speaking = -1
		n.lastErr = ev.Err
	}
	return true
}

// Listen returns a command that waits for the next engine event. Issue it
// once on mount and again after every EventMsg.
func (n *Narrator) Listen() tea.Cmd {
	events, done := n.events, n.done
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case ev := <-events:
			return ev
		case <-done:
			return nil
		}
	}
}

func (n *Narrator) utterance(gen uint64, i int, s generation.NoteSection) Utterance {
	events, done := n.events, n.done
	send := func(ev EventMsg) {
		select {
		case events <- ev:
		case <-done:
		}
	}
	return Utterance{
		ID:      uuid.NewString(),
		Text:    SectionText(s),
		Voice:   n.voice,
		Rate:    n.cfg.Rate,
		Pitch:   n.cfg.Pitch,
		OnStart: func() { send(EventMsg{Generation: gen, Index: i, Kind: EventStart}) },
		OnEnd:   func() { send(EventMsg{Generation: gen, Index: i, Kind: EventEnd}) },
		OnError: func(err error) { send(EventMsg{Generation: gen, Index: i, Kind: EventError, Err: err}) },
	}
}

// SectionText is what gets spoken for a section: the heading, then the
// content.
func SectionText(s generation.NoteSection) string {
	heading := strings.TrimSpace(s.Heading)
	if heading != "" && !strings.HasSuffix(heading, ".") && !strings.HasSuffix(heading, "?") {
		heading += "."
	}
	return heading + "\n\n" + strings.TrimSpace(s.Content)
}
