// Package narration reads notes aloud through a pluggable text-to-speech
// engine and tracks playback as a small state machine.
package narration

import "errors"

// ErrUnavailable is returned when no speech engine can be used.
var ErrUnavailable = errors.New("speech engine unavailable")

// ErrPauseUnsupported is returned by engines that cannot suspend speech.
var ErrPauseUnsupported = errors.New("pause not supported on this platform")

// Engine is a text-to-speech capability. Implementations queue utterances
// and speak them one at a time, reporting progress through the utterance
// callbacks. Callbacks may run on any goroutine.
type Engine interface {
	Voices() ([]Voice, error)

	// Speak enqueues u behind any utterances already queued.
	Speak(u Utterance) error

	Pause() error
	Resume() error

	// Cancel stops the current utterance and drops the queue. Callbacks of
	// cancelled utterances do not fire.
	Cancel()
}

// Utterance is one unit of speech.
type Utterance struct {
	ID    string
	Text  string
	Voice Voice
	Rate  float64 // 1.0 is the engine's normal speed
	Pitch float64 // 1.0 is the engine's normal pitch

	OnStart func()
	OnEnd   func()
	OnError func(error)
}

func (u Utterance) started() {
	if u.OnStart != nil {
		u.OnStart()
	}
}

func (u Utterance) ended() {
	if u.OnEnd != nil {
		u.OnEnd()
	}
}

func (u Utterance) failed(err error) {
	if u.OnError != nil {
		u.OnError(err)
	}
}

// NoopEngine is used when no speech binary is installed.
type NoopEngine struct{}

func (NoopEngine) Voices() ([]Voice, error) { return nil, ErrUnavailable }
func (NoopEngine) Speak(Utterance) error    { return ErrUnavailable }
func (NoopEngine) Pause() error             { return ErrUnavailable }
func (NoopEngine) Resume() error            { return ErrUnavailable }
func (NoopEngine) Cancel()                  {}
