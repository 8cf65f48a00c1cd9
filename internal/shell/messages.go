package shell

// Messages emitted by screens and handled by the root model.

// SubmitTopicMsg asks for notes on Topic.
type SubmitTopicMsg struct {
	Topic string
}

// StartQuizMsg asks for a quiz on the displayed notes.
type StartQuizMsg struct{}

// BackToNotesMsg discards the active quiz.
type BackToNotesMsg struct{}

// NewTopicMsg resets everything.
type NewTopicMsg struct{}

// StateMsg is broadcast to the active screen after every transition.
type StateMsg struct {
	State State
}
