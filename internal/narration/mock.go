package narration

import "sync"

// MockEngine is a scripted Engine for tests. Nothing is spoken; tests fire
// the queued utterances' callbacks with Start, End and Fail.
type MockEngine struct {
	mu sync.Mutex

	VoiceList []Voice
	VoicesErr error
	SpeakErr  error
	PauseErr  error

	queue   []Utterance
	spoken  []Utterance
	cancels int
	paused  bool
}

// NewMockEngine creates a MockEngine offering voices.
func NewMockEngine(voices ...Voice) *MockEngine {
	return &MockEngine{VoiceList: voices}
}

func (m *MockEngine) Voices() ([]Voice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.VoiceList, m.VoicesErr
}

func (m *MockEngine) Speak(u Utterance) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SpeakErr != nil {
		return m.SpeakErr
	}
	m.queue = append(m.queue, u)
	m.spoken = append(m.spoken, u)
	return nil
}

func (m *MockEngine) Pause() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.PauseErr != nil {
		return m.PauseErr
	}
	m.paused = true
	return nil
}

func (m *MockEngine) Resume() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.paused = false
	return nil
}

func (m *MockEngine) Cancel() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = nil
	m.paused = false
	m.cancels++
}

// Queue returns the utterances enqueued since the last Cancel.
func (m *MockEngine) Queue() []Utterance {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Utterance(nil), m.queue...)
}

// Spoken returns every utterance ever enqueued.
func (m *MockEngine) Spoken() []Utterance {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Utterance(nil), m.spoken...)
}

// Cancels returns how many times Cancel was called.
func (m *MockEngine) Cancels() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cancels
}

// Paused reports whether the engine is paused.
func (m *MockEngine) Paused() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.paused
}

// Start fires OnStart for queued utterance i.
func (m *MockEngine) Start(i int) { m.at(i).started() }

// End fires OnEnd for queued utterance i.
func (m *MockEngine) End(i int) { m.at(i).ended() }

// Fail fires OnError for queued utterance i.
func (m *MockEngine) Fail(i int, err error) { m.at(i).failed(err) }

// Finish plays every queued utterance to completion.
func (m *MockEngine) Finish() {
	for _, u := range m.Queue() {
		u.started()
		u.ended()
	}
}

func (m *MockEngine) at(i int) Utterance {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.queue[i]
}
