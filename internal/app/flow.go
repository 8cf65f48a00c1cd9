package app

import (
	"context"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/lumen/internal/generation"
	"github.com/abhisek/lumen/internal/screens/notes"
	quizscreen "github.com/abhisek/lumen/internal/screens/quiz"
	"github.com/abhisek/lumen/internal/screens/topic"
	"github.com/abhisek/lumen/internal/shell"
)

// Results of background generation, tagged with the state epoch that
// started them.

type notesGeneratedMsg struct {
	epoch uint64
	notes generation.LearningNotes
}

type notesFailedMsg struct {
	epoch uint64
	err   error
}

type imageProgressMsg struct {
	epoch       uint64
	done, total int
	ch          <-chan imageProgress
}

type notesIllustratedMsg struct {
	epoch uint64
	notes generation.LearningNotes
}

type quizReadyMsg struct {
	epoch uint64
	quiz  generation.Quiz
}

type quizFailedMsg struct {
	epoch uint64
	err   error
}

type imageProgress struct {
	done, total int
}

func (m AppModel) submit(topicText string) (AppModel, tea.Cmd) {
	st, err := m.state.Submit(topicText)
	if err != nil {
		m.log.Debug("submit ignored", "error", err)
		return m, nil
	}
	m.state = st
	m.log.Info("topic submitted", "topic", st.Topic)
	return m, tea.Batch(m.broadcast(), m.generateNotes(st.Epoch, st.Topic))
}

func (m AppModel) generateNotes(epoch uint64, topicText string) tea.Cmd {
	ctx, client := m.ctx, m.opts.Client
	return func() tea.Msg {
		n, err := client.GenerateNotes(ctx, topicText)
		if err != nil {
			return notesFailedMsg{epoch: epoch, err: err}
		}
		return notesGeneratedMsg{epoch: epoch, notes: n}
	}
}

func (m AppModel) handleNotesGenerated(msg notesGeneratedMsg) (AppModel, tea.Cmd) {
	if !m.state.Current(msg.epoch) {
		return m, nil
	}
	st, err := m.state.NotesGenerated(len(msg.notes))
	if err != nil {
		m.log.Warn("unexpected notes result", "error", err)
		return m, nil
	}
	m.state = st
	return m, tea.Batch(m.broadcast(), m.illustrate(msg.epoch, m.state.Topic, msg.notes))
}

// illustrate runs the image batch and streams its progress back as
// imageProgressMsg until the batch finishes.
func (m AppModel) illustrate(epoch uint64, topicText string, n generation.LearningNotes) tea.Cmd {
	ctx, client := m.ctx, m.opts.Client
	ch := make(chan imageProgress, len(n))
	run := func() tea.Msg {
		out := client.IllustrateNotes(ctx, topicText, n, func(done, total int) {
			ch <- imageProgress{done: done, total: total}
		})
		close(ch)
		return notesIllustratedMsg{epoch: epoch, notes: out}
	}
	return tea.Batch(run, waitProgress(epoch, ch))
}

func waitProgress(epoch uint64, ch <-chan imageProgress) tea.Cmd {
	return func() tea.Msg {
		p, ok := <-ch
		if !ok {
			return nil
		}
		return imageProgressMsg{epoch: epoch, done: p.done, total: p.total, ch: ch}
	}
}

func (m AppModel) handleImageProgress(msg imageProgressMsg) (AppModel, tea.Cmd) {
	if !m.state.Current(msg.epoch) {
		return m, nil
	}
	st, err := m.state.ImagesProgress(msg.done, msg.total)
	if err != nil {
		// The batch already finished.
		return m, nil
	}
	m.state = st
	return m, tea.Batch(m.broadcast(), waitProgress(msg.epoch, msg.ch))
}

func (m AppModel) handleNotesIllustrated(msg notesIllustratedMsg) (AppModel, tea.Cmd) {
	if !m.state.Current(msg.epoch) {
		return m, nil
	}
	st, err := m.state.NotesIllustrated(msg.notes)
	if err != nil {
		m.log.Warn("unexpected illustration result", "error", err)
		return m, nil
	}
	m.state = st
	ns := notes.New(st, notes.Options{
		Narration: m.opts.Narration,
		Engine:    m.opts.Engine,
		ImageDir:  m.opts.ImageDir,
	})
	return m, m.router.Replace(ns)
}

func (m AppModel) handleNotesFailed(msg notesFailedMsg) (AppModel, tea.Cmd) {
	if !m.state.Current(msg.epoch) {
		return m, nil
	}
	st, err := m.state.NotesFailed(msg.err)
	if err != nil {
		return m, nil
	}
	m.state = st
	return m, m.broadcast()
}

func (m AppModel) startQuiz() (AppModel, tea.Cmd) {
	st, err := m.state.StartQuiz()
	if err != nil {
		m.log.Debug("start quiz ignored", "error", err)
		return m, nil
	}
	m.state = st
	n, _ := st.LoadedNotes()
	return m, tea.Batch(m.broadcast(), m.generateQuiz(st.Epoch, st.Topic, n))
}

func (m AppModel) generateQuiz(epoch uint64, topicText string, n generation.LearningNotes) tea.Cmd {
	ctx, client := m.ctx, m.opts.Client
	return func() tea.Msg {
		q, err := client.GenerateQuiz(ctx, topicText, n)
		if err != nil {
			return quizFailedMsg{epoch: epoch, err: err}
		}
		return quizReadyMsg{epoch: epoch, quiz: q}
	}
}

func (m AppModel) handleQuizReady(msg quizReadyMsg) (AppModel, tea.Cmd) {
	if !m.state.Current(msg.epoch) {
		return m, nil
	}
	st, err := m.state.QuizReady(msg.quiz)
	if err != nil {
		return m, nil
	}
	m.state = st
	broadcast := m.broadcast()
	return m, tea.Batch(broadcast, m.router.Push(quizscreen.New(st.Topic, msg.quiz, m.log)))
}

func (m AppModel) handleQuizFailed(msg quizFailedMsg) (AppModel, tea.Cmd) {
	if !m.state.Current(msg.epoch) {
		return m, nil
	}
	st, err := m.state.QuizFailed(msg.err)
	if err != nil {
		return m, nil
	}
	m.state = st
	return m, m.broadcast()
}

func (m AppModel) backToNotes() (AppModel, tea.Cmd) {
	if _, ok := m.state.Quiz.(shell.QuizActive); !ok {
		return m, nil
	}
	m.state = m.state.BackToNotes()
	if _, onQuiz := m.router.Active().(*quizscreen.QuizScreen); onQuiz {
		m.router.Pop()
	}
	return m, m.broadcast()
}

// newTopic abandons in-flight generation and returns to an empty form.
func (m AppModel) newTopic() (AppModel, tea.Cmd) {
	m.cancel()
	m.ctx, m.cancel = context.WithCancel(m.parent)
	m.state = m.state.Reset()
	return m, m.router.Reset(topic.New(m.state))
}

func (m AppModel) broadcast() tea.Cmd {
	return m.router.Broadcast(shell.StateMsg{State: m.state})
}
