// Package quiz tracks one user's attempt at a generated quiz: navigation,
// answers, submission and scoring.
package quiz

import (
	"errors"

	"github.com/abhisek/lumen/internal/generation"
)

// ErrIncomplete is returned by Submit when some question has no answer.
var ErrIncomplete = errors.New("answer every question before submitting")

// Attempt is the answer sheet for a fixed quiz. The quiz content never
// changes; answers grow until Retake clears them.
type Attempt struct {
	quiz      generation.Quiz
	index     int
	answers   map[int]string
	submitted bool
}

// NewAttempt starts an attempt at q with the cursor on the first question.
func NewAttempt(q generation.Quiz) *Attempt {
	return &Attempt{
		quiz:    q,
		answers: make(map[int]string, len(q)),
	}
}

func (a *Attempt) Quiz() generation.Quiz { return a.quiz }

// Len returns the number of questions.
func (a *Attempt) Len() int { return len(a.quiz) }

// Index returns the cursor position.
func (a *Attempt) Index() int { return a.index }

// Current returns the question under the cursor.
func (a *Attempt) Current() generation.QuizQuestion {
	if len(a.quiz) == 0 {
		return generation.QuizQuestion{}
	}
	return a.quiz[a.index]
}

// Next moves to the next question, stopping at the last.
func (a *Attempt) Next() {
	if a.index < len(a.quiz)-1 {
		a.index++
	}
}

// Prev moves to the previous question, stopping at the first.
func (a *Attempt) Prev() {
	if a.index > 0 {
		a.index--
	}
}

// Select records option as the answer to the current question, replacing
// any earlier choice. It is ignored after submission and for options the
// question does not offer.
func (a *Attempt) Select(option string) bool {
	if a.submitted || len(a.quiz) == 0 {
		return false
	}
	for _, o := range a.quiz[a.index].Options {
		if o == option {
			a.answers[a.index] = option
			return true
		}
	}
	return false
}

// SelectIndex selects the i-th option of the current question.
func (a *Attempt) SelectIndex(i int) bool {
	if len(a.quiz) == 0 {
		return false
	}
	opts := a.quiz[a.index].Options
	if i < 0 || i >= len(opts) {
		return false
	}
	return a.Select(opts[i])
}

// Answer returns the chosen option for question i.
func (a *Attempt) Answer(i int) (string, bool) {
	s, ok := a.answers[i]
	return s, ok
}

// Answers returns a copy of the answer map.
func (a *Attempt) Answers() map[int]string {
	out := make(map[int]string, len(a.answers))
	for k, v := range a.answers {
		out[k] = v
	}
	return out
}

// Answered returns how many questions have an answer.
func (a *Attempt) Answered() int { return len(a.answers) }

// CanSubmit reports whether every question is answered.
func (a *Attempt) CanSubmit() bool {
	return !a.submitted && len(a.quiz) > 0 && len(a.answers) == len(a.quiz)
}

// Submit switches the attempt to read-only results.
func (a *Attempt) Submit() error {
	if a.submitted {
		return nil
	}
	if !a.CanSubmit() {
		return ErrIncomplete
	}
	a.submitted = true
	return nil
}

func (a *Attempt) Submitted() bool { return a.submitted }

// Score counts answers equal to the correct answer.
func (a *Attempt) Score() int {
	return Score(a.quiz, a.answers)
}

// Retake clears answers and the cursor, keeping the questions.
func (a *Attempt) Retake() {
	a.answers = make(map[int]string, len(a.quiz))
	a.index = 0
	a.submitted = false
}

// Score counts the questions whose answer matches CorrectAnswer.
func Score(q generation.Quiz, answers map[int]string) int {
	score := 0
	for i, question := range q {
		if ans, ok := answers[i]; ok && ans == question.CorrectAnswer {
			score++
		}
	}
	return score
}
