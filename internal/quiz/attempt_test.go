package quiz

import (
	"fmt"
	"testing"

	"github.com/abhisek/lumen/internal/generation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeQuiz(answers ...string) generation.Quiz {
	q := make(generation.Quiz, len(answers))
	for i, a := range answers {
		q[i] = generation.QuizQuestion{
			Question:      fmt.Sprintf("Question %d?", i+1),
			Options:       []string{"A", "B", "C", "D"},
			CorrectAnswer: a,
			Explanation:   fmt.Sprintf("Because %s.", a),
		}
	}
	return q
}

func TestNavigationIsClamped(t *testing.T) {
	a := NewAttempt(makeQuiz("A", "B", "C"))

	a.Prev()
	assert.Equal(t, 0, a.Index())

	a.Next()
	a.Next()
	a.Next()
	a.Next()
	assert.Equal(t, 2, a.Index())
	assert.Equal(t, "Question 3?", a.Current().Question)

	a.Prev()
	assert.Equal(t, 1, a.Index())
}

func TestSelectOverwritesCurrentAnswer(t *testing.T) {
	a := NewAttempt(makeQuiz("A", "B"))

	require.True(t, a.Select("C"))
	require.True(t, a.Select("D"))
	assert.Equal(t, map[int]string{0: "D"}, a.Answers())

	assert.False(t, a.Select("Z"), "not an offered option")
	assert.True(t, a.SelectIndex(1))
	got, ok := a.Answer(0)
	assert.True(t, ok)
	assert.Equal(t, "B", got)
	assert.False(t, a.SelectIndex(4))
}

func TestSubmitGatedOnAllAnswered(t *testing.T) {
	a := NewAttempt(makeQuiz("A", "B"))

	a.Select("A")
	assert.False(t, a.CanSubmit())
	assert.ErrorIs(t, a.Submit(), ErrIncomplete)
	assert.False(t, a.Submitted())

	a.Next()
	a.Select("C")
	assert.True(t, a.CanSubmit())
	require.NoError(t, a.Submit())
	assert.True(t, a.Submitted())
	assert.False(t, a.CanSubmit())

	assert.False(t, a.Select("B"), "answers are read-only after submit")
	assert.Equal(t, 1, a.Score())
}

func TestScoreExample(t *testing.T) {
	q := makeQuiz("A", "B")
	assert.Equal(t, 1, Score(q, map[int]string{0: "A", 1: "C"}))
	assert.Equal(t, 0, Score(q, nil))
}

func TestRetakeResets(t *testing.T) {
	q := makeQuiz("A", "B")
	a := NewAttempt(q)
	a.Select("A")
	a.Next()
	a.Select("B")
	require.NoError(t, a.Submit())

	a.Retake()
	assert.False(t, a.Submitted())
	assert.Empty(t, a.Answers())
	assert.Equal(t, 0, a.Index())
	assert.Equal(t, q, a.Quiz())
}

func TestEmptyQuiz(t *testing.T) {
	a := NewAttempt(nil)
	a.Next()
	a.Prev()
	assert.Equal(t, 0, a.Index())
	assert.False(t, a.Select("A"))
	assert.False(t, a.CanSubmit())
	assert.Equal(t, generation.QuizQuestion{}, a.Current())
}

func TestTierFor(t *testing.T) {
	tests := []struct {
		score, total int
		want         Tier
		title        string
	}{
		{81, 100, TierExcellent, "Excellent!"},
		{9, 10, TierExcellent, "Excellent!"},
		{8, 10, TierGood, "Good job!"},
		{60, 100, TierGood, "Good job!"},
		{5, 10, TierEffort, "Great effort!"},
		{40, 100, TierEffort, "Great effort!"},
		{0, 0, TierEffort, "Great effort!"},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d_of_%d", tt.score, tt.total), func(t *testing.T) {
			tier := TierFor(tt.score, tt.total)
			assert.Equal(t, tt.want, tier)
			assert.Equal(t, tt.title, tier.Title())
			assert.NotEmpty(t, tier.Message())
		})
	}
}

func TestReview(t *testing.T) {
	a := NewAttempt(makeQuiz("A", "B"))
	a.Select("A")
	a.Next()
	a.Select("C")

	review := a.Review()
	require.Len(t, review, 2)
	assert.Equal(t, ReviewItem{
		Number: 1, Question: "Question 1?", Chosen: "A", Correct: "A",
		IsCorrect: true, Explanation: "Because A.",
	}, review[0])
	assert.False(t, review[1].IsCorrect)
	assert.Equal(t, "C", review[1].Chosen)
	assert.Equal(t, "B", review[1].Correct)
}
