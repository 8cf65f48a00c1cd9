package quiz

import "github.com/abhisek/lumen/internal/generation"

// Tier buckets a score percentage.
type Tier int

const (
	TierEffort Tier = iota
	TierGood
	TierExcellent
)

// TierFor returns the tier for score out of total: above 80% is
// excellent, above 50% good, anything else an effort.
func TierFor(score, total int) Tier {
	if total <= 0 {
		return TierEffort
	}
	pct := float64(score) * 100 / float64(total)
	switch {
	case pct > 80:
		return TierExcellent
	case pct > 50:
		return TierGood
	default:
		return TierEffort
	}
}

func (t Tier) Title() string {
	switch t {
	case TierExcellent:
		return "Excellent!"
	case TierGood:
		return "Good job!"
	default:
		return "Great effort!"
	}
}

func (t Tier) Message() string {
	switch t {
	case TierExcellent:
		return "You have a strong grasp of this topic."
	case TierGood:
		return "Solid work. Review the notes to fill in the gaps."
	default:
		return "Every attempt helps. Revisit the notes and try again."
	}
}

// ReviewItem is one row of the post-submit review.
type ReviewItem struct {
	Number      int
	Question    string
	Chosen      string
	Correct     string
	IsCorrect   bool
	Explanation string
}

// Review lists every question with the chosen and correct answers.
func (a *Attempt) Review() []ReviewItem {
	return Review(a.quiz, a.answers)
}

// Review builds review rows for q against answers.
func Review(q generation.Quiz, answers map[int]string) []ReviewItem {
	items := make([]ReviewItem, len(q))
	for i, question := range q {
		chosen := answers[i]
		items[i] = ReviewItem{
			Number:      i + 1,
			Question:    question.Question,
			Chosen:      chosen,
			Correct:     question.CorrectAnswer,
			IsCorrect:   chosen == question.CorrectAnswer,
			Explanation: question.Explanation,
		}
	}
	return items
}
