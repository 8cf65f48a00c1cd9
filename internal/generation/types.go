package generation

import "strings"

// NoteSection is one heading + content + illustration unit of the notes.
type NoteSection struct {
	Heading     string `json:"heading"`
	Content     string `json:"content"`
	ImagePrompt string `json:"imagePrompt"`

	// ImageURL is empty until the illustration is backfilled. It holds a
	// data URI or PlaceholderImageURL.
	ImageURL string `json:"imageUrl,omitempty"`
}

// Paragraphs splits Content on blank lines.
func (s NoteSection) Paragraphs() []string {
	var out []string
	for _, p := range strings.Split(s.Content, "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// LearningNotes is the ordered list of sections. Display order is
// generation order.
type LearningNotes []NoteSection

// WithImages returns a copy of the notes with ImageURL set from urls,
// matched by index.
func (n LearningNotes) WithImages(urls []string) LearningNotes {
	out := make(LearningNotes, len(n))
	copy(out, n)
	for i := range out {
		if i < len(urls) {
			out[i].ImageURL = urls[i]
		}
	}
	return out
}

// QuizQuestion is a single multiple-choice question.
type QuizQuestion struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
	Explanation   string   `json:"explanation"`
}

// Quiz is the ordered list of questions generated from a set of notes.
type Quiz []QuizQuestion
