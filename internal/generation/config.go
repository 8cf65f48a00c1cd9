package generation

import "time"

// Config holds generation settings.
type Config struct {
	// MinSections and MaxSections bound the number of note sections requested.
	MinSections int
	MaxSections int

	// QuizQuestions is the exact number of quiz questions required.
	QuizQuestions int

	// ImageStyle is prefixed to every illustration prompt.
	ImageStyle    string
	AspectRatio   string
	ImageMIMEType string

	// ImageStagger is the delay between launching consecutive image requests.
	ImageStagger time.Duration
	// ImageConcurrency caps in-flight image requests. Zero means no cap.
	ImageConcurrency int

	NotesMaxTokens int
	QuizMaxTokens  int
	Temperature    float64
}

// DefaultConfig returns sensible defaults for generation.
func DefaultConfig() Config {
	return Config{
		MinSections:   3,
		MaxSections:   6,
		QuizQuestions: 10,
		ImageStyle:    "A clean, modern educational illustration, soft colors, no text or labels:",
		AspectRatio:   "16:9",
		ImageMIMEType: "image/jpeg",
		ImageStagger:  200 * time.Millisecond,

		NotesMaxTokens: 8192,
		QuizMaxTokens:  8192,
		Temperature:    0.7,
	}
}
