package generation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/abhisek/lumen/internal/llm"
	"github.com/abhisek/lumen/internal/logger"
)

// Client produces notes, illustrations and quizzes. Every call is
// single-shot: no retry and no timeout beyond the caller's context.
type Client struct {
	text   llm.Provider
	images llm.ImageProvider
	cfg    Config
	log    *logger.Logger
}

// New creates a generation client over a provider that serves both text
// and images.
func New(provider llm.MultimodalProvider, cfg Config, log *logger.Logger) *Client {
	if log == nil {
		log = logger.Nop()
	}
	return &Client{text: provider, images: provider, cfg: cfg, log: log.With("component", "generation")}
}

// Config returns the client's settings.
func (c *Client) Config() Config {
	return c.cfg
}

// GenerateNotes asks the text model for structured notes on topic.
// Any failure returns ErrNotesFailed.
func (c *Client) GenerateNotes(ctx context.Context, topic string) (LearningNotes, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeNotes)

	topic = strings.TrimSpace(topic)
	ctx = llm.WithTopic(ctx, topic)
	if topic == "" {
		return fail[LearningNotes](c.log, OpNotes, errors.New("empty topic"), ErrNotesFailed, nil)
	}

	req := llm.Request{
		System: notesSystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildNotesMessage(topic, c.cfg)},
		},
		Schema:      NotesSchema,
		MaxTokens:   c.cfg.NotesMaxTokens,
		Temperature: c.cfg.Temperature,
	}

	resp, err := c.text.Generate(ctx, req)
	if err != nil {
		return fail[LearningNotes](c.log, OpNotes, fmt.Errorf("notes generation: %w", err), ErrNotesFailed, nil)
	}

	var notes LearningNotes
	if err := json.Unmarshal(resp.Content, &notes); err != nil {
		return fail[LearningNotes](c.log, OpNotes, fmt.Errorf("parse notes response: %w", err), ErrNotesFailed, nil)
	}
	if err := validateNotes(notes); err != nil {
		return fail[LearningNotes](c.log, OpNotes, err, ErrNotesFailed, nil)
	}

	c.log.Info("notes generated", "topic", topic, "sections", len(notes))
	return notes, nil
}

// GenerateImage requests one illustration for prompt and returns it as a
// data URI. It never fails: any error yields PlaceholderImageURL.
func (c *Client) GenerateImage(ctx context.Context, prompt string) string {
	ctx = llm.WithPurpose(ctx, llm.PurposeImage)

	req := llm.ImageRequest{
		Prompt:      decorateImagePrompt(c.cfg.ImageStyle, prompt),
		AspectRatio: c.cfg.AspectRatio,
		MIMEType:    c.cfg.ImageMIMEType,
	}

	resp, err := c.images.GenerateImage(ctx, req)
	if err != nil {
		url, _ := fail(c.log, OpImage, fmt.Errorf("image generation: %w", err), nil, PlaceholderImageURL)
		return url
	}
	if len(resp.Data) == 0 {
		url, _ := fail(c.log, OpImage, errors.New("image generation: empty image"), nil, PlaceholderImageURL)
		return url
	}

	return EncodeDataURI(resp.MIMEType, resp.Data)
}

// GenerateQuiz asks the text model for a quiz covering notes. A response
// that parses but has the wrong shape returns ErrInvalidQuizData; anything
// else returns ErrQuizFailed.
func (c *Client) GenerateQuiz(ctx context.Context, topic string, notes LearningNotes) (Quiz, error) {
	ctx = llm.WithTopic(llm.WithPurpose(ctx, llm.PurposeQuiz), topic)

	n := c.cfg.QuizQuestions
	req := llm.Request{
		System: quizSystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildQuizMessage(topic, notes, n)},
		},
		Schema:      quizSchema(n),
		MaxTokens:   c.cfg.QuizMaxTokens,
		Temperature: c.cfg.Temperature,
	}

	resp, err := c.text.Generate(ctx, req)
	if err != nil {
		// A schema violation on well-formed JSON is malformed quiz data, not
		// a transport failure.
		var invErr *llm.ErrInvalidResponse
		if errors.As(err, &invErr) && json.Valid(invErr.Content) {
			return fail[Quiz](c.log, OpQuiz, fmt.Errorf("quiz generation: %w", err), ErrInvalidQuizData, nil)
		}
		return fail[Quiz](c.log, OpQuiz, fmt.Errorf("quiz generation: %w", err), ErrQuizFailed, nil)
	}

	var quiz Quiz
	if err := json.Unmarshal(resp.Content, &quiz); err != nil {
		if json.Valid(resp.Content) {
			return fail[Quiz](c.log, OpQuiz, fmt.Errorf("decode quiz response: %w", err), ErrInvalidQuizData, nil)
		}
		return fail[Quiz](c.log, OpQuiz, fmt.Errorf("parse quiz response: %w", err), ErrQuizFailed, nil)
	}
	if err := validateQuiz(quiz, n); err != nil {
		return fail[Quiz](c.log, OpQuiz, err, ErrInvalidQuizData, nil)
	}

	c.log.Info("quiz generated", "topic", topic, "questions", len(quiz))
	return quiz, nil
}

func validateNotes(notes LearningNotes) error {
	if len(notes) == 0 {
		return errors.New("notes: no sections")
	}
	for i, s := range notes {
		switch {
		case strings.TrimSpace(s.Heading) == "":
			return fmt.Errorf("notes: section %d has no heading", i)
		case strings.TrimSpace(s.Content) == "":
			return fmt.Errorf("notes: section %d has no content", i)
		case strings.TrimSpace(s.ImagePrompt) == "":
			return fmt.Errorf("notes: section %d has no image prompt", i)
		}
	}
	return nil
}

// validateQuiz enforces the quiz shape: exactly want questions, each with
// 4 distinct non-empty options containing the correct answer.
func validateQuiz(quiz Quiz, want int) error {
	if len(quiz) == 0 || strings.TrimSpace(quiz[0].Question) == "" {
		return errors.New("quiz: empty or missing first question")
	}
	if len(quiz) != want {
		return fmt.Errorf("quiz: got %d questions, want %d", len(quiz), want)
	}
	for i, q := range quiz {
		if strings.TrimSpace(q.Question) == "" {
			return fmt.Errorf("quiz: question %d has no text", i)
		}
		if len(q.Options) != 4 {
			return fmt.Errorf("quiz: question %d has %d options, want 4", i, len(q.Options))
		}
		seen := make(map[string]bool, len(q.Options))
		for _, opt := range q.Options {
			if strings.TrimSpace(opt) == "" {
				return fmt.Errorf("quiz: question %d has an empty option", i)
			}
			if seen[opt] {
				return fmt.Errorf("quiz: question %d repeats option %q", i, opt)
			}
			seen[opt] = true
		}
		if !seen[q.CorrectAnswer] {
			return fmt.Errorf("quiz: question %d answer %q is not an option", i, q.CorrectAnswer)
		}
	}
	return nil
}
