package generation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/abhisek/lumen/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validNotesJSON() json.RawMessage {
	return json.RawMessage(`[
		{"heading": "What is photosynthesis?", "content": "Plants make food from light.\n\nThey use water and carbon dioxide.", "imagePrompt": "A green leaf in sunlight"},
		{"heading": "Chloroplasts", "content": "Chloroplasts hold chlorophyll.\n\nChlorophyll absorbs light.", "imagePrompt": "A chloroplast cross-section"},
		{"heading": "Outputs", "content": "Glucose and oxygen are produced.\n\nOxygen is released into the air.", "imagePrompt": "Oxygen bubbles rising from a pond plant"}
	]`)
}

func quizJSON(t *testing.T, quiz Quiz) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(quiz)
	require.NoError(t, err)
	return data
}

func validQuiz(n int) Quiz {
	quiz := make(Quiz, n)
	for i := range quiz {
		quiz[i] = QuizQuestion{
			Question:      fmt.Sprintf("Question %d?", i+1),
			Options:       []string{"A", "B", "C", "D"},
			CorrectAnswer: "B",
			Explanation:   "Because B.",
		}
	}
	return quiz
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.ImageStagger = 0
	return cfg
}

func TestGenerateNotes_Success(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: validNotesJSON()})
	c := New(mock, testConfig(), nil)

	notes, err := c.GenerateNotes(context.Background(), "  Photosynthesis ")
	require.NoError(t, err)
	require.Len(t, notes, 3)

	assert.Equal(t, "What is photosynthesis?", notes[0].Heading)
	assert.Equal(t, "Outputs", notes[2].Heading)
	for _, s := range notes {
		assert.NotEmpty(t, s.Heading)
		assert.NotEmpty(t, s.Content)
		assert.NotEmpty(t, s.ImagePrompt)
		assert.Empty(t, s.ImageURL)
	}
	assert.Len(t, notes[0].Paragraphs(), 2)

	require.Equal(t, 1, mock.CallCount())
	call := mock.Calls[0]
	assert.Equal(t, NotesSchema, call.Schema)
	assert.Contains(t, call.Messages[0].Content, "Topic: Photosynthesis\n")
}

func TestGenerateNotes_Failures(t *testing.T) {
	tests := []struct {
		name string
		resp llm.MockResponse
	}{
		{"transport error", llm.MockResponse{Err: &llm.ErrProviderUnavailable{Err: errors.New("connection reset")}}},
		{"not json", llm.MockResponse{Content: json.RawMessage(`Sure! Here are your notes`)}},
		{"empty array", llm.MockResponse{Content: json.RawMessage(`[]`)}},
		{"missing image prompt", llm.MockResponse{Content: json.RawMessage(`[{"heading":"h","content":"c"}]`)}},
		{"blank heading", llm.MockResponse{Content: json.RawMessage(`[{"heading":" ","content":"c","imagePrompt":"p"}]`)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(llm.NewMockProvider(tt.resp), testConfig(), nil)
			notes, err := c.GenerateNotes(context.Background(), "Photosynthesis")
			assert.ErrorIs(t, err, ErrNotesFailed)
			assert.Equal(t, "failed to generate notes", err.Error())
			assert.Nil(t, notes)
		})
	}
}

func TestGenerateNotes_EmptyTopic(t *testing.T) {
	mock := llm.NewMockProvider()
	c := New(mock, testConfig(), nil)

	_, err := c.GenerateNotes(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrNotesFailed)
	assert.Zero(t, mock.CallCount())
}

func TestGenerateImage_Success(t *testing.T) {
	mock := llm.NewMockProvider()
	mock.AddImage(llm.MockImage{Data: []byte("jpeg-bytes"), MIMEType: "image/jpeg"})
	c := New(mock, testConfig(), nil)

	url := c.GenerateImage(context.Background(), "A green leaf")
	assert.True(t, strings.HasPrefix(url, "data:image/jpeg;base64,"), url)

	mime, data, err := DecodeDataURI(url)
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", mime)
	assert.Equal(t, []byte("jpeg-bytes"), data)

	req := mock.ImageCalls[0]
	assert.Equal(t, "16:9", req.AspectRatio)
	assert.True(t, strings.HasSuffix(req.Prompt, " A green leaf"))
	assert.True(t, strings.HasPrefix(req.Prompt, DefaultConfig().ImageStyle))
}

func TestGenerateImage_NeverFails(t *testing.T) {
	tests := []struct {
		name string
		img  llm.MockImage
	}{
		{"provider error", llm.MockImage{Err: &llm.ErrRateLimit{}}},
		{"filtered", llm.MockImage{Err: &llm.ErrNoImage{Reason: "safety"}}},
		{"empty bytes", llm.MockImage{MIMEType: "image/jpeg"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := llm.NewMockProvider()
			mock.AddImage(tt.img)
			c := New(mock, testConfig(), nil)

			assert.Equal(t, PlaceholderImageURL, c.GenerateImage(context.Background(), "anything"))
		})
	}
}

func TestGenerateQuiz_Success(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: quizJSON(t, validQuiz(10))})
	c := New(mock, testConfig(), nil)

	var notes LearningNotes
	require.NoError(t, json.Unmarshal(validNotesJSON(), &notes))

	quiz, err := c.GenerateQuiz(context.Background(), "Photosynthesis", notes)
	require.NoError(t, err)
	assert.Len(t, quiz, 10)

	msg := mock.Calls[0].Messages[0].Content
	assert.Contains(t, msg, "## Chloroplasts\nChloroplasts hold chlorophyll.")
	assert.Contains(t, msg, "exactly 10")
}

func TestGenerateQuiz_InvalidData(t *testing.T) {
	dupOptions := validQuiz(10)
	dupOptions[3].Options = []string{"A", "A", "C", "D"}

	emptyOption := validQuiz(10)
	emptyOption[0].Options = []string{"A", "", "C", "D"}

	threeOptions := validQuiz(10)
	threeOptions[9].Options = []string{"A", "B", "C"}

	wrongAnswer := validQuiz(10)
	wrongAnswer[5].CorrectAnswer = "E"

	tests := []struct {
		name    string
		content json.RawMessage
	}{
		{"empty array", json.RawMessage(`[]`)},
		{"first missing question", json.RawMessage(`[{"options":["A","B","C","D"],"correctAnswer":"A","explanation":"x"}]`)},
		{"object instead of array", json.RawMessage(`{"questions":[]}`)},
		{"too few questions", quizJSON(t, validQuiz(9))},
		{"too many questions", quizJSON(t, validQuiz(11))},
		{"duplicate options", quizJSON(t, dupOptions)},
		{"empty option", quizJSON(t, emptyOption)},
		{"three options", quizJSON(t, threeOptions)},
		{"answer not an option", quizJSON(t, wrongAnswer)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(llm.NewMockProvider(llm.MockResponse{Content: tt.content}), testConfig(), nil)
			quiz, err := c.GenerateQuiz(context.Background(), "Photosynthesis", nil)
			assert.ErrorIs(t, err, ErrInvalidQuizData)
			assert.Equal(t, "invalid quiz data", err.Error())
			assert.Nil(t, quiz)
		})
	}
}

func TestGenerateQuiz_Failed(t *testing.T) {
	tests := []struct {
		name string
		resp llm.MockResponse
	}{
		{"transport error", llm.MockResponse{Err: &llm.ErrProviderUnavailable{}}},
		{"truncated", llm.MockResponse{Err: &llm.ErrMaxTokensExceeded{Content: json.RawMessage(`[{"question":"Q`)}}},
		{"not json", llm.MockResponse{Content: json.RawMessage(`[{"question":`)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(llm.NewMockProvider(tt.resp), testConfig(), nil)
			_, err := c.GenerateQuiz(context.Background(), "Photosynthesis", nil)
			assert.ErrorIs(t, err, ErrQuizFailed)
			assert.NotErrorIs(t, err, ErrInvalidQuizData)
		})
	}
}

func TestIllustrateNotes(t *testing.T) {
	mock := llm.NewMockProvider()
	mock.RespondImage = func(req llm.ImageRequest) llm.MockImage {
		if strings.Contains(req.Prompt, "broken") {
			return llm.MockImage{Err: &llm.ErrNoImage{}}
		}
		return llm.MockImage{Data: []byte(req.Prompt), MIMEType: "image/png"}
	}
	c := New(mock, testConfig(), nil)

	notes := LearningNotes{
		{Heading: "One", Content: "c", ImagePrompt: "first"},
		{Heading: "Two", Content: "c", ImagePrompt: "broken"},
		{Heading: "Three", Content: "c", ImagePrompt: "third"},
	}

	var mu sync.Mutex
	var progress []int
	out := c.IllustrateNotes(context.Background(), "Counting", notes, func(done, total int) {
		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, 3, total)
		progress = append(progress, done)
	})

	require.Len(t, out, 3)
	assert.ElementsMatch(t, []int{1, 2, 3}, progress)
	assert.Equal(t, 3, mock.ImageCallCount())

	_, data, err := DecodeDataURI(out[0].ImageURL)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(string(data), "first"))
	assert.Equal(t, PlaceholderImageURL, out[1].ImageURL)
	_, data, err = DecodeDataURI(out[2].ImageURL)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(string(data), "third"))

	// The input is not modified.
	for _, s := range notes {
		assert.Empty(t, s.ImageURL)
	}
	assert.Equal(t, "Two", out[1].Heading)
}

func TestPolicies(t *testing.T) {
	assert.Equal(t, PolicySurface, OpNotes.Policy)
	assert.Equal(t, PolicyDegrade, OpImage.Policy)
	assert.Equal(t, PolicySurface, OpQuiz.Policy)
	assert.Equal(t, "degrade", PolicyDegrade.String())
}

func TestDemoProvider(t *testing.T) {
	c := New(NewDemoProvider(), testConfig(), nil)
	ctx := context.Background()

	notes, err := c.GenerateNotes(ctx, "Volcanoes")
	require.NoError(t, err)
	require.Len(t, notes, 4)
	assert.Contains(t, notes[0].Heading, "Volcanoes")

	url := c.GenerateImage(ctx, notes[0].ImagePrompt)
	w, h, format, err := ImageInfo(url)
	require.NoError(t, err)
	assert.Equal(t, 320, w)
	assert.Equal(t, 180, h)
	assert.Equal(t, "png", format)

	quiz, err := c.GenerateQuiz(ctx, "Volcanoes", notes)
	require.NoError(t, err)
	assert.Len(t, quiz, 10)
}
