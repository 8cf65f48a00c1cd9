package generation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strings"

	"github.com/abhisek/lumen/internal/llm"
)

// NewDemoProvider returns a mock provider that answers every notes, quiz
// and image request with deterministic offline content. It backs
// LUMEN_PROVIDER=mock.
func NewDemoProvider() *llm.MockProvider {
	m := llm.NewMockProvider()
	m.Respond = demoRespond
	m.RespondImage = func(req llm.ImageRequest) llm.MockImage {
		return llm.MockImage{Data: demoImage(len(req.Prompt)), MIMEType: "image/png"}
	}
	return m
}

func demoRespond(req llm.Request) llm.MockResponse {
	topic := "your topic"
	if len(req.Messages) > 0 {
		first, _, _ := strings.Cut(req.Messages[0].Content, "\n")
		if t, ok := strings.CutPrefix(first, "Topic: "); ok {
			topic = t
		}
	}

	var v any
	switch {
	case req.Schema == NotesSchema:
		v = DemoNotes(topic)
	case req.Schema != nil && strings.HasPrefix(req.Schema.Name, "quiz-questions"):
		n, _ := req.Schema.Definition["maxItems"].(int)
		v = DemoQuiz(topic, n)
	default:
		return llm.MockResponse{Err: fmt.Errorf("demo provider: unsupported request")}
	}

	data, err := json.Marshal(v)
	if err != nil {
		return llm.MockResponse{Err: err}
	}
	return llm.MockResponse{Content: data, Usage: llm.Usage{InputTokens: 100, OutputTokens: len(data) / 4}}
}

// DemoNotes returns four fixed sections about topic.
func DemoNotes(topic string) LearningNotes {
	headings := []string{"What is " + topic + "?", "Key ideas", "How it works", "Why it matters"}
	notes := make(LearningNotes, len(headings))
	for i, h := range headings {
		notes[i] = NoteSection{
			Heading: h,
			Content: fmt.Sprintf("This section introduces part %d of %s in plain language.\n\n"+
				"It builds on the previous section and prepares you for the next one.", i+1, topic),
			ImagePrompt: fmt.Sprintf("A simple diagram illustrating %s, part %d", topic, i+1),
		}
	}
	return notes
}

// DemoQuiz returns n fixed questions about topic.
func DemoQuiz(topic string, n int) Quiz {
	quiz := make(Quiz, n)
	for i := range quiz {
		options := []string{
			fmt.Sprintf("Part %d", i+1),
			fmt.Sprintf("Part %d", i+2),
			fmt.Sprintf("Part %d", i+3),
			fmt.Sprintf("Part %d", i+4),
		}
		quiz[i] = QuizQuestion{
			Question:      fmt.Sprintf("Question %d on %s: which option reads %q?", i+1, topic, options[i%4]),
			Options:       options,
			CorrectAnswer: options[i%4],
			Explanation:   "The demo provider always asks for the option it names.",
		}
	}
	return quiz
}

// demoImage draws a small 16:9 gradient so the notes screen has real
// image data to describe and save.
func demoImage(seed int) []byte {
	const w, h = 320, 180
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{
				R: uint8((x + seed*13) % 256),
				G: uint8((y * 255) / h),
				B: uint8(200 - (x*100)/w),
				A: 255,
			})
		}
	}
	var buf bytes.Buffer
	_ = png.Encode(&buf, img)
	return buf.Bytes()
}
