package generation

import (
	"fmt"

	"github.com/abhisek/lumen/internal/llm"
)

// NotesSchema defines the JSON schema for learning notes.
var NotesSchema = &llm.Schema{
	Name:        "learning-notes",
	Description: "Ordered sections of learning notes, each with an illustration prompt",
	Definition: map[string]any{
		"type":     "array",
		"minItems": 1,
		"items": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"heading": map[string]any{
					"type":        "string",
					"description": "Short section heading (2-8 words)",
				},
				"content": map[string]any{
					"type":        "string",
					"description": "2-4 paragraphs separated by blank lines",
				},
				"imagePrompt": map[string]any{
					"type":        "string",
					"description": "One-sentence description of an illustration for this section",
				},
			},
			"required": []any{"heading", "content", "imagePrompt"},
		},
	},
}

// quizSchema defines the JSON schema for a quiz of n questions.
func quizSchema(n int) *llm.Schema {
	return &llm.Schema{
		Name:        fmt.Sprintf("quiz-questions-%d", n),
		Description: "Multiple-choice quiz questions with explanations",
		Definition: map[string]any{
			"type":     "array",
			"minItems": 1,
			"maxItems": n,
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"question": map[string]any{
						"type":        "string",
						"description": "The question text",
					},
					"options": map[string]any{
						"type":        "array",
						"items":       map[string]any{"type": "string"},
						"description": "Exactly 4 distinct answer options",
					},
					"correctAnswer": map[string]any{
						"type":        "string",
						"description": "The correct option, copied verbatim from options",
					},
					"explanation": map[string]any{
						"type":        "string",
						"description": "One or two sentences explaining the correct answer",
					},
				},
				"required": []any{"question", "options", "correctAnswer", "explanation"},
			},
		},
	}
}
