package generation

import (
	"fmt"
	"strings"
)

const notesSystemPrompt = `You are an expert teacher who writes clear, engaging study notes for curious learners. Explain ideas accurately, build from fundamentals to details, and keep each section focused on one idea.`

const quizSystemPrompt = `You are an expert teacher writing a multiple-choice quiz that checks understanding of a set of study notes. Every question must be answerable from the notes alone.`

func buildNotesMessage(topic string, cfg Config) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Topic: %s\n\n", topic))
	b.WriteString(fmt.Sprintf("Write learning notes on this topic as a JSON array of %d to %d sections.\n", cfg.MinSections, cfg.MaxSections))
	b.WriteString("Each section has:\n")
	b.WriteString("- heading: a short title for the section\n")
	b.WriteString("- content: 2 to 4 paragraphs separated by blank lines\n")
	b.WriteString("- imagePrompt: one sentence describing an illustration that would help explain the section\n")

	return b.String()
}

func buildQuizMessage(topic string, notes LearningNotes, n int) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Topic: %s\n\n", topic))
	b.WriteString("Notes:\n")
	b.WriteString(flattenNotes(notes))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("Write exactly %d multiple-choice questions about these notes as a JSON array.\n", n))
	b.WriteString("Each question has exactly 4 distinct options, a correctAnswer copied verbatim from the options, and a short explanation.\n")
	b.WriteString("Vary which option position holds the correct answer.\n")

	return b.String()
}

// flattenNotes renders the notes as a heading+content transcript.
func flattenNotes(notes LearningNotes) string {
	var b strings.Builder
	for _, s := range notes {
		b.WriteString("## ")
		b.WriteString(s.Heading)
		b.WriteString("\n")
		b.WriteString(s.Content)
		b.WriteString("\n\n")
	}
	return b.String()
}

func decorateImagePrompt(style, prompt string) string {
	if style == "" {
		return prompt
	}
	return style + " " + prompt
}
