package llm

import "context"

type contextKey string

const (
	purposeKey contextKey = "llm_purpose"
	topicKey   contextKey = "llm_topic"
)

// Purpose labels recorded in the request log.
const (
	PurposeNotes = "notes"
	PurposeImage = "image"
	PurposeQuiz  = "quiz"
)

// WithPurpose attaches a purpose label to the context for event logging.
func WithPurpose(ctx context.Context, purpose string) context.Context {
	return context.WithValue(ctx, purposeKey, purpose)
}

// PurposeFrom extracts the purpose label from the context.
func PurposeFrom(ctx context.Context) string {
	if v, ok := ctx.Value(purposeKey).(string); ok {
		return v
	}
	return "unknown"
}

// WithTopic attaches the study topic a request belongs to.
func WithTopic(ctx context.Context, topic string) context.Context {
	return context.WithValue(ctx, topicKey, topic)
}

// TopicFrom returns the topic attached with WithTopic, or "".
func TopicFrom(ctx context.Context) string {
	topic, _ := ctx.Value(topicKey).(string)
	return topic
}
