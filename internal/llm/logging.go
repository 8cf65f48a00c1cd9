package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/abhisek/lumen/internal/logger"
	"github.com/abhisek/lumen/internal/store"
	"github.com/google/uuid"
)

// LoggingProvider is a decorator that records every model request as an
// event in the request log and as a debug line.
type LoggingProvider struct {
	inner     MultimodalProvider
	eventRepo store.EventRepo
	log       *logger.Logger
}

// WithLogging wraps a MultimodalProvider with event logging. A nil repo or
// logger disables that sink.
func WithLogging(p MultimodalProvider, repo store.EventRepo, log *logger.Logger) *LoggingProvider {
	if log == nil {
		log = logger.Nop()
	}
	return &LoggingProvider{inner: p, eventRepo: repo, log: log}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()

	resp, err := l.inner.Generate(ctx, req)

	data := store.LLMRequestEventData{
		Provider:    providerName(l.inner.ModelID()),
		Model:       l.inner.ModelID(),
		Purpose:     PurposeFrom(ctx),
		Topic:       TopicFrom(ctx),
		LatencyMs:   time.Since(start).Milliseconds(),
		Success:     err == nil,
		RequestBody: serializeRequest(req),
	}

	if resp != nil {
		data.InputTokens = resp.Usage.InputTokens
		data.OutputTokens = resp.Usage.OutputTokens
		data.Model = resp.Model
		data.ResponseBody = string(resp.Content)
	}

	if err != nil {
		data.ErrorMessage = err.Error()
	}

	l.record(ctx, data)
	return resp, err
}

func (l *LoggingProvider) GenerateImage(ctx context.Context, req ImageRequest) (*ImageResponse, error) {
	start := time.Now()

	resp, err := l.inner.GenerateImage(ctx, req)

	data := store.LLMRequestEventData{
		Provider:    providerName(l.inner.ImageModelID()),
		Model:       l.inner.ImageModelID(),
		Purpose:     PurposeFrom(ctx),
		Topic:       TopicFrom(ctx),
		LatencyMs:   time.Since(start).Milliseconds(),
		Success:     err == nil,
		RequestBody: fmt.Sprintf("[prompt]\n%s\n\n[aspect ratio: %s, mime: %s]\n", req.Prompt, req.AspectRatio, req.MIMEType),
	}

	if resp != nil {
		data.Images = 1
		data.Model = resp.Model
		data.ResponseBody = fmt.Sprintf("%s, %d bytes", resp.MIMEType, len(resp.Data))
	}

	if err != nil {
		data.ErrorMessage = err.Error()
	}

	l.record(ctx, data)
	return resp, err
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}

func (l *LoggingProvider) ImageModelID() string {
	return l.inner.ImageModelID()
}

// record never fails the request; a broken log sink only produces a warning.
func (l *LoggingProvider) record(ctx context.Context, data store.LLMRequestEventData) {
	data.RequestID = uuid.NewString()

	l.log.Debug("model request",
		"request_id", data.RequestID,
		"purpose", data.Purpose,
		"topic", data.Topic,
		"model", data.Model,
		"latency_ms", data.LatencyMs,
		"input_tokens", data.InputTokens,
		"output_tokens", data.OutputTokens,
		"success", data.Success,
		"error", data.ErrorMessage,
	)

	if l.eventRepo == nil {
		return
	}
	if err := l.eventRepo.AppendLLMRequest(ctx, data); err != nil {
		l.log.Warn("failed to log model request event", "request_id", data.RequestID, "error", err)
	}
}

func providerName(model string) string {
	if model == "mock" || strings.HasPrefix(model, "mock-") {
		return "mock"
	}
	return "gemini"
}

// serializeRequest builds a readable representation of the model request.
func serializeRequest(req Request) string {
	var b strings.Builder

	if req.System != "" {
		b.WriteString("[system]\n")
		b.WriteString(req.System)
		b.WriteString("\n\n")
	}

	for _, m := range req.Messages {
		b.WriteString(fmt.Sprintf("[%s]\n", m.Role))
		b.WriteString(m.Content)
		b.WriteString("\n\n")
	}

	if req.Schema != nil {
		schemaDef, err := json.Marshal(req.Schema.Definition)
		if err == nil {
			b.WriteString(fmt.Sprintf("[schema: %s]\n", req.Schema.Name))
			b.WriteString(string(schemaDef))
			b.WriteString("\n")
		}
	}

	return b.String()
}
