package llm

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/abhisek/lumen/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openEventRepo(t *testing.T) store.EventRepo {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "events.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s.EventRepo()
}

func TestLoggingProvider_RecordsTextAndImageRequests(t *testing.T) {
	repo := openEventRepo(t)

	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{"ok":true}`), Usage: Usage{InputTokens: 12, OutputTokens: 34}},
		MockResponse{Err: &ErrRateLimit{}},
	)
	mock.AddImage(MockImage{Data: []byte("img"), MIMEType: "image/jpeg"})

	p := WithLogging(mock, repo, nil)

	ctx := WithTopic(WithPurpose(context.Background(), PurposeNotes), "Photosynthesis")
	_, err := p.Generate(ctx, Request{System: "be brief", Messages: []Message{{Role: RoleUser, Content: "Photosynthesis"}}})
	require.NoError(t, err)

	_, err = p.Generate(WithPurpose(context.Background(), PurposeQuiz), Request{})
	require.Error(t, err)

	_, err = p.GenerateImage(WithPurpose(context.Background(), PurposeImage), ImageRequest{Prompt: "chloroplast", AspectRatio: "16:9"})
	require.NoError(t, err)

	events, err := repo.QueryLLMEvents(context.Background(), store.QueryOpts{})
	require.NoError(t, err)
	require.Len(t, events, 3)

	img, quiz, notes := events[0], events[1], events[2]

	assert.Equal(t, PurposeNotes, notes.Purpose)
	assert.Equal(t, "Photosynthesis", notes.Topic)
	assert.Empty(t, quiz.Topic)
	assert.True(t, notes.Success)
	assert.Equal(t, 12, notes.InputTokens)
	assert.Equal(t, 34, notes.OutputTokens)
	assert.Equal(t, "mock", notes.Provider)
	assert.Contains(t, notes.RequestBody, "[system]\nbe brief")
	assert.Contains(t, notes.RequestBody, "Photosynthesis")
	assert.JSONEq(t, `{"ok":true}`, notes.ResponseBody)
	assert.NotEmpty(t, notes.RequestID)

	assert.Equal(t, PurposeQuiz, quiz.Purpose)
	assert.False(t, quiz.Success)
	assert.Contains(t, quiz.ErrorMessage, "rate limited")

	assert.Equal(t, PurposeImage, img.Purpose)
	assert.Equal(t, 1, img.Images)
	assert.Equal(t, "mock-image", img.Model)
	assert.Contains(t, img.RequestBody, "chloroplast")
	assert.NotEqual(t, notes.RequestID, img.RequestID)
}

func TestLoggingProvider_NilRepo(t *testing.T) {
	mock := NewMockProvider(MockResponse{Content: json.RawMessage(`{}`)})
	p := WithLogging(mock, nil, nil)

	_, err := p.Generate(context.Background(), Request{})
	assert.NoError(t, err)
	assert.Equal(t, "mock", p.ModelID())
	assert.Equal(t, "mock-image", p.ImageModelID())
}
