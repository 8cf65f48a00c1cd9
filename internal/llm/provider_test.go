package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockProvider_ReturnsCannedResponses(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{"a":1}`), Usage: Usage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15}},
		MockResponse{Content: json.RawMessage(`{"b":2}`)},
	)

	resp1, err := mock.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "first"}}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, string(resp1.Content))
	assert.Equal(t, 10, resp1.Usage.InputTokens)
	assert.Equal(t, "end", resp1.StopReason)

	resp2, err := mock.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "second"}}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"b":2}`, string(resp2.Content))
}

func TestMockProvider_EmptyQueueReturnsError(t *testing.T) {
	mock := NewMockProvider()
	_, err := mock.Generate(context.Background(), Request{})
	require.Error(t, err)

	var unavail *ErrProviderUnavailable
	assert.True(t, errors.As(err, &unavail), "expected ErrProviderUnavailable, got %T", err)
}

func TestMockProvider_RespondFallback(t *testing.T) {
	mock := NewMockProvider()
	mock.Respond = func(req Request) MockResponse {
		return MockResponse{Content: json.RawMessage(`"` + req.Messages[0].Content + `"`)}
	}

	resp, err := mock.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "echo"}}})
	require.NoError(t, err)
	assert.Equal(t, `"echo"`, string(resp.Content))
}

func TestMockProvider_ValidatesSchema(t *testing.T) {
	mock := NewMockProvider(MockResponse{Content: json.RawMessage(`{"name":"x"}`)})

	_, err := mock.Generate(context.Background(), Request{Schema: testSchema()})
	var invErr *ErrInvalidResponse
	require.True(t, errors.As(err, &invErr), "expected ErrInvalidResponse, got %T", err)
	assert.JSONEq(t, `{"name":"x"}`, string(invErr.Content))
}

func TestMockProvider_RecordsCalls(t *testing.T) {
	mock := NewMockProvider(MockResponse{Content: json.RawMessage(`{}`)})

	req := Request{
		System:   "sys",
		Messages: []Message{{Role: RoleUser, Content: "hello"}},
	}
	_, _ = mock.Generate(context.Background(), req)

	require.Equal(t, 1, mock.CallCount())
	assert.Equal(t, "sys", mock.Calls[0].System)
}

func TestMockProvider_ReturnsConfiguredError(t *testing.T) {
	mock := NewMockProvider(MockResponse{Err: &ErrRateLimit{RetryAfter: 0}})

	_, err := mock.Generate(context.Background(), Request{})
	var rl *ErrRateLimit
	assert.True(t, errors.As(err, &rl), "expected ErrRateLimit, got %T", err)
}

func TestMockProvider_Images(t *testing.T) {
	mock := NewMockProvider()
	mock.AddImage(MockImage{Data: []byte{0xff, 0xd8}, MIMEType: "image/jpeg"})
	mock.AddImage(MockImage{Err: &ErrNoImage{Reason: "filtered"}})

	img, err := mock.GenerateImage(context.Background(), ImageRequest{Prompt: "a leaf", AspectRatio: "16:9"})
	require.NoError(t, err)
	assert.Equal(t, []byte{0xff, 0xd8}, img.Data)
	assert.Equal(t, "image/jpeg", img.MIMEType)
	assert.Equal(t, "mock-image", img.Model)

	_, err = mock.GenerateImage(context.Background(), ImageRequest{Prompt: "a cell"})
	var noImg *ErrNoImage
	require.True(t, errors.As(err, &noImg))
	assert.Equal(t, "filtered", noImg.Reason)

	// Queue exhausted.
	_, err = mock.GenerateImage(context.Background(), ImageRequest{Prompt: "a root"})
	assert.Error(t, err)

	assert.Equal(t, 3, mock.ImageCallCount())
	assert.Equal(t, "16:9", mock.ImageCalls[0].AspectRatio)
}

func TestMockProvider_ModelIDs(t *testing.T) {
	mock := NewMockProvider()
	assert.Equal(t, "mock", mock.ModelID())
	assert.Equal(t, "mock-image", mock.ImageModelID())
}

func TestPurposeContext(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, "unknown", PurposeFrom(ctx))

	ctx = WithPurpose(ctx, PurposeQuiz)
	assert.Equal(t, "quiz", PurposeFrom(ctx))
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name:    "gemini without key",
			cfg:     Config{Provider: "gemini"},
			wantErr: true,
		},
		{
			name:    "gemini with key",
			cfg:     Config{Provider: "gemini", Gemini: GeminiConfig{APIKey: "test-key"}},
			wantErr: false,
		},
		{
			name:    "mock needs no key",
			cfg:     Config{Provider: "mock"},
			wantErr: false,
		},
		{
			name:    "unknown provider",
			cfg:     Config{Provider: "anthropic"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			assert.Equal(t, tt.wantErr, err != nil, "Validate() error = %v", err)
		})
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("LUMEN_GEMINI_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "google-key")
	t.Setenv("LUMEN_PROVIDER", "")
	t.Setenv("LUMEN_TEXT_MODEL", "gemini-2.5-pro")
	t.Setenv("LUMEN_IMAGE_MODEL", "")

	cfg := ConfigFromEnv()
	assert.Equal(t, "gemini", cfg.Provider)
	assert.Equal(t, "google-key", cfg.Gemini.APIKey)
	assert.Equal(t, "gemini-2.5-pro", cfg.Gemini.TextModel)
	assert.Equal(t, "imagen", cfg.Gemini.ImageModel)
	assert.NoError(t, cfg.Validate())

	t.Setenv("GEMINI_API_KEY", "gemini-key")
	assert.Equal(t, "gemini-key", ConfigFromEnv().Gemini.APIKey)

	t.Setenv("LUMEN_GEMINI_API_KEY", "lumen-key")
	assert.Equal(t, "lumen-key", ConfigFromEnv().Gemini.APIKey)
}

func TestConfigFromEnv_MissingKeyFailsValidation(t *testing.T) {
	for _, k := range []string{"LUMEN_GEMINI_API_KEY", "GEMINI_API_KEY", "GOOGLE_API_KEY", "LUMEN_PROVIDER"} {
		t.Setenv(k, "")
	}
	assert.Error(t, ConfigFromEnv().Validate())
}

func TestNewProvider_Mock(t *testing.T) {
	seeded := NewMockProvider(MockResponse{Content: json.RawMessage(`{}`)})

	p, err := NewProvider(context.Background(), Config{Provider: "mock", Mock: seeded}, nil, nil)
	require.NoError(t, err)

	_, err = p.Generate(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, 1, seeded.CallCount())
}

func TestNewProvider_RejectsMissingKey(t *testing.T) {
	_, err := NewProvider(context.Background(), Config{Provider: "gemini"}, nil, nil)
	assert.Error(t, err)
}

func TestPricing(t *testing.T) {
	text := LookupCost("gemini-2.5-flash")
	require.NotNil(t, text)
	assert.InDelta(t, 0.3+2.5, text.Cost(1_000_000, 1_000_000, 0), 1e-9)

	img := LookupCost("imagen-4.0-generate-001")
	require.NotNil(t, img)
	assert.InDelta(t, 0.16, img.Cost(0, 0, 4), 1e-9)

	assert.Nil(t, LookupCost("mock"))
}
