package llm

import (
	"context"
	"encoding/json"
	"sync"
)

// MockResponse is a canned text response for the MockProvider.
type MockResponse struct {
	Content json.RawMessage
	Usage   Usage
	Err     error
}

// MockImage is a canned image response for the MockProvider.
type MockImage struct {
	Data     []byte
	MIMEType string
	Err      error
}

// MockProvider is a deterministic MultimodalProvider for testing.
// It returns canned responses in FIFO order and records all requests.
type MockProvider struct {
	mu        sync.Mutex
	responses []MockResponse
	images    []MockImage

	// Respond, when set, answers text requests once the queue is empty.
	Respond func(Request) MockResponse
	// RespondImage, when set, answers image requests once the queue is empty.
	RespondImage func(ImageRequest) MockImage

	Calls      []Request
	ImageCalls []ImageRequest
}

// NewMockProvider creates a MockProvider with the given canned responses.
func NewMockProvider(responses ...MockResponse) *MockProvider {
	return &MockProvider{responses: responses}
}

// Generate returns the next canned response or ErrProviderUnavailable if
// the queue is empty.
func (m *MockProvider) Generate(_ context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, req)

	var resp MockResponse
	switch {
	case len(m.responses) > 0:
		resp = m.responses[0]
		m.responses = m.responses[1:]
	case m.Respond != nil:
		resp = m.Respond(req)
	default:
		return nil, &ErrProviderUnavailable{Err: nil}
	}

	if resp.Err != nil {
		return nil, resp.Err
	}

	if req.Schema != nil {
		if err := validateResponse(req.Schema, resp.Content); err != nil {
			return nil, err
		}
	}

	return &Response{
		Content:    resp.Content,
		Usage:      resp.Usage,
		Model:      "mock",
		StopReason: "end",
	}, nil
}

// GenerateImage returns the next canned image or ErrNoImage if the queue
// is empty.
func (m *MockProvider) GenerateImage(_ context.Context, req ImageRequest) (*ImageResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ImageCalls = append(m.ImageCalls, req)

	var img MockImage
	switch {
	case len(m.images) > 0:
		img = m.images[0]
		m.images = m.images[1:]
	case m.RespondImage != nil:
		img = m.RespondImage(req)
	default:
		return nil, &ErrNoImage{Reason: "mock queue empty"}
	}

	if img.Err != nil {
		return nil, img.Err
	}

	mime := img.MIMEType
	if mime == "" {
		mime = req.MIMEType
	}
	return &ImageResponse{Data: img.Data, MIMEType: mime, Model: "mock-image"}, nil
}

// ModelID returns "mock".
func (m *MockProvider) ModelID() string {
	return "mock"
}

// ImageModelID returns "mock-image".
func (m *MockProvider) ImageModelID() string {
	return "mock-image"
}

// AddResponse appends a canned response to the queue.
func (m *MockProvider) AddResponse(resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, resp)
}

// AddImage appends a canned image to the queue.
func (m *MockProvider) AddImage(img MockImage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.images = append(m.images, img)
}

// CallCount returns the number of Generate calls made.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// ImageCallCount returns the number of GenerateImage calls made.
func (m *MockProvider) ImageCallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.ImageCalls)
}
