package providers

import (
	"context"
	"fmt"
	"sync"
	"time"
)

const MockClientName = "mock"

// MockClient is an LLMClient for testing. It records every request.
type MockClient struct {
	// Configurable behavior
	Latency      time.Duration
	ResponseText string
	FileID       string
	ChatErr      error
	UploadErr    error

	mu       sync.Mutex
	requests []*ChatRequest
	uploads  []string
}

// NewMockClient creates a new mock client with sensible defaults.
func NewMockClient(response string) *MockClient {
	return &MockClient{
		ResponseText: response,
		FileID:       "file-mock-1",
	}
}

// Name returns the client identifier.
func (c *MockClient) Name() string {
	return MockClientName
}

// Chat records the request and returns the configured response.
func (c *MockClient) Chat(ctx context.Context, req *ChatRequest) (*ChatResult, error) {
	start := time.Now()
	c.mu.Lock()
	c.requests = append(c.requests, req)
	count := len(c.requests)
	c.mu.Unlock()

	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	if c.ChatErr != nil {
		return nil, c.ChatErr
	}

	promptTokens := 0
	for _, m := range req.Messages {
		promptTokens += len(m.Content) / 4 // Rough estimate
	}

	return &ChatResult{
		Content:          c.ResponseText,
		PromptTokens:     promptTokens,
		CompletionTokens: len(c.ResponseText) / 4,
		TotalTokens:      promptTokens + len(c.ResponseText)/4,
		ExecutionTime:    time.Since(start),
		Provider:         MockClientName,
		ModelUsed:        req.Model,
		RequestID:        fmt.Sprintf("mock-%d", count),
	}, nil
}

// UploadFile records the path and returns the configured file ID.
func (c *MockClient) UploadFile(ctx context.Context, path string) (string, error) {
	c.mu.Lock()
	c.uploads = append(c.uploads, path)
	c.mu.Unlock()

	if err := c.wait(ctx); err != nil {
		return "", err
	}
	if c.UploadErr != nil {
		return "", c.UploadErr
	}
	return c.FileID, nil
}

func (c *MockClient) wait(ctx context.Context) error {
	if c.Latency == 0 {
		return ctx.Err()
	}
	select {
	case <-time.After(c.Latency):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Requests returns the chat requests received so far.
func (c *MockClient) Requests() []*ChatRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*ChatRequest, len(c.requests))
	copy(out, c.requests)
	return out
}

// Uploads returns the paths uploaded so far.
func (c *MockClient) Uploads() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.uploads))
	copy(out, c.uploads)
	return out
}

var _ LLMClient = (*MockClient)(nil)
