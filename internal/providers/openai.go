package providers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const (
	OpenAIName         = "openai"
	openAIDefaultModel = "gpt-4o-mini"
)

// OpenAIConfig holds configuration for the OpenAI chat client.
type OpenAIConfig struct {
	Name       string        // Registry name, defaults to "openai"
	APIKey     string
	Model      string        // "gpt-4o-mini" (default)
	Timeout    time.Duration // HTTP timeout
	BaseURL    string        // Optional (OpenAI-compatible servers, tests)
	HTTPClient *http.Client  // Optional (tests)
	Logger     *slog.Logger
}

// OpenAIClient implements LLMClient using the official OpenAI SDK.
// SDK retries are disabled; a failed call is reported once.
type OpenAIClient struct {
	name   string
	model  string
	client openai.Client
	logger *slog.Logger
}

// NewOpenAIClient creates a new OpenAI client.
func NewOpenAIClient(cfg OpenAIConfig) *OpenAIClient {
	if cfg.Name == "" {
		cfg.Name = OpenAIName
	}
	if cfg.Model == "" {
		cfg.Model = openAIDefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 120 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(httpClient),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &OpenAIClient{
		name:   cfg.Name,
		model:  cfg.Model,
		client: openai.NewClient(opts...),
		logger: cfg.Logger,
	}
}

// Name returns the provider identifier.
func (c *OpenAIClient) Name() string {
	return c.name
}

// Model returns the configured default model.
func (c *OpenAIClient) Model() string {
	return c.model
}

// Chat sends one chat completion request.
func (c *OpenAIClient) Chat(ctx context.Context, req *ChatRequest) (*ChatResult, error) {
	if req == nil || len(req.Messages) == 0 {
		return nil, errors.New("chat request has no messages")
	}

	start := time.Now()
	model := req.Model
	if model == "" {
		model = c.model
	}

	messages, err := toOpenAIMessages(req.Messages)
	if err != nil {
		return nil, err
	}

	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(model),
		Messages:    messages,
		Temperature: openai.Float(req.Temperature),
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}

	completion, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, mapOpenAIError(c.name, "chat", err)
	}
	if completion == nil || len(completion.Choices) == 0 {
		return nil, &RemoteError{Provider: c.name, Op: "chat", Message: "response contained no choices"}
	}

	result := &ChatResult{
		Content:          completion.Choices[0].Message.Content,
		PromptTokens:     int(completion.Usage.PromptTokens),
		CompletionTokens: int(completion.Usage.CompletionTokens),
		TotalTokens:      int(completion.Usage.TotalTokens),
		ExecutionTime:    time.Since(start),
		Provider:         c.name,
		ModelUsed:        completion.Model,
		RequestID:        req.RequestID,
	}

	c.logger.Debug("chat completion finished",
		"provider", c.name,
		"model", result.ModelUsed,
		"req_id", req.RequestID,
		"prompt_tokens", result.PromptTokens,
		"completion_tokens", result.CompletionTokens,
		"elapsed_ms", result.ExecutionTime.Milliseconds(),
	)
	return result, nil
}

// UploadFile uploads a PDF with purpose "user_data" and returns its file ID.
func (c *OpenAIClient) UploadFile(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer f.Close()

	obj, err := c.client.Files.New(ctx, openai.FileNewParams{
		File:    openai.File(f, filepath.Base(path), "application/pdf"),
		Purpose: openai.FilePurposeUserData,
	})
	if err != nil {
		return "", mapOpenAIError(c.name, "upload", err)
	}
	if obj == nil || obj.ID == "" {
		return "", &RemoteError{Provider: c.name, Op: "upload", Message: "response contained no file id"}
	}

	c.logger.Debug("uploaded file", "provider", c.name, "file_id", obj.ID, "path", path)
	return obj.ID, nil
}

func toOpenAIMessages(msgs []Message) ([]openai.ChatCompletionMessageParamUnion, error) {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(msgs))
	for _, m := range msgs {
		switch m.Role {
		case RoleSystem:
			out = append(out, openai.SystemMessage(m.Content))
		case RoleAssistant:
			out = append(out, openai.AssistantMessage(m.Content))
		case RoleUser:
			if len(m.FileIDs) == 0 {
				out = append(out, openai.UserMessage(m.Content))
				continue
			}
			parts := make([]openai.ChatCompletionContentPartUnionParam, 0, len(m.FileIDs)+1)
			for _, id := range m.FileIDs {
				parts = append(parts, openai.FileContentPart(openai.ChatCompletionContentPartFileFileParam{
					FileID: openai.String(id),
				}))
			}
			parts = append(parts, openai.TextContentPart(m.Content))
			out = append(out, openai.UserMessage(parts))
		default:
			return nil, fmt.Errorf("unsupported message role %q", m.Role)
		}
	}
	return out, nil
}

var _ LLMClient = (*OpenAIClient)(nil)
