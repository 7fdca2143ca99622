package extraction

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackzampolin/estate/internal/estate"
	"github.com/jackzampolin/estate/internal/providers"
)

// Kind names a strategy variant.
type Kind string

const (
	KindText       Kind = "text"
	KindFileUpload Kind = "file_upload"
)

// SourceChain is the human-readable pipeline description shown to users.
func (k Kind) SourceChain() string {
	if k == KindText {
		return "Text→LLM"
	}
	return "PDF→LLM"
}

// Payload carries the input for one invocation. The text strategy reads
// Text; the file-upload strategy reads Path.
type Payload struct {
	Text      string
	Path      string
	RequestID string
}

// Strategy turns a document payload into a validated estate record.
type Strategy interface {
	Kind() Kind
	Invoke(ctx context.Context, p Payload) (estate.Info, error)
}

// Select returns the text strategy when the document has a text layer and
// the file-upload strategy otherwise.
func Select(hasTextLayer bool, client providers.LLMClient, params Params, logger *slog.Logger) Strategy {
	if logger == nil {
		logger = slog.Default()
	}
	params = params.withDefaults()
	if hasTextLayer {
		return &TextStrategy{client: client, params: params, logger: logger}
	}
	return &FileUploadStrategy{client: client, params: params, logger: logger}
}

// TextStrategy sends the document text in a single chat completion.
type TextStrategy struct {
	client providers.LLMClient
	params Params
	logger *slog.Logger
}

func (s *TextStrategy) Kind() Kind { return KindText }

// Invoke sends p.Text as-is; callers truncate beforehand.
func (s *TextStrategy) Invoke(ctx context.Context, p Payload) (estate.Info, error) {
	if p.Text == "" {
		return estate.Info{}, errors.New("text strategy requires document text")
	}

	s.logger.Info("requesting extraction from text",
		"provider", s.client.Name(),
		"model", s.params.Model,
		"chars", len(p.Text),
		"req_id", p.RequestID,
	)

	result, err := s.client.Chat(ctx, &providers.ChatRequest{
		Messages: []providers.Message{
			{Role: providers.RoleSystem, Content: SystemPrompt()},
			{Role: providers.RoleUser, Content: TextPrompt(p.Text)},
		},
		Model:       s.params.Model,
		Temperature: s.params.Temperature,
		MaxTokens:   s.params.MaxTokens,
		RequestID:   p.RequestID,
	})
	if err != nil {
		return estate.Info{}, fmt.Errorf("text extraction request failed: %w", err)
	}
	return parseResult(result, s.logger, p.RequestID)
}

// FileUploadStrategy uploads the PDF and references it in a chat completion.
type FileUploadStrategy struct {
	client providers.LLMClient
	params Params
	logger *slog.Logger
}

func (s *FileUploadStrategy) Kind() Kind { return KindFileUpload }

// Invoke performs one upload followed by one chat completion.
func (s *FileUploadStrategy) Invoke(ctx context.Context, p Payload) (estate.Info, error) {
	if p.Path == "" {
		return estate.Info{}, errors.New("file upload strategy requires a path")
	}

	fileID, err := s.client.UploadFile(ctx, p.Path)
	if err != nil {
		return estate.Info{}, fmt.Errorf("pdf upload failed: %w", err)
	}

	s.logger.Info("requesting extraction from uploaded pdf",
		"provider", s.client.Name(),
		"model", s.params.Model,
		"file_id", fileID,
		"req_id", p.RequestID,
	)

	result, err := s.client.Chat(ctx, &providers.ChatRequest{
		Messages: []providers.Message{
			{Role: providers.RoleSystem, Content: SystemPrompt()},
			{Role: providers.RoleUser, Content: FilePrompt(), FileIDs: []string{fileID}},
		},
		Model:       s.params.Model,
		Temperature: s.params.Temperature,
		MaxTokens:   s.params.MaxTokens,
		RequestID:   p.RequestID,
	})
	if err != nil {
		return estate.Info{}, fmt.Errorf("file extraction request failed: %w", err)
	}
	return parseResult(result, s.logger, p.RequestID)
}

func parseResult(result *providers.ChatResult, logger *slog.Logger, reqID string) (estate.Info, error) {
	info, err := estate.ParseString(result.Content)
	if err != nil {
		logger.Warn("model output failed validation",
			"req_id", reqID,
			"model", result.ModelUsed,
			"error", err,
		)
		return estate.Info{}, err
	}
	return info, nil
}
