// Package analyzer runs the full estate document pipeline: read the PDF,
// pick a strategy, call the model and reconcile the page count.
package analyzer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/jackzampolin/estate/internal/estate"
	"github.com/jackzampolin/estate/internal/extraction"
	"github.com/jackzampolin/estate/internal/pdftext"
	"github.com/jackzampolin/estate/internal/providers"
)

// Extractor reads a PDF's text layer and page count.
type Extractor interface {
	Extract(ctx context.Context, path string) (pdftext.Data, error)
}

// Config holds analyzer dependencies.
type Config struct {
	Client    providers.LLMClient
	Params    extraction.Params
	Extractor Extractor // Defaults to pdftext.New
	Logger    *slog.Logger
}

// Analyzer holds only immutable configuration and is safe for concurrent use.
type Analyzer struct {
	client    providers.LLMClient
	params    extraction.Params
	extractor Extractor
	logger    *slog.Logger
}

// Report describes how one result was produced.
type Report struct {
	RequestID   string          `json:"request_id" yaml:"request_id"`
	Strategy    extraction.Kind `json:"strategy" yaml:"strategy"`
	SourceChain string          `json:"source_chain" yaml:"source_chain"`
	Provider    string          `json:"provider" yaml:"provider"`
	LocalPages  int             `json:"local_pages" yaml:"local_pages"`
	ModelPages  int             `json:"model_pages" yaml:"model_pages"`
	TextChars   int             `json:"text_chars" yaml:"text_chars"`
	Truncated   bool            `json:"truncated" yaml:"truncated"`
	ElapsedMS   int64           `json:"elapsed_ms" yaml:"elapsed_ms"`
}

// New creates an Analyzer.
func New(cfg Config) (*Analyzer, error) {
	if cfg.Client == nil {
		return nil, fmt.Errorf("analyzer requires an LLM client")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Extractor == nil {
		cfg.Extractor = pdftext.New(cfg.Logger)
	}
	return &Analyzer{
		client:    cfg.Client,
		params:    cfg.Params,
		extractor: cfg.Extractor,
		logger:    cfg.Logger,
	}, nil
}

// Analyze returns the validated estate record for the PDF at path.
func (a *Analyzer) Analyze(ctx context.Context, path string) (estate.Info, error) {
	info, _, err := a.AnalyzeDetailed(ctx, path)
	return info, err
}

// AnalyzeDetailed is Analyze plus a Report of the steps taken.
// Errors from every stage are returned unchanged apart from wrapping.
func (a *Analyzer) AnalyzeDetailed(ctx context.Context, path string) (estate.Info, Report, error) {
	start := time.Now()
	resolved, data, err := extract(ctx, a.extractor, path)
	if err != nil {
		return estate.Info{}, Report{Provider: a.client.Name()}, err
	}
	return a.analyzeExtracted(ctx, resolved, data, start)
}

// extract resolves path and reads it. It runs before any remote work so a
// missing or unreadable file is reported first.
func extract(ctx context.Context, extractor Extractor, path string) (string, pdftext.Data, error) {
	resolved, err := pdftext.ResolvePath(path)
	if err != nil {
		return "", pdftext.Data{}, fmt.Errorf("resolve %s: %w", path, err)
	}
	data, err := extractor.Extract(ctx, resolved)
	if err != nil {
		return "", pdftext.Data{}, err
	}
	return resolved, data, nil
}

// analyzeExtracted runs strategy selection, the model call and the page-count
// override on an already extracted document.
func (a *Analyzer) analyzeExtracted(ctx context.Context, resolved string, data pdftext.Data, start time.Time) (estate.Info, Report, error) {
	report := Report{
		RequestID:  uuid.New().String(),
		Provider:   a.client.Name(),
		LocalPages: data.PageCount,
	}

	strategy := extraction.Select(data.HasTextLayer, a.client, a.params, a.logger)
	report.Strategy = strategy.Kind()
	report.SourceChain = strategy.Kind().SourceChain()

	payload := extraction.Payload{Path: resolved, RequestID: report.RequestID}
	if data.HasTextLayer {
		maxChars, placeholder := a.truncation()
		payload.Text = extraction.Truncate(data.Text, maxChars, placeholder)
		report.TextChars = utf8.RuneCountInString(payload.Text)
		report.Truncated = utf8.RuneCountInString(strings.Join(strings.Fields(data.Text), " ")) > maxChars
	}

	a.logger.Info("analyzing document",
		"path", resolved,
		"pages", data.PageCount,
		"strategy", report.Strategy,
		"req_id", report.RequestID,
	)

	info, err := strategy.Invoke(ctx, payload)
	if err != nil {
		return estate.Info{}, report, err
	}

	report.ModelPages = info.PageCount
	info = info.WithPageCount(data.PageCount)
	report.ElapsedMS = time.Since(start).Milliseconds()

	a.logger.Info("document analyzed",
		"path", resolved,
		"req_id", report.RequestID,
		"pages", info.PageCount,
		"model_pages", report.ModelPages,
		"elapsed_ms", report.ElapsedMS,
	)
	return info, report, nil
}

func (a *Analyzer) truncation() (int, string) {
	d := extraction.DefaultParams()
	maxChars, placeholder := a.params.MaxChars, a.params.Placeholder
	if maxChars <= 0 {
		maxChars = d.MaxChars
	}
	if placeholder == "" {
		placeholder = d.Placeholder
	}
	return maxChars, placeholder
}
