// Package pdftext reads the text layer and page count of a PDF document.
package pdftext

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

var (
	// ErrNotFound is returned when the input path does not exist.
	ErrNotFound = errors.New("pdf not found")

	// ErrExtraction is matched by every failure to read an existing PDF.
	ErrExtraction = errors.New("pdf extraction failed")
)

// pageSeparator joins the text of consecutive pages.
const pageSeparator = "\n\n"

// Data is the result of reading one PDF.
type Data struct {
	Text         string `json:"text"`
	PageCount    int    `json:"page_count"`
	HasTextLayer bool   `json:"has_text_layer"`
}

// ExtractionError wraps the underlying reader failure.
type ExtractionError struct {
	Path string
	Err  error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrExtraction, e.Path, e.Err)
}

func (e *ExtractionError) Unwrap() []error {
	return []error{ErrExtraction, e.Err}
}

// Extractor reads PDFs from the local filesystem.
type Extractor struct {
	logger *slog.Logger
	conf   *model.Configuration
}

// New creates an Extractor. A nil logger uses slog.Default().
func New(logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return &Extractor{logger: logger, conf: conf}
}

// Extract opens the PDF at path once and returns its text, page count and
// whether it carries a non-empty text layer.
func (e *Extractor) Extract(ctx context.Context, path string) (Data, error) {
	resolved, err := ResolvePath(path)
	if err != nil {
		return Data{}, &ExtractionError{Path: path, Err: err}
	}

	f, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Data{}, fmt.Errorf("%w: %s: %w", ErrNotFound, resolved, fs.ErrNotExist)
		}
		return Data{}, &ExtractionError{Path: resolved, Err: err}
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return Data{}, &ExtractionError{Path: resolved, Err: err}
	}
	if info.IsDir() {
		return Data{}, &ExtractionError{Path: resolved, Err: errors.New("path is a directory")}
	}

	if err := ctx.Err(); err != nil {
		return Data{}, err
	}

	text, readerPages, err := readText(f, info.Size())
	if err != nil {
		return Data{}, &ExtractionError{Path: resolved, Err: err}
	}

	pageCount := readerPages
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return Data{}, &ExtractionError{Path: resolved, Err: err}
	}
	if n, err := api.PageCount(f, e.conf); err != nil {
		e.logger.Warn("pdfcpu page count failed, using text reader count",
			"path", resolved,
			"pages", readerPages,
			"error", err,
		)
	} else {
		pageCount = n
	}

	data := Data{
		Text:         text,
		PageCount:    pageCount,
		HasTextLayer: text != "",
	}

	e.logger.Debug("extracted pdf",
		"path", resolved,
		"pages", data.PageCount,
		"chars", len(data.Text),
		"has_text_layer", data.HasTextLayer,
	)
	return data, nil
}

// readText concatenates the plain text of every page. The text decoder
// panics on some malformed content streams; that surfaces as an error.
func readText(r io.ReaderAt, size int64) (text string, pages int, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("malformed pdf content: %v", p)
		}
	}()

	reader, err := pdf.NewReader(r, size)
	if err != nil {
		return "", 0, err
	}

	pages = reader.NumPage()
	parts := make([]string, 0, pages)
	for i := 1; i <= pages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() || page.V.Key("Contents").IsNull() {
			parts = append(parts, "")
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return "", 0, fmt.Errorf("page %d: %w", i, err)
		}
		parts = append(parts, pageText)
	}

	return strings.TrimSpace(strings.Join(parts, pageSeparator)), pages, nil
}

// ResolvePath expands a leading ~ and returns the absolute form of path.
func ResolvePath(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get user home directory: %w", err)
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return filepath.Abs(path)
}
