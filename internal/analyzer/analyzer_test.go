package analyzer

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/jackzampolin/estate/internal/estate"
	"github.com/jackzampolin/estate/internal/extraction"
	"github.com/jackzampolin/estate/internal/pdftext"
	"github.com/jackzampolin/estate/internal/providers"
	"github.com/jackzampolin/estate/internal/testutil"
)

const modelResponse = `{"clientName":"John Smith","clientAddress":"42 Oak Lane, Portland","documentDate":"2019-06-30","title":"Living Trust","summary":"Establishes a revocable living trust.","n_pages":99}`

type fakeExtractor struct {
	data  pdftext.Data
	err   error
	paths []string
}

func (f *fakeExtractor) Extract(_ context.Context, path string) (pdftext.Data, error) {
	f.paths = append(f.paths, path)
	return f.data, f.err
}

func newAnalyzer(t *testing.T, client providers.LLMClient, ext Extractor, params extraction.Params) *Analyzer {
	t.Helper()
	a, err := New(Config{Client: client, Extractor: ext, Params: params})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return a
}

func TestNew_RequiresClient(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Fatal("expected error without client")
	}
}

func TestAnalyze_TextLayer(t *testing.T) {
	client := providers.NewMockClient(modelResponse)
	ext := &fakeExtractor{data: pdftext.Data{Text: "TRUST AGREEMENT", PageCount: 3, HasTextLayer: true}}
	a := newAnalyzer(t, client, ext, extraction.DefaultParams())

	info, report, err := a.AnalyzeDetailed(context.Background(), "trust.pdf")
	if err != nil {
		t.Fatalf("AnalyzeDetailed() error = %v", err)
	}

	if info.PageCount != 3 {
		t.Errorf("local page count should override model, got %d", info.PageCount)
	}
	if info.ClientName != "John Smith" {
		t.Errorf("unexpected client name %q", info.ClientName)
	}
	if report.Strategy != extraction.KindText || report.SourceChain != "Text→LLM" {
		t.Errorf("unexpected strategy in report: %+v", report)
	}
	if report.ModelPages != 99 || report.LocalPages != 3 {
		t.Errorf("unexpected page counts in report: %+v", report)
	}
	if report.RequestID == "" {
		t.Error("expected request id")
	}
	if len(client.Uploads()) != 0 {
		t.Error("text layer must not trigger an upload")
	}
	if !filepath.IsAbs(ext.paths[0]) {
		t.Errorf("extractor should receive an absolute path, got %s", ext.paths[0])
	}
}

func TestAnalyze_NoTextLayer(t *testing.T) {
	client := providers.NewMockClient(modelResponse)
	ext := &fakeExtractor{data: pdftext.Data{PageCount: 7}}
	a := newAnalyzer(t, client, ext, extraction.DefaultParams())

	info, report, err := a.AnalyzeDetailed(context.Background(), "/scans/will.pdf")
	if err != nil {
		t.Fatalf("AnalyzeDetailed() error = %v", err)
	}
	if info.PageCount != 7 {
		t.Errorf("expected 7 pages, got %d", info.PageCount)
	}
	if report.Strategy != extraction.KindFileUpload || report.SourceChain != "PDF→LLM" {
		t.Errorf("unexpected strategy: %+v", report)
	}
	uploads := client.Uploads()
	if len(uploads) != 1 || uploads[0] != "/scans/will.pdf" {
		t.Errorf("expected upload of resolved path, got %v", uploads)
	}
	if len(client.Requests()) != 1 {
		t.Errorf("expected exactly one completion, got %d", len(client.Requests()))
	}
}

func TestAnalyze_ZeroLocalPagesKeepsModelCount(t *testing.T) {
	client := providers.NewMockClient(modelResponse)
	ext := &fakeExtractor{data: pdftext.Data{Text: "x", PageCount: 0, HasTextLayer: true}}
	a := newAnalyzer(t, client, ext, extraction.DefaultParams())

	info, err := a.Analyze(context.Background(), "x.pdf")
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if info.PageCount != 99 {
		t.Errorf("expected model page count 99, got %d", info.PageCount)
	}
}

func TestAnalyze_TruncatesLongText(t *testing.T) {
	client := providers.NewMockClient(modelResponse)
	long := strings.Repeat("bequeath ", 200)
	ext := &fakeExtractor{data: pdftext.Data{Text: long, PageCount: 1, HasTextLayer: true}}
	params := extraction.DefaultParams()
	params.MaxChars = 100
	params.Placeholder = " [cut]"
	a := newAnalyzer(t, client, ext, params)

	_, report, err := a.AnalyzeDetailed(context.Background(), "long.pdf")
	if err != nil {
		t.Fatalf("AnalyzeDetailed() error = %v", err)
	}
	if !report.Truncated {
		t.Error("expected truncated flag")
	}
	if report.TextChars > 100 {
		t.Errorf("sent %d chars, budget 100", report.TextChars)
	}

	user := client.Requests()[0].Messages[1].Content
	body := user[strings.Index(user, "----- BEGIN TEXT -----\n")+len("----- BEGIN TEXT -----\n") : strings.Index(user, "\n----- END TEXT -----")]
	if utf8.RuneCountInString(body) > 100 || !strings.HasSuffix(body, " [cut]") {
		t.Errorf("unexpected embedded text %q", body)
	}
}

func TestAnalyze_ErrorsPropagate(t *testing.T) {
	remoteErr := &providers.RemoteError{Provider: "mock", Op: "chat", StatusCode: 500}

	tests := []struct {
		name    string
		ext     *fakeExtractor
		client  *providers.MockClient
		wantErr error
	}{
		{
			name:    "not found",
			ext:     &fakeExtractor{err: pdftext.ErrNotFound},
			client:  providers.NewMockClient(modelResponse),
			wantErr: pdftext.ErrNotFound,
		},
		{
			name:    "extraction failure",
			ext:     &fakeExtractor{err: &pdftext.ExtractionError{Path: "x", Err: errors.New("bad xref")}},
			client:  providers.NewMockClient(modelResponse),
			wantErr: pdftext.ErrExtraction,
		},
		{
			name:    "schema failure",
			ext:     &fakeExtractor{data: pdftext.Data{Text: "t", PageCount: 1, HasTextLayer: true}},
			client:  providers.NewMockClient("```json\n{}\n```"),
			wantErr: estate.ErrSchemaValidation,
		},
		{
			name: "remote failure",
			ext:  &fakeExtractor{data: pdftext.Data{Text: "t", PageCount: 1, HasTextLayer: true}},
			client: func() *providers.MockClient {
				c := providers.NewMockClient(modelResponse)
				c.ChatErr = remoteErr
				return c
			}(),
			wantErr: providers.ErrRemoteService,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newAnalyzer(t, tt.client, tt.ext, extraction.DefaultParams())
			_, err := a.Analyze(context.Background(), "doc.pdf")
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestAnalyze_NotFoundMakesNoRemoteCalls(t *testing.T) {
	client := providers.NewMockClient(modelResponse)
	a := newAnalyzer(t, client, nil, extraction.DefaultParams())

	_, err := a.Analyze(context.Background(), filepath.Join(t.TempDir(), "missing.pdf"))
	if !errors.Is(err, pdftext.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if len(client.Requests()) != 0 || len(client.Uploads()) != 0 {
		t.Error("no remote calls expected for a missing file")
	}
}

func TestAnalyze_RealPDF(t *testing.T) {
	tests := []struct {
		name     string
		pages    []string
		strategy extraction.Kind
	}{
		{
			name:     "text pdf",
			pages:    []string{testutil.TextPage("Last Will and Testament of John Smith"), testutil.TextPage("Signed")},
			strategy: extraction.KindText,
		},
		{
			name:     "scanned pdf",
			pages:    []string{testutil.DrawingPage, testutil.DrawingPage},
			strategy: extraction.KindFileUpload,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := testutil.WritePDF(t, "doc.pdf", testutil.BuildPDF(tt.pages...))
			client := providers.NewMockClient(modelResponse)
			a := newAnalyzer(t, client, nil, extraction.DefaultParams())

			info, report, err := a.AnalyzeDetailed(context.Background(), path)
			if err != nil {
				t.Fatalf("AnalyzeDetailed() error = %v", err)
			}
			if info.PageCount != 2 {
				t.Errorf("expected 2 pages, got %d", info.PageCount)
			}
			if report.Strategy != tt.strategy {
				t.Errorf("expected strategy %s, got %s", tt.strategy, report.Strategy)
			}
		})
	}
}
