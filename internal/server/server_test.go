package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jackzampolin/estate/internal/home"
	"github.com/jackzampolin/estate/internal/providers"
	"github.com/jackzampolin/estate/internal/server/endpoints"
	"github.com/jackzampolin/estate/internal/testutil"
)

const modelResponse = `{"clientName":"Maria Lopez","clientAddress":"12 Elm St, Austin","documentDate":"2021-03-04","title":"Durable Power of Attorney","summary":"Names an agent for financial matters.","n_pages":9}`

func newTestServer(t *testing.T, client providers.LLMClient) (*Server, *home.Dir) {
	t.Helper()
	h, err := home.New(t.TempDir())
	if err != nil {
		t.Fatalf("home.New() error = %v", err)
	}
	registry := providers.NewRegistry()
	if client != nil {
		registry.RegisterLLM("openai", client)
	}
	srv, err := New(Config{Home: h, Registry: registry})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return srv, h
}

func uploadRequest(t *testing.T, filename string, data []byte, fields map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatal(err)
	}
	part.Write(data)
	for k, v := range fields {
		mw.WriteField(k, v)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/documents/analyze", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestServer_Health(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp endpoints.HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Status != "ok" {
		t.Errorf("status = %q, want ok", resp.Status)
	}
}

func TestServer_Status(t *testing.T) {
	srv, _ := newTestServer(t, providers.NewMockClient(modelResponse))

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))

	var resp endpoints.StatusResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Providers.LLM) != 1 || resp.Providers.LLM[0] != "openai" {
		t.Errorf("unexpected providers %v", resp.Providers.LLM)
	}
}

func TestServer_IndexPage(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	for _, path := range []string{"/", "/unknown/route"} {
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: status = %d", path, rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "Estate Document Analyzer") {
			t.Errorf("%s: index page not served", path)
		}
	}
}

func TestServer_Swagger(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/swagger.json", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var doc map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatalf("invalid swagger json: %v", err)
	}
	paths, _ := doc["paths"].(map[string]any)
	if _, ok := paths["/api/documents/analyze"]; !ok {
		t.Error("analyze path missing from swagger doc")
	}
}

func TestServer_AnalyzeDocument(t *testing.T) {
	client := providers.NewMockClient(modelResponse)
	srv, h := newTestServer(t, client)

	pdf := testutil.BuildPDF(
		testutil.TextPage("Durable Power of Attorney"),
		testutil.TextPage("Maria Lopez"),
	)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, uploadRequest(t, "poa.pdf", pdf, map[string]string{"use_local": "true"}))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp endpoints.AnalyzeResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Info.ClientName != "Maria Lopez" {
		t.Errorf("ClientName = %q", resp.Info.ClientName)
	}
	if resp.Info.PageCount != 2 {
		t.Errorf("PageCount = %d, want local count 2", resp.Info.PageCount)
	}
	if resp.SourceChain != "Text→LLM" {
		t.Errorf("SourceChain = %q", resp.SourceChain)
	}
	if resp.RequestID == "" {
		t.Error("expected request id")
	}

	entries, err := os.ReadDir(h.UploadsPath())
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("expected staged upload to be removed, found %d files", len(entries))
	}
}

func TestServer_AnalyzeDocumentErrors(t *testing.T) {
	validPDF := testutil.BuildPDF(testutil.TextPage("Trust"))

	tests := []struct {
		name       string
		client     *providers.MockClient
		filename   string
		data       []byte
		wantStatus int
		wantError  string
	}{
		{
			name:       "not a pdf",
			client:     providers.NewMockClient(modelResponse),
			filename:   "notes.txt",
			data:       []byte("hello"),
			wantStatus: http.StatusBadRequest,
			wantError:  "not a PDF",
		},
		{
			name:       "corrupt pdf",
			client:     providers.NewMockClient(modelResponse),
			filename:   "broken.pdf",
			data:       []byte("not really a pdf"),
			wantStatus: http.StatusUnprocessableEntity,
			wantError:  "Could not read PDF",
		},
		{
			name:       "invalid model output",
			client:     providers.NewMockClient("Sure! Here is the JSON you asked for."),
			filename:   "trust.pdf",
			data:       validPDF,
			wantStatus: http.StatusUnprocessableEntity,
			wantError:  "Model returned invalid JSON",
		},
		{
			name: "remote failure",
			client: func() *providers.MockClient {
				c := providers.NewMockClient(modelResponse)
				c.ChatErr = &providers.RemoteError{Provider: "openai", Op: "chat", StatusCode: 500, Message: "upstream"}
				return c
			}(),
			filename:   "trust.pdf",
			data:       validPDF,
			wantStatus: http.StatusBadGateway,
		},
		{
			name: "rate limited",
			client: func() *providers.MockClient {
				c := providers.NewMockClient(modelResponse)
				c.ChatErr = &providers.RemoteError{Provider: "openai", Op: "chat", StatusCode: http.StatusTooManyRequests, Message: "slow down"}
				return c
			}(),
			filename:   "trust.pdf",
			data:       validPDF,
			wantStatus: http.StatusBadGateway,
			wantError:  "rate limit exceeded",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newTestServer(t, tt.client)
			rec := httptest.NewRecorder()
			srv.Handler().ServeHTTP(rec, uploadRequest(t, tt.filename, tt.data, nil))

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			var resp endpoints.ErrorResponse
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatal(err)
			}
			if tt.wantError != "" && !strings.Contains(resp.Error, tt.wantError) {
				t.Errorf("error = %q, want it to contain %q", resp.Error, tt.wantError)
			}
		})
	}
}

func TestServer_AnalyzeWithoutProvider(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, uploadRequest(t, "will.pdf", testutil.BuildPDF(testutil.TextPage("Will")), nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestServer_NoFileField(t *testing.T) {
	srv, _ := newTestServer(t, providers.NewMockClient(modelResponse))

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	mw.WriteField("use_local", "false")
	mw.Close()
	req := httptest.NewRequest(http.MethodPost, "/api/documents/analyze", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestServer_Lifecycle(t *testing.T) {
	port, err := testutil.FindFreePort()
	if err != nil {
		t.Fatal(err)
	}
	h, err := home.New(filepath.Join(t.TempDir(), "home"))
	if err != nil {
		t.Fatal(err)
	}
	srv, err := New(Config{Port: port, Home: h})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Start(ctx) }()

	baseURL := "http://127.0.0.1:" + port
	if err := testutil.WaitForServer(baseURL, 5*time.Second); err != nil {
		cancel()
		t.Fatalf("server did not start: %v", err)
	}
	if !srv.IsRunning() {
		t.Error("IsRunning() = false while serving")
	}

	resp, err := http.Get(baseURL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	if err := srv.Start(ctx); err == nil {
		t.Error("expected error starting a running server")
	}

	cancel()
	if err := testutil.WaitForShutdown(done, 10*time.Second); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	if srv.IsRunning() {
		t.Error("IsRunning() = true after shutdown")
	}
}
