package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestClient_Get(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/health" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		w.Write([]byte(`{"status":"ok"}`))
	}))
	defer srv.Close()

	var out map[string]string
	if err := NewClient(srv.URL).Get(context.Background(), "/health", &out); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if out["status"] != "ok" {
		t.Errorf("unexpected response %v", out)
	}
}

func TestClient_PostFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "will.pdf")
	if err := os.WriteFile(path, []byte("%PDF-1.4 test"), 0o644); err != nil {
		t.Fatal(err)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse form: %v", err)
			return
		}
		f, hdr, err := r.FormFile("file")
		if err != nil {
			t.Errorf("form file: %v", err)
			return
		}
		defer f.Close()
		data, _ := io.ReadAll(f)
		if string(data) != "%PDF-1.4 test" {
			t.Errorf("unexpected body %q", data)
		}
		if hdr.Filename != "will.pdf" {
			t.Errorf("unexpected filename %q", hdr.Filename)
		}
		if r.FormValue("use_local") != "true" {
			t.Errorf("expected use_local=true, got %q", r.FormValue("use_local"))
		}
		w.Write([]byte(`{"request_id":"abc"}`))
	}))
	defer srv.Close()

	var out map[string]string
	err := NewClient(srv.URL).PostFile(context.Background(), "/upload", "file", path,
		map[string]string{"use_local": "true"}, &out)
	if err != nil {
		t.Fatalf("PostFile() error = %v", err)
	}
	if out["request_id"] != "abc" {
		t.Errorf("unexpected response %v", out)
	}
}

func TestClient_PostFileMissing(t *testing.T) {
	err := NewClient("http://127.0.0.1:0").PostFile(context.Background(), "/upload", "file",
		filepath.Join(t.TempDir(), "missing.pdf"), nil, nil)
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not exist error, got %v", err)
	}
}

func TestClient_ErrorResponse(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantMsg string
	}{
		{"json error", `{"error":"Model returned invalid JSON"}`, "Model returned invalid JSON"},
		{"plain body", "boom", "boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnprocessableEntity)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			err := NewClient(srv.URL).Get(context.Background(), "/", nil)
			var se *StatusError
			if !errors.As(err, &se) {
				t.Fatalf("expected StatusError, got %v", err)
			}
			if se.StatusCode != http.StatusUnprocessableEntity || se.Message != tt.wantMsg {
				t.Errorf("unexpected error %+v", se)
			}
		})
	}
}
