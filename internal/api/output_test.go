package api

import (
	"bytes"
	"strings"
	"testing"
)

type sample struct {
	Name  string `json:"name" yaml:"name"`
	Pages int    `json:"n_pages" yaml:"n_pages"`
}

func TestParseOutputFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    OutputFormat
		wantErr bool
	}{
		{"json", OutputFormatJSON, false},
		{"YAML", OutputFormatYAML, false},
		{" yaml ", OutputFormatYAML, false},
		{"", DefaultOutput, false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseOutputFormat(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseOutputFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseOutputFormat(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestOutputTo(t *testing.T) {
	data := sample{Name: "Ana & Luis", Pages: 3}

	var buf bytes.Buffer
	if err := OutputTo(&buf, OutputFormatJSON, data); err != nil {
		t.Fatalf("json: %v", err)
	}
	if !strings.Contains(buf.String(), `"name": "Ana & Luis"`) {
		t.Errorf("unexpected json output:\n%s", buf.String())
	}

	buf.Reset()
	if err := OutputTo(&buf, OutputFormatYAML, data); err != nil {
		t.Fatalf("yaml: %v", err)
	}
	if !strings.Contains(buf.String(), "n_pages: 3") {
		t.Errorf("unexpected yaml output:\n%s", buf.String())
	}

	if err := OutputTo(&buf, OutputFormat("xml"), data); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestSetOutputFormat(t *testing.T) {
	t.Cleanup(func() { globalOutputFormat = DefaultOutput })

	if err := SetOutputFormat("yaml"); err != nil {
		t.Fatal(err)
	}
	if GetOutputFormat() != OutputFormatYAML {
		t.Errorf("expected yaml, got %s", GetOutputFormat())
	}
	if err := SetOutputFormat("toml"); err == nil {
		t.Error("expected error")
	}
	if GetOutputFormat() != OutputFormatYAML {
		t.Error("format changed after invalid value")
	}
}
