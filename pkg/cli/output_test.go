package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestParseOutputFormat(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    OutputFormat
		wantErr bool
	}{
		{name: "text", input: "text", want: FormatText},
		{name: "json", input: "json", want: FormatJSON},
		{name: "empty defaults to text", input: "", want: FormatText},
		{name: "unknown", input: "yaml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseOutputFormat(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseOutputFormat(%q) error = nil, want error", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseOutputFormat(%q) error = %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseOutputFormat(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

type stringerResult struct{ line string }

func (r stringerResult) String() string { return r.line }

func TestTextFormatterUsesStringer(t *testing.T) {
	var buf bytes.Buffer
	f := NewFormatter(FormatText)

	if err := f.FormatTo(&buf, stringerResult{line: "3 records deleted\n"}); err != nil {
		t.Fatalf("FormatTo() error = %v", err)
	}
	if got := buf.String(); got != "3 records deleted\n" {
		t.Errorf("FormatTo() = %q, want %q", got, "3 records deleted\n")
	}
}

func TestTextFormatterFallback(t *testing.T) {
	var buf bytes.Buffer
	f := &TextFormatter{}

	if err := f.FormatTo(&buf, 42); err != nil {
		t.Fatalf("FormatTo() error = %v", err)
	}
	if got := buf.String(); got != "42\n" {
		t.Errorf("FormatTo() = %q, want %q", got, "42\n")
	}
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	f := NewFormatter(FormatJSON)

	data := map[string]interface{}{
		"template_id": "constitutional_v2",
		"accepted":    true,
	}
	if err := f.FormatTo(&buf, data); err != nil {
		t.Fatalf("FormatTo() error = %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded["template_id"] != "constitutional_v2" {
		t.Errorf("template_id = %v, want constitutional_v2", decoded["template_id"])
	}
	if !strings.Contains(buf.String(), "  \"accepted\"") {
		t.Error("JSON output should be indented")
	}
}
