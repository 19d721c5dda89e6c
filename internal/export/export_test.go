// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jeranaias/lowchat/internal/model"
)

var exportTime = time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

func sampleTranscript() *Transcript {
	return &Transcript{
		SessionID: "sess_1a2b3c4d",
		Provider:  model.ProviderOllama,
		Messages: []model.Message{
			{Role: model.RoleUser, Content: "Weather in Madrid?", Timestamp: exportTime},
			{
				Role:      model.RoleAssistant,
				Content:   "<b>Sunny</b><script>alert(1)</script>",
				Logs:      []string{"Calling tool: get_weather"},
				Timestamp: exportTime.Add(time.Second),
			},
			{Role: model.RoleError, Content: "Error: server error: HTTP 500", Timestamp: exportTime.Add(2 * time.Second)},
		},
		Flow: &model.FlowSnapshot{
			ToolLogs: []string{"Calling tool: get_weather"},
			Messages: []model.FlowMessage{{Role: "user", Content: "Weather in Madrid?"}},
			Params:   map[string]any{"temperature": 0.7},
		},
	}
}

func fixedOptions(dir string) *Options {
	opts := DefaultOptions()
	opts.OutputDir = dir
	opts.Now = func() time.Time { return exportTime }
	return opts
}

// =============================================================================
// MARKDOWN TESTS
// =============================================================================

func TestMarkdownExporter_Export(t *testing.T) {
	out, err := NewMarkdownExporter(nil).Export(sampleTranscript())
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	md := string(out)

	for _, want := range []string{
		"session: sess_1a2b3c4d",
		"provider: ollama",
		"- **Provider**: Ollama",
		"### [User] <sub>09:26:53</sub>",
		"### [Assistant]",
		"**Sunny**",
		"### [Error]",
		"- `Calling tool: get_weather`",
		"## Internal Flow",
		"| temperature | 0.7 |",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q", want)
		}
	}
	if strings.Contains(md, "alert(1)") {
		t.Error("assistant content was not sanitized")
	}
}

func TestMarkdownExporter_NoTimestampsNoFlow(t *testing.T) {
	opts := DefaultOptions()
	opts.IncludeTimestamps = false
	opts.IncludeFlow = false

	out, err := NewMarkdownExporter(opts).Export(sampleTranscript())
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	md := string(out)
	if strings.Contains(md, "<sub>") {
		t.Error("timestamps should be omitted")
	}
	if strings.Contains(md, "Internal Flow") {
		t.Error("flow should be omitted")
	}
}

func TestMarkdownExporter_Empty(t *testing.T) {
	if _, err := NewMarkdownExporter(nil).Export(&Transcript{}); err == nil {
		t.Error("expected error for empty transcript")
	}
	if _, err := NewMarkdownExporter(nil).Export(nil); err == nil {
		t.Error("expected error for nil transcript")
	}
}

// =============================================================================
// JSON TESTS
// =============================================================================

func TestJSONExporter_IncludesFlow(t *testing.T) {
	out, err := NewJSONExporter(nil).Export(sampleTranscript())
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if decoded["session_id"] != "sess_1a2b3c4d" {
		t.Errorf("session_id = %v", decoded["session_id"])
	}
	if _, ok := decoded["internal_flow"]; !ok {
		t.Error("internal_flow missing")
	}
	if msgs, ok := decoded["messages"].([]any); !ok || len(msgs) != 3 {
		t.Errorf("messages = %v", decoded["messages"])
	}
}

// =============================================================================
// FILE TESTS
// =============================================================================

func TestExportToFile(t *testing.T) {
	dir := t.TempDir()

	for _, format := range []Format{FormatMarkdown, FormatJSON} {
		opts := fixedOptions(dir)
		exporter, err := ExporterFor(format, opts)
		if err != nil {
			t.Fatalf("ExporterFor(%s): %v", format, err)
		}

		path, err := ExportToFile(sampleTranscript(), exporter, opts)
		if err != nil {
			t.Fatalf("ExportToFile(%s): %v", format, err)
		}

		want := filepath.Join(dir, "lowchat-sess_1a2b3c4d-20250314_092653"+exporter.FileExtension())
		if path != want {
			t.Errorf("path = %q, want %q", path, want)
		}
		if _, err := os.Stat(path); err != nil {
			t.Errorf("exported file missing: %v", err)
		}
	}
}

func TestExportToFile_Empty(t *testing.T) {
	_, err := ExportToFile(&Transcript{SessionID: "sess_x"}, NewJSONExporter(nil), fixedOptions(t.TempDir()))
	if err != ErrEmptyTranscript {
		t.Errorf("err = %v, want ErrEmptyTranscript", err)
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatMarkdown, false},
		{"markdown", FormatMarkdown, false},
		{"MD", FormatMarkdown, false},
		{"json", FormatJSON, false},
		{"html", "", true},
	}

	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormat(%q) error = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSanitizeFilename(t *testing.T) {
	if got := sanitizeFilename("a/b:c d"); got != "a-b-c_d" {
		t.Errorf("sanitizeFilename = %q", got)
	}
	if got := sanitizeFilename(""); got != "session" {
		t.Errorf("sanitizeFilename(\"\") = %q", got)
	}
}
