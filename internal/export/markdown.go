// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/jeranaias/lowchat/internal/model"
	"github.com/jeranaias/lowchat/internal/render"
	"github.com/jeranaias/lowchat/internal/util"
)

// =============================================================================
// MARKDOWN EXPORTER
// =============================================================================

// MarkdownExporter exports transcripts to Markdown format.
type MarkdownExporter struct {
	options   *Options
	sanitizer *render.Sanitizer
}

// NewMarkdownExporter creates a new Markdown exporter.
func NewMarkdownExporter(opts *Options) *MarkdownExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &MarkdownExporter{options: opts, sanitizer: render.NewSanitizer(render.Options{})}
}

// Export converts a transcript to Markdown format.
func (e *MarkdownExporter) Export(t *Transcript) ([]byte, error) {
	if t == nil {
		return nil, fmt.Errorf("transcript is nil")
	}
	if len(t.Messages) == 0 {
		return nil, ErrEmptyTranscript
	}

	var sb strings.Builder

	// YAML frontmatter
	sb.WriteString("---\n")
	sb.WriteString(fmt.Sprintf("session: %s\n", escapeYAML(t.SessionID)))
	sb.WriteString(fmt.Sprintf("provider: %s\n", t.Provider))
	sb.WriteString(fmt.Sprintf("messages: %d\n", len(t.Messages)))
	sb.WriteString(fmt.Sprintf("exported: %s\n", t.ExportedAt.Format(time.RFC3339)))
	sb.WriteString("generator: lowchat\n")
	sb.WriteString("---\n\n")

	sb.WriteString("# Conversation\n\n")
	sb.WriteString(fmt.Sprintf("- **Provider**: %s\n", t.Provider.DisplayName()))
	sb.WriteString(fmt.Sprintf("- **Session**: `%s`\n", t.SessionID))
	if first := t.Messages[0].Timestamp; !first.IsZero() {
		sb.WriteString(fmt.Sprintf("- **Started**: %s\n", formatTimestamp(first)))
	}
	sb.WriteString("\n---\n\n")

	for i, msg := range t.Messages {
		label := roleLabel(msg.Role)
		if e.options.IncludeTimestamps && !msg.Timestamp.IsZero() {
			sb.WriteString(fmt.Sprintf("### %s <sub>%s</sub>\n\n", label, formatShortTimestamp(msg.Timestamp)))
		} else {
			sb.WriteString(fmt.Sprintf("### %s\n\n", label))
		}

		sb.WriteString(e.formatContent(msg))
		sb.WriteString("\n\n")

		if msg.HasLogs() {
			sb.WriteString("<details><summary>Tool calls</summary>\n\n")
			for _, l := range msg.Logs {
				sb.WriteString(fmt.Sprintf("- `%s`\n", strings.ReplaceAll(l, "`", "'")))
			}
			sb.WriteString("\n</details>\n\n")
		}

		if i < len(t.Messages)-1 {
			sb.WriteString("---\n\n")
		}
	}

	if e.options.IncludeFlow && t.Flow != nil {
		sb.WriteString("\n---\n\n")
		sb.WriteString(formatFlow(t.Flow))
	}

	return []byte(sb.String()), nil
}

// FileExtension returns the file extension for Markdown.
func (e *MarkdownExporter) FileExtension() string {
	return ".md"
}

// MimeType returns the MIME type for Markdown.
func (e *MarkdownExporter) MimeType() string {
	return "text/markdown"
}

// =============================================================================
// FORMATTING HELPERS
// =============================================================================

func roleLabel(role model.Role) string {
	switch role {
	case model.RoleUser:
		return "[User]"
	case model.RoleAssistant:
		return "[Assistant]"
	case model.RoleError:
		return "[Error]"
	default:
		return "Unknown"
	}
}

// formatContent sanitizes assistant content; user and error text is
// written as-is.
func (e *MarkdownExporter) formatContent(msg model.Message) string {
	if msg.Role == model.RoleAssistant {
		return render.ToMarkdown(e.sanitizer.Sanitize(msg.Content))
	}
	return strings.TrimSpace(msg.Content)
}

func formatFlow(f *model.FlowSnapshot) string {
	var sb strings.Builder

	sb.WriteString("## Internal Flow\n\n")
	sb.WriteString(fmt.Sprintf("- **Tools**: %d\n", f.ToolCount()))
	sb.WriteString(fmt.Sprintf("- **Messages**: %d\n", f.MessageCount()))
	sb.WriteString(fmt.Sprintf("- **Tokens (approx.)**: %d\n\n", f.EstimateTokens()))

	if params := f.SortedParams(); len(params) > 0 {
		sb.WriteString("| Param | Value |\n|---|---|\n")
		for _, p := range params {
			sb.WriteString(fmt.Sprintf("| %s | %s |\n", p.Name, p.Value))
		}
		sb.WriteString("\n")
	}

	for i, m := range f.Messages {
		sb.WriteString(fmt.Sprintf("%d. **%s** (%d chars): %s\n", i+1, m.Role, len(m.Content), util.Preview(m.Content, 80)))
	}
	return sb.String()
}

// =============================================================================
// ESCAPING HELPERS
// =============================================================================

// escapeYAML escapes special YAML characters in values.
func escapeYAML(s string) string {
	if strings.ContainsAny(s, ":#|>@`\"'[]{}!%&*\n\r\\") || strings.HasPrefix(s, " ") || strings.HasSuffix(s, " ") {
		s = strings.ReplaceAll(s, "\\", "\\\\")
		s = strings.ReplaceAll(s, "\"", "\\\"")
		s = strings.ReplaceAll(s, "\n", "\\n")
		s = strings.ReplaceAll(s, "\r", "\\r")
		return fmt.Sprintf("\"%s\"", s)
	}
	return s
}
