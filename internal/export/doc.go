// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export writes the current conversation to a file.
//
// # Supported Formats
//
//   - Markdown: role headings, timestamps, tool logs and a flow summary
//   - JSON: the full structured transcript including the last flow snapshot
//
// # Usage
//
//	exporter, _ := export.ExporterFor(export.FormatMarkdown, nil)
//	path, err := export.ExportToFile(transcript, exporter, nil)
package export
