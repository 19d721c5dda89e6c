// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package render turns assistant-authored text into something safe to show.
//
// Content passes through three stages:
//
//  1. Sanitize strips everything outside a small HTML allow-list.
//  2. ToMarkdown converts the surviving markup into Markdown.
//  3. TerminalRenderer draws the Markdown as ANSI text with glamour.
//
// Disallowed markup is removed, never escaped and shown. Script and style
// bodies are dropped together with their tags.
package render
