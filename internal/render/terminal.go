// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/rs/zerolog/log"
)

// Glamour styles accepted by TerminalRenderer besides the built-in names.
const (
	StyleAuto  = "auto"
	StyleNoTTY = "notty"
)

// DefaultWordWrap is used when no width is known.
const DefaultWordWrap = 80

// TerminalRenderer renders assistant content for the terminal. Every call
// sanitizes first.
type TerminalRenderer struct {
	sanitizer *Sanitizer
	style     string

	mu    sync.Mutex
	width int
	tr    *glamour.TermRenderer
}

// NewTerminalRenderer creates a renderer. An empty style means auto-detect.
func NewTerminalRenderer(opts Options, style string, width int) *TerminalRenderer {
	if style == "" {
		style = StyleAuto
	}
	r := &TerminalRenderer{
		sanitizer: NewSanitizer(opts),
		style:     style,
	}
	r.SetWidth(width)
	return r
}

// SetWidth changes the word-wrap width, rebuilding the glamour renderer.
func (r *TerminalRenderer) SetWidth(width int) {
	if width <= 0 {
		width = DefaultWordWrap
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.tr != nil && r.width == width {
		return
	}
	r.width = width

	styleOpt := glamour.WithStandardStyle(r.style)
	if r.style == StyleAuto {
		styleOpt = glamour.WithAutoStyle()
	}

	tr, err := glamour.NewTermRenderer(styleOpt, glamour.WithWordWrap(width))
	if err != nil {
		// plain Markdown is shown instead
		log.Warn().Err(err).Str("style", r.style).Msg("glamour renderer unavailable")
		r.tr = nil
		return
	}
	r.tr = tr
}

// Width returns the current word-wrap width.
func (r *TerminalRenderer) Width() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.width
}

// Plain returns the sanitized content as Markdown without ANSI styling.
// Control characters are stripped again after entities are decoded.
func (r *TerminalRenderer) Plain(content string) string {
	return StripControl(ToMarkdown(r.sanitizer.Sanitize(content)))
}

// Render returns the sanitized content drawn as ANSI text. If glamour fails
// the Markdown is returned.
func (r *TerminalRenderer) Render(content string) string {
	md := r.Plain(content)
	if md == "" {
		return ""
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.tr == nil {
		return md
	}
	out, err := r.tr.Render(md)
	if err != nil {
		log.Debug().Err(err).Msg("markdown render failed")
		return md
	}
	return strings.Trim(out, "\n")
}
