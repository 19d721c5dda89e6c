// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/text/unicode/norm"
)

// UNICODE: all helpers here count display cells or runes, never bytes, so
// multi-byte characters are never split.

// TruncateWidth truncates s to at most maxWidth terminal cells. Wide (CJK)
// characters count as two cells. A truncated string ends in "...".
func TruncateWidth(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	if maxWidth <= 3 {
		return runewidth.Truncate(s, maxWidth, "")
	}
	return runewidth.Truncate(s, maxWidth, "...")
}

// StringWidth returns the number of terminal cells s occupies.
func StringWidth(s string) int {
	return runewidth.StringWidth(s)
}

// PadRight pads s with spaces up to width cells.
func PadRight(s string, width int) string {
	return runewidth.FillRight(s, width)
}

// Preview collapses whitespace and newlines in s and truncates it to
// maxWidth cells. Used for single-line previews of long content.
func Preview(s string, maxWidth int) string {
	return TruncateWidth(strings.Join(strings.Fields(s), " "), maxWidth)
}

// NormalizeInput trims surrounding whitespace and converts s to Unicode
// normalization form C, so visually identical input is sent identically.
func NormalizeInput(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}
