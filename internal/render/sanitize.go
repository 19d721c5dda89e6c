// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"regexp"

	"github.com/microcosm-cc/bluemonday"
)

// AllowedElements is the base element allow-list.
var AllowedElements = []string{
	"b", "i", "em", "strong", "a", "p", "br", "ul", "ol", "li", "code", "pre",
}

// AllowedLinkAttrs are the attributes kept on <a>.
var AllowedLinkAttrs = []string{"href", "target", "rel"}

// AllowedURLSchemes are the absolute URL schemes kept in href values.
// Relative URLs are also kept.
var AllowedURLSchemes = []string{"http", "https", "mailto"}

var targetValue = regexp.MustCompile(`^(_blank|_self|_parent|_top)$`)

// Options selects a variant of the allow-list.
type Options struct {
	// AllowSpan adds <span> to the element list.
	AllowSpan bool

	// AllowClass permits space-separated class tokens on every allowed element.
	AllowClass bool
}

// Sanitizer applies an allow-list policy. It is safe for concurrent use.
type Sanitizer struct {
	policy *bluemonday.Policy
	opts   Options
}

// NewSanitizer builds a sanitizer for the given options.
func NewSanitizer(opts Options) *Sanitizer {
	p := bluemonday.NewPolicy()

	elements := append([]string(nil), AllowedElements...)
	if opts.AllowSpan {
		elements = append(elements, "span")
	}
	p.AllowElements(elements...)

	p.AllowAttrs("href").OnElements("a")
	p.AllowAttrs("target").Matching(targetValue).OnElements("a")
	p.AllowAttrs("rel").Matching(bluemonday.SpaceSeparatedTokens).OnElements("a")
	p.AllowURLSchemes(AllowedURLSchemes...)
	p.AllowRelativeURLs(true)
	p.RequireParseableURLs(true)

	if opts.AllowClass {
		p.AllowAttrs("class").Matching(bluemonday.SpaceSeparatedTokens).OnElements(elements...)
	}

	return &Sanitizer{policy: p, opts: opts}
}

// Options returns the options the sanitizer was built with.
func (s *Sanitizer) Options() Options {
	return s.opts
}

// Sanitize returns content with terminal control sequences and every
// disallowed element and attribute removed.
func (s *Sanitizer) Sanitize(content string) string {
	// Entities such as &#27; decode to raw controls inside the policy.
	return StripControl(s.policy.Sanitize(StripControl(content)))
}

var defaultSanitizer = NewSanitizer(Options{})

// Sanitize cleans content with the base allow-list.
func Sanitize(content string) string {
	return defaultSanitizer.Sanitize(content)
}
