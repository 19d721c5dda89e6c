// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"sort"
	"strings"

	"github.com/jeranaias/lowchat/internal/export"
	"github.com/jeranaias/lowchat/internal/model"
)

// slashCommands lists the chat loop commands offered for completion.
var slashCommands = []string{"/provider", "/new", "/flow", "/export", "/help", "/quit"}

// completeLine is the line editor completer. It completes the command name,
// then the provider or export format argument.
func completeLine(line string) []string {
	if !strings.HasPrefix(line, "/") {
		return nil
	}

	name, arg, hasArg := strings.Cut(line, " ")
	if !hasArg {
		return rankMatches(name, slashCommands)
	}

	var values []string
	switch name {
	case "/provider":
		for _, info := range model.Providers() {
			values = append(values, info.ID.String())
		}
	case "/export":
		values = []string{string(export.FormatMarkdown), string(export.FormatJSON)}
	default:
		return nil
	}

	arg = strings.TrimSpace(arg)
	matches := rankMatches(arg, values)
	for i, m := range matches {
		matches[i] = name + " " + m
	}
	return matches
}

// rankMatches returns the targets that fuzzy-match query, best first.
func rankMatches(query string, targets []string) []string {
	type scored struct {
		target string
		score  int
	}

	var found []scored
	for _, t := range targets {
		if score, ok := fuzzyScore(query, t); ok {
			found = append(found, scored{t, score})
		}
	}
	sort.SliceStable(found, func(i, j int) bool {
		return found[i].score > found[j].score
	})

	var out []string
	for _, f := range found {
		out = append(out, f.target)
	}
	return out
}

// fuzzyScore matches query characters in order against target, ignoring
// case. Runs of consecutive characters and a match on the first character
// score higher; longer targets score lower.
func fuzzyScore(query, target string) (int, bool) {
	q := []rune(strings.ToLower(query))
	t := []rune(strings.ToLower(target))
	if len(q) == 0 {
		return 0, true
	}
	if len(q) > len(t) {
		return 0, false
	}

	score, qi, last := 0, 0, -1
	for ti := 0; ti < len(t) && qi < len(q); ti++ {
		if t[ti] != q[qi] {
			continue
		}
		score++
		if last == ti-1 {
			score += 5
		}
		if ti == 0 || t[ti-1] == '/' {
			score += 10
		}
		last = ti
		qi++
	}
	if qi < len(q) {
		return 0, false
	}
	return score - len(t)/4, true
}
