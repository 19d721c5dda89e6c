// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var excessNewlines = regexp.MustCompile(`\n{3,}`)

// ToMarkdown converts sanitized markup into Markdown. Text outside any tag is
// passed through unchanged, so Markdown the assistant wrote itself survives.
// Unknown elements contribute only their text.
func ToMarkdown(safeHTML string) string {
	if !strings.ContainsAny(safeHTML, "<&") {
		return strings.TrimSpace(safeHTML)
	}

	context := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(safeHTML), context)
	if err != nil {
		return strings.TrimSpace(safeHTML)
	}

	w := &mdWriter{}
	for _, n := range nodes {
		w.node(n)
	}

	out := excessNewlines.ReplaceAllString(w.sb.String(), "\n\n")
	return strings.TrimSpace(out)
}

// listState tracks the enclosing list while walking.
type listState struct {
	ordered bool
	index   int
}

type mdWriter struct {
	sb    strings.Builder
	lists []listState
	inPre bool
}

func (w *mdWriter) children(n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.node(c)
	}
}

// ensureNewline starts a new line unless the output already ends with one.
func (w *mdWriter) ensureNewline() {
	s := w.sb.String()
	if s != "" && !strings.HasSuffix(s, "\n") {
		w.sb.WriteByte('\n')
	}
}

func (w *mdWriter) node(n *html.Node) {
	switch n.Type {
	case html.TextNode:
		w.sb.WriteString(n.Data)
		return
	case html.ElementNode:
	default:
		w.children(n)
		return
	}

	switch n.DataAtom {
	case atom.B, atom.Strong:
		w.wrap(n, "**")
	case atom.I, atom.Em:
		w.wrap(n, "_")
	case atom.Code:
		if w.inPre {
			w.children(n)
			return
		}
		w.sb.WriteString("`")
		w.sb.WriteString(textContent(n))
		w.sb.WriteString("`")
	case atom.Pre:
		w.ensureNewline()
		w.sb.WriteString("\n```\n")
		w.inPre = true
		w.children(n)
		w.inPre = false
		w.ensureNewline()
		w.sb.WriteString("```\n\n")
	case atom.A:
		href := attr(n, "href")
		if href == "" {
			w.children(n)
			return
		}
		w.sb.WriteString("[")
		w.children(n)
		w.sb.WriteString("](")
		w.sb.WriteString(href)
		w.sb.WriteString(")")
	case atom.P:
		w.ensureNewline()
		w.children(n)
		w.sb.WriteString("\n\n")
	case atom.Br:
		if w.inPre {
			w.sb.WriteString("\n")
			return
		}
		w.sb.WriteString("  \n")
	case atom.Ul, atom.Ol:
		w.ensureNewline()
		w.lists = append(w.lists, listState{ordered: n.DataAtom == atom.Ol})
		w.children(n)
		w.lists = w.lists[:len(w.lists)-1]
		if len(w.lists) == 0 {
			w.sb.WriteString("\n")
		}
	case atom.Li:
		w.item(n)
	default:
		w.children(n)
	}
}

func (w *mdWriter) wrap(n *html.Node, marker string) {
	inner := textContent(n)
	if strings.TrimSpace(inner) == "" {
		w.children(n)
		return
	}
	w.sb.WriteString(marker)
	w.children(n)
	w.sb.WriteString(marker)
}

func (w *mdWriter) item(n *html.Node) {
	w.ensureNewline()
	depth := len(w.lists)
	if depth == 0 {
		w.sb.WriteString("- ")
		w.children(n)
		w.ensureNewline()
		return
	}

	list := &w.lists[depth-1]
	list.index++
	w.sb.WriteString(strings.Repeat("  ", depth-1))
	if list.ordered {
		w.sb.WriteString(strconv.Itoa(list.index))
		w.sb.WriteString(". ")
	} else {
		w.sb.WriteString("- ")
	}
	w.children(n)
	w.ensureNewline()
}

// textContent returns the concatenated text of n and its descendants.
func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(textContent(c))
	}
	return sb.String()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
