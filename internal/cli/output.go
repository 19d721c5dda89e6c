// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/lowchat/internal/model"
	"github.com/jeranaias/lowchat/internal/render"
	"github.com/jeranaias/lowchat/internal/ui/styles"
	"github.com/jeranaias/lowchat/internal/util"
)

// =============================================================================
// STYLES
// =============================================================================

var (
	promptStyle = lipgloss.NewStyle().
			Foreground(styles.Cyan).
			Bold(true)

	welcomeStyle = lipgloss.NewStyle().
			Foreground(styles.Purple).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(styles.TextSecondary)
)

// printer writes replies either styled for a terminal or as plain text.
type printer struct {
	out      io.Writer
	renderer *render.TerminalRenderer
	styled   bool
}

// reply prints an assistant or error message followed by its tool logs.
func (p printer) reply(msg model.Message) {
	switch msg.Role {
	case model.RoleError:
		text := render.StripControl(msg.Content)
		if p.styled {
			fmt.Fprintln(p.out, styles.RenderError(text))
		} else {
			fmt.Fprintln(p.out, text)
		}
		return
	case model.RoleAssistant:
		if p.styled {
			fmt.Fprintln(p.out, p.renderer.Render(msg.Content))
		} else {
			fmt.Fprintln(p.out, p.renderer.Plain(msg.Content))
		}
	}

	for _, l := range msg.Logs {
		p.toolLog(l)
	}
}

func (p printer) toolLog(line string) {
	line = render.StripControl(line)
	if p.styled {
		fmt.Fprintln(p.out, styles.RenderToolLog(line))
		return
	}
	fmt.Fprintln(p.out, styles.ClassifyToolLog(line).Tag()+" "+line)
}

// info prints a secondary line.
func (p printer) info(format string, args ...any) {
	line := fmt.Sprintf(format, args...)
	if p.styled {
		line = infoStyle.Render(line)
	}
	fmt.Fprintln(p.out, line)
}

// flow prints the internal flow snapshot as plain sections.
func (p printer) flow(f *model.FlowSnapshot, logs []string) {
	if f == nil && len(logs) == 0 {
		p.info("No exchange yet.")
		return
	}

	fmt.Fprintf(p.out, "--- internal flow: %d tools, %d messages, ~%d tokens ---\n",
		f.ToolCount(), f.MessageCount(), f.EstimateTokens())

	if f != nil && len(f.ToolLogs) > 0 {
		logs = f.ToolLogs
	}
	for _, l := range logs {
		p.toolLog(l)
	}

	if f != nil {
		for i, m := range f.Messages {
			fmt.Fprintf(p.out, "%d. %s (%d chars): %s\n", i+1, render.StripControl(m.Role), len(m.Content), util.Preview(render.StripControl(m.Content), 60))
		}
	}
	for _, param := range f.SortedParams() {
		fmt.Fprintf(p.out, "%s = %s\n", render.StripControl(param.Name), render.StripControl(param.Value))
	}
}
