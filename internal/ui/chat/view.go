// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/lowchat/internal/controller"
	"github.com/jeranaias/lowchat/internal/model"
	"github.com/jeranaias/lowchat/internal/render"
	"github.com/jeranaias/lowchat/internal/ui/styles"
	"github.com/jeranaias/lowchat/internal/util"
)

// Layout heights; these MUST match renderHeader, renderInput and
// renderStatusBar.
const (
	headerHeight    = 1
	inputAreaHeight = 2
	statusBarHeight = 1

	defaultWidth  = 80
	defaultHeight = 24

	minFlowWidth = 28
	maxFlowWidth = 48
	// bubbleChrome is margin + border + padding around message text.
	bubbleChrome = 8
)

// =============================================================================
// LAYOUT
// =============================================================================

func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.theme.SetSize(m.width, m.height)
	m.layout()
	return m, nil
}

// layout sizes the viewport, the flow panel and the renderer.
func (m *Model) layout() {
	width, height := m.size()

	m.flowWidth = 0
	if m.state.ShowFlow && width >= 60 {
		m.flowWidth = min(max(width/3, minFlowWidth), maxFlowWidth)
	}

	m.viewport.Width = max(width-m.flowWidth, 1)
	m.viewport.Height = max(height-headerHeight-inputAreaHeight-statusBarHeight, 1)

	// "> " prompt plus one column for the cursor
	m.input.Width = max(width-3, 10)

	if bw := m.bubbleWidth(); m.deps.Renderer.Width() != bw {
		m.deps.Renderer.SetWidth(bw)
	}
	m.refresh()
}

// refresh re-renders the conversation into the viewport.
func (m *Model) refresh() {
	m.viewport.SetContent(m.renderMessages())
	m.viewport.GotoBottom()
}

func (m Model) size() (int, int) {
	width, height := m.width, m.height
	if width <= 0 {
		width = defaultWidth
	}
	if height <= 0 {
		height = defaultHeight
	}
	return width, height
}

func (m Model) bubbleWidth() int {
	return max(m.viewport.Width-bubbleChrome, 20)
}

// =============================================================================
// VIEW
// =============================================================================

// View renders the chat screen.
func (m Model) View() string {
	width, _ := m.size()

	body := m.viewport.View()
	if m.flowWidth > 0 {
		body = lipgloss.JoinHorizontal(lipgloss.Top, body, m.renderFlow(m.flowWidth))
	}
	if m.state.AwaitingConfirm {
		body = lipgloss.Place(width, m.viewport.Height, lipgloss.Center, lipgloss.Center, m.renderConfirm())
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(width),
		body,
		m.renderInput(width),
		m.renderStatusBar(width),
	)
}

func (m Model) renderHeader(width int) string {
	t := m.theme
	sep := t.HeaderMeta.Render(" | ")

	parts := []string{
		t.HeaderTitle.Render("lowchat"),
		t.StatusStyle(m.state.Status).Render(styles.StatusIndicator(m.state.Status) + " " + m.state.Status.Label()),
		t.HeaderMeta.Render(m.state.Provider.DisplayName()),
	}
	if m.state.SessionID != "" {
		parts = append(parts, t.HeaderMeta.Render("session "+m.state.SessionID))
	}

	return t.Header.Width(width).MaxWidth(width).MaxHeight(headerHeight).Render(strings.Join(parts, sep))
}

func (m Model) renderMessages() string {
	if m.state.IsEmpty() && !m.state.Pending {
		return m.renderWelcome()
	}

	var b strings.Builder
	for _, msg := range m.state.Messages {
		b.WriteString(m.renderMessage(msg))
		b.WriteString("\n\n")
	}

	if m.state.Pending && !m.state.Discarding() {
		b.WriteString(m.renderMessage(model.NewPendingMessage()))
		b.WriteString("\n")
	}

	if m.state.ShowFlow && m.flowWidth == 0 {
		b.WriteString("\n")
		b.WriteString(m.renderFlow(max(m.viewport.Width, minFlowWidth)))
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) renderMessage(msg model.Message) string {
	t := m.theme

	header := t.RoleLabel.Render(msg.Role.DisplayName())
	if !msg.Timestamp.IsZero() {
		header += " " + t.Timestamp.Render(msg.ClockTime())
	}

	content := render.StripControl(msg.Content)
	switch {
	case msg.IsStreaming:
		content = m.spinner.View() + t.InputDisabled.Render(" Assistant is thinking...")
	case msg.Role == model.RoleAssistant:
		content = m.deps.Renderer.Render(msg.Content)
	}
	bubble := t.BubbleStyle(msg.Role).Width(m.bubbleWidth()).Render(content)

	out := header + "\n" + bubble
	if msg.Role == model.RoleAssistant && msg.HasLogs() {
		logs := make([]string, 0, len(msg.Logs))
		for _, l := range msg.Logs {
			logs = append(logs, styles.RenderToolLog(util.TruncateWidth(render.StripControl(l), m.bubbleWidth())))
		}
		out += "\n" + t.ToolLogs.Render(strings.Join(logs, "\n"))
	}
	return out
}

func (m Model) renderWelcome() string {
	t := m.theme

	var b strings.Builder
	b.WriteString(t.HeaderTitle.Render("Welcome to lowchat"))
	b.WriteString("\n\nAsk anything, or try one of these examples:\n\n")
	for i, ex := range ExamplePrompts {
		b.WriteString(t.ExamplePrompt.Render(fmt.Sprintf("%d. %s %q", i+1, styles.ClassifyToolLog(ex.Label).Tag(), ex.Text)))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(t.ShortcutDesc.Render("Press 1-3 to load an example, Enter to send."))
	return t.Welcome.Render(b.String())
}

// renderFlow draws the internal flow panel of the latest exchange.
func (m Model) renderFlow(width int) string {
	t := m.theme
	inner := max(width-4, 10)
	flow := m.state.Flow

	var b strings.Builder
	b.WriteString(t.FlowTitle.Render("Internal Flow"))
	b.WriteString("\n")

	if flow == nil && len(m.state.Logs) == 0 {
		b.WriteString(t.FlowKey.Render("No exchange yet."))
		return t.FlowPanel.Width(width - 2).Render(b.String())
	}

	b.WriteString(fmt.Sprintf("%s %s  %s %s  %s %s\n",
		t.FlowKey.Render("Tools"), t.FlowValue.Render(fmt.Sprint(flow.ToolCount())),
		t.FlowKey.Render("Messages"), t.FlowValue.Render(fmt.Sprint(flow.MessageCount())),
		t.FlowKey.Render("Tokens"), t.FlowValue.Render(fmt.Sprintf("~%d", flow.EstimateTokens())),
	))

	logs := m.state.Logs
	if flow != nil && len(flow.ToolLogs) > 0 {
		logs = flow.ToolLogs
	}
	if len(logs) > 0 {
		b.WriteString("\n" + t.FlowKey.Render("Tool calls") + "\n")
		for _, l := range logs {
			b.WriteString(styles.RenderToolLog(util.TruncateWidth(render.StripControl(l), inner-10)) + "\n")
		}
	}

	if flow != nil && len(flow.Messages) > 0 {
		b.WriteString("\n" + t.FlowKey.Render("Context") + "\n")
		for i, fm := range flow.Messages {
			head := fmt.Sprintf("%d. %s (%d chars) ", i+1, render.StripControl(fm.Role), len(fm.Content))
			preview := util.Preview(render.StripControl(fm.Content), max(inner-util.StringWidth(head), 8))
			b.WriteString(t.FlowValue.Render(head+preview) + "\n")
		}
	}

	if params := flow.SortedParams(); len(params) > 0 {
		b.WriteString("\n" + t.FlowKey.Render("Params") + "\n")
		for _, p := range params {
			label := render.StripControl(p.Name) + ": "
			value := util.TruncateWidth(render.StripControl(p.Value), max(inner-util.StringWidth(label), 4))
			b.WriteString(t.FlowKey.Render(label) + t.FlowValue.Render(value) + "\n")
		}
	}

	return t.FlowPanel.Width(width - 2).Render(strings.TrimRight(b.String(), "\n"))
}

func (m Model) renderInput(width int) string {
	var line string
	if m.state.Pending {
		line = m.spinner.View() + m.theme.InputDisabled.Render(" Waiting for reply...")
	} else {
		line = m.input.View()
	}
	return m.theme.InputContainer.Width(width).Render(line)
}

func (m Model) renderStatusBar(width int) string {
	t := m.theme

	var line string
	if m.notice != "" {
		line = t.Notice.Render(m.notice)
	} else {
		hints := make([]string, 0, len(m.keys.ShortHelp()))
		for _, b := range m.keys.ShortHelp() {
			h := b.Help()
			hints = append(hints, t.ShortcutKey.Render(h.Key)+" "+t.ShortcutDesc.Render(h.Desc))
		}
		line = strings.Join(hints, "  ")
	}
	return t.StatusBar.Width(width).MaxWidth(width).MaxHeight(statusBarHeight).Render(line)
}

func (m Model) renderConfirm() string {
	t := m.theme
	body := t.ConfirmTitle.Render("New conversation") + "\n\n" +
		controller.ResetPrompt + "\n\n" +
		t.ShortcutKey.Render("[y]") + " yes   " + t.ShortcutKey.Render("[n]") + " no"
	return t.ConfirmBox.Render(body)
}
