// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"

	"github.com/jeranaias/lowchat/internal/controller"
	"github.com/jeranaias/lowchat/internal/export"
	"github.com/jeranaias/lowchat/internal/transport"
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		if !m.state.Pending {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case ReplyMsg:
		return m.dispatch(controller.ReplyReceived{Seq: msg.Seq, Reply: msg.Reply, At: msg.At})

	case FailedMsg:
		log.Warn().Err(msg.Err).Uint64("seq", msg.Seq).Msg("request failed")
		if msg.Seq == m.state.RequestSeq && !m.state.Discarding() {
			m.notice = transport.Hint(msg.Err)
		}
		return m.dispatch(controller.RequestFailed{Seq: msg.Seq, Err: msg.Err, At: msg.At})

	case SessionMsg:
		if msg.Err != nil {
			m.notice = fmt.Sprintf("Session not saved: %v", msg.Err)
		}
		return m.dispatch(controller.SessionRotated{ID: msg.ID})

	case ReloadMsg:
		return m.handleReload(msg)

	case ExportedMsg:
		if msg.Err != nil {
			m.notice = fmt.Sprintf("Export failed: %v", msg.Err)
		} else {
			m.notice = "Exported to " + msg.Path
		}
		return m, nil

	case CopiedMsg:
		if msg.Err != nil {
			m.notice = fmt.Sprintf("Copy failed: %v", msg.Err)
		} else {
			m.notice = "Copied last reply"
		}
		return m, nil
	}

	return m, nil
}

// =============================================================================
// REDUCER BRIDGE
// =============================================================================

// dispatch runs the reducer and turns its effects into commands.
func (m Model) dispatch(ev controller.Event) (Model, tea.Cmd) {
	wasPending := m.state.Pending

	var effects []controller.Effect
	m.state, effects = controller.Reduce(m.state, ev)

	if m.input.Value() != m.state.Input {
		m.input.SetValue(m.state.Input)
	}

	var cmds []tea.Cmd
	for _, eff := range effects {
		switch e := eff.(type) {
		case controller.SendEffect:
			cmds = append(cmds, sendCmd(m.deps.Context, m.deps.Sender, e, m.deps.Now))
		case controller.RotateSessionEffect:
			cmds = append(cmds, rotateCmd(m.deps.Rotator))
		case controller.ConfirmResetEffect:
			// The overlay is drawn from state.AwaitingConfirm.
		}
	}
	if m.state.Pending && !wasPending {
		cmds = append(cmds, m.spinner.Tick)
	}

	m.refresh()
	return m, tea.Batch(cmds...)
}

// =============================================================================
// KEY HANDLING
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.state.AwaitingConfirm {
		return m.handleConfirmKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Submit):
		m.notice = ""
		return m.dispatch(controller.Submit{Text: m.input.Value(), At: m.deps.Now()})

	case key.Matches(msg, m.keys.CycleProvider):
		next := m.state.Provider.Next()
		m.notice = "Provider: " + next.DisplayName()
		return m.dispatch(controller.ProviderSelected{Provider: next})

	case key.Matches(msg, m.keys.ToggleFlow):
		var cmd tea.Cmd
		m, cmd = m.dispatch(controller.FlowToggled{})
		m.layout()
		return m, cmd

	case key.Matches(msg, m.keys.NewChat):
		m.notice = ""
		return m.dispatch(controller.ResetRequested{})

	case key.Matches(msg, m.keys.Copy):
		return m, copyCmd(m.deps.Clipboard, m.lastReplyText())

	case key.Matches(msg, m.keys.Export):
		return m.exportTranscript(export.FormatMarkdown)

	case key.Matches(msg, m.keys.PageUp), key.Matches(msg, m.keys.PageDown):
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case key.Matches(msg, m.keys.Example) && m.showExamples():
		idx := int(msg.Runes[0] - '1')
		return m.dispatch(controller.InputChanged{Text: ExamplePrompts[idx].Text})
	}

	// Input is disabled while a request is in flight.
	if m.state.Pending {
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() != m.state.Input {
		m.state, _ = controller.Reduce(m.state, controller.InputChanged{Text: m.input.Value()})
	}
	return m, cmd
}

func (m Model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Type == tea.KeyCtrlC:
		return m, tea.Quit
	case key.Matches(msg, m.keys.Confirm):
		m.notice = "Started a new conversation"
		return m.dispatch(controller.ResetConfirmed{Confirmed: true})
	case key.Matches(msg, m.keys.Decline):
		return m.dispatch(controller.ResetConfirmed{Confirmed: false})
	}
	return m, nil
}

// =============================================================================
// ACTIONS
// =============================================================================

// showExamples reports whether the empty screen with example prompts is up.
func (m Model) showExamples() bool {
	return m.state.IsEmpty() && !m.state.Pending && m.state.Input == ""
}

// lastReplyText returns the last assistant reply as plain text.
func (m Model) lastReplyText() string {
	msg, ok := m.state.LastAssistant()
	if !ok {
		return ""
	}
	return m.deps.Renderer.Plain(msg.Content)
}

// Transcript builds the export view of the conversation.
func (m Model) Transcript() *export.Transcript {
	return &export.Transcript{
		SessionID: m.state.SessionID,
		Provider:  m.state.Provider,
		Messages:  m.state.Messages,
		Flow:      m.state.Flow,
	}
}

func (m Model) exportTranscript(format export.Format) (tea.Model, tea.Cmd) {
	if m.state.IsEmpty() {
		m.notice = "Nothing to export"
		return m, nil
	}
	return m, exportCmd(m.Transcript(), format, m.deps.Export)
}

func (m Model) handleReload(msg ReloadMsg) (tea.Model, tea.Cmd) {
	next := waitForReload(m.deps.Reloads)

	if msg.Err != nil {
		log.Warn().Err(msg.Err).Msg("config reload rejected")
		m.notice = fmt.Sprintf("Config not reloaded: %v", msg.Err)
		return m, next
	}

	if m.deps.OnReload != nil {
		m.deps.OnReload(msg.Config)
	}
	m.notice = "Config reloaded"
	var cmd tea.Cmd
	m, cmd = m.dispatch(controller.ConfirmResetChanged{Enabled: msg.Config.UI.ConfirmReset})
	return m, tea.Batch(cmd, next)
}
