// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/lowchat/internal/config"
	"github.com/jeranaias/lowchat/internal/controller"
	"github.com/jeranaias/lowchat/internal/export"
)

// errNoReply is reported when there is nothing to copy.
var errNoReply = errors.New("no assistant reply to copy")

// =============================================================================
// COMMAND CREATORS
// =============================================================================

// sendCmd performs one chat exchange, retries included, off the UI loop.
func sendCmd(ctx context.Context, sender controller.Sender, eff controller.SendEffect, now func() time.Time) tea.Cmd {
	return func() tea.Msg {
		reply, err := sender.SendChat(ctx, eff.Message, eff.Provider, eff.SessionID)
		if err != nil {
			return FailedMsg{Seq: eff.Seq, Err: err, At: now()}
		}
		return ReplyMsg{Seq: eff.Seq, Reply: reply, At: now()}
	}
}

// rotateCmd asks the session store for a fresh id.
func rotateCmd(rotator controller.SessionRotator) tea.Cmd {
	if rotator == nil {
		return nil
	}
	return func() tea.Msg {
		id, err := rotator.Rotate()
		return SessionMsg{ID: id, Err: err}
	}
}

// waitForReload blocks until the config watcher delivers a reload.
func waitForReload(reloads <-chan config.Reload) tea.Cmd {
	if reloads == nil {
		return nil
	}
	return func() tea.Msg {
		r, ok := <-reloads
		if !ok {
			return nil
		}
		return ReloadMsg{Reload: r}
	}
}

// exportCmd writes the transcript with the given exporter.
func exportCmd(t *export.Transcript, format export.Format, opts *export.Options) tea.Cmd {
	return func() tea.Msg {
		exporter, err := export.ExporterFor(format, opts)
		if err != nil {
			return ExportedMsg{Err: err}
		}
		path, err := export.ExportToFile(t, exporter, opts)
		return ExportedMsg{Path: path, Err: err}
	}
}

// copyCmd places text on the clipboard.
func copyCmd(write func(string) error, text string) tea.Cmd {
	return func() tea.Msg {
		if text == "" {
			return CopiedMsg{Err: errNoReply}
		}
		return CopiedMsg{Err: write(text)}
	}
}
