// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/jeranaias/lowchat/internal/config"
	"github.com/jeranaias/lowchat/internal/controller"
	"github.com/jeranaias/lowchat/internal/export"
	"github.com/jeranaias/lowchat/internal/render"
	"github.com/jeranaias/lowchat/internal/ui/chat"
	"github.com/jeranaias/lowchat/internal/ui/styles"
)

// runTUI starts the full-screen chat.
func runTUI(cmd *cobra.Command, opts *rootOptions) error {
	if !isTerminal(cmd.OutOrStdout()) {
		return &UsageError{Reason: "the chat screen needs a terminal; use 'lowchat chat --plain' or 'lowchat ask'"}
	}

	a, err := newApp(opts)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signalContext(cmd)
	defer stop()

	var reloads <-chan config.Reload
	if a.cfgPath != "" {
		w, err := config.NewWatcher(a.cfgPath, config.DefaultWatchDebounce)
		if err != nil {
			log.Warn().Err(err).Str("path", a.cfgPath).Msg("config watch disabled")
		} else {
			defer w.Close()
			reloads = w.Reloads()
		}
	}

	exportOpts := export.DefaultOptions()
	exportOpts.OutputDir = a.cfg.UI.ExportDir

	initial := controller.NewState(controller.Options{
		Provider:     a.cfg.Provider(),
		SessionID:    a.sessionID(),
		ConfirmReset: a.cfg.UI.ConfirmReset,
		ShowFlow:     a.cfg.UI.ShowFlow,
	})

	m := chat.New(initial, chat.Deps{
		Sender:   a.client,
		Rotator:  a.store,
		Renderer: a.renderer(render.DefaultWordWrap),
		Theme:    styles.NewTheme(a.cfg.UI.Theme),
		Reloads:  reloads,
		OnReload: func(c *config.Config) {
			a.client.Apply(transportSettings(c))
			log.Info().Str("url", c.Backend.URL).Msg("config reloaded")
		},
		Export:  exportOpts,
		Context: ctx,
	})

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("chat screen: %w", err)
	}
	return nil
}
