// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jeranaias/lowchat/internal/transport"
	"github.com/jeranaias/lowchat/internal/ui/styles"
)

func newHealthCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the backend is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(root)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, stop := signalContext(cmd)
			defer stop()

			url := a.client.Settings().HealthURL()
			h, err := a.client.Health(ctx)
			if err != nil {
				return fmt.Errorf("backend %s: %w", url, err)
			}

			out := cmd.OutOrStdout()
			line := fmt.Sprintf("backend %s status %q, %d active sessions", url, h.Status, h.SessionsActive)
			if !h.Healthy() {
				return fmt.Errorf("%s: %w", line, transport.ErrNetworkFailure)
			}
			if isTerminal(out) {
				line = styles.RenderInfo(line)
			}
			fmt.Fprintln(out, line)
			return nil
		},
	}
}
