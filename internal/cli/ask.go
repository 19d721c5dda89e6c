// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeranaias/lowchat/internal/controller"
	"github.com/jeranaias/lowchat/internal/transport"
)

type askOptions struct {
	plain    bool
	showFlow bool
}

func newAskCommand(root *rootOptions) *cobra.Command {
	opts := &askOptions{}

	cmd := &cobra.Command{
		Use:   "ask <message...>",
		Short: "Send one message and print the reply",
		Example: `  lowchat ask "What's the weather like in Madrid?"
  lowchat ask --provider ollama --flow list the files here`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAsk(cmd, root, opts, strings.Join(args, " "))
		},
	}

	cmd.Flags().BoolVar(&opts.plain, "plain", false, "print plain text even on a terminal")
	cmd.Flags().BoolVar(&opts.showFlow, "flow", false, "print the internal flow after the reply")
	return cmd
}

func runAsk(cmd *cobra.Command, root *rootOptions, opts *askOptions, message string) error {
	a, err := newApp(root)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signalContext(cmd)
	defer stop()

	ctrl := controller.New(controller.NewState(controller.Options{
		Provider:  a.cfg.Provider(),
		SessionID: a.sessionID(),
	}), a.client)

	out := cmd.OutOrStdout()
	p := printer{
		out:      out,
		renderer: a.renderer(terminalWidth(out)),
		styled:   !opts.plain && isTerminal(out),
	}

	msg, sent, err := ctrl.Submit(ctx, message)
	if !sent {
		return &UsageError{Reason: "message is empty"}
	}
	if err != nil {
		// The error message is the reply; the exit code carries the failure.
		p.out = cmd.ErrOrStderr()
		p.reply(msg)
		if hint := transport.Hint(err); hint != "" {
			p.info("%s", hint)
		}
		return &reportedError{err: err}
	}

	p.reply(msg)
	if opts.showFlow {
		state := ctrl.State()
		p.flow(state.Flow, state.Logs)
	}
	return nil
}
