// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jeranaias/lowchat/internal/ui/styles"
)

// Version information (set at build time)
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// NewRootCommand builds the lowchat command tree.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "lowchat",
		Short:         "Terminal chat client for a language-model backend",
		Long:          "lowchat talks to a chat backend, renders its replies safely in the terminal\nand shows the tool calls and context behind each answer.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd, opts)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "config file (default ~/.lowchat/config.toml)")
	pf.StringVar(&opts.url, "url", "", "backend base URL")
	pf.StringVar(&opts.provider, "provider", "", "provider: openai, hf or ollama")
	pf.StringVar(&opts.logLevel, "log-level", "", "log level: trace, debug, info, warn, error")

	root.AddCommand(
		newAskCommand(opts),
		newChatCommand(opts),
		newHealthCommand(opts),
		newSessionCommand(opts),
		newConfigCommand(opts),
		newVersionCommand(),
	)
	return root
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	root := NewRootCommand()
	if err := root.ExecuteContext(context.Background()); err != nil {
		if !alreadyReported(err) {
			fmt.Fprintln(os.Stderr, styles.RenderError(err.Error()))
		}
		return ExitCode(err)
	}
	return ExitSuccess
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "lowchat %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
		},
	}
}
