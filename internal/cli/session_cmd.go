// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newSessionCommand(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Show or rotate the session id",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSessionShow(cmd, root)
		},
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the current session id",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runSessionShow(cmd, root)
			},
		},
		&cobra.Command{
			Use:   "new",
			Short: "Start a new session id",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				a, err := newApp(root)
				if err != nil {
					return err
				}
				defer a.Close()

				id, err := a.store.Rotate()
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), id)
				return nil
			},
		},
	)
	return cmd
}

func runSessionShow(cmd *cobra.Command, root *rootOptions) error {
	a, err := newApp(root)
	if err != nil {
		return err
	}
	defer a.Close()

	id, err := a.store.Load()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, id)
	if path := a.store.Path(); path != "" {
		fmt.Fprintf(out, "file:    %s\n", path)
	} else {
		fmt.Fprintln(out, "file:    (not persisted)")
	}
	if created := a.store.CreatedAt(); !created.IsZero() {
		fmt.Fprintf(out, "created: %s\n", created.Local().Format(time.RFC3339))
	}
	return nil
}
