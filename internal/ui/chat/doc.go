// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package chat provides the Bubble Tea chat view for lowchat.

The Model keeps a controller.State and feeds every user action and every
transport outcome through controller.Reduce. Effects returned by the reducer
become tea.Cmds: a send effect runs the transport in the background, a
rotate effect asks the session store for a new id, and a confirm effect
shows the y/n overlay.

# Key Bindings

	Enter      send the input
	Tab        cycle provider (clears the conversation)
	Ctrl+F     toggle the internal flow panel
	Ctrl+N     new conversation
	Ctrl+Y     copy the last reply to the clipboard
	Ctrl+E     export the transcript as Markdown
	PgUp/PgDn  scroll
	1-3        load an example prompt on the empty screen
	Ctrl+C/Esc quit

# Files

  - model.go: Model, dependencies and construction
  - update.go: message handling and effect execution
  - view.go: layout and rendering
  - keys.go: key bindings
  - messages.go: tea.Msg types
  - commands.go: tea.Cmd constructors for I/O
*/
package chat
