// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the lowchat terminal UI.

All colors use Lip Gloss AdaptiveColor so that light and dark terminals are
handled automatically. The theme can be pinned to "dark" or "light" through
the ui.theme configuration key.

# Color System (colors.go)

  - Purple - assistant messages and the flow panel
  - Cyan - brand color, user highlights
  - Emerald - online status, search tool logs
  - Amber - connecting status, file tool logs
  - Rose - errors
  - Sky - weather tool logs

Every status is also shown with an ASCII indicator ([*], [~], [X]) so that
state never depends on color alone.

# Theme (theme.go)

Theme holds the pre-built lipgloss styles for the header, message bubbles,
the flow panel, the input line and the reset confirmation box:

	theme := styles.NewTheme("auto")
	header := theme.Header.Render("lowchat")

# Animations (animations.go)

Spinner frame sets used while a request is pending.
*/
package styles
