// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package cli implements the lowchat command line.

# Commands

	lowchat                      start the terminal UI
	lowchat ask <message...>     one exchange, print the reply
	lowchat chat                 line-oriented chat with history
	lowchat health               check the backend
	lowchat session [show|new]   inspect or rotate the session id
	lowchat config [show|path|init|get|set]
	lowchat version

# Persistent Flags

	--config PATH     config file (default ~/.lowchat/config.toml)
	--url URL         backend base URL
	--provider NAME   openai, hf or ollama
	--log-level LVL   trace, debug, info, warn, error

Flags override the config file and LOWCHAT_* environment variables.

# Exit Codes

	0  success
	1  general error
	2  usage error
	3  configuration error
	5  network error (the backend could not be reached or failed)
*/
package cli
