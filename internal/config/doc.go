// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for lowchat.
//
// Supports both TOML and JSON configuration formats, with sensible defaults,
// environment variable overrides, validation and live reload.
//
// # Sections
//
//   - backend: endpoint URL and paths, provider, temperature, timeout
//   - retry: attempt budget, base delay, client-side pacing
//   - session: session id persistence
//   - render: sanitizer variant and Markdown style
//   - ui: reset confirmation, flow panel, theme, export directory
//   - logging: log level and file
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (LOWCHAT_*)
//   - ~/.lowchat/config.toml
//   - ~/.lowchat/config.json
//   - Built-in defaults
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	w, err := config.NewWatcher(path, 0)
//	for r := range w.Reloads() {
//	    // apply r.Config
//	}
package config
